package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/satriahrh/farsisub/adapters/capture"
	"github.com/satriahrh/farsisub/domain/entities"
)

func newDevicesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var inputsOnly bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List audio devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := capture.ListDevices()
			if err != nil {
				return err
			}

			if inputsOnly {
				filtered := devices[:0]
				for _, d := range devices {
					if d.MaxInputChannels > 0 {
						filtered = append(filtered, d)
					}
				}
				devices = filtered
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(devices)
			}

			if len(devices) == 0 {
				fmt.Fprintln(out, "No audio devices found")
				return nil
			}
			fmt.Fprintln(out, renderDeviceTable(devices))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	cmd.Flags().BoolVar(&inputsOnly, "inputs", false, "Only list devices with input channels")
	return cmd
}

func renderDeviceTable(devices []entities.AudioDevice) string {
	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, []string{
			strconv.Itoa(d.Index),
			d.Name,
			strconv.Itoa(d.MaxInputChannels),
			strconv.Itoa(d.MaxOutputChannels),
			strconv.FormatFloat(d.DefaultSampleRate, 'f', 0, 64),
		})
	}
	return renderTable(
		[]string{"Index", "Name", "In", "Out", "Rate"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight},
	)
}
