package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Capture audio and publish live subtitles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()
			warnIgnoredKeys(cfg, logger)

			flags := cmd.Flags()
			if flags.Changed("device") {
				cfg.DeviceName = opts.device
			}
			if flags.Changed("chunk-duration") {
				cfg.ChunkDuration = opts.chunkDuration
			}
			if flags.Changed("asr-model") {
				cfg.ASRModel = opts.asrModel
			}
			if flags.Changed("http-addr") {
				cfg.HTTPAddr = opts.httpAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runPipeline(sigCtx, cfg, opts, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.device, "device", "", "Input device name (substring match)")
	flags.Float64Var(&opts.chunkDuration, "chunk-duration", 0, "Seconds of audio per inference chunk")
	flags.StringVar(&opts.asrModel, "asr-model", "", "Speech recognition model")
	flags.StringVar(&opts.httpAddr, "http-addr", "", "Overlay HTTP listen address; empty disables the server")
	flags.StringVar(&opts.input, "input", "", "Replay a WAV file instead of capturing a device")
	flags.BoolVar(&opts.paced, "realtime", true, "Pace --input replay at real-time speed")
	return cmd
}
