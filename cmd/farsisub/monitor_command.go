package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/satriahrh/farsisub/adapters/subtitle"
	"github.com/satriahrh/farsisub/domain/entities"
	"github.com/satriahrh/farsisub/internal/config"
	"github.com/satriahrh/farsisub/internal/websocket"
)

func newMonitorCommand(ctx *commandContext) *cobra.Command {
	var serverURL string
	var token string
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Print subtitles as they change",
		Long:  "Polls the subtitle files like an overlay would, or follows the overlay websocket with --url.",
		RunE: func(cmd *cobra.Command, args []string) error {
			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			if serverURL != "" {
				return monitorWebSocket(sigCtx, serverURL, token, out)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return monitorFiles(sigCtx, cfg, interval, out)
		},
	}

	cmd.Flags().StringVar(&serverURL, "url", "", "Follow a running translator over websocket (e.g. ws://localhost:8080/ws)")
	cmd.Flags().StringVar(&token, "token", "", "Overlay token for --url")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "File poll interval")
	return cmd
}

func monitorFiles(ctx context.Context, cfg *config.Config, interval time.Duration, out io.Writer) error {
	reader := subtitle.NewFileReader(cfg.SubtitleFile, cfg.JSONSubtitlePath())
	fmt.Fprintf(out, "Monitoring %s (Ctrl+C to stop)\n", cfg.JSONSubtitlePath())

	err := reader.Poll(ctx, interval, func(u subtitle.Update) {
		printSubtitle(out, u.Document, u.TextOnly)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func monitorWebSocket(ctx context.Context, rawURL, token string, out io.Writer) error {
	wsURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if token != "" {
		q := wsURL.Query()
		q.Set("token", token)
		wsURL.RawQuery = q.Encode()
	}

	conn, resp, err := gorillaws.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket connection failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket connection failed: %w", err)
	}
	defer conn.Close()

	fmt.Fprintf(out, "Connected to %s (Ctrl+C to stop)\n", wsURL.Redacted())

	go func() {
		<-ctx.Done()
		conn.WriteControl(gorillaws.CloseMessage,
			gorillaws.FormatCloseMessage(gorillaws.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || gorillaws.IsCloseError(err, gorillaws.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		msg, err := websocket.ParseMessage(data)
		if err != nil {
			fmt.Fprintf(out, "! %v\n", err)
			continue
		}
		printSubtitle(out, msg.SubtitleDocument, false)
	}
}

func printSubtitle(out io.Writer, doc entities.SubtitleDocument, textOnly bool) {
	stamp := time.Now()
	if doc.Timestamp > 0 {
		stamp = doc.Subtitle().CreatedAt
	}
	fmt.Fprintf(out, "[%s] %s\n", stamp.Format("15:04:05"), doc.Text)
	if doc.English != "" && !textOnly {
		fmt.Fprintf(out, "           %s\n", doc.English)
	}
}
