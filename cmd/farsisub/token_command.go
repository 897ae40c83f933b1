package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/satriahrh/farsisub/internal/auth"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var name string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an overlay token for the /ws endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.OverlayJWTSecret == "" {
				return errors.New("OVERLAY_JWT_SECRET is not set; overlay auth is disabled")
			}

			issuer, err := auth.NewTokenIssuer(cfg.OverlayJWTSecret)
			if err != nil {
				return err
			}
			token, expiresAt, err := issuer.GenerateOverlayToken(name, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "obs", "Client name recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "Token lifetime")
	return cmd
}
