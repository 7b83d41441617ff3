package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/willibrandon/postgressor/internal/config"
	"github.com/willibrandon/postgressor/internal/db"
)

const checkTimeout = 10 * time.Second

// newCheckCmd creates the check subcommand
func newCheckCmd() *cobra.Command {
	var retries int

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the database is reachable with the configured credentials",
		Long: `Connect to the configured database and print the server version.

With --retries the connection is attempted up to that many times with
exponential backoff, which is useful while a server is still starting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := resolve()
			if err != nil {
				return err
			}

			attempt := func(ctx context.Context, cfg config.ConnectionConfig) (string, error) {
				ctx, cancel := context.WithTimeout(ctx, checkTimeout)
				defer cancel()
				return db.CheckConnection(ctx, cfg)
			}

			serverVersion, err := db.WaitForConnection(cmd.Context(), res.Config, retries, attempt)
			if err != nil {
				if hint := db.ConnectionHint(err); hint != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), hint)
				}
				return err
			}

			out := cmd.OutOrStdout()
			successFormat.Fprintf(out, "Connected to %s\n", res.Config.Masked())
			fmt.Fprintln(out, serverVersion)
			return nil
		},
	}
	cmd.Flags().IntVar(&retries, "retries", 1, "connection attempts before giving up")
	return cmd
}
