package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/willibrandon/postgressor/internal/config"
)

// newConfigCmd creates the config subcommand
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved connection configuration",
		Long:  `Show where the connection parameters come from and what they resolve to. The password is masked.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Only a mask of the password is shown, so never prompt for one.
			res, err := config.Locate(settings)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), res.Tree())
			return nil
		},
	}
}
