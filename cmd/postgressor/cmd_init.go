package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/willibrandon/postgressor/internal/config"
	"github.com/willibrandon/postgressor/internal/logger"
)

// newInitCmd creates the init subcommand
func newInitCmd() *cobra.Command {
	var (
		section config.Section
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a section of the fallback config file",
		Long: `Write the connection parameters for one environment to the fallback config
file (config/database.yml unless --config or POSTGRESSOR_CONFIG say otherwise).
The environment is chosen like everywhere else: --env, POSTGRESSOR_ENV,
RAILS_ENV, then "production".

Other sections of an existing file are kept. An existing section for the same
environment is only replaced with --force. When --password is not given, a
random password is generated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			generated := false
			if section.Password == "" {
				pw, err := config.GeneratePassword()
				if err != nil {
					return fmt.Errorf("failed to generate password: %w", err)
				}
				section.Password = pw
				generated = true
			}
			section.Adapter = config.Adapter

			path, env := settings.ConfigPath, settings.Environment
			if err := config.WriteSection(path, env, section, force); err != nil {
				return err
			}
			logger.Info("Wrote config section", "path", path, "environment", env, "database", section.Database)

			out := cmd.OutOrStdout()
			successFormat.Fprintf(out, "Wrote %s section to %s\n", env, path)
			if generated {
				fmt.Fprintf(out, "Generated a password for user %s\n", section.Username)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&section.Database, "database", "", "database name")
	cmd.Flags().StringVar(&section.Username, "username", "", "database user")
	cmd.Flags().StringVar(&section.Password, "password", "", "database password (generated when empty)")
	cmd.Flags().StringVar(&section.Host, "host", "", "database host (default: local socket)")
	cmd.Flags().IntVar(&section.Port, "port", 0, "database port (default: tool default)")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing section")
	_ = cmd.MarkFlagRequired("database")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
