package main

import (
	"github.com/spf13/cobra"
)

// newCreateUserCmd creates the create-user subcommand
func newCreateUserCmd() *cobra.Command {
	var superuser bool

	cmd := &cobra.Command{
		Use:     "create-user",
		Aliases: []string{"createuser"},
		Short:   "Create the application's database user",
		Long: `Create the configured user with CREATEDB and LOGIN, using the configured
password. Runs psql as the "postgres" OS account through sudo.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDispatcher(cmd)
			if err != nil {
				return err
			}
			return d.CreateUser(cmd.Context(), superuser)
		},
	}
	cmd.Flags().BoolVar(&superuser, "superuser", false, "create the user as SUPERUSER")
	return cmd
}

// newDropUserCmd creates the drop-user subcommand
func newDropUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "drop-user",
		Aliases: []string{"dropuser"},
		Short:   "Drop the application's database user",
		Long:    `Drop the configured user. Runs dropuser as the "postgres" OS account through sudo.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDispatcher(cmd)
			if err != nil {
				return err
			}
			return d.DropUser(cmd.Context())
		},
	}
}
