package main

import (
	"github.com/spf13/cobra"
)

// newCreateDatabaseCmd creates the create-database subcommand
func newCreateDatabaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "create-database",
		Aliases: []string{"createdb"},
		Short:   "Create the application's database",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDispatcher(cmd)
			if err != nil {
				return err
			}
			return d.CreateDatabase(cmd.Context())
		},
	}
}

// newDropDatabaseCmd creates the drop-database subcommand
func newDropDatabaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "drop-database",
		Aliases: []string{"dropdb"},
		Short:   "Drop the application's database",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDispatcher(cmd)
			if err != nil {
				return err
			}
			return d.DropDatabase(cmd.Context())
		},
	}
}

// newDumpDatabaseCmd creates the dump-database subcommand
func newDumpDatabaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "dump-database",
		Aliases: []string{"dumpdb"},
		Short:   "Dump (back up) the application's database",
		Long: `Dump the configured database with pg_dump in custom format, without
ACLs or ownership, to <database>.dump in the current directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDispatcher(cmd)
			if err != nil {
				return err
			}
			_, err = d.DumpDatabase(cmd.Context())
			return err
		},
	}
}

// newRestoreDatabaseCmd creates the restore-database subcommand
func newRestoreDatabaseCmd() *cobra.Command {
	var superuser bool

	cmd := &cobra.Command{
		Use:     "restore-database <dumpfile>",
		Aliases: []string{"restoredb"},
		Short:   "Restore the application's database from a dump",
		Long: `Restore a pg_dump custom-format file into the configured database with
pg_restore, without ACLs or ownership.

With --superuser the user is granted SUPERUSER before the restore and the grant
is revoked afterwards, also when the restore fails. Some extensions can only be
restored by a superuser.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDispatcher(cmd)
			if err != nil {
				return err
			}
			return d.RestoreDatabase(cmd.Context(), args[0], superuser)
		},
	}
	cmd.Flags().BoolVar(&superuser, "superuser", false, "make the user SUPERUSER for the duration of the restore")
	return cmd
}
