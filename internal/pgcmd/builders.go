package pgcmd

import (
	"github.com/willibrandon/postgressor/internal/config"
)

// SuperuserAccount is the OS account that owns the local PostgreSQL cluster.
// Role management runs as this account so peer authentication applies.
const SuperuserAccount = "postgres"

// PasswordEnv carries the password to the client tools.
const PasswordEnv = "PGPASSWORD"

// DumpFileName is where DumpDatabase writes, relative to the working directory.
func DumpFileName(cfg config.ConnectionConfig) string {
	return cfg.Database + ".dump"
}

// CreateUser runs CREATE USER through psql as the superuser account.
func CreateUser(cfg config.ConnectionConfig, superuser bool) (Command, error) {
	sql, err := CreateUserSQL(cfg.User, cfg.Password, superuser)
	if err != nil {
		return Command{}, err
	}
	return superuserCommand(cfg, "psql", "-c", sql), nil
}

// DropUser runs dropuser as the superuser account.
func DropUser(cfg config.ConnectionConfig) Command {
	return superuserCommand(cfg, "dropuser", cfg.User)
}

// SetSuperuser runs ALTER USER ... [NO]SUPERUSER through psql as the
// superuser account.
func SetSuperuser(cfg config.ConnectionConfig, grant bool) (Command, error) {
	sql, err := SetSuperuserSQL(cfg.User, grant)
	if err != nil {
		return Command{}, err
	}
	return superuserCommand(cfg, "psql", "-c", sql), nil
}

// CreateDatabase runs createdb as the configured user.
func CreateDatabase(cfg config.ConnectionConfig) Command {
	return userCommand(cfg, "createdb", []string{cfg.Database})
}

// DropDatabase runs dropdb as the configured user.
func DropDatabase(cfg config.ConnectionConfig) Command {
	return userCommand(cfg, "dropdb", []string{cfg.Database})
}

// DumpDatabase runs pg_dump in custom format, without ACLs or ownership,
// into DumpFileName(cfg).
func DumpDatabase(cfg config.ConnectionConfig) Command {
	return userCommand(cfg, "pg_dump", []string{cfg.Database},
		"-Fc", "--no-acl", "--no-owner", "-f", DumpFileName(cfg))
}

// RestoreDatabase runs pg_restore of dumpFile into the configured database.
func RestoreDatabase(cfg config.ConnectionConfig, dumpFile string) Command {
	return userCommand(cfg, "pg_restore", []string{dumpFile, "-d", cfg.Database},
		"--no-acl", "--no-owner", "--verbose")
}

// userCommand lays out name, leading, the connection fragment, then trailing.
// The password only travels in the child's environment.
func userCommand(cfg config.ConnectionConfig, name string, leading []string, trailing ...string) Command {
	args := append([]string{}, leading...)
	args = append(args, cfg.CLIArgs()...)
	args = append(args, trailing...)

	return Command{
		Name:    name,
		Args:    args,
		Env:     []string{PasswordEnv + "=" + cfg.Password},
		Secrets: []string{cfg.Password},
	}
}

func superuserCommand(cfg config.ConnectionConfig, name string, args ...string) Command {
	return Command{
		Name:    name,
		Args:    args,
		RunAs:   SuperuserAccount,
		Secrets: []string{cfg.Password},
	}
}
