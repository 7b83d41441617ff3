// Package dispatch maps each lifecycle operation onto PostgreSQL client tool
// invocations and reports the outcome.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/willibrandon/postgressor/internal/config"
	"github.com/willibrandon/postgressor/internal/logger"
	"github.com/willibrandon/postgressor/internal/pgcmd"
)

var successFormat = color.New(color.FgGreen)

// Options configures a Dispatcher.
type Options struct {
	// Runner executes commands. Defaults to an ExecRunner on the process streams.
	Runner pgcmd.Runner
	// Out receives success messages. Defaults to os.Stdout.
	Out io.Writer
	// Echo, when non-nil, receives every command line before it runs.
	Echo io.Writer
}

// Dispatcher runs operations against one resolved connection config.
type Dispatcher struct {
	cfg    config.ConnectionConfig
	runner pgcmd.Runner
	out    io.Writer
	echo   io.Writer
}

// New returns a Dispatcher for cfg.
func New(cfg config.ConnectionConfig, opts Options) *Dispatcher {
	d := &Dispatcher{
		cfg:    cfg,
		runner: opts.Runner,
		out:    opts.Out,
		echo:   opts.Echo,
	}
	if d.runner == nil {
		d.runner = pgcmd.NewExecRunner()
	}
	if d.out == nil {
		d.out = os.Stdout
	}
	return d
}

// CreateUser creates the configured role with CREATEDB and LOGIN, and with
// SUPERUSER when superuser is set.
func (d *Dispatcher) CreateUser(ctx context.Context, superuser bool) error {
	cmd, err := pgcmd.CreateUser(d.cfg, superuser)
	if err != nil {
		return err
	}
	if err := d.run(ctx, cmd); err != nil {
		return err
	}
	d.success("Created user %s", d.cfg.User)
	return nil
}

// DropUser drops the configured role.
func (d *Dispatcher) DropUser(ctx context.Context) error {
	if err := d.run(ctx, pgcmd.DropUser(d.cfg)); err != nil {
		return err
	}
	d.success("Dropped user %s", d.cfg.User)
	return nil
}

// CreateDatabase creates the configured database.
func (d *Dispatcher) CreateDatabase(ctx context.Context) error {
	if err := d.run(ctx, pgcmd.CreateDatabase(d.cfg)); err != nil {
		return err
	}
	d.success("Created database %s", d.cfg.Database)
	return nil
}

// DropDatabase drops the configured database.
func (d *Dispatcher) DropDatabase(ctx context.Context) error {
	if err := d.run(ctx, pgcmd.DropDatabase(d.cfg)); err != nil {
		return err
	}
	d.success("Dropped database %s", d.cfg.Database)
	return nil
}

// DumpDatabase backs up the configured database to <database>.dump in the
// working directory and returns the file name.
func (d *Dispatcher) DumpDatabase(ctx context.Context) (string, error) {
	file := pgcmd.DumpFileName(d.cfg)
	if err := d.run(ctx, pgcmd.DumpDatabase(d.cfg)); err != nil {
		return "", err
	}

	if info, err := os.Stat(file); err == nil {
		d.success("Dumped database %s to %s file (%s)", d.cfg.Database, file, humanize.Bytes(uint64(info.Size())))
	} else {
		d.success("Dumped database %s to %s file", d.cfg.Database, file)
	}
	return file, nil
}

// RestoreDatabase restores dumpFile into the configured database. With
// superuser set, the role is granted SUPERUSER for the duration of the
// restore; the revoke runs whether or not the restore succeeds.
func (d *Dispatcher) RestoreDatabase(ctx context.Context, dumpFile string, superuser bool) (err error) {
	if _, err := os.Stat(dumpFile); err != nil {
		return fmt.Errorf("dump file: %w", err)
	}

	if superuser {
		grant, gerr := pgcmd.SetSuperuser(d.cfg, true)
		if gerr != nil {
			return gerr
		}
		revoke, rerr := pgcmd.SetSuperuser(d.cfg, false)
		if rerr != nil {
			return rerr
		}

		if gerr := d.run(ctx, grant); gerr != nil {
			return fmt.Errorf("failed to grant SUPERUSER to %s: %w", d.cfg.User, gerr)
		}
		defer func() {
			// Runs even if ctx was cancelled mid-restore.
			rerr := d.run(context.WithoutCancel(ctx), revoke)
			if rerr == nil {
				return
			}
			rerr = fmt.Errorf("failed to revoke SUPERUSER from %s: %w", d.cfg.User, rerr)
			if err == nil {
				err = rerr
				return
			}
			logger.Error("Revoke after failed restore also failed", "user", d.cfg.User, "error", rerr)
		}()
	}

	if err := d.run(ctx, pgcmd.RestoreDatabase(d.cfg, dumpFile)); err != nil {
		return err
	}
	d.success("Restored database %s from %s file", d.cfg.Database, dumpFile)
	return nil
}

// run echoes cmd when requested, executes it and logs the outcome.
func (d *Dispatcher) run(ctx context.Context, cmd pgcmd.Command) error {
	if d.echo != nil {
		fmt.Fprintln(d.echo, cmd.String())
	}

	log := logger.With("command", cmd.Redacted())
	log.Debug("Running command")

	start := time.Now()
	err := d.runner.Run(ctx, cmd)
	elapsed := time.Since(start)

	var exitErr *pgcmd.ExitError
	switch {
	case err == nil:
		log.Info("Command succeeded", "duration", elapsed)
	case errors.As(err, &exitErr):
		log.Warn("Command exited with non-zero status", "code", exitErr.Code, "duration", elapsed)
	default:
		log.Error("Command could not be run", "error", err)
	}
	return err
}

func (d *Dispatcher) success(format string, args ...any) {
	successFormat.Fprintf(d.out, format+"\n", args...)
}
