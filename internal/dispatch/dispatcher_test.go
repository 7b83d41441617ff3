package dispatch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/willibrandon/postgressor/internal/config"
	"github.com/willibrandon/postgressor/internal/pgcmd"
)

// recordingRunner records every command instead of running it. result, when
// set, decides the outcome of each call.
type recordingRunner struct {
	commands []pgcmd.Command
	result   func(cmd pgcmd.Command) error
}

func (r *recordingRunner) Run(ctx context.Context, cmd pgcmd.Command) error {
	r.commands = append(r.commands, cmd)
	if r.result != nil {
		return r.result(cmd)
	}
	return nil
}

func (r *recordingRunner) names() []string {
	names := make([]string, len(r.commands))
	for i, cmd := range r.commands {
		names[i] = cmd.Name
		if cmd.Name == "psql" {
			names[i] += " " + cmd.Args[len(cmd.Args)-1]
		}
	}
	return names
}

func failOn(name string, code int) func(cmd pgcmd.Command) error {
	return func(cmd pgcmd.Command) error {
		if cmd.Name == name {
			return &pgcmd.ExitError{Command: name, Code: code}
		}
		return nil
	}
}

var testConfig = config.ConnectionConfig{
	Database: "app_test",
	Host:     "localhost",
	Port:     5432,
	User:     "app",
	Password: "s3cret",
}

func newTestDispatcher(runner pgcmd.Runner) (*Dispatcher, *bytes.Buffer) {
	var out bytes.Buffer
	return New(testConfig, Options{Runner: runner, Out: &out}), &out
}

func makeDumpFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app_test.dump")
	require.NoError(t, os.WriteFile(path, []byte("PGDMP"), 0644))
	return path
}

// =============================================================================
// Operation Tests
// =============================================================================

func TestCreateDatabase(t *testing.T) {
	runner := &recordingRunner{}
	d, out := newTestDispatcher(runner)

	require.NoError(t, d.CreateDatabase(context.Background()))

	require.Len(t, runner.commands, 1)
	cmd := runner.commands[0]
	assert.Equal(t, "createdb", cmd.Name)
	assert.Equal(t, []string{"app_test", "-h", "localhost", "-U", "app", "-p", "5432"}, cmd.Args)
	assert.Equal(t, []string{"PGPASSWORD=s3cret"}, cmd.Env)
	assert.Contains(t, out.String(), "Created database app_test")
}

func TestOperations_SuccessMessages(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		op       func(d *Dispatcher) error
		command  string
		expected string
	}{
		{
			name:     "create user",
			op:       func(d *Dispatcher) error { return d.CreateUser(ctx, false) },
			command:  "psql",
			expected: "Created user app",
		},
		{
			name:     "drop user",
			op:       func(d *Dispatcher) error { return d.DropUser(ctx) },
			command:  "dropuser",
			expected: "Dropped user app",
		},
		{
			name:     "drop database",
			op:       func(d *Dispatcher) error { return d.DropDatabase(ctx) },
			command:  "dropdb",
			expected: "Dropped database app_test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &recordingRunner{}
			d, out := newTestDispatcher(runner)

			require.NoError(t, tt.op(d))
			require.Len(t, runner.commands, 1)
			assert.Equal(t, tt.command, runner.commands[0].Name)
			assert.Contains(t, out.String(), tt.expected)
		})
	}
}

func TestOperations_NonZeroExit(t *testing.T) {
	ctx := context.Background()
	runner := &recordingRunner{result: func(cmd pgcmd.Command) error {
		return &pgcmd.ExitError{Command: cmd.Name, Code: 2}
	}}
	d, out := newTestDispatcher(runner)

	ops := map[string]func() error{
		"create user":     func() error { return d.CreateUser(ctx, true) },
		"drop user":       func() error { return d.DropUser(ctx) },
		"create database": func() error { return d.CreateDatabase(ctx) },
		"drop database":   func() error { return d.DropDatabase(ctx) },
		"dump database":   func() error { _, err := d.DumpDatabase(ctx); return err },
	}
	for name, op := range ops {
		err := op()
		var exitErr *pgcmd.ExitError
		require.True(t, errors.As(err, &exitErr), name)
		assert.Equal(t, 2, exitErr.Code, name)
	}

	assert.Empty(t, out.String())
}

func TestCreateUser_Superuser(t *testing.T) {
	runner := &recordingRunner{}
	d, _ := newTestDispatcher(runner)

	require.NoError(t, d.CreateUser(context.Background(), true))

	cmd := runner.commands[0]
	assert.Equal(t, "postgres", cmd.RunAs)
	assert.Equal(t, `CREATE USER "app" WITH CREATEDB LOGIN SUPERUSER PASSWORD 's3cret';`, cmd.Args[1])
}

func TestDumpDatabase(t *testing.T) {
	chdir(t, t.TempDir())

	runner := &recordingRunner{result: func(cmd pgcmd.Command) error {
		// stand in for pg_dump writing its output file
		return os.WriteFile("app_test.dump", bytes.Repeat([]byte("x"), 2048), 0644)
	}}
	d, out := newTestDispatcher(runner)

	file, err := d.DumpDatabase(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "app_test.dump", file)
	assert.Equal(t, []string{"pg_dump"}, runner.names())
	assert.Contains(t, out.String(), "Dumped database app_test to app_test.dump file (2.0 kB)")
}

// =============================================================================
// Restore Tests
// =============================================================================

func TestRestoreDatabase(t *testing.T) {
	dump := makeDumpFile(t)
	runner := &recordingRunner{}
	d, out := newTestDispatcher(runner)

	require.NoError(t, d.RestoreDatabase(context.Background(), dump, false))

	require.Len(t, runner.commands, 1)
	assert.Equal(t, []string{
		dump, "-d", "app_test", "-h", "localhost", "-U", "app", "-p", "5432",
		"--no-acl", "--no-owner", "--verbose",
	}, runner.commands[0].Args)
	assert.Contains(t, out.String(), "Restored database app_test from "+dump+" file")
}

func TestRestoreDatabase_SuperuserBracket(t *testing.T) {
	dump := makeDumpFile(t)
	grant := `psql ALTER USER "app" WITH SUPERUSER;`
	revoke := `psql ALTER USER "app" WITH NOSUPERUSER;`

	t.Run("restore succeeds", func(t *testing.T) {
		runner := &recordingRunner{}
		d, out := newTestDispatcher(runner)

		require.NoError(t, d.RestoreDatabase(context.Background(), dump, true))
		assert.Equal(t, []string{grant, "pg_restore", revoke}, runner.names())
		assert.Contains(t, out.String(), "Restored database app_test")
	})

	t.Run("restore fails", func(t *testing.T) {
		runner := &recordingRunner{result: failOn("pg_restore", 1)}
		d, out := newTestDispatcher(runner)

		err := d.RestoreDatabase(context.Background(), dump, true)
		var exitErr *pgcmd.ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, "pg_restore", exitErr.Command)

		assert.Equal(t, []string{grant, "pg_restore", revoke}, runner.names())
		assert.Empty(t, out.String())
	})

	t.Run("grant fails", func(t *testing.T) {
		runner := &recordingRunner{result: failOn("psql", 1)}
		d, _ := newTestDispatcher(runner)

		err := d.RestoreDatabase(context.Background(), dump, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "grant SUPERUSER")
		assert.Equal(t, []string{grant}, runner.names())
	})

	t.Run("revoke fails after successful restore", func(t *testing.T) {
		runner := &recordingRunner{result: func(cmd pgcmd.Command) error {
			if cmd.Name == "psql" && strings.Contains(cmd.Args[1], "NOSUPERUSER") {
				return &pgcmd.ExitError{Command: "psql", Code: 1}
			}
			return nil
		}}
		d, _ := newTestDispatcher(runner)

		err := d.RestoreDatabase(context.Background(), dump, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "revoke SUPERUSER")
	})

	t.Run("revoke runs after cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		runner := &recordingRunner{}
		runner.result = func(cmd pgcmd.Command) error {
			if cmd.Name == "pg_restore" {
				cancel()
				return context.Canceled
			}
			return nil
		}
		d, _ := newTestDispatcher(runner)

		err := d.RestoreDatabase(ctx, dump, true)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, []string{grant, "pg_restore", revoke}, runner.names())
	})
}

func TestRestoreDatabase_MissingDumpFile(t *testing.T) {
	runner := &recordingRunner{}
	d, _ := newTestDispatcher(runner)

	err := d.RestoreDatabase(context.Background(), filepath.Join(t.TempDir(), "missing.dump"), true)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, runner.commands)
}

// =============================================================================
// Debug Echo Tests
// =============================================================================

func TestEcho(t *testing.T) {
	var out, echo bytes.Buffer
	runner := &recordingRunner{}
	d := New(testConfig, Options{Runner: runner, Out: &out, Echo: &echo})

	require.NoError(t, d.DropDatabase(context.Background()))

	assert.Equal(t, "PGPASSWORD=s3cret dropdb app_test -h localhost -U app -p 5432\n", echo.String())
}

func TestNoEchoByDefault(t *testing.T) {
	d, out := newTestDispatcher(&recordingRunner{})
	require.NoError(t, d.DropDatabase(context.Background()))
	assert.NotContains(t, out.String(), "PGPASSWORD")
}

// chdir changes the working directory to dir for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
