package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/willibrandon/postgressor/internal/testutil"
)

func TestCheckConnection(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := testutil.StartPostgres(t, ctx)

	t.Run("valid credentials", func(t *testing.T) {
		version, err := CheckConnection(ctx, cfg)
		require.NoError(t, err)
		assert.Contains(t, version, "PostgreSQL 15")
	})

	t.Run("wrong password", func(t *testing.T) {
		bad := cfg
		bad.Password = "wrong"

		_, err := CheckConnection(ctx, bad)
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "wrong")
	})

	t.Run("unknown database", func(t *testing.T) {
		bad := cfg
		bad.Database = "does_not_exist"

		_, err := CheckConnection(ctx, bad)
		assert.Error(t, err)
	})
}

func TestLookupPassword_FromEnv(t *testing.T) {
	t.Setenv("PGPASSWORD", "from-env")

	pw, err := LookupPassword()
	require.NoError(t, err)
	assert.Equal(t, "from-env", pw)
}
