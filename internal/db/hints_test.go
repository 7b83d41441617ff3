package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConnectionHint(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"nil", nil, ""},
		{"bad password", &pgconn.PgError{Code: "28P01"}, "Authentication failed"},
		{"missing database", fmt.Errorf("connect: %w", &pgconn.PgError{Code: "3D000"}), "create-database"},
		{"no privilege", &pgconn.PgError{Code: "42501"}, "CONNECT privilege"},
		{"timeout", fmt.Errorf("dial: %w", context.DeadlineExceeded), "did not respond in time"},
		{"refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), "not accepting connections"},
		{"dns", errors.New("dial tcp: lookup db.invalid: no such host"), "does not resolve"},
		{"unknown", errors.New("something else"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := ConnectionHint(tt.err)
			if tt.contains == "" {
				assert.Empty(t, hint)
				return
			}
			assert.Contains(t, hint, tt.contains)
		})
	}
}
