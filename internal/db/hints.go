package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes with a dedicated hint.
const (
	codeInvalidPassword      = "28P01"
	codeInvalidAuthorization = "28000"
	codeInvalidCatalogName   = "3D000"
	codeInsufficientPrivs    = "42501"
)

// ConnectionHint returns troubleshooting guidance for a failed connection
// attempt, or "" when there is nothing more useful to say than the error.
func ConnectionHint(err error) string {
	if err == nil {
		return ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeInvalidPassword, codeInvalidAuthorization:
			return "Authentication failed. Check the user and password in " +
				"DATABASE_URL or the config file section, and PGPASSWORD if it is set."
		case codeInvalidCatalogName:
			return "The database does not exist. Create it with: postgressor create-database"
		case codeInsufficientPrivs:
			return "The user lacks the CONNECT privilege on this database, or pg_hba.conf rejects it."
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "The server did not respond in time. Check network connectivity and firewall rules."
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "PostgreSQL is not accepting connections. Verify it is running " +
			"(systemctl status postgresql) and listening on the configured port."
	case strings.Contains(msg, "no such host"):
		return "The host name does not resolve. Verify the host, or use an IP address."
	case strings.Contains(msg, "SSL") || strings.Contains(msg, "TLS"):
		return "The secure connection failed. Check whether the server requires SSL (pg_hba.conf)."
	}
	return ""
}
