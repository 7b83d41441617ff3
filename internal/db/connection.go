package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/willibrandon/postgressor/internal/config"
	"github.com/willibrandon/postgressor/internal/logger"
)

// Connect opens a single connection using the resolved configuration.
func Connect(ctx context.Context, cfg config.ConnectionConfig) (*pgx.Conn, error) {
	logger.Debug("Opening database connection",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database,
		"user", cfg.User,
	)

	connConfig, err := pgx.ParseConfig(cfg.ConnString())
	if err != nil {
		logger.Error("Failed to parse connection string", "error", err)
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	connConfig.RuntimeParams["application_name"] = "postgressor"

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		logger.Error("Failed to connect",
			"host", connConfig.Host,
			"port", connConfig.Port,
			"error", err,
		)
		return nil, fmt.Errorf("failed to connect to %s:%d: %w", connConfig.Host, connConfig.Port, err)
	}

	return conn, nil
}

// GetServerVersion retrieves the PostgreSQL server version
func GetServerVersion(ctx context.Context, conn *pgx.Conn) (string, error) {
	logger.Debug("Querying PostgreSQL server version")
	var version string
	err := conn.QueryRow(ctx, "SELECT version()").Scan(&version)
	if err != nil {
		logger.Error("Failed to get server version", "error", err)
		return "", fmt.Errorf("failed to get server version: %w", err)
	}
	logger.Debug("Server version retrieved", "version", version)
	return version, nil
}

// CheckConnection connects, asks for the server version and disconnects.
func CheckConnection(ctx context.Context, cfg config.ConnectionConfig) (string, error) {
	conn, err := Connect(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer conn.Close(context.WithoutCancel(ctx))

	version, err := GetServerVersion(ctx, conn)
	if err != nil {
		return "", err
	}

	logger.Info("Database connection verified",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database,
	)
	return version, nil
}
