package db

import (
	"context"
	"fmt"
	"time"

	"github.com/willibrandon/postgressor/internal/config"
	"github.com/willibrandon/postgressor/internal/logger"
)

// maxRetryDelay caps the backoff between connection attempts.
const maxRetryDelay = 30 * time.Second

// RetryState tracks connection attempts for WaitForConnection.
type RetryState struct {
	Attempt     int           // attempts made so far
	NextDelay   time.Duration // wait before the next attempt
	MaxAttempts int
}

// NewRetryState creates a retry state allowing maxAttempts attempts.
func NewRetryState(maxAttempts int) *RetryState {
	return &RetryState{MaxAttempts: maxAttempts, NextDelay: time.Second}
}

// CalculateNextDelay returns 2s, 4s, 8s, ... for attempts 1, 2, 3, capped at 30s.
func (r *RetryState) CalculateNextDelay() time.Duration {
	if r.Attempt > 5 {
		return maxRetryDelay
	}
	delay := time.Duration(1<<uint(r.Attempt)) * time.Second
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

// NextAttempt records an attempt and reports whether it is within budget.
func (r *RetryState) NextAttempt() bool {
	r.Attempt++
	r.NextDelay = r.CalculateNextDelay()
	return r.Attempt <= r.MaxAttempts
}

// HasAttemptsRemaining returns true if more attempts are available
func (r *RetryState) HasAttemptsRemaining() bool {
	return r.Attempt < r.MaxAttempts
}

// sleep is replaced in tests.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WaitForConnection calls check until it succeeds, backing off between
// attempts. It gives up after maxAttempts attempts or when ctx is done.
func WaitForConnection(ctx context.Context, cfg config.ConnectionConfig, maxAttempts int,
	check func(context.Context, config.ConnectionConfig) (string, error)) (string, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	state := NewRetryState(maxAttempts)

	var lastErr error
	for state.NextAttempt() {
		version, err := check(ctx, cfg)
		if err == nil {
			if state.Attempt > 1 {
				logger.Info("Database reachable", "attempt", state.Attempt)
			}
			return version, nil
		}
		lastErr = err

		logger.Warn("Connection attempt failed",
			"attempt", state.Attempt,
			"max_attempts", state.MaxAttempts,
			"error", err,
		)
		if !state.HasAttemptsRemaining() {
			break
		}
		logger.Debug("Waiting before next connection attempt", "delay", state.NextDelay)
		if err := sleep(ctx, state.NextDelay); err != nil {
			return "", err
		}
	}

	if maxAttempts == 1 {
		return "", lastErr
	}
	return "", fmt.Errorf("database unreachable after %d attempts: %w", maxAttempts, lastErr)
}
