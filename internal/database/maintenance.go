package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Maintenance runs periodic database housekeeping.
type Maintenance struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewMaintenance creates a Maintenance runner.
func NewMaintenance(db *sqlx.DB, logger *slog.Logger) *Maintenance {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Maintenance{
		db:     db,
		logger: logger.With("component", "maintenance"),
	}
}

// Run executes VACUUM on the SQLite database. VACUUM must run outside a
// transaction.
func (m *Maintenance) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		m.logger.WarnContext(ctx, "Context done before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	m.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	_, err := m.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		m.logger.WarnContext(ctx, "VACUUM timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance timed out: %w", err)
	case err != nil:
		m.logger.ErrorContext(ctx, "VACUUM failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	m.logger.InfoContext(ctx, "Database maintenance completed.")
	return nil
}
