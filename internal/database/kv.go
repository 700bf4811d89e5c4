package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// TenantKV stores one serialized record per tenant in the tenant_records
// table. It implements the tenant.KV capability.
type TenantKV struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewTenantKV creates a TenantKV over a connected database.
func NewTenantKV(db *sqlx.DB, logger *slog.Logger) *TenantKV {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TenantKV{
		db:     db,
		logger: logger.With("component", "tenant_kv"),
	}
}

// Get returns the stored record for key and whether it exists.
func (s *TenantKV) Get(ctx context.Context, key int64) ([]byte, bool, error) {
	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}

	var record string
	err := s.db.GetContext(ctx, &record,
		`SELECT record FROM tenant_records WHERE tenant_id = ?`, key)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error reading tenant record", "tenant_id", key, "error", err)
		return nil, false, fmt.Errorf("failed to read record for key %d: %w", key, err)
	}
	return []byte(record), true, nil
}

// Put stores the record for key, overwriting any previous value. The write
// is committed before Put returns.
func (s *TenantKV) Put(ctx context.Context, key int64, value []byte) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	now := time.Now().UTC()
	query := `
        INSERT INTO tenant_records (tenant_id, record, created_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (tenant_id) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at;
    `
	if _, err := s.db.ExecContext(ctx, query, key, string(value), now, now); err != nil {
		s.logger.ErrorContext(ctx, "Error writing tenant record", "tenant_id", key, "error", err)
		return fmt.Errorf("failed to write record for key %d: %w", key, err)
	}

	s.logger.DebugContext(ctx, "Tenant record written", "tenant_id", key, "size", len(value))
	return nil
}

// Delete removes the record for key. Deleting a missing key is not an error.
func (s *TenantKV) Delete(ctx context.Context, key int64) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM tenant_records WHERE tenant_id = ?`, key); err != nil {
		s.logger.ErrorContext(ctx, "Error deleting tenant record", "tenant_id", key, "error", err)
		return fmt.Errorf("failed to delete record for key %d: %w", key, err)
	}
	return nil
}

// Keys lists all stored tenant IDs in unspecified order.
func (s *TenantKV) Keys(ctx context.Context) ([]int64, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var keys []int64
	if err := s.db.SelectContext(ctx, &keys,
		`SELECT tenant_id FROM tenant_records`); err != nil {
		s.logger.ErrorContext(ctx, "Error listing tenant records", "error", err)
		return nil, fmt.Errorf("failed to list record keys: %w", err)
	}
	return keys, nil
}
