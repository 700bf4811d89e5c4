package database

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/relaybot/internal/tenant"
)

// ChannelStore maintains the channel directory: every channel the bot has
// observed, used as the candidate list for source/destination binding. The
// Bot API cannot enumerate joined chats, so the directory is built from
// observed channel posts and membership updates.
type ChannelStore interface {
	// Record upserts a channel sighting, refreshing its title and
	// last-seen timestamp.
	Record(ctx context.Context, ref tenant.ChannelRef) error

	// Remove drops a channel from the directory (bot kicked or channel
	// deleted).
	Remove(ctx context.Context, chatID int64) error

	// List returns all known channels ordered by title.
	List(ctx context.Context) ([]tenant.ChannelRef, error)

	// Prune deletes channels not seen within the retention window and
	// returns how many were removed.
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

type sqlxChannelStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewChannelStore creates a ChannelStore over a connected database.
func NewChannelStore(db *sqlx.DB, logger *slog.Logger) ChannelStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxChannelStore{
		db:     db,
		logger: logger.With("component", "channel_store"),
	}
}

func (s *sqlxChannelStore) Record(ctx context.Context, ref tenant.ChannelRef) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	query := `
        INSERT INTO channels (chat_id, title, last_seen)
        VALUES (?, ?, ?)
        ON CONFLICT (chat_id) DO UPDATE SET title = excluded.title, last_seen = excluded.last_seen;
    `
	if _, err := s.db.ExecContext(ctx, query, ref.ID, ref.Title, time.Now().UTC()); err != nil {
		s.logger.ErrorContext(ctx, "Error recording channel", "chat_id", ref.ID, "error", err)
		return fmt.Errorf("failed to record channel %d: %w", ref.ID, err)
	}

	s.logger.DebugContext(ctx, "Channel recorded", "chat_id", ref.ID, "title", ref.Title)
	return nil
}

func (s *sqlxChannelStore) Remove(ctx context.Context, chatID int64) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM channels WHERE chat_id = ?`, chatID); err != nil {
		s.logger.ErrorContext(ctx, "Error removing channel", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to remove channel %d: %w", chatID, err)
	}

	s.logger.InfoContext(ctx, "Channel removed from directory", "chat_id", chatID)
	return nil
}

func (s *sqlxChannelStore) List(ctx context.Context) ([]tenant.ChannelRef, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	rows := []struct {
		ChatID int64  `db:"chat_id"`
		Title  string `db:"title"`
	}{}
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT chat_id, title FROM channels ORDER BY title, chat_id`); err != nil {
		s.logger.ErrorContext(ctx, "Error listing channels", "error", err)
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	refs := make([]tenant.ChannelRef, 0, len(rows))
	for _, r := range rows {
		refs = append(refs, tenant.ChannelRef{ID: r.ChatID, Title: r.Title})
	}
	return refs, nil
}

func (s *sqlxChannelStore) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	cutoff := time.Now().UTC().Add(-retention)
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM channels WHERE last_seen < ?`, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error pruning channels", "error", err)
		return 0, fmt.Errorf("failed to prune channels: %w", err)
	}

	count, _ := result.RowsAffected()
	if count > 0 {
		s.logger.InfoContext(ctx, "Pruned stale channels", "count", count, "cutoff", cutoff)
	}
	return count, nil
}
