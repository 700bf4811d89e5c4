// Package tasks implements scheduled tasks for the relay bot.
// It includes task definitions, dependencies, and registration mechanisms.
package tasks

import (
	"log/slog"

	"github.com/edgard/relaybot/internal/config"
	"github.com/edgard/relaybot/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger      *slog.Logger
	Maintenance *database.Maintenance
	Channels    database.ChannelStore
	Config      *config.Config
}
