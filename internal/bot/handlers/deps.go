package handlers

import (
	"log/slog"

	"github.com/edgard/relaybot/internal/config"
	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/forwarder"
	"github.com/edgard/relaybot/internal/selection"
	"github.com/edgard/relaybot/internal/tenant"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger     *slog.Logger
	Config     *config.Config
	Store      tenant.Store
	Selection  *selection.Manager
	Transport  forwarder.Transport
	Dispatcher *forwarder.Dispatcher
	Channels   database.ChannelStore
}
