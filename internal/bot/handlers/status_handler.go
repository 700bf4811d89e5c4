package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/tenant"
)

// NewStatusHandler returns a handler for the /status command.
func NewStatusHandler(deps HandlerDeps) bot.HandlerFunc {
	return statusHandler{deps}.Handle
}

// statusHandler renders a read-only snapshot of the tenant configuration.
type statusHandler struct {
	deps HandlerDeps
}

func (h statusHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "status")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Status handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	cfg, err := h.deps.Store.Get(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load tenant for status", "user_id", userID, "error", err)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	reply(ctx, b, log, chatID, renderStatus(cfg))
}

// renderStatus formats the configuration snapshot shown by /status.
func renderStatus(cfg *tenant.Config) string {
	var sb strings.Builder

	state := "disabled"
	if cfg.ForwardingEnabled {
		state = "enabled"
	}
	fmt.Fprintf(&sb, "Forwarding: %s\n", state)
	fmt.Fprintf(&sb, "Source: %s\n", renderChannel(cfg.SourceChannel))
	fmt.Fprintf(&sb, "Destination: %s\n", renderChannel(cfg.DestinationChannel))

	sb.WriteString("\nText filters:")
	if len(cfg.WordFilters) == 0 {
		sb.WriteString(" none")
	}
	for i, f := range cfg.WordFilters {
		fmt.Fprintf(&sb, "\n%d. %s -> %s", i+1, f.Old, f.New)
	}

	sb.WriteString("\n\nFile renames:")
	if len(cfg.FileRenameFilters) == 0 {
		sb.WriteString(" none")
	}
	names := make([]string, 0, len(cfg.FileRenameFilters))
	for old := range cfg.FileRenameFilters {
		names = append(names, old)
	}
	sort.Strings(names)
	for _, old := range names {
		fmt.Fprintf(&sb, "\n%s -> %s", old, cfg.FileRenameFilters[old])
	}

	return sb.String()
}

func renderChannel(ref *tenant.ChannelRef) string {
	if ref == nil {
		return "not set"
	}
	if ref.Title == "" {
		return fmt.Sprintf("%d", ref.ID)
	}
	return fmt.Sprintf("%s (%d)", ref.Title, ref.ID)
}
