package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/selection"
	"github.com/edgard/relaybot/internal/tenant"
)

// NewSetSourceHandler returns a handler for the /setsource command.
func NewSetSourceHandler(deps HandlerDeps) bot.HandlerFunc {
	return selectHandler{deps: deps, target: selection.TargetSource}.Handle
}

// NewSetDestinationHandler returns a handler for the /setdestination command.
func NewSetDestinationHandler(deps HandlerDeps) bot.HandlerFunc {
	return selectHandler{deps: deps, target: selection.TargetDestination}.Handle
}

// selectHandler starts a channel selection: it snapshots the candidate
// channels and prompts for a numeric choice.
type selectHandler struct {
	deps   HandlerDeps
	target selection.Target
}

func (h selectHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "select_"+h.target.String())

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Select handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	candidates, err := h.deps.Transport.ListJoinedChannels(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list channels", "user_id", userID, "error", err)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	if err := h.deps.Selection.Begin(userID, h.target, candidates); err != nil {
		if errors.Is(err, selection.ErrNoCandidates) {
			reply(ctx, b, log, chatID, h.deps.Config.Messages.NoChannels)
			return
		}
		log.ErrorContext(ctx, "Failed to begin selection", "user_id", userID, "error", err)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	log.InfoContext(ctx, "Selection prompt sent",
		"user_id", userID, "target", h.target.String(), "candidates", len(candidates))
	reply(ctx, b, log, chatID, renderCandidates(h.deps.Config.Messages.ChooseChannel, candidates))
}

// renderCandidates formats the numbered candidate list for the prompt.
func renderCandidates(header string, candidates []tenant.ChannelRef) string {
	var sb strings.Builder
	sb.WriteString(header)
	for i, c := range candidates {
		title := c.Title
		if title == "" {
			title = fmt.Sprintf("%d", c.ID)
		}
		fmt.Fprintf(&sb, "\n%d. %s", i+1, title)
	}
	return sb.String()
}
