package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/tenant"
)

// errNotReady rejects enabling forwarding before both channels are bound.
var errNotReady = errors.New("source or destination channel unset")

// NewStartForwardHandler returns a handler for the /startforward command.
func NewStartForwardHandler(deps HandlerDeps) bot.HandlerFunc {
	return toggleHandler{deps: deps, enable: true}.Handle
}

// NewStopForwardHandler returns a handler for the /stopforward command.
func NewStopForwardHandler(deps HandlerDeps) bot.HandlerFunc {
	return toggleHandler{deps: deps, enable: false}.Handle
}

// toggleHandler flips the tenant's forwarding flag.
type toggleHandler struct {
	deps   HandlerDeps
	enable bool
}

func (h toggleHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	name := "stopforward"
	if h.enable {
		name = "startforward"
	}
	log := h.deps.Logger.With("handler", name)

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Toggle handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	_, err := h.deps.Store.Update(ctx, userID, func(cfg *tenant.Config) error {
		if h.enable && !cfg.ReadyToForward() {
			return errNotReady
		}
		cfg.ForwardingEnabled = h.enable
		return nil
	})
	switch {
	case errors.Is(err, errNotReady):
		reply(ctx, b, log, chatID, h.deps.Config.Messages.ForwardingNotReady)
		return
	case err != nil:
		log.ErrorContext(ctx, "Failed to toggle forwarding", "user_id", userID, "error", err)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	log.InfoContext(ctx, "Forwarding toggled", "user_id", userID, "enabled", h.enable)
	if h.enable {
		reply(ctx, b, log, chatID, h.deps.Config.Messages.ForwardingStarted)
	} else {
		reply(ctx, b, log, chatID, h.deps.Config.Messages.ForwardingStopped)
	}
}
