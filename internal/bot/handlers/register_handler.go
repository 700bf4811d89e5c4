package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/tenant"
)

// NewRegisterHandler returns a handler for the /register command.
func NewRegisterHandler(deps HandlerDeps) bot.HandlerFunc {
	return registerHandler{deps}.Handle
}

// registerHandler creates the tenant's configuration record.
type registerHandler struct {
	deps HandlerDeps
}

func (h registerHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "register")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Register handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	_, err := h.deps.Store.Create(ctx, userID)
	switch {
	case errors.Is(err, tenant.ErrAlreadyRegistered):
		log.DebugContext(ctx, "Duplicate registration", "user_id", userID)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.AlreadyRegistered)
		return
	case err != nil:
		log.ErrorContext(ctx, "Failed to register tenant", "user_id", userID, "error", err)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	log.InfoContext(ctx, "Tenant registered", "user_id", userID)
	reply(ctx, b, log, chatID, h.deps.Config.Messages.Registered)
}
