// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"
	"errors"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/tenant"
)

// RequireRegistered creates a middleware that rejects commands from users
// without a configuration record. Registration is never implicit: every
// mutating command except /register requires an existing record.
func RequireRegistered(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				next(ctx, b, update)
				return
			}

			userID := update.Message.From.ID
			log := deps.Logger.With("middleware", "require_registered")

			_, err := deps.Store.Get(ctx, userID)
			switch {
			case errors.Is(err, tenant.ErrNotFound):
				log.DebugContext(ctx, "Command from unregistered user", "user_id", userID)
				reply(ctx, b, log, update.Message.Chat.ID, deps.Config.Messages.NotRegistered)
				return
			case err != nil:
				log.ErrorContext(ctx, "Failed to look up tenant", "user_id", userID, "error", err)
				reply(ctx, b, log, update.Message.Chat.ID, deps.Config.Messages.GeneralError)
				return
			}

			next(ctx, b, update)
		}
	}
}

// reply sends a plain text reply and logs delivery failures.
func reply(ctx context.Context, b *tgbot.Bot, log *slog.Logger, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}
