// Package logger provides structured logging for the relay bot using
// Go's slog package, with configurable level and output format.
package logger

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// New creates a slog Logger with the given level. If jsonOutput is true
// logs are emitted as JSON, otherwise as text.
func New(levelStr string, jsonOutput bool) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// Middleware creates a Telegram bot middleware that logs every inbound
// update: private commands, selection replies, and channel posts.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()

			logEntry := log.With("update_id", update.ID)

			switch {
			case update.Message != nil:
				msg := update.Message
				logEntry = logEntry.With(
					"update_type", "message",
					"message_id", msg.ID,
					"chat_id", msg.Chat.ID,
					"text_preview", truncate(msg.Text, 50),
				)
				if msg.From != nil {
					logEntry = logEntry.With("user_id", msg.From.ID)
				}
			case update.ChannelPost != nil:
				post := update.ChannelPost
				logEntry = logEntry.With(
					"update_type", "channel_post",
					"message_id", post.ID,
					"chat_id", post.Chat.ID,
					"has_document", post.Document != nil,
				)
			case update.MyChatMember != nil:
				logEntry = logEntry.With(
					"update_type", "my_chat_member",
					"chat_id", update.MyChatMember.Chat.ID,
					"new_status", update.MyChatMember.NewChatMember.Type,
				)
			default:
				logEntry = logEntry.With("update_type", "other")
			}

			logEntry.DebugContext(ctx, "Processing update")

			next(ctx, b, update)

			logEntry.DebugContext(ctx, "Finished processing update", "duration", time.Since(start))
		}
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
