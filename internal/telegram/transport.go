package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/forwarder"
	"github.com/edgard/relaybot/internal/tenant"
)

// Transport implements the forwarder.Transport capability over the
// Telegram Bot API. The candidate channel list comes from the channel
// directory, since the Bot API cannot enumerate joined chats.
type Transport struct {
	bot      *bot.Bot
	channels database.ChannelStore
	client   *http.Client
	logger   *slog.Logger
}

// NewTransport creates a Transport over a bot instance and the channel
// directory.
func NewTransport(b *bot.Bot, channels database.ChannelStore, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		bot:      b,
		channels: channels,
		client:   http.DefaultClient,
		logger:   logger.With("component", "telegram_transport"),
	}
}

var _ forwarder.Transport = (*Transport)(nil)

// SendText sends plain text to a channel.
func (t *Transport) SendText(ctx context.Context, channelID int64, text string) error {
	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: channelID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to send text to %d: %w", channelID, err)
	}
	return nil
}

// SendDocument relays a document under the given filename. The Bot API
// cannot rename a file sent by file id, so the document is fetched from
// Telegram and re-uploaded with the target name.
func (t *Transport) SendDocument(ctx context.Context, channelID int64, fileID, filename, caption string) error {
	file, err := t.bot.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return fmt.Errorf("failed to resolve file %s: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.bot.FileDownloadLink(file), nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.logger.Warn("Error closing file download body", "error", closeErr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download file %s: unexpected status %s", fileID, resp.Status)
	}

	_, err = t.bot.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   channelID,
		Document: &models.InputFileUpload{Filename: filename, Data: resp.Body},
		Caption:  caption,
	})
	if err != nil {
		return fmt.Errorf("failed to send document to %d: %w", channelID, err)
	}
	return nil
}

// CopyMessage relays a message verbatim, without the forwarded-from header.
func (t *Transport) CopyMessage(ctx context.Context, toChannelID, fromChannelID int64, messageID int) error {
	_, err := t.bot.CopyMessage(ctx, &bot.CopyMessageParams{
		ChatID:     toChannelID,
		FromChatID: fromChannelID,
		MessageID:  messageID,
	})
	if err != nil {
		return fmt.Errorf("failed to copy message %d to %d: %w", messageID, toChannelID, err)
	}
	return nil
}

// ListJoinedChannels returns the channels known to the directory as
// binding candidates for the tenant.
func (t *Transport) ListJoinedChannels(ctx context.Context, tenantID int64) ([]tenant.ChannelRef, error) {
	refs, err := t.channels.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels for tenant %d: %w", tenantID, err)
	}
	return refs, nil
}
