package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/forwarder"
	"github.com/edgard/relaybot/internal/selection"
	"github.com/edgard/relaybot/internal/tenant"
)

// NewDefaultHandler returns the catch-all handler. It routes channel posts
// into the forward dispatcher, numeric private replies into the selection
// state machine, and membership updates into the channel directory.
func NewDefaultHandler(deps HandlerDeps) bot.HandlerFunc {
	return defaultHandler{deps}.Handle
}

type defaultHandler struct {
	deps HandlerDeps
}

func (h defaultHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	switch {
	case update.ChannelPost != nil:
		h.handleChannelPost(ctx, update.ChannelPost)
	case update.MyChatMember != nil:
		h.handleMembershipUpdate(ctx, update.MyChatMember)
	case update.Message != nil && update.Message.From != nil:
		h.handleDirectMessage(ctx, b, update.Message)
	}
}

// handleChannelPost records the channel sighting and dispatches the post
// to every tenant sourced from it.
func (h defaultHandler) handleChannelPost(ctx context.Context, post *models.Message) {
	log := h.deps.Logger.With("handler", "channel_post", "chat_id", post.Chat.ID)

	if err := h.deps.Channels.Record(ctx, tenant.ChannelRef{ID: post.Chat.ID, Title: post.Chat.Title}); err != nil {
		log.WarnContext(ctx, "Failed to record channel sighting", "error", err)
	}

	msg := inboundFromPost(post)
	if err := h.deps.Dispatcher.Dispatch(ctx, msg); err != nil {
		log.ErrorContext(ctx, "Dispatch failed", "message_id", post.ID, "error", err)
	}
}

// handleMembershipUpdate keeps the channel directory in sync with the
// bot's own channel membership.
func (h defaultHandler) handleMembershipUpdate(ctx context.Context, upd *models.ChatMemberUpdated) {
	if upd.Chat.Type != models.ChatTypeChannel {
		return
	}
	log := h.deps.Logger.With("handler", "membership", "chat_id", upd.Chat.ID)

	switch upd.NewChatMember.Type {
	case models.ChatMemberTypeLeft, models.ChatMemberTypeBanned:
		if err := h.deps.Channels.Remove(ctx, upd.Chat.ID); err != nil {
			log.WarnContext(ctx, "Failed to remove channel", "error", err)
		}
	default:
		if err := h.deps.Channels.Record(ctx, tenant.ChannelRef{ID: upd.Chat.ID, Title: upd.Chat.Title}); err != nil {
			log.WarnContext(ctx, "Failed to record channel", "error", err)
		}
	}
}

// handleDirectMessage routes bare numeric replies to a pending selection.
// Anything else outside a command is ignored.
func (h defaultHandler) handleDirectMessage(ctx context.Context, b *bot.Bot, msg *models.Message) {
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	if !h.deps.Selection.Pending(userID) || !isNumericReply(text) {
		return
	}

	log := h.deps.Logger.With("handler", "selection_reply", "user_id", userID)

	chosen, err := h.deps.Selection.Resolve(ctx, userID, text)
	switch {
	case errors.Is(err, selection.ErrInvalidInput):
		reply(ctx, b, log, msg.Chat.ID, h.deps.Config.Messages.InvalidChoice)
	case errors.Is(err, selection.ErrIndexOutOfRange):
		reply(ctx, b, log, msg.Chat.ID, h.deps.Config.Messages.ChoiceOutOfRange)
	case errors.Is(err, selection.ErrNoPendingSelection):
		// Raced with another reply; the first one consumed the selection.
	case errors.Is(err, tenant.ErrNotFound):
		reply(ctx, b, log, msg.Chat.ID, h.deps.Config.Messages.NotRegistered)
	case err != nil:
		log.ErrorContext(ctx, "Failed to resolve selection", "error", err)
		reply(ctx, b, log, msg.Chat.ID, h.deps.Config.Messages.GeneralError)
	default:
		title := chosen.Title
		if title == "" {
			title = fmt.Sprintf("%d", chosen.ID)
		}
		reply(ctx, b, log, msg.Chat.ID, fmt.Sprintf(h.deps.Config.Messages.ChannelSet, title))
	}
}

// inboundFromPost maps a Telegram channel post onto the dispatcher's
// message model.
func inboundFromPost(post *models.Message) *forwarder.InboundMessage {
	msg := &forwarder.InboundMessage{
		OriginChannel: post.Chat.ID,
		MessageID:     post.ID,
		Text:          post.Text,
	}
	if msg.Text == "" {
		msg.Text = post.Caption
	}
	msg.HasMedia = post.Photo != nil || post.Video != nil || post.Audio != nil ||
		post.Animation != nil || post.Sticker != nil || post.Voice != nil ||
		post.VideoNote != nil
	// Animations carry a backward-compatibility Document field; they are
	// media, not renameable documents.
	if post.Document != nil && post.Animation == nil {
		msg.Document = &forwarder.Attachment{
			FileID:   post.Document.FileID,
			FileName: post.Document.FileName,
		}
	}
	return msg
}
