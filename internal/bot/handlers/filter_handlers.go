package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/tenant"
)

// NewAddFilterHandler returns a handler for the /addfilter command.
func NewAddFilterHandler(deps HandlerDeps) bot.HandlerFunc {
	return addFilterHandler{deps: deps, command: "/addfilter", file: false}.Handle
}

// NewAddFileFilterHandler returns a handler for the /addfilefilter command.
func NewAddFileFilterHandler(deps HandlerDeps) bot.HandlerFunc {
	return addFilterHandler{deps: deps, command: "/addfilefilter", file: true}.Handle
}

// addFilterHandler inserts a word replacement or file rename rule.
type addFilterHandler struct {
	deps    HandlerDeps
	command string
	file    bool
}

func (h addFilterHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", strings.TrimPrefix(h.command, "/"))

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Filter handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	usage := h.deps.Config.Messages.FilterUsage
	if h.file {
		usage = h.deps.Config.Messages.FileFilterUsage
	}

	old, new, err := parsePairArgs(update.Message.Text, h.command)
	if err != nil {
		reply(ctx, b, log, chatID, usage)
		return
	}

	_, err = h.deps.Store.Update(ctx, userID, func(cfg *tenant.Config) error {
		if h.file {
			cfg.SetFileRename(old, new)
		} else {
			cfg.SetWordFilter(old, new)
		}
		return nil
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to add filter", "user_id", userID, "error", err)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	log.InfoContext(ctx, "Filter added", "user_id", userID, "file_filter", h.file, "old", old)
	reply(ctx, b, log, chatID, fmt.Sprintf(h.deps.Config.Messages.FilterAdded, old, new))
}

// NewRemoveFilterHandler returns a handler for the /delfilter command.
func NewRemoveFilterHandler(deps HandlerDeps) bot.HandlerFunc {
	return removeFilterHandler{deps: deps, command: "/delfilter", file: false}.Handle
}

// NewRemoveFileFilterHandler returns a handler for the /delfilefilter command.
func NewRemoveFileFilterHandler(deps HandlerDeps) bot.HandlerFunc {
	return removeFilterHandler{deps: deps, command: "/delfilefilter", file: true}.Handle
}

// removeFilterHandler removes a word replacement or file rename rule.
type removeFilterHandler struct {
	deps    HandlerDeps
	command string
	file    bool
}

func (h removeFilterHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", strings.TrimPrefix(h.command, "/"))

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Filter handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	usage := h.deps.Config.Messages.FilterUsage
	if h.file {
		usage = h.deps.Config.Messages.FileFilterUsage
	}

	old, err := parseSingleArg(update.Message.Text, h.command)
	if err != nil {
		reply(ctx, b, log, chatID, usage)
		return
	}

	_, err = h.deps.Store.Update(ctx, userID, func(cfg *tenant.Config) error {
		if h.file {
			return cfg.RemoveFileRename(old)
		}
		return cfg.RemoveWordFilter(old)
	})
	switch {
	case errors.Is(err, tenant.ErrFilterNotFound):
		reply(ctx, b, log, chatID, fmt.Sprintf(h.deps.Config.Messages.FilterNotFound, old))
		return
	case err != nil:
		log.ErrorContext(ctx, "Failed to remove filter", "user_id", userID, "error", err)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	log.InfoContext(ctx, "Filter removed", "user_id", userID, "file_filter", h.file, "old", old)
	reply(ctx, b, log, chatID, fmt.Sprintf(h.deps.Config.Messages.FilterRemoved, old))
}
