package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its pattern and
// middleware, carrying everything needed to register it with the bot.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all bot commands,
// each configured with its handler and middleware.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	command := func(pattern string, handler tgbot.HandlerFunc, mw ...tgbot.Middleware) RegisteredHandler {
		return RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     pattern,
			Handler:     handler,
			Middleware:  mw,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		}
	}

	registered := RequireRegistered(deps)

	handlers := make(map[string]RegisteredHandler)
	handlers["/start"] = command("start", NewStartHandler(deps))
	handlers["/help"] = command("help", NewStartHandler(deps))
	handlers["/register"] = command("register", NewRegisterHandler(deps))

	handlers["/setsource"] = command("setsource", NewSetSourceHandler(deps), registered)
	handlers["/setdestination"] = command("setdestination", NewSetDestinationHandler(deps), registered)
	handlers["/addfilter"] = command("addfilter", NewAddFilterHandler(deps), registered)
	handlers["/delfilter"] = command("delfilter", NewRemoveFilterHandler(deps), registered)
	handlers["/addfilefilter"] = command("addfilefilter", NewAddFileFilterHandler(deps), registered)
	handlers["/delfilefilter"] = command("delfilefilter", NewRemoveFileFilterHandler(deps), registered)
	handlers["/startforward"] = command("startforward", NewStartForwardHandler(deps), registered)
	handlers["/stopforward"] = command("stopforward", NewStopForwardHandler(deps), registered)
	handlers["/status"] = command("status", NewStatusHandler(deps), registered)

	return handlers
}
