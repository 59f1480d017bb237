package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its pattern and middleware.
// It encapsulates all information needed to register a command.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all available bot
// commands. Commands use the "!" prefix, so they match by prefix rather than
// by Telegram's bot-command entities; the handlers reject lookalike commands
// such as "!askfoo" themselves.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	chatGate := []tgbot.Middleware{ChatAllowed(deps)}

	handlers["!ask"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "!ask",
		Handler:     NewAskHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
		Middleware:  chatGate,
	}
	handlers["!status"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "!status",
		Handler:     NewStatusHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
		Middleware:  chatGate,
	}

	return handlers
}
