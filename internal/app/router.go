// Package app содержит маршрутизацию команд.
package app

import (
	"strings"

	"groovebot/internal/gateway/telegram"
	"groovebot/internal/handlers"
	"groovebot/internal/middleware"
	"groovebot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Router обрабатывает маршрутизацию команд
type Router struct {
	services   *service.Services
	handlers   *handlers.Handlers
	middleware *middleware.Middleware
	logger     *zap.Logger
}

// NewRouter создает новый роутер
func NewRouter(services *service.Services, botAPI telegram.BotAPI, mw *middleware.Middleware, logger *zap.Logger) *Router {
	return &Router{
		services:   services,
		handlers:   handlers.New(services, botAPI, logger),
		middleware: mw,
		logger:     logger,
	}
}

// HandleUpdate обрабатывает обновление от Telegram
func (r *Router) HandleUpdate(update tgbotapi.Update) {
	// Любая активность пользователя учитывается в кворуме голосований
	if update.Message != nil && update.Message.From != nil {
		r.services.Voting.RegisterActiveUser(update.Message.Chat.ID, update.Message.From.ID)
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		r.services.Voting.RegisterActiveUser(update.CallbackQuery.Message.Chat.ID, update.CallbackQuery.From.ID)
	}

	r.middleware.ProcessWithMiddleware(update, func(update tgbotapi.Update) {
		if update.Message != nil {
			r.handleMessage(update.Message)
		}

		if update.CallbackQuery != nil {
			r.handleCallbackQuery(update.CallbackQuery)
		}
	})
}

// handleMessage обрабатывает текстовые сообщения
func (r *Router) handleMessage(message *tgbotapi.Message) {
	if !message.IsCommand() {
		return
	}

	command := strings.ToLower(message.Command())

	switch command {
	case "start":
		r.handlers.Start(message)
	case "help":
		r.handlers.Help(message)
	case "play":
		r.handlers.Play(message)
	case "search":
		r.handlers.Search(message)
	case "pause":
		r.handlers.Pause(message)
	case "resume":
		r.handlers.Resume(message)
	case "skip":
		r.handlers.Skip(message)
	case "voteskip":
		r.handlers.VoteSkip(message)
	case "stop":
		r.handlers.Stop(message)
	case "volume":
		r.handlers.Volume(message)
	case "queue":
		r.handlers.Queue(message)
	case "current":
		r.handlers.Current(message)
	case "history":
		r.handlers.History(message)
	case "lyrics":
		r.handlers.Lyrics(message)
	case "stats":
		r.handlers.Stats(message)
	case "ping":
		r.handlers.Ping(message)
	default:
		r.handlers.Unknown(message)
	}
}

// handleCallbackQuery обрабатывает callback query
func (r *Router) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	r.handlers.CallbackQuery(query)
}

// RegisterBotCommands регистрирует команды бота
func (r *Router) RegisterBotCommands() []tgbotapi.BotCommand {
	return r.handlers.RegisterBotCommands()
}
