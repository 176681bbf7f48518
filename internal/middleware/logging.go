// Package middleware содержит middleware для логирования запросов.
package middleware

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// RequestContext содержит контекст для обработки запроса
type RequestContext struct {
	StartTime time.Time
	RequestID string
	UserID    int64
	ChatID    int64
	Command   string
}

// LoggingMiddleware логирует входящие команды с контекстом
func LoggingMiddleware(logger *zap.Logger) func(update tgbotapi.Update, next func(tgbotapi.Update)) {
	return func(update tgbotapi.Update, next func(tgbotapi.Update)) {
		if update.Message == nil {
			next(update)
			return
		}

		requestCtx := &RequestContext{
			StartTime: time.Now(),
			RequestID: fmt.Sprintf("%d-%d", update.UpdateID, time.Now().UnixNano()),
			UserID:    update.Message.From.ID,
			ChatID:    update.Message.Chat.ID,
			Command:   update.Message.Command(),
		}

		user := getUserIdentifier(update.Message.From)

		logger.Info("Processing command",
			zap.String("request_id", requestCtx.RequestID),
			zap.String("command", requestCtx.Command),
			zap.Int64("user_id", requestCtx.UserID),
			zap.Int64("chat_id", requestCtx.ChatID),
			zap.String("user", user),
			zap.Int("update_id", update.UpdateID))

		next(update)

		duration := time.Since(requestCtx.StartTime)
		logger.Info("Command completed",
			zap.String("request_id", requestCtx.RequestID),
			zap.String("command", requestCtx.Command),
			zap.Duration("duration", duration))
	}
}

// getUserIdentifier возвращает идентификатор пользователя
func getUserIdentifier(user *tgbotapi.User) string {
	if user == nil {
		return "unknown"
	}

	if user.UserName != "" {
		return "@" + user.UserName
	}

	if user.FirstName != "" {
		if user.LastName != "" {
			return user.FirstName + " " + user.LastName
		}
		return user.FirstName
	}

	return fmt.Sprintf("user_%d", user.ID)
}
