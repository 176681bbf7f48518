// Package middleware содержит middleware для recovery.
package middleware

import (
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// RecoveryMiddlewareWithUpdate обрабатывает панику с контекстом обновления
func RecoveryMiddlewareWithUpdate(logger *zap.Logger) func(update tgbotapi.Update, next func(tgbotapi.Update)) {
	return func(update tgbotapi.Update, next func(tgbotapi.Update)) {
		defer func() {
			if panicErr := recover(); panicErr != nil {
				if update.Message != nil {
					user := getUserIdentifier(update.Message.From)
					logger.Error("Panic recovered in recovery middleware",
						zap.String("command", update.Message.Command()),
						zap.Int64("chat_id", update.Message.Chat.ID),
						zap.String("user", user),
						zap.Int("update_id", update.UpdateID),
						zap.Any("panic", panicErr),
						zap.String("stack", string(debug.Stack())))
				} else {
					logger.Error("Panic recovered in recovery middleware",
						zap.Int("update_id", update.UpdateID),
						zap.Any("panic", panicErr),
						zap.String("stack", string(debug.Stack())))
				}
			}
		}()
		next(update)
	}
}
