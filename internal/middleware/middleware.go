// Package middleware содержит middleware компоненты.
package middleware

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Middleware представляет middleware компонент
type Middleware struct {
	rateLimiter RateLimiterInterface
	debouncer   DebouncerInterface
	logger      *zap.Logger
}

// New создает новый middleware
func New(logger *zap.Logger) *Middleware {
	// Rate limiter: 20 запросов в минуту на пользователя
	rateLimiter := NewRateLimiter(20, 60*time.Second, logger)

	// Debouncer: 1 секунда между одинаковыми командами
	debouncer := NewDebouncer(1*time.Second, logger)

	return &Middleware{
		rateLimiter: rateLimiter,
		debouncer:   debouncer,
		logger:      logger,
	}
}

// Process обрабатывает обновление через rate limiting
func (m *Middleware) Process(update tgbotapi.Update) bool {
	if update.Message != nil {
		userID := update.Message.From.ID
		if !m.rateLimiter.Allow(userID) {
			m.logger.Warn("Rate limit exceeded", zap.Int64("user_id", userID))
			return false
		}
	}

	return true
}

// ProcessWithMiddleware применяет все middleware к обновлению
func (m *Middleware) ProcessWithMiddleware(update tgbotapi.Update, handler func(tgbotapi.Update)) {
	middlewareChain := func(update tgbotapi.Update) {
		RecoveryMiddlewareWithUpdate(m.logger)(update, func(update tgbotapi.Update) {
			LoggingMiddleware(m.logger)(update, func(update tgbotapi.Update) {
				DebounceMiddleware(m.debouncer, m.logger)(update, func(update tgbotapi.Update) {
					DebounceCallbackMiddleware(m.debouncer, m.logger)(update, func(update tgbotapi.Update) {
						if m.Process(update) {
							handler(update)
						}
					})
				})
			})
		})
	}

	middlewareChain(update)
}

// Cleanup очищает устаревшие записи в middleware
func (m *Middleware) Cleanup() {
	m.rateLimiter.Cleanup()
	m.debouncer.Cleanup()
}
