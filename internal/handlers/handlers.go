// Package handlers содержит обработчики команд бота.
package handlers

import (
	"errors"
	"sync"
	"time"

	"groovebot/internal/gateway/telegram"
	"groovebot/internal/playback"
	"groovebot/internal/service"

	"go.uber.org/zap"
)

// Таймаут на обработку одной команды
const commandTimeout = 30 * time.Second

// Handlers содержит все обработчики команд
type Handlers struct {
	services *service.Services
	botAPI   telegram.BotAPI
	logger   *zap.Logger

	startedAt time.Time

	// Страницы текста песни последнего запроса /lyrics по чатам
	mu          sync.Mutex
	lyricsPages map[int64][]string
}

// New создает новый экземпляр обработчиков
func New(services *service.Services, botAPI telegram.BotAPI, logger *zap.Logger) *Handlers {
	return &Handlers{
		services:    services,
		botAPI:      botAPI,
		logger:      logger,
		startedAt:   time.Now(),
		lyricsPages: make(map[int64][]string),
	}
}

// errorText переводит ошибку воспроизведения в сообщение пользователю
func errorText(err error) string {
	switch {
	case errors.Is(err, playback.ErrQueueFull):
		return "❌ Очередь заполнена, попробуйте позже."
	case errors.Is(err, playback.ErrNoMoreTracks):
		return "Очередь пуста, воспроизведение остановлено."
	case errors.Is(err, playback.ErrInvalidIndex):
		return "❌ Неверный номер трека в очереди."
	case errors.Is(err, playback.ErrInvalidVolume):
		return "❌ Громкость должна быть от 0 до 200."
	case errors.Is(err, playback.ErrNotInCall):
		return "❌ Бот не в голосовом чате. Используйте /play."
	case errors.Is(err, playback.ErrAlreadyInCall):
		return "Бот уже в голосовом чате."
	case errors.Is(err, playback.ErrJoinFailed):
		return "❌ Не удалось подключиться к голосовому чату."
	case errors.Is(err, playback.ErrDownloadUnavailable):
		return "❌ Трек недоступен для проигрывания."
	default:
		return "❌ Произошла ошибка. Попробуйте позже."
	}
}

// sendMessage отправляет сообщение
func (h *Handlers) sendMessage(chatID int64, text string) {
	if err := h.botAPI.SendMessage(chatID, text); err != nil {
		h.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// sendMessageWithMarkup отправляет сообщение с клавиатурой
func (h *Handlers) sendMessageWithMarkup(chatID int64, text string, markup any) {
	if err := h.botAPI.SendMessageWithMarkup(chatID, text, markup); err != nil {
		h.logger.Error("Failed to send message with markup", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// sendMessageWithReply отправляет сообщение с reply
func (h *Handlers) sendMessageWithReply(chatID int64, text string, replyToMessageID int) {
	if err := h.botAPI.SendMessageWithReply(chatID, text, replyToMessageID); err != nil {
		h.logger.Error("Failed to send message with reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// storeLyricsPages запоминает страницы текста песни для чата
func (h *Handlers) storeLyricsPages(chatID int64, pages []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lyricsPages[chatID] = pages
}

// lyricsPage возвращает страницу текста песни чата
func (h *Handlers) lyricsPage(chatID int64, page int) (string, int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pages, ok := h.lyricsPages[chatID]
	if !ok || page < 0 || page >= len(pages) {
		return "", 0, false
	}
	return pages[page], len(pages), true
}
