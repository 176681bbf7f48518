// Package handlers содержит информационные команды.
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"groovebot/internal/gateway/lyrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Размер одной страницы текста песни (лимит Telegram — 4096 символов)
const lyricsPageSize = 3500

// Start обрабатывает команду /start
func (h *Handlers) Start(message *tgbotapi.Message) {
	text := "Привет! Я музыкальный бот: ищу треки и проигрываю их в голосовом чате.\n" +
		"Начните с /play название трека. Полный список команд — /help."
	h.sendMessage(message.Chat.ID, text)
}

// Help обрабатывает команду /help
func (h *Handlers) Help(message *tgbotapi.Message) {
	text := "Доступные команды:\n" +
		"\n/play [запрос] - Найти трек и проиграть или добавить в очередь\n" +
		"/search [запрос] - Показать несколько результатов поиска\n" +
		"/pause - Приостановить воспроизведение\n" +
		"/resume - Возобновить воспроизведение\n" +
		"/skip - Пропустить текущий трек\n" +
		"/voteskip - Голосовать за пропуск трека\n" +
		"/stop - Остановить и покинуть голосовой чат\n" +
		"/volume [0-200] - Показать или установить громкость\n" +
		"/queue - Показать очередь\n" +
		"/current - Показать текущий трек\n" +
		"/history - Недавно игравшие треки\n" +
		"/lyrics - Текст текущего трека\n" +
		"/stats - Статистика воспроизведений чата\n" +
		"/ping - Проверить, что бот жив"
	h.sendMessage(message.Chat.ID, text)
}

// Queue обрабатывает команду /queue
func (h *Handlers) Queue(message *tgbotapi.Message) {
	tracks := h.services.Playback.Queue(message.Chat.ID)
	h.sendMessage(message.Chat.ID, formatQueue(tracks))
}

// Current обрабатывает команду /current
func (h *Handlers) Current(message *tgbotapi.Message) {
	snapshot, ok := h.services.Playback.SessionInfo(message.Chat.ID)
	if !ok {
		h.sendMessage(message.Chat.ID, "Бот не в голосовом чате.")
		return
	}
	h.sendMessageWithMarkup(message.Chat.ID, formatNowPlaying(snapshot), controlsKeyboard())
}

// History обрабатывает команду /history
func (h *Handlers) History(message *tgbotapi.Message) {
	tracks := h.services.Playback.History(message.Chat.ID)
	h.sendMessage(message.Chat.ID, formatHistory(tracks))
}

// Lyrics обрабатывает команду /lyrics
func (h *Handlers) Lyrics(message *tgbotapi.Message) {
	snapshot, ok := h.services.Playback.SessionInfo(message.Chat.ID)
	if !ok || snapshot.Current == nil {
		h.sendMessage(message.Chat.ID, "Сейчас ничего не играет.")
		return
	}

	track := snapshot.Current
	text, err := h.services.Lyrics.Fetch(track.Title, track.Artists)
	if err != nil {
		h.logger.Warn("Failed to fetch lyrics",
			zap.String("title", track.Title),
			zap.String("artists", track.Artists),
			zap.Error(err))
		h.sendMessageWithReply(message.Chat.ID, fmt.Sprintf("Текст для «%s» не найден.", track.Title), message.MessageID)
		return
	}

	pages := lyrics.Pages(text, lyricsPageSize)
	header := fmt.Sprintf("🎤 %s — %s\n\n", track.Artists, track.Title)
	for i := range pages {
		pages[i] = header + pages[i]
	}
	h.storeLyricsPages(message.Chat.ID, pages)

	if len(pages) == 1 {
		h.sendMessage(message.Chat.ID, pages[0])
		return
	}
	h.sendMessageWithMarkup(message.Chat.ID, pages[0], lyricsKeyboard(0, len(pages)))
}

// Stats обрабатывает команду /stats
func (h *Handlers) Stats(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	total, err := h.services.History.CountByChat(chatID)
	if err != nil {
		h.logger.Error("Failed to count plays", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendMessage(chatID, "❌ Ошибка при получении статистики. Попробуйте позже.")
		return
	}

	top, err := h.services.History.TopTracks(chatID, 10)
	if err != nil {
		h.logger.Error("Failed to get top tracks", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendMessage(chatID, "❌ Ошибка при получении статистики. Попробуйте позже.")
		return
	}

	h.sendMessage(chatID, formatTopTracks(top, total))
}

// Ping обрабатывает команду /ping
func (h *Handlers) Ping(message *tgbotapi.Message) {
	uptime := time.Since(h.startedAt).Round(time.Second)
	h.sendMessageWithReply(message.Chat.ID,
		fmt.Sprintf("🏓 Понг! Аптайм: %s, активных сессий: %d.", uptime, h.services.Playback.ActiveSessions()),
		message.MessageID)
}

// Unknown обрабатывает неизвестные команды
func (h *Handlers) Unknown(message *tgbotapi.Message) {
	h.sendMessage(message.Chat.ID, "Неизвестная команда. Используйте /help для получения справки.")
}

// CallbackQuery обрабатывает callback query
func (h *Handlers) CallbackQuery(query *tgbotapi.CallbackQuery) {
	data := query.Data
	chatID := query.Message.Chat.ID

	switch {
	case strings.HasPrefix(data, "track_"):
		h.handleTrackCallback(query)
	case strings.HasPrefix(data, "ctl_"):
		h.handleControlCallback(query)
	case strings.HasPrefix(data, "lyr_"):
		h.handleLyricsCallback(query)
	default:
		h.logger.Warn("Unknown callback query", zap.String("data", data), zap.Int64("chat_id", chatID))
		h.answerCallback(query.ID, "")
	}
}

// handleTrackCallback обрабатывает выбор трека из результатов поиска
func (h *Handlers) handleTrackCallback(query *tgbotapi.CallbackQuery) {
	trackID := strings.TrimPrefix(query.Data, "track_")
	chatID := query.Message.Chat.ID

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	track, err := h.services.Spotify.GetTrack(ctx, trackID)
	if err != nil {
		h.logger.Error("Failed to get track", zap.String("track_id", trackID), zap.Error(err))
		h.answerCallback(query.ID, "Ошибка при получении трека")
		return
	}

	h.answerCallback(query.ID, "")
	h.playTrack(ctx, chatID, query.From.ID, track)
}

// handleControlCallback обрабатывает кнопки управления воспроизведением
func (h *Handlers) handleControlCallback(query *tgbotapi.CallbackQuery) {
	control := strings.TrimPrefix(query.Data, "ctl_")
	chatID := query.Message.Chat.ID

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch control {
	case "pause":
		if err := h.services.Playback.Pause(ctx, chatID); err != nil {
			h.answerCallback(query.ID, errorText(err))
			return
		}
		h.answerCallback(query.ID, "Пауза")
	case "resume":
		if err := h.services.Playback.Resume(ctx, chatID); err != nil {
			h.answerCallback(query.ID, errorText(err))
			return
		}
		h.answerCallback(query.ID, "Играем дальше")
	case "skip":
		next, err := h.services.Playback.Skip(ctx, chatID)
		if err != nil {
			h.answerCallback(query.ID, errorText(err))
			return
		}
		h.answerCallback(query.ID, "Пропущено")
		h.sendMessage(chatID, "⏭ Сейчас играет: "+formatTrack(next))
	case "queue":
		h.answerCallback(query.ID, "")
		h.sendMessage(chatID, formatQueue(h.services.Playback.Queue(chatID)))
	default:
		h.answerCallback(query.ID, "")
	}
}

// handleLyricsCallback обрабатывает пагинацию текста песни
func (h *Handlers) handleLyricsCallback(query *tgbotapi.CallbackQuery) {
	data := strings.TrimPrefix(query.Data, "lyr_")
	chatID := query.Message.Chat.ID

	if data == "noop" {
		h.answerCallback(query.ID, "")
		return
	}

	page, err := strconv.Atoi(data)
	if err != nil {
		h.answerCallback(query.ID, "")
		return
	}

	text, total, ok := h.lyricsPage(chatID, page)
	if !ok {
		h.answerCallback(query.ID, "Страница недоступна, запросите /lyrics заново")
		return
	}

	h.answerCallback(query.ID, "")
	if err := h.botAPI.EditMessageText(chatID, query.Message.MessageID, text); err != nil {
		return
	}
	if err := h.botAPI.EditMessageReplyMarkup(chatID, query.Message.MessageID, lyricsKeyboard(page, total)); err != nil {
		h.logger.Error("Failed to update lyrics keyboard", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// answerCallback отвечает на callback query
func (h *Handlers) answerCallback(callbackID, text string) {
	if err := h.botAPI.AnswerCallbackQuery(callbackID, text); err != nil {
		h.logger.Error("Failed to answer callback query", zap.Error(err))
	}
}
