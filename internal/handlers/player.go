// Package handlers содержит обработчики команд воспроизведения.
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"groovebot/internal/model"
	"groovebot/internal/voting"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Play обрабатывает команду /play
func (h *Handlers) Play(message *tgbotapi.Message) {
	query := strings.TrimSpace(message.CommandArguments())
	if query == "" {
		h.sendMessage(message.Chat.ID, "Использование: /play название трека\nПример: /play Queen Bohemian Rhapsody")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	tracks, err := h.services.Spotify.Search(ctx, query, 1)
	if err != nil {
		h.logger.Error("Failed to search track", zap.String("query", query), zap.Error(err))
		h.sendMessage(message.Chat.ID, "❌ Ошибка поиска. Попробуйте позже.")
		return
	}
	if len(tracks) == 0 {
		h.sendMessageWithReply(message.Chat.ID, fmt.Sprintf("Ничего не найдено по запросу «%s».", query), message.MessageID)
		return
	}

	h.playTrack(ctx, message.Chat.ID, message.From.ID, tracks[0])
}

// playTrack подключает бота к голосовому чату и запускает трек
func (h *Handlers) playTrack(ctx context.Context, chatID, userID int64, track *model.Track) {
	if err := h.services.Playback.Join(ctx, chatID, userID); err != nil {
		h.logger.Error("Failed to join voice chat", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendMessage(chatID, errorText(err))
		return
	}

	result, err := h.services.Playback.Play(ctx, chatID, track, userID)
	if err != nil {
		h.logger.Error("Failed to play track", zap.Int64("chat_id", chatID), zap.String("track_id", track.ID), zap.Error(err))
		h.sendMessage(chatID, errorText(err))
		return
	}

	if result.Queued {
		h.sendMessage(chatID, fmt.Sprintf("➕ Добавлено в очередь под номером %d: %s", result.Position, formatTrack(result.Track)))
		return
	}
	h.sendMessageWithMarkup(chatID, "▶️ Сейчас играет: "+formatTrack(result.Track), controlsKeyboard())
}

// Search обрабатывает команду /search
func (h *Handlers) Search(message *tgbotapi.Message) {
	query := strings.TrimSpace(message.CommandArguments())
	if query == "" {
		h.sendMessage(message.Chat.ID, "Использование: /search название трека")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	tracks, err := h.services.Spotify.Search(ctx, query, 5)
	if err != nil {
		h.logger.Error("Failed to search tracks", zap.String("query", query), zap.Error(err))
		h.sendMessage(message.Chat.ID, "❌ Ошибка поиска. Попробуйте позже.")
		return
	}
	if len(tracks) == 0 {
		h.sendMessageWithReply(message.Chat.ID, fmt.Sprintf("Ничего не найдено по запросу «%s».", query), message.MessageID)
		return
	}

	h.sendMessageWithMarkup(message.Chat.ID, "🔍 Выберите трек:", searchKeyboard(tracks))
}

// Pause обрабатывает команду /pause
func (h *Handlers) Pause(message *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := h.services.Playback.Pause(ctx, message.Chat.ID); err != nil {
		h.sendMessage(message.Chat.ID, errorText(err))
		return
	}
	h.sendMessage(message.Chat.ID, "⏸ Воспроизведение приостановлено.")
}

// Resume обрабатывает команду /resume
func (h *Handlers) Resume(message *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := h.services.Playback.Resume(ctx, message.Chat.ID); err != nil {
		h.sendMessage(message.Chat.ID, errorText(err))
		return
	}
	h.sendMessage(message.Chat.ID, "▶️ Воспроизведение возобновлено.")
}

// Skip обрабатывает команду /skip
func (h *Handlers) Skip(message *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	next, err := h.services.Playback.Skip(ctx, message.Chat.ID)
	if err != nil {
		h.sendMessage(message.Chat.ID, errorText(err))
		return
	}
	h.sendMessageWithMarkup(message.Chat.ID, "⏭ Пропущено. Сейчас играет: "+formatTrack(next), controlsKeyboard())
}

// Volume обрабатывает команду /volume
func (h *Handlers) Volume(message *tgbotapi.Message) {
	args := strings.Fields(message.CommandArguments())
	if len(args) == 0 {
		if snapshot, ok := h.services.Playback.SessionInfo(message.Chat.ID); ok {
			h.sendMessage(message.Chat.ID, fmt.Sprintf("🔊 Текущая громкость: %d", snapshot.Volume))
		} else {
			h.sendMessage(message.Chat.ID, "Использование: /volume 0-200")
		}
		return
	}

	volume, err := strconv.Atoi(args[0])
	if err != nil {
		h.sendMessage(message.Chat.ID, "❌ Громкость должна быть числом от 0 до 200.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := h.services.Playback.SetVolume(ctx, message.Chat.ID, volume); err != nil {
		h.sendMessage(message.Chat.ID, errorText(err))
		return
	}
	h.sendMessage(message.Chat.ID, fmt.Sprintf("🔊 Громкость установлена: %d", volume))
}

// Stop обрабатывает команду /stop
func (h *Handlers) Stop(message *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := h.services.Playback.Leave(ctx, message.Chat.ID); err != nil {
		h.sendMessage(message.Chat.ID, errorText(err))
		return
	}
	h.services.Voting.Cancel(message.Chat.ID)
	h.sendMessage(message.Chat.ID, "⏹ Воспроизведение остановлено, бот покинул голосовой чат.")
}

// VoteSkip обрабатывает команду /voteskip
func (h *Handlers) VoteSkip(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := message.From.ID

	snapshot, ok := h.services.Playback.SessionInfo(chatID)
	if !ok || snapshot.Current == nil {
		h.sendMessage(chatID, "Сейчас ничего не играет.")
		return
	}

	// Если голосование уже идет, учитываем голос
	if session, active := h.services.Voting.Active(chatID); active && session.Kind == voting.KindSkip {
		votes, needed, passed, err := h.services.Voting.Vote(chatID, voting.KindSkip, userID)
		if err != nil {
			h.sendMessageWithReply(chatID, "Вы уже проголосовали.", message.MessageID)
			return
		}
		if passed {
			h.sendMessage(chatID, "✅ Голосование прошло, трек пропускается.")
			return
		}
		h.sendMessage(chatID, fmt.Sprintf("🗳 Голосов за пропуск: %d из %d.", votes, needed))
		return
	}

	session, err := h.services.Voting.StartVote(chatID, voting.KindSkip, snapshot.Current.ID, userID)
	if err != nil {
		h.logger.Warn("Failed to start vote", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendMessage(chatID, "❌ Не удалось начать голосование: другое голосование уже идет.")
		return
	}

	if _, active := h.services.Voting.Active(chatID); !active {
		// Единственный активный пользователь: голос создателя сразу решает
		h.sendMessage(chatID, "✅ Голосование прошло, трек пропускается.")
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("🗳 Начато голосование за пропуск «%s». Голосуйте командой /voteskip (голосов: %d).",
		snapshot.Current.Title, session.VoteCount()))
}
