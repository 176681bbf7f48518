// Package handlers содержит регистрацию команд бота.
package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// RegisterBotCommands возвращает список команд для меню бота
func (h *Handlers) RegisterBotCommands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "play", Description: "Найти трек и проиграть"},
		{Command: "search", Description: "Показать результаты поиска"},
		{Command: "pause", Description: "Приостановить воспроизведение"},
		{Command: "resume", Description: "Возобновить воспроизведение"},
		{Command: "skip", Description: "Пропустить текущий трек"},
		{Command: "voteskip", Description: "Голосовать за пропуск"},
		{Command: "stop", Description: "Остановить и выйти из чата"},
		{Command: "volume", Description: "Громкость (0-200)"},
		{Command: "queue", Description: "Показать очередь"},
		{Command: "current", Description: "Текущий трек"},
		{Command: "history", Description: "Недавно игравшие треки"},
		{Command: "lyrics", Description: "Текст текущего трека"},
		{Command: "stats", Description: "Статистика чата"},
		{Command: "help", Description: "Справка"},
	}
}
