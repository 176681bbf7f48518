package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// BotAPI определяет интерфейс для отправки сообщений в Telegram
type BotAPI interface {
	SendMessage(chatID int64, text string) error
	SendMessageWithMarkup(chatID int64, text string, markup any) error
	SendMessageWithReply(chatID int64, text string, replyToMessageID int) error
	EditMessageText(chatID int64, messageID int, text string) error
	EditMessageReplyMarkup(chatID int64, messageID int, markup any) error
	AnswerCallbackQuery(callbackID string, text string) error
}

// TelegramBotAPI оборачивает tgbotapi.BotAPI и реализует интерфейс BotAPI
type TelegramBotAPI struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

var _ BotAPI = (*TelegramBotAPI)(nil)

// NewTelegramBotAPI создает новую обертку над tgbotapi.BotAPI
func NewTelegramBotAPI(api *tgbotapi.BotAPI, logger *zap.Logger) *TelegramBotAPI {
	return &TelegramBotAPI{
		api:    api,
		logger: logger,
	}
}

// GetAPI возвращает нижележащий tgbotapi.BotAPI
func (t *TelegramBotAPI) GetAPI() *tgbotapi.BotAPI {
	return t.api
}

// SendMessage отправляет текстовое сообщение
func (t *TelegramBotAPI) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	msg.DisableWebPagePreview = true
	_, err := t.api.Send(msg)
	if err != nil {
		t.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return err
}

// SendMessageWithMarkup отправляет сообщение с клавиатурой
func (t *TelegramBotAPI) SendMessageWithMarkup(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	msg.ParseMode = "HTML"
	msg.DisableWebPagePreview = true
	_, err := t.api.Send(msg)
	if err != nil {
		t.logger.Error("Failed to send message with markup", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return err
}

// SendMessageWithReply отправляет сообщение с reply
func (t *TelegramBotAPI) SendMessageWithReply(chatID int64, text string, replyToMessageID int) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyToMessageID
	msg.ParseMode = "HTML"
	msg.DisableWebPagePreview = true
	_, err := t.api.Send(msg)
	if err != nil {
		t.logger.Error("Failed to send message with reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return err
}

// EditMessageText редактирует текст сообщения
func (t *TelegramBotAPI) EditMessageText(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "HTML"
	_, err := t.api.Send(edit)
	if err != nil {
		t.logger.Error("Failed to edit message", zap.Int64("chat_id", chatID), zap.Int("message_id", messageID), zap.Error(err))
	}
	return err
}

// EditMessageReplyMarkup редактирует клавиатуру сообщения
func (t *TelegramBotAPI) EditMessageReplyMarkup(chatID int64, messageID int, markup any) error {
	inlineMarkup, ok := markup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		return fmt.Errorf("markup must be of type tgbotapi.InlineKeyboardMarkup")
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, inlineMarkup)
	_, err := t.api.Send(edit)
	if err != nil {
		t.logger.Error("Failed to edit message reply markup", zap.Int64("chat_id", chatID), zap.Int("message_id", messageID), zap.Error(err))
	}
	return err
}

// AnswerCallbackQuery отвечает на callback query
func (t *TelegramBotAPI) AnswerCallbackQuery(callbackID string, text string) error {
	callback := tgbotapi.NewCallback(callbackID, text)
	_, err := t.api.Request(callback)
	if err != nil {
		t.logger.Error("Failed to answer callback query", zap.Error(err))
	}
	return err
}
