package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot wraps the Telegram bot API
type Bot struct {
	api *tgbotapi.BotAPI
	log *zap.Logger
}

// NewBot creates a new Telegram bot
func NewBot(token string, debug bool, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	api.Debug = debug
	log.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	return &Bot{api: api, log: log}, nil
}

// GetUpdatesChan returns a channel for receiving updates
func (b *Bot) GetUpdatesChan() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	return b.api.GetUpdatesChan(u)
}

// StopReceivingUpdates closes the updates channel
func (b *Bot) StopReceivingUpdates() {
	b.api.StopReceivingUpdates()
}

// SendMessage sends a text message
func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}

// SendMessageWithMarkdown sends a message with markdown formatting
func (b *Bot) SendMessageWithMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(msg)
	return err
}

// SendMessageWithKeyboard sends a message with inline keyboard and returns its id
func (b *Bot) SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// EditMessage edits an existing message
func (b *Bot) EditMessage(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(edit)
	return err
}

// EditMessageWithKeyboard edits an existing message and adds a keyboard
func (b *Bot) EditMessageWithKeyboard(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = &keyboard
	_, err := b.api.Send(edit)
	return err
}

// AnswerCallbackQuery answers a callback query
func (b *Bot) AnswerCallbackQuery(callbackID string, text string) error {
	callback := tgbotapi.NewCallback(callbackID, text)
	_, err := b.api.Request(callback)
	return err
}

// SetupCommands configures the bot commands with BotFather
func (b *Bot) SetupCommands() error {
	setCommands := tgbotapi.NewSetMyCommands(Commands()...)
	if _, err := b.api.Request(setCommands); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}

	b.log.Info("bot commands configured")
	return nil
}

// Commands lists the commands shown in the Telegram menu
func Commands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "🏠 Welcome message and main menu"},
		{Command: "learn", Description: "🆕 Learn new words"},
		{Command: "review", Description: "🔁 Review due words"},
		{Command: "stats", Description: "📊 View your progress"},
		{Command: "books", Description: "📚 List word books"},
		{Command: "use", Description: "📌 Switch to a book: /use <id>"},
		{Command: "reminders", Description: "⏰ Turn reminders on or off"},
		{Command: "help", Description: "❓ Get help and instructions"},
	}
}
