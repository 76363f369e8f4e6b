package handlers

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"wordmaster/internal/application/usecases"
	"wordmaster/internal/interfaces/telegram"
)

// Messenger is the part of the Telegram bot the handlers talk through
type Messenger interface {
	SendMessage(chatID int64, text string) error
	SendMessageWithMarkdown(chatID int64, text string) error
	SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (int, error)
	EditMessage(chatID int64, messageID int, text string) error
	EditMessageWithKeyboard(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) error
	AnswerCallbackQuery(callbackID string, text string) error
}

// activeSession is the study session in progress and the message showing its current word
type activeSession struct {
	session   *usecases.Session
	messageID int
	shownAt   time.Time
}

// BotHandler handles Telegram bot interactions for a single learner chat.
// Updates are handled one at a time.
type BotHandler struct {
	bot        Messenger
	chatID     int64
	books      *usecases.BookUseCase
	study      *usecases.StudyUseCase
	settings   *usecases.SettingsUseCase
	reminders  *usecases.ReminderUseCase
	clock      clockwork.Clock
	log        *zap.Logger
	dispatcher telegram.Dispatcher

	active *activeSession
}

// NewBotHandler creates a new bot handler
func NewBotHandler(
	bot Messenger,
	chatID int64,
	books *usecases.BookUseCase,
	study *usecases.StudyUseCase,
	settings *usecases.SettingsUseCase,
	reminders *usecases.ReminderUseCase,
	clock clockwork.Clock,
	log *zap.Logger,
) *BotHandler {
	h := &BotHandler{
		bot:        bot,
		chatID:     chatID,
		books:      books,
		study:      study,
		settings:   settings,
		reminders:  reminders,
		clock:      clock,
		log:        log,
		dispatcher: telegram.NewDispatcher(),
	}
	h.registerRoutes()
	return h
}

func (h *BotHandler) registerRoutes() {
	d := h.dispatcher

	d.RegisterHandler("start", h.handleStart)
	d.RegisterHandler("menu", h.handleStart)
	d.RegisterHandler("help", h.handleHelp)
	d.RegisterHandler("learn", h.handleLearn)
	d.RegisterHandler("review", h.handleReview)
	d.RegisterHandler("stats", h.handleStats)
	d.RegisterHandler("books", h.handleBooks)
	d.RegisterHandler("use", h.handleUse)
	d.RegisterHandler("settings", h.handleSettings)
	d.RegisterHandler("reminders", h.handleReminders)

	d.RegisterCallback("answer", h.handleAnswer)
	d.RegisterCallback("end", h.handleEndSession)
	d.RegisterCallback("menu", h.handleMenuSelection)
	d.RegisterCallback("use", h.handleUseCallback)
	d.RegisterCallback("toggle", h.handleToggle)
	d.RegisterCallback("set", h.handleAdjustSessionSize)
}

// Start handles updates until ctx is done or updates is closed
func (h *BotHandler) Start(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	h.log.Info("bot started, waiting for updates", zap.Int64("chat_id", h.chatID))

	for {
		select {
		case <-ctx.Done():
			h.log.Info("bot stopping")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate processes one incoming update
func (h *BotHandler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	chatID, ok := updateChatID(update)
	if !ok {
		return
	}
	if chatID != h.chatID {
		h.log.Warn("ignoring update from unknown chat", zap.Int64("chat_id", chatID))
		return
	}

	if cb := update.CallbackQuery; cb != nil {
		// Answer the callback to remove loading state
		if err := h.bot.AnswerCallbackQuery(cb.ID, ""); err != nil {
			h.log.Warn("failed to answer callback query", zap.Error(err))
		}
		if cb.Data == "noop" {
			return
		}
	}

	err := h.dispatcher.Dispatch(ctx, update)
	switch {
	case errors.Is(err, telegram.ErrNoHandler):
		if update.Message != nil {
			h.send("Use /help to see what I can do.")
		} else {
			h.log.Warn("unknown callback", zap.String("data", update.CallbackQuery.Data))
		}
	case err != nil:
		h.log.Error("failed to handle update", zap.Int("update_id", update.UpdateID), zap.Error(err))
	}
}

func updateChatID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	default:
		return 0, false
	}
}

// send sends a markdown message to the learner, logging failures
func (h *BotHandler) send(text string) {
	if err := h.bot.SendMessageWithMarkdown(h.chatID, text); err != nil {
		h.log.Error("failed to send message", zap.Error(err))
	}
}

// fail logs err and tells the learner something went wrong
func (h *BotHandler) fail(err error, text string) error {
	h.send(text)
	return err
}

// getToggleEmoji returns the appropriate emoji for a toggle state
func getToggleEmoji(enabled bool) string {
	if enabled {
		return "✅"
	}
	return "❌"
}
