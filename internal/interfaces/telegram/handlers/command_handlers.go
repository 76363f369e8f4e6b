package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"wordmaster/internal/application/usecases"
	"wordmaster/internal/domain/book"
	"wordmaster/internal/interfaces/telegram/handlers/shared"
	"wordmaster/internal/pkg/markdown"
)

const noActiveBookText = "📚 No book selected yet. Pick one with /books."

// handleStart processes the /start command
func (h *BotHandler) handleStart(ctx context.Context, update tgbotapi.Update) error {
	welcomeText := "📚 *Welcome to Wordmaster!*\n\n" +
		"I'll help you build your vocabulary with spaced repetition (SM-2).\n\n" +
		"Choose an option below to get started:"

	_, err := h.bot.SendMessageWithKeyboard(h.chatID, welcomeText, shared.CreateMainMenuKeyboard())
	return err
}

// handleHelp processes the /help command
func (h *BotHandler) handleHelp(ctx context.Context, update tgbotapi.Update) error {
	return h.bot.SendMessageWithMarkdown(h.chatID, shared.GetHelpText())
}

// handleLearn processes the /learn command
func (h *BotHandler) handleLearn(ctx context.Context, update tgbotapi.Update) error {
	return h.startSession(ctx, usecases.SessionTypeNewWords)
}

// handleReview processes the /review command
func (h *BotHandler) handleReview(ctx context.Context, update tgbotapi.Update) error {
	return h.startSession(ctx, usecases.SessionTypeReview)
}

// handleStats processes the /stats command
func (h *BotHandler) handleStats(ctx context.Context, update tgbotapi.Update) error {
	active, err := h.books.ActiveBook(ctx)
	if errors.Is(err, usecases.ErrNoActiveBook) {
		h.send(noActiveBookText)
		return nil
	}
	if err != nil {
		return h.fail(err, "Sorry, there was an error getting your statistics.")
	}

	_, stats, err := h.books.BookStats(ctx, active.ID())
	if err != nil {
		return h.fail(err, "Sorry, there was an error getting your statistics.")
	}

	today, err := h.study.TodayStats(ctx, active.ID())
	if err != nil {
		return h.fail(err, "Sorry, there was an error getting your statistics.")
	}

	text := shared.FormatStatsText(active, stats, today) + "\n\n" + shared.FormatReminderStats(h.reminders.GetReminderStats())
	_, err = h.bot.SendMessageWithKeyboard(h.chatID, text, shared.CreateSessionEndKeyboard())
	return err
}

// handleBooks processes the /books command
func (h *BotHandler) handleBooks(ctx context.Context, update tgbotapi.Update) error {
	books, err := h.books.ListBooks(ctx)
	if err != nil {
		return h.fail(err, "Sorry, there was an error listing the books.")
	}

	_, err = h.bot.SendMessageWithKeyboard(h.chatID, shared.FormatBookList(books), shared.CreateBooksKeyboard(books))
	return err
}

// handleUse processes the /use <id> command
func (h *BotHandler) handleUse(ctx context.Context, update tgbotapi.Update) error {
	id := strings.TrimSpace(update.Message.CommandArguments())
	if id == "" {
		h.send("Usage: /use <book id>. See /books for the ids.")
		return nil
	}
	return h.activateBook(ctx, book.ID(id))
}

// handleUseCallback processes the "use_<id>" buttons of /books
func (h *BotHandler) handleUseCallback(ctx context.Context, update tgbotapi.Update) error {
	return h.activateBook(ctx, book.ID(strings.TrimPrefix(update.CallbackQuery.Data, "use_")))
}

func (h *BotHandler) activateBook(ctx context.Context, id book.ID) error {
	if err := h.books.ActivateBook(ctx, id); err != nil {
		if errors.Is(err, book.ErrNotFound) {
			h.send(fmt.Sprintf("Unknown book `%s`. See /books.", id))
			return nil
		}
		return h.fail(err, "Sorry, there was an error switching books.")
	}

	b, err := h.books.GetBook(ctx, id)
	if err != nil {
		return err
	}

	// A session from the previous book no longer matches the active one.
	h.active = nil

	h.log.Info("active book changed", zap.String("book_id", string(id)))
	h.send(fmt.Sprintf("📌 Now studying *%s* (%d words). Use /learn to start.", markdown.Escape(b.Name()), b.WordCount()))
	return nil
}

// handleReminders processes the /reminders command
func (h *BotHandler) handleReminders(ctx context.Context, update tgbotapi.Update) error {
	enabled, err := h.settings.ToggleReminders(ctx)
	if err != nil {
		return h.fail(err, "Sorry, there was an error updating your settings. Please try again.")
	}

	if enabled {
		h.send("⏰ Reminders are now *on*.")
	} else {
		h.send("🔕 Reminders are now *off*.")
	}
	return nil
}
