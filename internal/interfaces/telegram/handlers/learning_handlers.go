package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"wordmaster/internal/application/usecases"
	"wordmaster/internal/interfaces/telegram/handlers/shared"
	"wordmaster/internal/pkg/markdown"
)

// startSession starts a session of the given type on the active book.
// A session already in progress is dropped; its answers are already stored.
func (h *BotHandler) startSession(ctx context.Context, sessionType usecases.SessionType) error {
	active, err := h.books.ActiveBook(ctx)
	if errors.Is(err, usecases.ErrNoActiveBook) {
		h.send(noActiveBookText)
		return nil
	}
	if err != nil {
		return h.fail(err, "Sorry, there was an error getting your words. Please try again.")
	}

	prefs, err := h.settings.GetPreferences(ctx)
	if err != nil {
		return h.fail(err, "Sorry, there was an error getting your words. Please try again.")
	}

	maxWords := prefs.NewWordsPerSession()
	if sessionType == usecases.SessionTypeReview {
		maxWords = prefs.ReviewWordsPerSession()
	}

	session, err := h.study.StartSession(ctx, active.ID(), sessionType, maxWords)
	if errors.Is(err, usecases.ErrNothingToStudy) {
		text := fmt.Sprintf("🎉 You've met every word in *%s*! Use /review to keep them fresh.", markdown.Escape(active.Name()))
		if sessionType == usecases.SessionTypeReview {
			text = fmt.Sprintf("🎉 Great job! No words from *%s* are due for review right now. Check back later!", markdown.Escape(active.Name()))
		}
		_, err := h.bot.SendMessageWithKeyboard(h.chatID, text, shared.CreateNoWordsKeyboard())
		return err
	}
	if err != nil {
		return h.fail(err, "Sorry, there was an error getting your words. Please try again.")
	}

	h.active = &activeSession{session: session}
	return h.showCurrentWord(ctx)
}

// showCurrentWord sends the current word of the active session with the answer buttons
func (h *BotHandler) showCurrentWord(ctx context.Context) error {
	s := h.active.session

	word, err := h.study.CurrentWord(ctx, s)
	if err != nil {
		h.active = nil
		return h.fail(err, "Sorry, there was an error displaying the word. Please try again with /learn")
	}

	text := shared.FormatWordPrompt(word, s.CurrentIndex+1, len(s.WordIDs), s.Type)
	messageID, err := h.bot.SendMessageWithKeyboard(h.chatID, text, shared.CreateAnswerKeyboard(s.ID, s.CurrentIndex))
	if err != nil {
		return fmt.Errorf("failed to send word: %w", err)
	}

	h.active.messageID = messageID
	h.active.shownAt = h.clock.Now()
	return nil
}

// handleAnswer processes "answer_known_<session>_<index>" and "answer_unknown_<session>_<index>".
// Presses on a word other than the current one of the active session are ignored.
func (h *BotHandler) handleAnswer(ctx context.Context, update tgbotapi.Update) error {
	data := update.CallbackQuery.Data
	parts := strings.Split(data, "_")
	if len(parts) != 4 || (parts[1] != "known" && parts[1] != "unknown") {
		h.log.Warn("invalid answer callback", zap.String("data", data))
		return nil
	}

	sessionID := parts[2]
	index, err := strconv.Atoi(parts[3])
	if err != nil {
		h.log.Warn("invalid answer index", zap.String("data", data))
		return nil
	}

	if h.active == nil {
		h.send("No active session. Use /learn or /review to start.")
		return nil
	}

	s := h.active.session
	if sessionID != s.ID || index != s.CurrentIndex {
		h.log.Debug("ignoring stale answer",
			zap.String("session_id", sessionID),
			zap.Int("index", index),
			zap.Int("current", s.CurrentIndex),
		)
		return nil
	}

	word, err := h.study.CurrentWord(ctx, s)
	if err != nil {
		return h.fail(err, "❌ Error processing your answer. Please try again.")
	}

	known := parts[1] == "known"
	now := h.clock.Now()
	result := usecases.StudyResult{
		Known:        known,
		ResponseTime: now.Sub(h.active.shownAt),
	}

	state, err := h.study.RecordAndNext(ctx, s, result)
	if err != nil {
		return h.fail(err, "❌ Error saving your answer. Please press the button again.")
	}
	h.reminders.RecordActivity(now)

	if err := h.bot.EditMessage(h.chatID, h.active.messageID, shared.FormatAnswerReveal(word, known, state)); err != nil {
		h.log.Warn("failed to reveal answer", zap.Error(err))
	}

	if s.IsFinished() {
		return h.finishSession(ctx)
	}
	return h.showCurrentWord(ctx)
}

// handleEndSession handles the "end" button
func (h *BotHandler) handleEndSession(ctx context.Context, update tgbotapi.Update) error {
	if h.active == nil {
		h.send("No active session. Use /learn or /review to start.")
		return nil
	}

	if err := h.bot.EditMessage(h.chatID, h.active.messageID, "⏹ Session ended."); err != nil {
		h.log.Warn("failed to close word message", zap.Error(err))
	}

	return h.finishSession(ctx)
}

// finishSession sends the summary of the active session and clears it
func (h *BotHandler) finishSession(ctx context.Context) error {
	s := h.active.session
	h.active = nil

	summary, err := h.study.EndSession(ctx, s)
	if err != nil {
		return h.fail(err, "Your answers are saved, but there was an error preparing the summary.")
	}

	today, err := h.study.TodayStats(ctx, s.BookID)
	if err != nil {
		h.log.Warn("failed to get today stats", zap.Error(err))
		today = nil
	}

	_, err = h.bot.SendMessageWithKeyboard(h.chatID, shared.FormatSessionSummary(summary, today), shared.CreateSessionEndKeyboard())
	return err
}
