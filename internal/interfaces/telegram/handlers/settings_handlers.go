package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"wordmaster/internal/application/usecases"
	"wordmaster/internal/domain/settings"
)

// handleSettings shows the settings; from a button it edits the message in place
func (h *BotHandler) handleSettings(ctx context.Context, update tgbotapi.Update) error {
	prefs, err := h.settings.GetPreferences(ctx)
	if err != nil {
		return h.fail(err, "Sorry, there was an error loading your settings. Please try again.")
	}

	text, keyboard := settingsView(prefs)
	if cb := update.CallbackQuery; cb != nil && cb.Data != "menu_settings" {
		return h.bot.EditMessageWithKeyboard(h.chatID, cb.Message.MessageID, text, keyboard)
	}

	_, err = h.bot.SendMessageWithKeyboard(h.chatID, text, keyboard)
	return err
}

func settingsView(prefs *settings.Preferences) (string, tgbotapi.InlineKeyboardMarkup) {
	newWords := prefs.NewWordsPerSession()
	reviewWords := prefs.ReviewWordsPerSession()

	text := fmt.Sprintf(
		"⚙️ *Settings*\n\n"+
			"🆕 New words per session: *%d*\n"+
			"🔁 Reviews per session: *%d*\n"+
			"⏰ Reminders: %s\n\n"+
			"_Use the buttons below to adjust settings:_",
		newWords, reviewWords, getToggleEmoji(prefs.RemindersEnabled()))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖ 5", "set_new_-5"),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🆕 %d", newWords), "noop"),
			tgbotapi.NewInlineKeyboardButtonData("➕ 5", "set_new_5"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖ 10", "set_review_-10"),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🔁 %d", reviewWords), "noop"),
			tgbotapi.NewInlineKeyboardButtonData("➕ 10", "set_review_10"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("⏰ Reminders %s", getToggleEmoji(prefs.RemindersEnabled())), "toggle_reminders"),
		),
	)

	return text, keyboard
}

// handleToggle handles the "toggle_reminders" button
func (h *BotHandler) handleToggle(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery.Data != "toggle_reminders" {
		h.log.Warn("unknown toggle", zap.String("data", update.CallbackQuery.Data))
		return nil
	}

	if _, err := h.settings.ToggleReminders(ctx); err != nil {
		return h.fail(err, "Sorry, there was an error updating your settings. Please try again.")
	}

	return h.handleSettings(ctx, update)
}

// handleAdjustSessionSize handles "set_new_<delta>" and "set_review_<delta>"
func (h *BotHandler) handleAdjustSessionSize(ctx context.Context, update tgbotapi.Update) error {
	parts := strings.Split(update.CallbackQuery.Data, "_")
	if len(parts) != 3 {
		h.log.Warn("invalid settings callback", zap.String("data", update.CallbackQuery.Data))
		return nil
	}

	delta, err := strconv.Atoi(parts[2])
	if err != nil {
		h.log.Warn("invalid settings delta", zap.String("data", update.CallbackQuery.Data))
		return nil
	}

	prefs, err := h.settings.GetPreferences(ctx)
	if err != nil {
		return h.fail(err, "Sorry, there was an error loading your settings. Please try again.")
	}

	switch parts[1] {
	case "new":
		err = h.settings.SetNewWordsPerSession(ctx, clampSessionSize(prefs.NewWordsPerSession()+delta))
	case "review":
		err = h.settings.SetReviewWordsPerSession(ctx, clampSessionSize(prefs.ReviewWordsPerSession()+delta))
	default:
		h.log.Warn("unknown session size", zap.String("data", update.CallbackQuery.Data))
		return nil
	}
	if err != nil {
		return h.fail(err, "Sorry, there was an error updating your settings. Please try again.")
	}

	return h.handleSettings(ctx, update)
}

func clampSessionSize(n int) int {
	return min(max(n, usecases.MinWordsPerSession), usecases.MaxWordsPerSession)
}
