package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleMenuSelection processes menu button selections
func (h *BotHandler) handleMenuSelection(ctx context.Context, update tgbotapi.Update) error {
	selection := update.CallbackQuery.Data
	h.log.Debug("menu selection", zap.String("selection", selection))

	switch selection {
	case "menu_learn":
		return h.handleLearn(ctx, update)
	case "menu_review":
		return h.handleReview(ctx, update)
	case "menu_stats":
		return h.handleStats(ctx, update)
	case "menu_books":
		return h.handleBooks(ctx, update)
	case "menu_help":
		return h.handleHelp(ctx, update)
	case "menu_settings":
		return h.handleSettings(ctx, update)
	default:
		h.log.Warn("unknown menu selection", zap.String("selection", selection))
		return nil
	}
}
