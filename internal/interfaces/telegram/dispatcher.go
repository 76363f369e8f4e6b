package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrNoHandler is returned when no handler matches an update
var ErrNoHandler = errors.New("telegram: no handler for update")

// HandlerFunc is a function that handles a Telegram update
type HandlerFunc func(ctx context.Context, update tgbotapi.Update) error

// Dispatcher handles routing of Telegram updates to appropriate handlers
type Dispatcher interface {
	// RegisterHandler registers a handler for a specific command
	RegisterHandler(command string, handler HandlerFunc)
	// RegisterCallback registers a handler for callback data "<prefix>" or "<prefix>_..."
	RegisterCallback(prefix string, handler HandlerFunc)
	// Dispatch dispatches an update to the appropriate handler
	Dispatch(ctx context.Context, update tgbotapi.Update) error
}

// NewDispatcher creates a new dispatcher instance
func NewDispatcher() Dispatcher {
	return &defaultDispatcher{
		handlers:  make(map[string]HandlerFunc),
		callbacks: make(map[string]HandlerFunc),
	}
}

type defaultDispatcher struct {
	handlers  map[string]HandlerFunc
	callbacks map[string]HandlerFunc
}

func (d *defaultDispatcher) RegisterHandler(command string, handler HandlerFunc) {
	d.handlers[command] = handler
}

func (d *defaultDispatcher) RegisterCallback(prefix string, handler HandlerFunc) {
	d.callbacks[prefix] = handler
}

func (d *defaultDispatcher) Dispatch(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.Message != nil:
		command := update.Message.Command()
		if command == "" {
			return ErrNoHandler
		}

		handler, exists := d.handlers[command]
		if !exists {
			return ErrNoHandler
		}
		return handler(ctx, update)

	case update.CallbackQuery != nil:
		prefix, _, _ := strings.Cut(update.CallbackQuery.Data, "_")

		handler, exists := d.callbacks[prefix]
		if !exists {
			return ErrNoHandler
		}
		return handler(ctx, update)
	}

	return ErrNoHandler
}
