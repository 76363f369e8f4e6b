package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wordmaster/internal/application/usecases"
	"wordmaster/internal/infrastructure/telegram"
	"wordmaster/internal/interfaces/telegram/handlers"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the reminder loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	if err := a.cfg.RequireTelegram(); err != nil {
		return err
	}

	if seed := a.cfg.Study.SeedFile; seed != "" {
		imported, err := a.importFile(ctx, seed)
		if err != nil {
			return err
		}
		a.log.Info("seed vocabulary imported", zap.String("file", seed), zap.Int("books", len(imported)))
	}

	bot, err := telegram.NewBot(a.cfg.Telegram.Token, a.cfg.Telegram.Debug, a.log)
	if err != nil {
		return err
	}

	if err := bot.SetupCommands(); err != nil {
		a.log.Warn("failed to set up bot commands", zap.Error(err))
	}

	reminders := usecases.NewReminderUseCase(
		bot,
		a.cfg.Telegram.ChatID,
		a.bookRepo,
		a.scheduling,
		a.settings,
		a.clock,
		a.cfg.Study.Location(),
		&usecases.ReminderConfig{
			CheckInterval:       a.cfg.Reminder.CheckInterval,
			MinReminderInterval: a.cfg.Reminder.MinReminderInterval,
			QuietHoursStart:     a.cfg.Reminder.QuietHoursStart,
			QuietHoursEnd:       a.cfg.Reminder.QuietHoursEnd,
			MaxRemindersPerDay:  a.cfg.Reminder.MaxRemindersPerDay,
		},
		a.log,
	)

	handler := handlers.NewBotHandler(
		bot,
		a.cfg.Telegram.ChatID,
		a.books,
		a.study,
		a.settings,
		reminders,
		a.clock,
		a.log,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return handler.Start(gctx, bot.GetUpdatesChan())
	})

	if a.cfg.Reminder.Enabled {
		g.Go(func() error {
			return reminders.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		bot.StopReceivingUpdates()
		return nil
	})

	a.log.Info("bot is running", zap.Int64("chat_id", a.cfg.Telegram.ChatID))

	err = g.Wait()
	a.log.Info("bot stopped")
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
