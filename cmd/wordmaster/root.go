package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wordmaster/internal/config"
	"wordmaster/internal/logger"
)

// cli carries the app from the root pre-run hook to the subcommands
type cli struct {
	app *app
}

// close releases the app whether or not the command succeeded
func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:          "wordmaster",
		Short:        "Spaced repetition vocabulary trainer",
		Long:         "wordmaster schedules vocabulary reviews with SM-2 and drives them through a Telegram bot.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.Log)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}

			c.app, err = newApp(cmd.Context(), cfg, log)
			return err
		},
	}

	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newServeCmd(c),
		newImportCmd(c),
		newBooksCmd(c),
		newActivateCmd(c),
		newStatsCmd(c),
		newDueCmd(c),
		newWordCmd(c),
		newResetCmd(c),
	)

	return root
}
