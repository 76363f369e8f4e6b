package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"wordmaster/internal/application/usecases"
	"wordmaster/internal/domain/book"
	"wordmaster/internal/domain/learning"
	"wordmaster/internal/domain/vocabulary"
)

func newImportCmd(c *cli) *cobra.Command {
	var activate bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import vocabulary books from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			imported, err := c.app.importFile(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, b := range imported {
				fmt.Fprintf(out, "imported %s (%d words)\n", b.ID(), b.WordCount())
			}

			if activate && len(imported) > 0 {
				id := imported[0].ID()
				if err := c.app.books.ActivateBook(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(out, "active book: %s\n", id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&activate, "activate", false, "make the first imported book active")
	return cmd
}

func newBooksCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List imported books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			books, err := c.app.books.ListBooks(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(books) == 0 {
				fmt.Fprintln(out, "no books imported")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tWORDS\tACTIVE")
			for _, b := range books {
				active := ""
				if b.IsActive() {
					active = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", b.ID(), b.Name(), b.WordCount(), active)
			}
			return w.Flush()
		},
	}
}

func newActivateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <book-id>",
		Short: "Select the book studied through the bot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := book.ID(args[0])
			if err := c.app.books.ActivateBook(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "active book: %s\n", id)
			return nil
		},
	}
}

func newStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [book-id]",
		Short: "Show schedule counters of a book (the active one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := c.resolveBook(cmd, args)
			if err != nil {
				return err
			}

			b, stats, err := c.app.books.BookStats(ctx, id)
			if err != nil {
				return err
			}
			today, err := c.app.study.TodayStats(ctx, id)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "book\t%s (%s)\n", b.Name(), b.ID())
			fmt.Fprintf(w, "words\t%d\n", stats.TotalWords)
			fmt.Fprintf(w, "learned\t%d\n", stats.LearnedWords)
			fmt.Fprintf(w, "mastered\t%d\n", stats.MasteredWords)
			fmt.Fprintf(w, "due\t%d\n", stats.DueWords)
			fmt.Fprintf(w, "overdue\t%d\n", stats.OverdueWords)
			fmt.Fprintf(w, "avg easiness\t%.2f\n", stats.AvgEasiness)
			fmt.Fprintf(w, "learned today\t%d\n", today.NewWordsLearned)
			fmt.Fprintf(w, "reviewed today\t%d\n", today.WordsReviewed)
			fmt.Fprintf(w, "study time today\t%s\n", today.StudyTime.Round(time.Second))
			return w.Flush()
		},
	}
}

func newDueCmd(c *cli) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "due [book-id]",
		Short: "List the words due for review today",
		Long:  "List the words due for review today. Without a book id and with no active book, list the books that have words due.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			id, err := c.resolveBook(cmd, args)
			if errors.Is(err, usecases.ErrNoActiveBook) {
				return c.printBooksWithDueWords(cmd)
			}
			if err != nil {
				return err
			}

			ids, err := c.app.scheduling.DueWords(ctx, id)
			if err != nil {
				return err
			}

			if len(ids) == 0 {
				fmt.Fprintf(out, "nothing due in %s on %s\n", id, c.app.scheduling.Today())
				return nil
			}
			if limit > 0 && len(ids) > limit {
				ids = ids[:limit]
			}

			words, err := c.app.wordRepo.FindByIDs(ctx, ids)
			if err != nil {
				return err
			}
			return printWords(out, words)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n words")
	return cmd
}

func (c *cli) printBooksWithDueWords(cmd *cobra.Command) error {
	ids, err := c.app.scheduling.BooksWithDueWords(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(ids) == 0 {
		fmt.Fprintf(out, "no words due in any book on %s\n", c.app.scheduling.Today())
		return nil
	}

	fmt.Fprintln(out, "no active book; books with words due:")
	for _, id := range ids {
		fmt.Fprintf(out, "  %s\n", id)
	}
	return nil
}

func newWordCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "word <word-id>",
		Short: "Show the schedule and study history of a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseWordID(args[0])
			if err != nil {
				return err
			}

			word, err := c.app.wordRepo.FindByID(ctx, id)
			if err != nil {
				return err
			}
			if word == nil {
				return fmt.Errorf("word %d not found", id)
			}

			state, err := c.app.scheduling.WordState(ctx, id)
			if err != nil {
				return err
			}
			history, err := c.app.study.WordHistory(ctx, id)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "word\t%s %s\n", word.Text(), word.Phonetic())
			fmt.Fprintf(w, "translation\t%s\n", word.Translation())
			fmt.Fprintf(w, "book\t%s\n", word.BookID())
			if state == nil {
				fmt.Fprintln(w, "schedule\tnot studied yet")
			} else {
				fmt.Fprintf(w, "mastery\t%s\n", state.MasteryLevel())
				fmt.Fprintf(w, "next review\t%s (every %d days)\n", state.NextReviewDate(), state.Interval())
				fmt.Fprintf(w, "repetitions\t%d\n", state.RepetitionCount())
				fmt.Fprintf(w, "easiness\t%.2f\n", state.EasinessFactor())
			}
			for _, r := range history {
				fmt.Fprintf(w, "%s\t%s %s (%s, %s)\n",
					r.StudiedAt().In(c.app.cfg.Study.Location()).Format("2006-01-02 15:04"),
					r.StudyType(), r.Outcome(), r.Quality(), r.Duration().Round(time.Second))
			}
			return w.Flush()
		},
	}
}

func newResetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <word-id>",
		Short: "Forget the schedule of a word so it is taught again as a new word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseWordID(args[0])
			if err != nil {
				return err
			}

			if err := c.app.scheduling.ResetWord(cmd.Context(), id); err != nil {
				if errors.Is(err, learning.ErrStateNotFound) {
					return fmt.Errorf("word %d has not been studied", id)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "word %d reset\n", id)
			return nil
		},
	}
}

func parseWordID(arg string) (vocabulary.ID, error) {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid word id %q", arg)
	}
	return vocabulary.ID(n), nil
}

// resolveBook returns the book named on the command line or the active one
func (c *cli) resolveBook(cmd *cobra.Command, args []string) (book.ID, error) {
	if len(args) == 1 {
		return book.ID(args[0]), nil
	}

	b, err := c.app.books.ActiveBook(cmd.Context())
	if errors.Is(err, usecases.ErrNoActiveBook) {
		return "", fmt.Errorf("pass a book id or run activate first: %w", err)
	}
	if err != nil {
		return "", err
	}
	return b.ID(), nil
}

func printWords(out io.Writer, words []*vocabulary.Word) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, word := range words {
		fmt.Fprintf(w, "%s\t%s\t%s\n", word.Text(), word.Phonetic(), strings.TrimSpace(word.Translation()))
	}
	return w.Flush()
}
