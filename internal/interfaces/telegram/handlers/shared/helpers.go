package shared

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"wordmaster/internal/application/usecases"
	"wordmaster/internal/domain/book"
	"wordmaster/internal/domain/learning"
	"wordmaster/internal/domain/vocabulary"
	"wordmaster/internal/pkg/markdown"
)

// CreateMainMenuKeyboard creates the standard main menu keyboard
func CreateMainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🆕 Learn", "menu_learn"),
			tgbotapi.NewInlineKeyboardButtonData("🔁 Review", "menu_review"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Stats", "menu_stats"),
			tgbotapi.NewInlineKeyboardButtonData("📚 Books", "menu_books"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❓ Help", "menu_help"),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Settings", "menu_settings"),
		),
	)
}

// CreateAnswerKeyboard creates the know/don't know keyboard for the word at index.
// The callback data carries the session id so buttons of an older session are recognizable.
func CreateAnswerKeyboard(sessionID string, index int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ I know it", fmt.Sprintf("answer_known_%s_%d", sessionID, index)),
			tgbotapi.NewInlineKeyboardButtonData("❌ I don't know", fmt.Sprintf("answer_unknown_%s_%d", sessionID, index)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏹ End", "end"),
		),
	)
}

// CreateSessionEndKeyboard creates a keyboard shown after a session
func CreateSessionEndKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🆕 Learn more", "menu_learn"),
			tgbotapi.NewInlineKeyboardButtonData("🔁 Review", "menu_review"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Stats", "menu_stats"),
		),
	)
}

// CreateNoWordsKeyboard creates a keyboard for when no words are available
func CreateNoWordsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 View Stats", "menu_stats"),
			tgbotapi.NewInlineKeyboardButtonData("📚 Books", "menu_books"),
		),
	)
}

// CreateBooksKeyboard creates one button per book that is not active
func CreateBooksKeyboard(books []*book.Book) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, b := range books {
		if b.IsActive() {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📌 Use "+b.Name(), "use_"+string(b.ID())),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// FormatWordPrompt formats the question for the word at position (1-based)
func FormatWordPrompt(word *vocabulary.Word, position, total int, sessionType usecases.SessionType) string {
	header := fmt.Sprintf("🆕 *New word %d/%d*", position, total)
	question := "Do you know this word?"
	if sessionType == usecases.SessionTypeReview {
		header = fmt.Sprintf("🔁 *Review %d/%d*", position, total)
		question = "Do you remember it?"
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", header, formatHeadword(word), question)
}

// FormatAnswerReveal formats the translation shown after an answer
func FormatAnswerReveal(word *vocabulary.Word, known bool, state learning.ReviewState) string {
	mark := "❌"
	if known {
		mark = "✅"
	}

	text := fmt.Sprintf("%s %s\n➡️ %s", mark, formatHeadword(word), markdown.Escape(word.Translation()))

	switch {
	case state.MasteryLevel() == learning.Mastered:
		text += "\n\n🏆 Mastered!"
	case state.Interval() == 1:
		text += "\n\n📅 Next review tomorrow"
	default:
		text += fmt.Sprintf("\n\n📅 Next review in %d days", state.Interval())
	}

	return text
}

func formatHeadword(word *vocabulary.Word) string {
	text := "*" + markdown.Escape(word.Text()) + "*"
	if word.Phonetic() != "" {
		text += "  " + markdown.Escape(word.Phonetic())
	}
	return text
}

// FormatSessionSummary formats the message sent when a session ends
func FormatSessionSummary(summary *usecases.SessionSummary, today *usecases.DailyStats) string {
	title := "🎉 *Session complete*"
	if summary.Total == 0 {
		title = "⏹ *Session ended*"
	}

	text := fmt.Sprintf(
		"%s\n\n"+
			"📖 Words studied: %d\n"+
			"✅ Known: %d\n"+
			"❌ Unknown: %d\n"+
			"⏱ Time: %s",
		title, summary.Total, summary.Known, summary.Unknown, FormatDuration(summary.Duration))

	if today != nil {
		text += fmt.Sprintf(
			"\n\n*Today*\n"+
				"🆕 New words: %d\n"+
				"🔁 Reviews: %d\n"+
				"⏱ Study time: %s",
			today.NewWordsLearned, today.WordsReviewed, FormatDuration(today.StudyTime))
	}

	return text
}

// FormatStatsText formats book statistics into a readable message
func FormatStatsText(b *book.Book, stats *learning.ScheduleStats, today *usecases.DailyStats) string {
	progress := 0.0
	if stats.TotalWords > 0 {
		progress = float64(stats.LearnedWords) / float64(stats.TotalWords) * 100
	}

	return fmt.Sprintf(
		"📊 *%s*\n\n"+
			"📚 Total words: %d\n"+
			"📖 Learned: %d (%.0f%%)\n"+
			"🏆 Mastered: %d\n"+
			"⏰ Due today: %d\n"+
			"⌛️ Overdue: %d\n"+
			"🎯 Average easiness: %.2f\n\n"+
			"*Today*\n"+
			"🆕 New words: %d\n"+
			"🔁 Reviews: %d\n"+
			"⏱ Study time: %s",
		markdown.Escape(b.Name()),
		stats.TotalWords, stats.LearnedWords, progress, stats.MasteredWords,
		stats.DueWords, stats.OverdueWords, stats.AvgEasiness,
		today.NewWordsLearned, today.WordsReviewed, FormatDuration(today.StudyTime))
}

// FormatReminderStats formats the reminder counters appended to the statistics
func FormatReminderStats(stats usecases.ReminderStats) string {
	text := fmt.Sprintf("🔔 Reminders sent today: %d", stats.RemindersToday)
	if !stats.LastReminderSent.IsZero() {
		text += fmt.Sprintf(" (last at %s)", stats.LastReminderSent.Format("15:04"))
	}
	return text
}

// FormatBookList formats the catalog
func FormatBookList(books []*book.Book) string {
	if len(books) == 0 {
		return "📚 No books yet. Import one with `wordmaster import <file>`."
	}

	var sb strings.Builder
	sb.WriteString("📚 *Books*\n")
	for _, b := range books {
		fmt.Fprintf(&sb, "\n• *%s* (`%s`), %d words", markdown.Escape(b.Name()), b.ID(), b.WordCount())
		if b.IsActive() {
			sb.WriteString(" 📌")
		}
	}
	sb.WriteString("\n\nSwitch with /use <id> or the buttons below.")
	return sb.String()
}

// FormatDuration renders a duration rounded to seconds, e.g. "4m12s"
func FormatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}

// GetHelpText returns the standard help text
func GetHelpText() string {
	return `📚 *Wordmaster Help*

*Commands:*
/start - Show welcome message
/learn - Learn new words from the active book
/review - Review words due today
/stats - View your progress
/books - List word books
/use <id> - Switch the active book
/settings - Session sizes and reminders
/reminders - Turn reminders on or off
/help - Show this help

*How it works:*
Words are scheduled with the SM-2 spaced repetition algorithm. Every answer moves the next review further away when you know the word and brings it back tomorrow when you don't.

*Answering:*
✅ *I know it* - answer quickly for longer intervals
❌ *I don't know* - the word starts over

A word is mastered after five successful reviews once its interval reaches a month.`
}
