package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"wordmaster/internal/domain/book"
	"wordmaster/internal/domain/learning"
	"wordmaster/internal/pkg/markdown"
)

// Notifier delivers reminder messages to the learner's chat
type Notifier interface {
	SendMessageWithMarkdown(chatID int64, text string) error
}

// ReminderConfig holds configuration for the reminder system
type ReminderConfig struct {
	// How often to check for due words
	CheckInterval time.Duration
	// Minimum time between two reminders
	MinReminderInterval time.Duration
	// No reminders from QuietHoursStart until QuietHoursEnd (24-hour clock).
	// The range may cross midnight; equal values disable quiet hours.
	QuietHoursStart int
	QuietHoursEnd   int

	MaxRemindersPerDay int
}

// DefaultReminderConfig returns sensible defaults for reminders
func DefaultReminderConfig() *ReminderConfig {
	return &ReminderConfig{
		CheckInterval:       30 * time.Minute,
		MinReminderInterval: 4 * time.Hour,
		QuietHoursStart:     22,
		QuietHoursEnd:       8,
		MaxRemindersPerDay:  3,
	}
}

// reminderState tracks what was sent and when the learner last studied
type reminderState struct {
	lastReminderSent time.Time
	remindersToday   int
	lastCheckDate    time.Time
	lastActive       time.Time
}

// ReminderUseCase periodically tells the learner about due reviews of the active book
type ReminderUseCase struct {
	notifier   Notifier
	chatID     int64
	books      book.Repository
	scheduling *SchedulingUseCase
	settings   *SettingsUseCase
	clock      clockwork.Clock
	location   *time.Location
	config     *ReminderConfig
	log        *zap.Logger

	mu    sync.Mutex
	state reminderState
}

// NewReminderUseCase creates a new reminder use case
func NewReminderUseCase(
	notifier Notifier,
	chatID int64,
	books book.Repository,
	scheduling *SchedulingUseCase,
	settings *SettingsUseCase,
	clock clockwork.Clock,
	location *time.Location,
	config *ReminderConfig,
	log *zap.Logger,
) *ReminderUseCase {
	if config == nil {
		config = DefaultReminderConfig()
	}
	if location == nil {
		location = time.Local
	}

	return &ReminderUseCase{
		notifier:   notifier,
		chatID:     chatID,
		books:      books,
		scheduling: scheduling,
		settings:   settings,
		clock:      clock,
		location:   location,
		config:     config,
		log:        log,
	}
}

// RecordActivity notes that the learner studied at t
func (uc *ReminderUseCase) RecordActivity(t time.Time) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if t.After(uc.state.lastActive) {
		uc.state.lastActive = t
	}
}

// Run checks for due words every CheckInterval until ctx is done
func (uc *ReminderUseCase) Run(ctx context.Context) error {
	uc.log.Info("starting reminder service", zap.Duration("check_interval", uc.config.CheckInterval))

	ticker := uc.clock.NewTicker(uc.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.log.Info("reminder service stopping")
			return nil
		case <-ticker.Chan():
			if _, err := uc.CheckAndRemind(ctx); err != nil {
				uc.log.Error("reminder check failed", zap.Error(err))
			}
		}
	}
}

// CheckAndRemind sends a reminder when one is warranted and reports whether it did
func (uc *ReminderUseCase) CheckAndRemind(ctx context.Context) (bool, error) {
	prefs, err := uc.settings.GetPreferences(ctx)
	if err != nil {
		return false, err
	}
	if !prefs.RemindersEnabled() {
		return false, nil
	}

	active, err := uc.books.FindActive(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to find active book: %w", err)
	}
	if active == nil {
		return false, nil
	}

	stats, err := uc.scheduling.Stats(ctx, active.ID())
	if err != nil {
		return false, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	now := uc.clock.Now().In(uc.location)
	if !uc.shouldSendReminder(now, stats) {
		return false, nil
	}

	text := uc.createReminderMessage(now, active, stats)
	if err := uc.notifier.SendMessageWithMarkdown(uc.chatID, text); err != nil {
		return false, fmt.Errorf("failed to send reminder: %w", err)
	}

	uc.state.lastReminderSent = now
	uc.state.remindersToday++

	uc.log.Info("reminder sent",
		zap.String("book_id", string(active.ID())),
		zap.Int("due_words", stats.DueWords),
		zap.Int("reminders_today", uc.state.remindersToday),
	)
	return true, nil
}

// shouldSendReminder applies the reminder rules; uc.mu must be held
func (uc *ReminderUseCase) shouldSendReminder(now time.Time, stats *learning.ScheduleStats) bool {
	if uc.isQuietTime(now) {
		return false
	}

	if !isSameDay(uc.state.lastCheckDate, now) {
		uc.state.remindersToday = 0
		uc.state.lastCheckDate = now
	}

	if uc.state.remindersToday >= uc.config.MaxRemindersPerDay {
		return false
	}

	if !uc.state.lastReminderSent.IsZero() && now.Sub(uc.state.lastReminderSent) < uc.config.MinReminderInterval {
		return false
	}

	if stats.DueWords == 0 {
		return false
	}

	// Never studied through the bot: remind right away.
	if uc.state.lastActive.IsZero() {
		return true
	}

	sinceActive := now.Sub(uc.state.lastActive)
	if sinceActive < time.Hour {
		return false
	}
	if sinceActive >= 72*time.Hour {
		return true
	}

	hoursSinceLastReminder := now.Sub(uc.state.lastReminderSent).Hours()

	// Many due words: remind sooner
	if stats.DueWords >= 5 && hoursSinceLastReminder >= 6 {
		return true
	}

	return hoursSinceLastReminder >= 12
}

func (uc *ReminderUseCase) createReminderMessage(now time.Time, b *book.Book, stats *learning.ScheduleStats) string {
	var greeting string
	switch hour := now.Hour(); {
	case hour < 12:
		greeting = "Good morning"
	case hour < 17:
		greeting = "Good afternoon"
	default:
		greeting = "Good evening"
	}

	name := markdown.Escape(b.Name())

	var message string
	switch {
	case stats.DueWords == 1:
		message = fmt.Sprintf(
			"📚 %s!\n\n"+
				"You have *1 word* from *%s* ready for review. "+
				"A quick review now will help strengthen your memory! 🧠\n\n"+
				"Use /review to practice.",
			greeting, name)

	case stats.DueWords <= 5:
		message = fmt.Sprintf(
			"📚 %s!\n\n"+
				"You have *%d words* from *%s* waiting for review. "+
				"Perfect time for a quick practice session! ✨\n\n"+
				"Use /review to start.",
			greeting, stats.DueWords, name)

	case stats.DueWords <= 10:
		message = fmt.Sprintf(
			"📚 %s!\n\n"+
				"You have *%d words* due for review in *%s*. "+
				"Reviewing them now will boost your retention! 🚀\n\n"+
				"Use /review to begin, or /stats to see your progress.",
			greeting, stats.DueWords, name)

	default:
		message = fmt.Sprintf(
			"📚 %s!\n\n"+
				"You have *%d words* from *%s* ready for review. "+
				"Start with /review and go at your own pace. Every word counts! 💪",
			greeting, stats.DueWords, name)
	}

	if stats.OverdueWords > 0 {
		message += fmt.Sprintf("\n\n⏰ %d of them are overdue.", stats.OverdueWords)
	}
	if stats.MasteredWords > 0 {
		message += fmt.Sprintf("\n\n📊 You've mastered *%d words* so far, keep it up! 🌟", stats.MasteredWords)
	}

	return message
}

// isQuietTime checks if t is within quiet hours
func (uc *ReminderUseCase) isQuietTime(t time.Time) bool {
	hour := t.Hour()
	start := uc.config.QuietHoursStart
	end := uc.config.QuietHoursEnd

	if start <= end {
		// e.g. 01:00 to 06:00
		return hour >= start && hour < end
	}
	// Crosses midnight, e.g. 22:00 to 08:00
	return hour >= start || hour < end
}

// isSameDay checks if two times are on the same day
func isSameDay(t1, t2 time.Time) bool {
	y1, m1, d1 := t1.Date()
	y2, m2, d2 := t2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ReminderStats is a snapshot of the reminder state for diagnostics
type ReminderStats struct {
	LastReminderSent time.Time
	RemindersToday   int
	LastActive       time.Time
}

// GetReminderStats returns the current reminder state
func (uc *ReminderUseCase) GetReminderStats() ReminderStats {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	today := 0
	if isSameDay(uc.state.lastCheckDate, uc.clock.Now().In(uc.location)) {
		today = uc.state.remindersToday
	}

	return ReminderStats{
		LastReminderSent: uc.state.lastReminderSent,
		RemindersToday:   today,
		LastActive:       uc.state.lastActive,
	}
}
