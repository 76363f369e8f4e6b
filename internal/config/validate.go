package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate performs business-rule validation on the loaded configuration.
// Telegram settings are checked by RequireTelegram since only the bot needs them.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	if err := c.Study.validate(); err != nil {
		return fmt.Errorf("study: %w", err)
	}

	if err := c.Reminder.validate(); err != nil {
		return fmt.Errorf("reminder: %w", err)
	}

	if c.Redis.Enabled() && c.Redis.LockTTL <= 0 {
		return fmt.Errorf("redis.lock_ttl must be > 0 (got %v)", c.Redis.LockTTL)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}

	return nil
}

// RequireTelegram checks the settings the review bot cannot run without.
func (c *Config) RequireTelegram() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.Telegram.ChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	return nil
}

func (s *StudyConfig) validate() error {
	if s.NewWordsPerSession <= 0 {
		return fmt.Errorf("new_words_per_session must be > 0 (got %d)", s.NewWordsPerSession)
	}
	if s.ReviewWordsPerSession <= 0 {
		return fmt.Errorf("review_words_per_session must be > 0 (got %d)", s.ReviewWordsPerSession)
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}

func (r *ReminderConfig) validate() error {
	if r.CheckInterval <= 0 {
		return fmt.Errorf("check_interval must be > 0 (got %v)", r.CheckInterval)
	}
	if r.MinReminderInterval < 0 {
		return fmt.Errorf("min_interval must be >= 0 (got %v)", r.MinReminderInterval)
	}
	if !validHour(r.QuietHoursStart) || !validHour(r.QuietHoursEnd) {
		return fmt.Errorf("quiet hours must be within 0-23 (got %d-%d)", r.QuietHoursStart, r.QuietHoursEnd)
	}
	if r.MaxRemindersPerDay < 0 {
		return fmt.Errorf("max_per_day must be >= 0 (got %d)", r.MaxRemindersPerDay)
	}
	return nil
}

func validHour(h int) bool { return h >= 0 && h <= 23 }
