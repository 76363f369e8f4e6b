package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Telegram TelegramConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Study    StudyConfig
	Reminder ReminderConfig
	Log      LogConfig
}

// TelegramConfig holds the review bot settings.
type TelegramConfig struct {
	Token  string `env:"TELEGRAM_BOT_TOKEN"`
	ChatID int64  `env:"TELEGRAM_CHAT_ID"`
	Debug  bool   `env:"TELEGRAM_DEBUG" env-default:"false"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path        string        `env:"DB_PATH"         env-default:"wordmaster.db"`
	BusyTimeout time.Duration `env:"DB_BUSY_TIMEOUT" env-default:"5s"`
}

// RedisConfig holds the settings of the optional review lock backend.
// An empty Addr selects the in-process lock.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB"       env-default:"0"`
	LockTTL  time.Duration `env:"REDIS_LOCK_TTL" env-default:"10s"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// StudyConfig holds session defaults.
type StudyConfig struct {
	NewWordsPerSession    int    `env:"STUDY_NEW_WORDS_PER_SESSION"    env-default:"20"`
	ReviewWordsPerSession int    `env:"STUDY_REVIEW_WORDS_PER_SESSION" env-default:"50"`
	Timezone              string `env:"STUDY_TIMEZONE"                 env-default:"Local"`
	SeedFile              string `env:"STUDY_SEED_FILE"`
}

// Location resolves Timezone. Validate guarantees it loads.
func (s StudyConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ReminderConfig holds the reminder loop settings.
type ReminderConfig struct {
	Enabled             bool          `env:"REMINDER_ENABLED"              env-default:"true"`
	CheckInterval       time.Duration `env:"REMINDER_CHECK_INTERVAL"       env-default:"30m"`
	MinReminderInterval time.Duration `env:"REMINDER_MIN_INTERVAL"         env-default:"4h"`
	QuietHoursStart     int           `env:"REMINDER_QUIET_HOURS_START"    env-default:"22"`
	QuietHoursEnd       int           `env:"REMINDER_QUIET_HOURS_END"      env-default:"8"`
	MaxRemindersPerDay  int           `env:"REMINDER_MAX_PER_DAY"          env-default:"3"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
	Mode  string `env:"LOG_MODE"  env-default:"production"`
}
