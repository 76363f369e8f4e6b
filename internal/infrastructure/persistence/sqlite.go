package persistence

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

// psql is the statement builder shared by the repositories (SQLite uses ? placeholders)
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// NewSQLiteDB creates a new SQLite database connection.
// Foreign keys are enforced, the journal runs in WAL mode and write
// transactions take the database lock up front.
func NewSQLiteDB(dbPath string, busyTimeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn(dbPath, busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

func dsn(dbPath string, busyTimeout time.Duration) string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	q.Set("_txlock", "immediate")
	q.Set("_busy_timeout", fmt.Sprint(busyTimeout.Milliseconds()))
	return "file:" + dbPath + "?" + q.Encode()
}

func createTables(db *sql.DB) error {
	// Books table
	booksTable := `
	CREATE TABLE IF NOT EXISTS books (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]',
		language TEXT NOT NULL DEFAULT '',
		word_count INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 0,
		imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	_, err := db.Exec(booksTable)
	if err != nil {
		return fmt.Errorf("failed to create books table: %w", err)
	}

	// Words table
	wordsTable := `
	CREATE TABLE IF NOT EXISTS words (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		book_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		text TEXT NOT NULL,
		phonetic TEXT NOT NULL DEFAULT '',
		translation TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (book_id) REFERENCES books (id) ON DELETE CASCADE,
		UNIQUE(book_id, text)
	);
	CREATE INDEX IF NOT EXISTS idx_words_book_position ON words (book_id, position);`

	_, err = db.Exec(wordsTable)
	if err != nil {
		return fmt.Errorf("failed to create words table: %w", err)
	}

	// Review schedule table with SM-2 parameters, one row per word
	reviewScheduleTable := `
	CREATE TABLE IF NOT EXISTS review_schedule (
		word_id INTEGER PRIMARY KEY,
		book_id TEXT NOT NULL,
		interval_days INTEGER NOT NULL CHECK (interval_days >= 1),
		easiness_factor REAL NOT NULL,
		repetition_count INTEGER NOT NULL CHECK (repetition_count >= 0),
		mastery_level INTEGER NOT NULL DEFAULT 0,
		last_review_date TEXT,
		next_review_date TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (word_id) REFERENCES words (id) ON DELETE CASCADE,
		FOREIGN KEY (book_id) REFERENCES books (id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_review_schedule_due ON review_schedule (book_id, next_review_date);`

	_, err = db.Exec(reviewScheduleTable)
	if err != nil {
		return fmt.Errorf("failed to create review_schedule table: %w", err)
	}

	// Study records table
	studyRecordsTable := `
	CREATE TABLE IF NOT EXISTS study_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		word_id INTEGER NOT NULL,
		book_id TEXT NOT NULL,
		study_type TEXT NOT NULL,
		outcome TEXT NOT NULL,
		quality TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		studied_at INTEGER NOT NULL,
		FOREIGN KEY (word_id) REFERENCES words (id) ON DELETE CASCADE,
		FOREIGN KEY (book_id) REFERENCES books (id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_study_records_session ON study_records (session_id);
	CREATE INDEX IF NOT EXISTS idx_study_records_studied_at ON study_records (book_id, studied_at);`

	_, err = db.Exec(studyRecordsTable)
	if err != nil {
		return fmt.Errorf("failed to create study_records table: %w", err)
	}

	// Preferences table for flexible settings
	preferencesTable := `
	CREATE TABLE IF NOT EXISTS preferences (
		preference_key TEXT PRIMARY KEY,
		preference_value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	_, err = db.Exec(preferencesTable)
	if err != nil {
		return fmt.Errorf("failed to create preferences table: %w", err)
	}

	return nil
}
