package learning

import (
	"context"
	"time"

	"cloud.google.com/go/civil"

	"wordmaster/internal/domain/book"
	"wordmaster/internal/domain/vocabulary"
)

// ScheduleRepository defines the contract for review schedule persistence
type ScheduleRepository interface {
	// Get retrieves the schedule of a word; it returns nil when none exists
	Get(ctx context.Context, wordID vocabulary.ID) (*ReviewState, error)

	// Exists checks whether a word has a schedule
	Exists(ctx context.Context, wordID vocabulary.ID) (bool, error)

	// Put inserts or replaces the schedule of a word
	Put(ctx context.Context, state ReviewState) error

	// SaveReview persists a schedule and the study record that produced it
	// in one transaction; on error neither is stored
	SaveReview(ctx context.Context, state ReviewState, record *StudyRecord) error

	// Delete removes the schedule of a word
	Delete(ctx context.Context, wordID vocabulary.ID) error

	// QueryDue returns words of a book due on or before today that are not mastered,
	// ordered by next review date then repetition count
	QueryDue(ctx context.Context, bookID book.ID, today civil.Date) ([]vocabulary.ID, error)

	// QueryOverdue returns words whose review date is strictly before today
	QueryOverdue(ctx context.Context, bookID book.ID, today civil.Date) ([]vocabulary.ID, error)

	// QueryNeverScheduled returns words of a book without a schedule, in catalog order.
	// A limit <= 0 means no limit.
	QueryNeverScheduled(ctx context.Context, bookID book.ID, limit int) ([]vocabulary.ID, error)

	// GetStats retrieves schedule counters for a book
	GetStats(ctx context.Context, bookID book.ID, today civil.Date) (*ScheduleStats, error)

	// GetBooksWithDueWords returns books having at least one due word
	GetBooksWithDueWords(ctx context.Context, today civil.Date) ([]book.ID, error)
}

// StudyRecordRepository defines the contract for study record persistence
type StudyRecordRepository interface {
	// FindBySession retrieves the records of a session in study order
	FindBySession(ctx context.Context, sessionID string) ([]*StudyRecord, error)

	// FindByWord retrieves every record of a word, newest first
	FindByWord(ctx context.Context, wordID vocabulary.ID) ([]*StudyRecord, error)

	// CountByType counts records of a book and type studied in [from, to)
	CountByType(ctx context.Context, bookID book.ID, studyType StudyType, from, to time.Time) (int, error)

	// TotalDuration sums the study time of all records in [from, to)
	TotalDuration(ctx context.Context, from, to time.Time) (time.Duration, error)
}

// ScheduleStats represents schedule counters for a book
type ScheduleStats struct {
	TotalWords    int
	LearnedWords  int
	MasteredWords int
	DueWords      int
	OverdueWords  int
	AvgEasiness   float64
}
