package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	sq "github.com/Masterminds/squirrel"

	"wordmaster/internal/domain/book"
	"wordmaster/internal/domain/learning"
	"wordmaster/internal/domain/vocabulary"
)

var scheduleColumns = []string{
	"word_id", "book_id", "interval_days", "easiness_factor", "repetition_count", "last_review_date", "next_review_date",
}

// notMastered excludes retired words from review queues
var notMastered = sq.NotEq{"mastery_level": int(learning.Mastered)}

type scheduleRepository struct {
	db *sql.DB
}

// NewScheduleRepository creates a new review schedule repository
func NewScheduleRepository(db *sql.DB) learning.ScheduleRepository {
	return &scheduleRepository{db: db}
}

// Get retrieves the schedule of a word
func (r *scheduleRepository) Get(ctx context.Context, wordID vocabulary.ID) (*learning.ReviewState, error) {
	query, args, err := psql.Select(scheduleColumns...).From("review_schedule").
		Where(sq.Eq{"word_id": int64(wordID)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build schedule query: %w", err)
	}

	state, err := scanReviewState(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find schedule: %w", err)
	}

	return state, nil
}

// Exists checks whether a word has a schedule
func (r *scheduleRepository) Exists(ctx context.Context, wordID vocabulary.ID) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM review_schedule WHERE word_id = ?`, int64(wordID)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check schedule existence: %w", err)
	}

	return count > 0, nil
}

// Put inserts or replaces the schedule of a word
func (r *scheduleRepository) Put(ctx context.Context, state learning.ReviewState) error {
	return putSchedule(ctx, r.db, state)
}

// SaveReview saves the schedule and the study record in a single transaction
func (r *scheduleRepository) SaveReview(ctx context.Context, state learning.ReviewState, record *learning.StudyRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := putSchedule(ctx, tx, state); err != nil {
		return err
	}

	if record != nil {
		if err := insertStudyRecord(ctx, tx, record); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes the schedule of a word
func (r *scheduleRepository) Delete(ctx context.Context, wordID vocabulary.ID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM review_schedule WHERE word_id = ?`, int64(wordID))
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	return nil
}

// QueryDue returns the review queue of a book for today
func (r *scheduleRepository) QueryDue(ctx context.Context, bookID book.ID, today civil.Date) ([]vocabulary.ID, error) {
	q := psql.Select("word_id").From("review_schedule").
		Where(sq.Eq{"book_id": string(bookID)}).
		Where(sq.LtOrEq{"next_review_date": today.String()}).
		Where(notMastered).
		OrderBy("next_review_date ASC", "repetition_count ASC", "word_id ASC")

	return r.queryWordIDs(ctx, q)
}

// QueryOverdue returns words whose review date has already passed
func (r *scheduleRepository) QueryOverdue(ctx context.Context, bookID book.ID, today civil.Date) ([]vocabulary.ID, error) {
	q := psql.Select("word_id").From("review_schedule").
		Where(sq.Eq{"book_id": string(bookID)}).
		Where(sq.Lt{"next_review_date": today.String()}).
		Where(notMastered).
		OrderBy("next_review_date ASC", "repetition_count ASC", "word_id ASC")

	return r.queryWordIDs(ctx, q)
}

// QueryNeverScheduled returns words of a book that were never studied
func (r *scheduleRepository) QueryNeverScheduled(ctx context.Context, bookID book.ID, limit int) ([]vocabulary.ID, error) {
	q := psql.Select("w.id").From("words w").
		LeftJoin("review_schedule s ON s.word_id = w.id").
		Where(sq.Eq{"w.book_id": string(bookID)}).
		Where(sq.Eq{"s.word_id": nil}).
		OrderBy("w.position ASC", "w.id ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	return r.queryWordIDs(ctx, q)
}

// GetStats retrieves schedule counters for a book
func (r *scheduleRepository) GetStats(ctx context.Context, bookID book.ID, today civil.Date) (*learning.ScheduleStats, error) {
	stats := &learning.ScheduleStats{}

	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words WHERE book_id = ?`, string(bookID)).Scan(&stats.TotalWords)
	if err != nil {
		return nil, fmt.Errorf("failed to get total words: %w", err)
	}

	day := today.String()
	mastered := int(learning.Mastered)

	query, args, err := psql.Select().
		Column("COUNT(*)").
		Column(sq.Expr("COALESCE(SUM(CASE WHEN mastery_level = ? THEN 1 ELSE 0 END), 0)", mastered)).
		Column(sq.Expr("COALESCE(SUM(CASE WHEN next_review_date <= ? AND mastery_level != ? THEN 1 ELSE 0 END), 0)", day, mastered)).
		Column(sq.Expr("COALESCE(SUM(CASE WHEN next_review_date < ? AND mastery_level != ? THEN 1 ELSE 0 END), 0)", day, mastered)).
		Column("COALESCE(AVG(easiness_factor), 0)").
		From("review_schedule").
		Where(sq.Eq{"book_id": string(bookID)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build stats query: %w", err)
	}

	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&stats.LearnedWords, &stats.MasteredWords, &stats.DueWords, &stats.OverdueWords, &stats.AvgEasiness)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule stats: %w", err)
	}

	return stats, nil
}

// GetBooksWithDueWords returns books having at least one word to review today
func (r *scheduleRepository) GetBooksWithDueWords(ctx context.Context, today civil.Date) ([]book.ID, error) {
	query, args, err := psql.Select("book_id").Distinct().From("review_schedule").
		Where(sq.LtOrEq{"next_review_date": today.String()}).
		Where(notMastered).
		OrderBy("book_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books with due words: %w", err)
	}
	defer rows.Close()

	var bookIDs []book.ID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan book ID: %w", err)
		}
		bookIDs = append(bookIDs, book.ID(id))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return bookIDs, nil
}

func (r *scheduleRepository) queryWordIDs(ctx context.Context, q sq.SelectBuilder) ([]vocabulary.ID, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build schedule query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query word IDs: %w", err)
	}
	defer rows.Close()

	var ids []vocabulary.ID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan word ID: %w", err)
		}
		ids = append(ids, vocabulary.ID(id))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return ids, nil
}

func putSchedule(ctx context.Context, db execer, state learning.ReviewState) error {
	var last sql.NullString
	if state.HasBeenReviewed() {
		last = sql.NullString{String: state.LastReviewDate().String(), Valid: true}
	}

	query, args, err := psql.Insert("review_schedule").
		Options("OR REPLACE").
		Columns("word_id", "book_id", "interval_days", "easiness_factor", "repetition_count",
			"mastery_level", "last_review_date", "next_review_date", "updated_at").
		Values(int64(state.WordID()), string(state.BookID()), state.Interval(), state.EasinessFactor(),
			state.RepetitionCount(), int(state.MasteryLevel()), last, state.NextReviewDate().String(),
			sq.Expr("CURRENT_TIMESTAMP")).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build schedule query: %w", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save schedule of word %d: %w", state.WordID(), err)
	}

	return nil
}

func scanReviewState(row rowScanner) (*learning.ReviewState, error) {
	var wordID int64
	var bookID, next string
	var interval, reps int
	var ef float64
	var last sql.NullString

	if err := row.Scan(&wordID, &bookID, &interval, &ef, &reps, &last, &next); err != nil {
		return nil, err
	}

	var lastDate civil.Date
	if last.Valid {
		d, err := civil.ParseDate(last.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last_review_date: %w", err)
		}
		lastDate = d
	}

	nextDate, err := civil.ParseDate(next)
	if err != nil {
		return nil, fmt.Errorf("failed to parse next_review_date: %w", err)
	}

	state := learning.RestoreReviewState(vocabulary.ID(wordID), book.ID(bookID), interval, ef, reps, lastDate, nextDate)
	return &state, nil
}
