package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"wordmaster/internal/domain/book"
	"wordmaster/internal/domain/learning"
	"wordmaster/internal/domain/vocabulary"
)

var studyRecordColumns = []string{
	"id", "session_id", "word_id", "book_id", "study_type", "outcome", "quality", "duration_ms", "studied_at",
}

type studyRecordRepository struct {
	db *sql.DB
}

// NewStudyRecordRepository creates a new study record repository
func NewStudyRecordRepository(db *sql.DB) learning.StudyRecordRepository {
	return &studyRecordRepository{db: db}
}

// FindBySession retrieves the records of a session in study order
func (r *studyRecordRepository) FindBySession(ctx context.Context, sessionID string) ([]*learning.StudyRecord, error) {
	return r.find(ctx, psql.Select(studyRecordColumns...).From("study_records").
		Where(sq.Eq{"session_id": sessionID}).
		OrderBy("id ASC"))
}

// FindByWord retrieves every record of a word, newest first
func (r *studyRecordRepository) FindByWord(ctx context.Context, wordID vocabulary.ID) ([]*learning.StudyRecord, error) {
	return r.find(ctx, psql.Select(studyRecordColumns...).From("study_records").
		Where(sq.Eq{"word_id": int64(wordID)}).
		OrderBy("studied_at DESC", "id DESC"))
}

// CountByType counts records of a book and type studied in [from, to)
func (r *studyRecordRepository) CountByType(ctx context.Context, bookID book.ID, studyType learning.StudyType, from, to time.Time) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From("study_records").
		Where(sq.Eq{"book_id": string(bookID), "study_type": string(studyType)}).
		Where(sq.GtOrEq{"studied_at": from.UnixMilli()}).
		Where(sq.Lt{"studied_at": to.UnixMilli()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s records: %w", studyType, err)
	}

	return count, nil
}

// TotalDuration sums the study time of all records in [from, to)
func (r *studyRecordRepository) TotalDuration(ctx context.Context, from, to time.Time) (time.Duration, error) {
	query, args, err := psql.Select("COALESCE(SUM(duration_ms), 0)").From("study_records").
		Where(sq.GtOrEq{"studied_at": from.UnixMilli()}).
		Where(sq.Lt{"studied_at": to.UnixMilli()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build duration query: %w", err)
	}

	var ms int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&ms); err != nil {
		return 0, fmt.Errorf("failed to get total study duration: %w", err)
	}

	return time.Duration(ms) * time.Millisecond, nil
}

func (r *studyRecordRepository) find(ctx context.Context, q sq.SelectBuilder) ([]*learning.StudyRecord, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build record query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query study records: %w", err)
	}
	defer rows.Close()

	var records []*learning.StudyRecord
	for rows.Next() {
		var id, wordID, durationMs, studiedAt int64
		var sessionID, bookID, studyType, outcome, quality string

		if err := rows.Scan(&id, &sessionID, &wordID, &bookID, &studyType, &outcome, &quality, &durationMs, &studiedAt); err != nil {
			return nil, fmt.Errorf("failed to scan study record: %w", err)
		}

		q, err := learning.ParseQuality(quality)
		if err != nil {
			return nil, fmt.Errorf("failed to parse quality of record %d: %w", id, err)
		}

		record := learning.NewStudyRecord(
			sessionID, vocabulary.ID(wordID), book.ID(bookID),
			learning.StudyType(studyType), learning.Outcome(outcome), q,
			time.Duration(durationMs)*time.Millisecond, time.UnixMilli(studiedAt))
		record.SetID(learning.RecordID(id))
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}

func insertStudyRecord(ctx context.Context, db execer, record *learning.StudyRecord) error {
	quality, err := record.Quality().MarshalText()
	if err != nil {
		return fmt.Errorf("failed to encode quality: %w", err)
	}

	query, args, err := psql.Insert("study_records").
		Columns("session_id", "word_id", "book_id", "study_type", "outcome", "quality", "duration_ms", "studied_at").
		Values(record.SessionID(), int64(record.WordID()), string(record.BookID()),
			string(record.StudyType()), string(record.Outcome()), string(quality),
			record.Duration().Milliseconds(), record.StudiedAt().UnixMilli()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build record query: %w", err)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save study record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get study record ID: %w", err)
	}
	record.SetID(learning.RecordID(id))

	return nil
}
