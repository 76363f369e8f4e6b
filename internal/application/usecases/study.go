package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"wordmaster/internal/domain/book"
	"wordmaster/internal/domain/learning"
	"wordmaster/internal/domain/vocabulary"
)

// Response time thresholds for known words in review sessions
const (
	easyResponseTime = 3 * time.Second
	goodResponseTime = 10 * time.Second
)

// SessionType tells what a study session is made of
type SessionType string

const (
	SessionTypeNewWords SessionType = "new_words"
	SessionTypeReview   SessionType = "review"
)

// Session is an in-progress study session. It is not safe for concurrent use.
type Session struct {
	ID           string
	BookID       book.ID
	Type         SessionType
	WordIDs      []vocabulary.ID
	CurrentIndex int
	StartTime    time.Time
}

// IsFinished reports whether every word of the session was studied
func (s *Session) IsFinished() bool {
	return s.CurrentIndex >= len(s.WordIDs)
}

// Remaining returns the number of words left
func (s *Session) Remaining() int {
	if s.IsFinished() {
		return 0
	}
	return len(s.WordIDs) - s.CurrentIndex
}

// StudyResult is what the learner reported for the current word
type StudyResult struct {
	Known        bool
	ResponseTime time.Duration
}

// SessionSummary summarizes a finished session
type SessionSummary struct {
	SessionID string
	Type      SessionType
	Total     int
	Known     int
	Unknown   int
	Duration  time.Duration
}

// DailyStats holds today's study activity for a book
type DailyStats struct {
	NewWordsLearned int
	WordsReviewed   int
	StudyTime       time.Duration
}

// StudyUseCase coordinates study sessions: it picks the words, turns the
// learner's answers into review qualities and feeds them to the scheduler.
type StudyUseCase struct {
	scheduling *SchedulingUseCase
	words      vocabulary.Repository
	records    learning.StudyRecordRepository
	clock      clockwork.Clock
	location   *time.Location
	log        *zap.Logger
}

// NewStudyUseCase creates a new study use case
func NewStudyUseCase(
	scheduling *SchedulingUseCase,
	words vocabulary.Repository,
	records learning.StudyRecordRepository,
	clock clockwork.Clock,
	location *time.Location,
	log *zap.Logger,
) *StudyUseCase {
	if location == nil {
		location = time.Local
	}
	return &StudyUseCase{
		scheduling: scheduling,
		words:      words,
		records:    records,
		clock:      clock,
		location:   location,
		log:        log,
	}
}

// StartSession builds a session of at most maxWords words (maxWords <= 0 means no cap).
// New-word sessions take never studied words in catalog order; review sessions
// take today's due words in queue order.
func (uc *StudyUseCase) StartSession(ctx context.Context, bookID book.ID, sessionType SessionType, maxWords int) (*Session, error) {
	var ids []vocabulary.ID
	var err error

	switch sessionType {
	case SessionTypeNewWords:
		ids, err = uc.scheduling.UnlearnedWords(ctx, bookID, maxWords)
	case SessionTypeReview:
		ids, err = uc.scheduling.DueWords(ctx, bookID)
		if err == nil && maxWords > 0 && len(ids) > maxWords {
			ids = ids[:maxWords]
		}
	default:
		return nil, fmt.Errorf("unknown session type %q", sessionType)
	}
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, ErrNothingToStudy
	}

	session := &Session{
		ID:        uuid.NewString(),
		BookID:    bookID,
		Type:      sessionType,
		WordIDs:   ids,
		StartTime: uc.clock.Now(),
	}

	uc.log.Info("study session started",
		zap.String("session_id", session.ID),
		zap.String("book_id", string(bookID)),
		zap.String("type", string(sessionType)),
		zap.Int("words", len(ids)),
	)

	return session, nil
}

// CurrentWord returns the word the learner should see now
func (uc *StudyUseCase) CurrentWord(ctx context.Context, session *Session) (*vocabulary.Word, error) {
	if session.IsFinished() {
		return nil, ErrSessionFinished
	}

	wordID := session.WordIDs[session.CurrentIndex]
	word, err := uc.words.FindByID(ctx, wordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %w", err)
	}
	if word == nil {
		return nil, fmt.Errorf("word %d not found", wordID)
	}

	return word, nil
}

// RecordAndNext stores the learner's answer for the current word, updates its
// schedule and advances the session. The session does not advance on error.
func (uc *StudyUseCase) RecordAndNext(ctx context.Context, session *Session, result StudyResult) (learning.ReviewState, error) {
	if session.IsFinished() {
		return learning.ReviewState{}, ErrSessionFinished
	}

	wordID := session.WordIDs[session.CurrentIndex]
	quality := InferQuality(session.Type, result)

	studyType := learning.StudyTypeReview
	if session.Type == SessionTypeNewWords {
		studyType = learning.StudyTypeLearn
	}

	outcome := learning.OutcomeUnknown
	if result.Known {
		outcome = learning.OutcomeKnown
	}

	record := learning.NewStudyRecord(session.ID, wordID, session.BookID, studyType, outcome, quality, result.ResponseTime, uc.clock.Now())

	var state learning.ReviewState
	var err error
	if session.Type == SessionTypeNewWords {
		state, err = uc.scheduling.LearnWord(ctx, wordID, session.BookID, quality, record)
	} else {
		state, err = uc.scheduling.ApplyReview(ctx, wordID, quality, record)
	}
	if err != nil {
		return learning.ReviewState{}, fmt.Errorf("failed to record word %d: %w", wordID, err)
	}

	session.CurrentIndex++
	return state, nil
}

// EndSession summarizes a session from its stored study records.
// Duration is the sum of the recorded response times.
func (uc *StudyUseCase) EndSession(ctx context.Context, session *Session) (*SessionSummary, error) {
	records, err := uc.records.FindBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session records: %w", err)
	}

	summary := &SessionSummary{
		SessionID: session.ID,
		Type:      session.Type,
		Total:     len(records),
	}
	for _, r := range records {
		summary.Duration += r.Duration()
		if r.Outcome() == learning.OutcomeKnown {
			summary.Known++
		} else {
			summary.Unknown++
		}
	}

	uc.log.Info("study session ended",
		zap.String("session_id", session.ID),
		zap.Int("total", summary.Total),
		zap.Int("known", summary.Known),
		zap.Duration("duration", summary.Duration),
	)

	return summary, nil
}

// WordHistory returns every study record of a word, newest first
func (uc *StudyUseCase) WordHistory(ctx context.Context, wordID vocabulary.ID) ([]*learning.StudyRecord, error) {
	records, err := uc.records.FindByWord(ctx, wordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history of word %d: %w", wordID, err)
	}
	return records, nil
}

// TodayStats returns today's activity for a book; study time covers all books
func (uc *StudyUseCase) TodayStats(ctx context.Context, bookID book.ID) (*DailyStats, error) {
	now := uc.clock.Now().In(uc.location)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.location)
	dayEnd := dayStart.AddDate(0, 0, 1)

	learned, err := uc.records.CountByType(ctx, bookID, learning.StudyTypeLearn, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to count learned words: %w", err)
	}

	reviewed, err := uc.records.CountByType(ctx, bookID, learning.StudyTypeReview, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviewed words: %w", err)
	}

	studyTime, err := uc.records.TotalDuration(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get study time: %w", err)
	}

	return &DailyStats{
		NewWordsLearned: learned,
		WordsReviewed:   reviewed,
		StudyTime:       studyTime,
	}, nil
}

// InferQuality maps a know/don't-know answer to a review quality.
// First encounters are Good or Again; in reviews a known word is graded
// by how fast the learner answered.
func InferQuality(sessionType SessionType, result StudyResult) learning.Quality {
	if !result.Known {
		return learning.Again
	}
	if sessionType == SessionTypeNewWords {
		return learning.Good
	}

	switch {
	case result.ResponseTime < easyResponseTime:
		return learning.Easy
	case result.ResponseTime < goodResponseTime:
		return learning.Good
	default:
		return learning.Hard
	}
}
