package learning

import (
	"time"

	"cloud.google.com/go/civil"

	"wordmaster/internal/domain/book"
	"wordmaster/internal/domain/vocabulary"
)

// ReviewState is the SM-2 scheduling record of a single word.
// It is a value: transitions return a new state and never modify the receiver.
type ReviewState struct {
	wordID          vocabulary.ID
	bookID          book.ID
	interval        int
	easinessFactor  float64
	repetitionCount int
	lastReviewDate  civil.Date
	nextReviewDate  civil.Date
}

// RestoreReviewState rebuilds a state from persisted values (used by repository).
// A zero lastReviewDate means the word has never been reviewed.
func RestoreReviewState(
	wordID vocabulary.ID,
	bookID book.ID,
	interval int,
	easinessFactor float64,
	repetitionCount int,
	lastReviewDate, nextReviewDate civil.Date,
) ReviewState {
	return ReviewState{
		wordID:          wordID,
		bookID:          bookID,
		interval:        interval,
		easinessFactor:  easinessFactor,
		repetitionCount: repetitionCount,
		lastReviewDate:  lastReviewDate,
		nextReviewDate:  nextReviewDate,
	}
}

// Getters
func (s ReviewState) WordID() vocabulary.ID      { return s.wordID }
func (s ReviewState) BookID() book.ID            { return s.bookID }
func (s ReviewState) Interval() int              { return s.interval }
func (s ReviewState) EasinessFactor() float64    { return s.easinessFactor }
func (s ReviewState) RepetitionCount() int       { return s.repetitionCount }
func (s ReviewState) LastReviewDate() civil.Date { return s.lastReviewDate }
func (s ReviewState) NextReviewDate() civil.Date { return s.nextReviewDate }

// MasteryLevel is derived from the repetition count and interval on every call.
func (s ReviewState) MasteryLevel() MasteryLevel {
	return ClassifyMastery(s.repetitionCount, s.interval)
}

// HasBeenReviewed reports whether at least one review was recorded.
func (s ReviewState) HasBeenReviewed() bool {
	return !s.lastReviewDate.IsZero()
}

// IsDue reports whether the word belongs in today's review queue.
// Mastered words are retired from the queue even when their date has passed.
func (s ReviewState) IsDue(today civil.Date) bool {
	return !s.nextReviewDate.After(today) && s.MasteryLevel() != Mastered
}

// StudyType tells whether a word was met for the first time or reviewed
type StudyType string

const (
	StudyTypeLearn  StudyType = "learn"
	StudyTypeReview StudyType = "review"
)

// Outcome is what the learner reported after seeing a word
type Outcome string

const (
	OutcomeKnown   Outcome = "known"
	OutcomeUnknown Outcome = "unknown"
)

// RecordID represents the study record unique identifier
type RecordID int64

// StudyRecord represents a single study event inside a session
type StudyRecord struct {
	id        RecordID
	sessionID string
	wordID    vocabulary.ID
	bookID    book.ID
	studyType StudyType
	outcome   Outcome
	quality   Quality
	duration  time.Duration
	studiedAt time.Time
}

// NewStudyRecord creates a new study record
func NewStudyRecord(
	sessionID string,
	wordID vocabulary.ID,
	bookID book.ID,
	studyType StudyType,
	outcome Outcome,
	quality Quality,
	duration time.Duration,
	studiedAt time.Time,
) *StudyRecord {
	return &StudyRecord{
		sessionID: sessionID,
		wordID:    wordID,
		bookID:    bookID,
		studyType: studyType,
		outcome:   outcome,
		quality:   quality,
		duration:  duration,
		studiedAt: studiedAt,
	}
}

// Getters for StudyRecord
func (r *StudyRecord) ID() RecordID            { return r.id }
func (r *StudyRecord) SessionID() string       { return r.sessionID }
func (r *StudyRecord) WordID() vocabulary.ID   { return r.wordID }
func (r *StudyRecord) BookID() book.ID         { return r.bookID }
func (r *StudyRecord) StudyType() StudyType    { return r.studyType }
func (r *StudyRecord) Outcome() Outcome        { return r.outcome }
func (r *StudyRecord) Quality() Quality        { return r.quality }
func (r *StudyRecord) Duration() time.Duration { return r.duration }
func (r *StudyRecord) StudiedAt() time.Time    { return r.studiedAt }

// SetID sets the record ID (used by repository)
func (r *StudyRecord) SetID(id RecordID) {
	r.id = id
}
