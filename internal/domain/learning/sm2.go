package learning

import (
	"math"

	"cloud.google.com/go/civil"

	"wordmaster/internal/domain/book"
	"wordmaster/internal/domain/vocabulary"
)

// SM-2 parameters
const (
	// DefaultEasinessFactor is the easiness a word starts with
	DefaultEasinessFactor = 2.5
	// MinEasinessFactor is the floor applied on every transition
	MinEasinessFactor = 1.3

	initialInterval = 1
	firstInterval   = 1
	secondInterval  = 6
)

// sm2Result holds the numeric outcome of one SM-2 step
type sm2Result struct {
	interval        int
	easinessFactor  float64
	repetitionCount int
}

// Initialize creates the schedule of a word studied for the first time.
// The word is due on the same day so it gets reinforced promptly.
// Callers must not use it to overwrite an existing state.
func Initialize(wordID vocabulary.ID, bookID book.ID, today civil.Date) ReviewState {
	return ReviewState{
		wordID:          wordID,
		bookID:          bookID,
		interval:        initialInterval,
		easinessFactor:  DefaultEasinessFactor,
		repetitionCount: 0,
		nextReviewDate:  today,
	}
}

// Transition applies one review to current and returns the resulting state.
// It performs no I/O and trusts today as given.
func Transition(current *ReviewState, quality Quality, today civil.Date) (ReviewState, error) {
	if current == nil {
		return ReviewState{}, ErrStateNotFound
	}

	q, err := quality.score()
	if err != nil {
		return ReviewState{}, err
	}

	result := calculateSM2(current.interval, current.easinessFactor, current.repetitionCount, q)

	next := *current
	next.interval = result.interval
	next.easinessFactor = result.easinessFactor
	next.repetitionCount = result.repetitionCount
	next.lastReviewDate = today
	next.nextReviewDate = today.AddDays(result.interval)

	return next, nil
}

// calculateSM2 is the SM-2 step on the numeric 0-5 quality scale:
//
//	EF' = max(1.3, EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02)))
//	I(1) = 1, I(2) = 6, I(n) = round(I(n-1) * EF')
func calculateSM2(interval int, easinessFactor float64, repetitionCount int, q float64) sm2Result {
	newEF := easinessFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))

	result := sm2Result{
		easinessFactor: math.Max(MinEasinessFactor, newEF),
	}

	if q < passingScore {
		result.interval = firstInterval
		result.repetitionCount = 0
		return result
	}

	result.repetitionCount = repetitionCount + 1
	switch result.repetitionCount {
	case 1:
		result.interval = firstInterval
	case 2:
		result.interval = secondInterval
	default:
		result.interval = int(math.Round(float64(interval) * result.easinessFactor))
	}

	return result
}
