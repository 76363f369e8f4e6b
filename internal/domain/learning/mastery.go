package learning

import "fmt"

// MasteryLevel classifies how well a word is known.
// The numeric values are persisted and must not change.
type MasteryLevel int

const (
	NotLearned MasteryLevel = 0
	Learning   MasteryLevel = 1
	Mastered   MasteryLevel = 2
)

// Thresholds a word must reach to be considered mastered.
const (
	MasteryRepetitions = 5
	MasteryInterval    = 30
)

func (m MasteryLevel) String() string {
	switch m {
	case NotLearned:
		return "NotLearned"
	case Learning:
		return "Learning"
	case Mastered:
		return "Mastered"
	default:
		return fmt.Sprintf("MasteryLevel(%d)", int(m))
	}
}

// ClassifyMastery derives the mastery level from the repetition count and interval alone.
func ClassifyMastery(repetitionCount, interval int) MasteryLevel {
	switch {
	case repetitionCount >= MasteryRepetitions && interval >= MasteryInterval:
		return Mastered
	case repetitionCount > 0:
		return Learning
	default:
		return NotLearned
	}
}
