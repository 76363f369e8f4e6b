package usecases

import "errors"

// Sentinel errors for the use cases.
var (
	ErrNoActiveBook    = errors.New("usecases: no active book")
	ErrNothingToStudy  = errors.New("usecases: no words to study")
	ErrSessionFinished = errors.New("usecases: session has no more words")
)
