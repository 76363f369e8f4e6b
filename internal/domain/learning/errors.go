package learning

import "errors"

// Sentinel errors for the learning package.
// Use errors.Is to check: errors.Is(err, learning.ErrInvalidQuality)
var (
	ErrInvalidQuality = errors.New("learning: invalid review quality")
	ErrStateNotFound  = errors.New("learning: review state not found")
)
