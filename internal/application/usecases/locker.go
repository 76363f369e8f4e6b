package usecases

import "context"

// Locker serializes the read-transition-write cycle of a single word.
type Locker interface {
	// Lock blocks until key is held or ctx is done and returns the release func.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
