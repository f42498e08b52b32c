package domain

import (
	"context"
	"time"
)

// RunLock guards the single authoritative reconciliation pass per user.
// Acquire returns ErrRunInProgress when another run holds the lock.
type RunLock interface {
	Acquire(ctx context.Context, userID string, ttl time.Duration) (release func(context.Context) error, err error)
}
