package runlock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tidemark-app/tidemark-scheduling/internal/domain"
	"github.com/tidemark-app/tidemark-scheduling/internal/testutil"
)

func TestRunLock_AcquireAndRelease(t *testing.T) {
	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	lock := NewRunLock(client)

	release, err := lock.Acquire(ctx, "user-1", time.Minute)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	// Second acquisition for the same user must be refused
	if _, err := lock.Acquire(ctx, "user-1", time.Minute); !errors.Is(err, domain.ErrRunInProgress) {
		t.Errorf("Acquire() error = %v, want ErrRunInProgress", err)
	}

	// A different user is unaffected
	otherRelease, err := lock.Acquire(ctx, "user-2", time.Minute)
	if err != nil {
		t.Fatalf("Acquire() for second user error = %v", err)
	}
	if err := otherRelease(ctx); err != nil {
		t.Errorf("release() for second user error = %v", err)
	}

	if err := release(ctx); err != nil {
		t.Fatalf("release() error = %v", err)
	}

	// Released lock can be reacquired
	release, err = lock.Acquire(ctx, "user-1", time.Minute)
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	if err := release(ctx); err != nil {
		t.Errorf("release() error = %v", err)
	}
}

func TestRunLock_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	lock := NewRunLock(client)

	if _, err := lock.Acquire(ctx, "user-1", 100*time.Millisecond); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	release, err := lock.Acquire(ctx, "user-1", time.Minute)
	if err != nil {
		t.Fatalf("Acquire() after expiry error = %v", err)
	}
	if err := release(ctx); err != nil {
		t.Errorf("release() error = %v", err)
	}
}

func TestRunLock_StaleReleaseDoesNotUnlockNewOwner(t *testing.T) {
	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	lock := NewRunLock(client)

	staleRelease, err := lock.Acquire(ctx, "user-1", 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	if _, err := lock.Acquire(ctx, "user-1", time.Minute); err != nil {
		t.Fatalf("Acquire() after expiry error = %v", err)
	}

	// The expired holder's release must not free the new owner's lock
	if err := staleRelease(ctx); err != nil {
		t.Fatalf("stale release() error = %v", err)
	}
	if _, err := lock.Acquire(ctx, "user-1", time.Minute); !errors.Is(err, domain.ErrRunInProgress) {
		t.Errorf("Acquire() error = %v, want ErrRunInProgress while new owner holds lock", err)
	}
}
