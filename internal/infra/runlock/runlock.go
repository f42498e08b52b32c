// Package runlock implements the per-user single-writer lock for
// reconciliation runs on top of redis.
package runlock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tidemark-app/tidemark-scheduling/internal/domain"
)

const lockKeyPrefix = "scheduler:run:"

// releaseScript deletes the lock only when it is still held by the same
// owner, so an expired lock reacquired by another run is never released
// from here.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisRunLock struct {
	client *redis.Client
}

func NewRunLock(client *redis.Client) domain.RunLock {
	return &redisRunLock{client: client}
}

func (l *redisRunLock) Acquire(ctx context.Context, userID string, ttl time.Duration) (func(context.Context) error, error) {
	key := lockKeyPrefix + userID
	owner := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrRunInProgress
	}

	release := func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{key}, owner).Err()
	}
	return release, nil
}
