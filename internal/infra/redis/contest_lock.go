package redis

import (
	"context"
	"fmt"
	"time"

	"exam-prep-service/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds our token, so an
// expired holder cannot free a lock someone else took over.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ContestLock is a SET NX PX lock shared by every instance creating contests.
type ContestLock struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

func NewContestLock(client *redis.Client, ttl time.Duration) *ContestLock {
	return &ContestLock{client: client, ttl: ttl, retry: 50 * time.Millisecond}
}

// Acquire blocks until the lock is taken, the context ends, or one TTL passes
// without success (domain.ErrCreationInProgress).
func (l *ContestLock) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := l.key(key)
	token := uuid.NewString()
	deadline := time.Now().Add(l.ttl)

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", lockKey, err)
		}
		if ok {
			release := func() {
				_ = releaseScript.Run(context.Background(), l.client, []string{lockKey}, token).Err()
			}
			return release, nil
		}
		if time.Now().After(deadline) {
			return nil, domain.ErrCreationInProgress
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}

func (l *ContestLock) key(name string) string {
	return "lock:" + name
}
