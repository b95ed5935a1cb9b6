package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"exam-prep-service/internal/app"
	"exam-prep-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// LeaderboardRepository caches contest leaderboards in Redis in front of a
// ContestResultStore. Each leaderboard is a JSON array under
// leaderboard:{contestID}; writes to a contest drop its key.
type LeaderboardRepository struct {
	app.ContestResultStore

	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewLeaderboardRepository(client *redis.Client, store app.ContestResultStore, ttl time.Duration) *LeaderboardRepository {
	return &LeaderboardRepository{
		ContestResultStore: store,
		client:             client,
		ttl:                ttl,
		rnd:                rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *LeaderboardRepository) ListByContest(ctx context.Context, contestID string) ([]domain.ContestResult, error) {
	key := leaderboardKey(contestID)
	if results, ok := r.cached(ctx, key); ok {
		return results, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if results, ok := r.cached(ctx, key); ok {
			return results, nil
		}

		results, err := r.ContestResultStore.ListByContest(ctx, contestID)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(results); err == nil {
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.ContestResult), nil
}

func (r *LeaderboardRepository) Insert(ctx context.Context, result *domain.ContestResult) error {
	if err := r.ContestResultStore.Insert(ctx, result); err != nil {
		return err
	}
	r.invalidate(ctx, result.ContestID)
	return nil
}

func (r *LeaderboardRepository) Rerank(ctx context.Context, contestID string, rank func([]domain.ContestResult) []domain.ContestResult) ([]domain.ContestResult, error) {
	ranked, err := r.ContestResultStore.Rerank(ctx, contestID, rank)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, contestID)
	return ranked, nil
}

func (r *LeaderboardRepository) cached(ctx context.Context, key string) ([]domain.ContestResult, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	results := make([]domain.ContestResult, 0)
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, false
	}
	if results == nil {
		results = make([]domain.ContestResult, 0)
	}
	return results, true
}

// invalidate is best effort; a stale entry lives at most one TTL.
func (r *LeaderboardRepository) invalidate(ctx context.Context, contestID string) {
	_ = r.client.Del(ctx, leaderboardKey(contestID)).Err()
}

func leaderboardKey(contestID string) string {
	return "leaderboard:" + contestID
}

func (r *LeaderboardRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
