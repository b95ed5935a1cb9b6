package redis

import (
	"context"
	"testing"
	"time"

	"exam-prep-service/internal/domain"
	"exam-prep-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestLeaderboardRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := &countingStore{ContestResultStore: memory.NewContestResultStore()}
	repo := NewLeaderboardRepository(newClient(mr), store, time.Minute)
	ctx := context.Background()

	if err := repo.Insert(ctx, &domain.ContestResult{ID: "r1", ContestID: "c1", UserID: "u1", Score: 4}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	board, err := repo.ListByContest(ctx, "c1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(board) != 1 || store.lists != 1 {
		t.Fatalf("expected one load, got %d entries and %d loads", len(board), store.lists)
	}
	if !mr.Exists("leaderboard:c1") {
		t.Fatalf("expected leaderboard key to be cached")
	}

	// Second call should hit cache, store not consulted.
	_, _ = repo.ListByContest(ctx, "c1")
	if store.lists != 1 {
		t.Fatalf("expected cache hit, loads=%d", store.lists)
	}
}

func TestLeaderboardRepositoryInvalidatesOnWrites(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := &countingStore{ContestResultStore: memory.NewContestResultStore()}
	repo := NewLeaderboardRepository(newClient(mr), store, time.Minute)
	ctx := context.Background()

	_ = repo.Insert(ctx, &domain.ContestResult{ID: "r1", ContestID: "c1", UserID: "u1", Score: 4})
	_, _ = repo.ListByContest(ctx, "c1")

	if _, err := repo.Rerank(ctx, "c1", rankByScore); err != nil {
		t.Fatalf("rerank: %v", err)
	}
	if mr.Exists("leaderboard:c1") {
		t.Fatalf("expected key dropped after re-rank")
	}

	board, _ := repo.ListByContest(ctx, "c1")
	if store.lists != 2 || board[0].Rank != 1 {
		t.Fatalf("expected fresh ranked load, loads=%d board=%+v", store.lists, board)
	}

	if err := repo.Insert(ctx, &domain.ContestResult{ID: "r2", ContestID: "c1", UserID: "u1"}); err != domain.ErrDuplicateSubmission {
		t.Fatalf("expected duplicate passthrough, got %v", err)
	}
	if !mr.Exists("leaderboard:c1") {
		t.Fatalf("expected failed insert to keep the cache")
	}
}

func TestLeaderboardRepositoryCachesEmptyBoards(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := &countingStore{ContestResultStore: memory.NewContestResultStore()}
	repo := NewLeaderboardRepository(newClient(mr), store, time.Minute)

	first, _ := repo.ListByContest(context.Background(), "empty")
	second, _ := repo.ListByContest(context.Background(), "empty")
	if first == nil || second == nil || len(second) != 0 {
		t.Fatalf("expected empty non-nil boards, got %v and %v", first, second)
	}
	if store.lists != 1 {
		t.Fatalf("expected cached empty board, loads=%d", store.lists)
	}
}

type countingStore struct {
	*memory.ContestResultStore
	lists int
}

func (s *countingStore) ListByContest(ctx context.Context, contestID string) ([]domain.ContestResult, error) {
	s.lists++
	return s.ContestResultStore.ListByContest(ctx, contestID)
}

func rankByScore(results []domain.ContestResult) []domain.ContestResult {
	domain.SortContestResults(results)
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
