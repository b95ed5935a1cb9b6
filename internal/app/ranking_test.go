package app_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"exam-prep-service/internal/app"
	"exam-prep-service/internal/domain"
	"exam-prep-service/internal/infra/memory"
)

// flakyResults fails the next failures reranks with a serialization error.
type flakyResults struct {
	*memory.ContestResultStore

	mu       sync.Mutex
	failures int
}

func (s *flakyResults) Rerank(ctx context.Context, contestID string, rank func([]domain.ContestResult) []domain.ContestResult) ([]domain.ContestResult, error) {
	s.mu.Lock()
	fail := s.failures > 0
	if fail {
		s.failures--
	}
	s.mu.Unlock()
	if fail {
		return nil, errors.New("deadlock detected (SQLSTATE=40P01)")
	}
	return s.ContestResultStore.Rerank(ctx, contestID, rank)
}

func TestSubmitSurvivesFailedRerank(t *testing.T) {
	ctx := context.Background()
	results := &flakyResults{ContestResultStore: memory.NewContestResultStore(), failures: 1}
	service := app.NewContestService(memory.NewContestStore(), results, memory.NewStaticQuestionPool(nil),
		app.WithClock(func() time.Time { return monday }),
		app.WithLocation(time.UTC),
	)
	contest, err := service.ActiveContest(ctx, domain.ContestDaily)
	if err != nil {
		t.Fatalf("active contest: %v", err)
	}

	saved, err := service.SubmitContestResult(ctx, domain.ContestResult{ContestID: contest.ID, UserID: "u1", Score: 5, TotalQuestions: 10})
	if err != nil {
		t.Fatalf("expected the stored submission to be accepted, got %v", err)
	}
	if saved.ID == "" || saved.Rank != 0 {
		t.Fatalf("expected stored result without rank, got %+v", saved)
	}

	// A retry by the same user is still a duplicate; the first write stands.
	if _, err := service.SubmitContestResult(ctx, domain.ContestResult{ContestID: contest.ID, UserID: "u1", Score: 5}); !errors.Is(err, domain.ErrDuplicateSubmission) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	next, err := service.SubmitContestResult(ctx, domain.ContestResult{ContestID: contest.ID, UserID: "u2", Score: 8, TotalQuestions: 10})
	if err != nil {
		t.Fatalf("submit u2: %v", err)
	}
	if next.Rank != 1 {
		t.Fatalf("expected u2 at rank 1, got %d", next.Rank)
	}
	board, _ := service.Leaderboard(ctx, contest.ID)
	if len(board) != 2 || board[1].UserID != "u1" || board[1].Rank != 2 {
		t.Fatalf("expected the next rerank to repair u1, got %+v", board)
	}
}

func TestConcurrentSubmissionsKeepRanksDense(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	contest, _ := f.service.ActiveContest(ctx, domain.ContestWeekly)

	const n = 40
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.service.SubmitContestResult(ctx, domain.ContestResult{
				ContestID:        contest.ID,
				UserID:           fmt.Sprintf("u%02d", i),
				Score:            i % 7,
				TotalQuestions:   30,
				TimeTakenSeconds: int64(100 + i),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	board, err := f.service.Leaderboard(ctx, contest.ID)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	ranks := make([]int, 0, len(board))
	for _, r := range board {
		ranks = append(ranks, r.Rank)
	}
	sort.Ints(ranks)
	if len(ranks) != n {
		t.Fatalf("expected %d results, got %d", n, len(ranks))
	}
	for i, rank := range ranks {
		if rank != i+1 {
			t.Fatalf("expected ranks 1..%d, got %v", n, ranks)
		}
	}
}

func TestUpdateRanksTakesContestLock(t *testing.T) {
	ctx := context.Background()
	lock := &countingLock{}
	f := newFixture(nil, app.WithCreationLock(lock))
	contest, _ := f.service.ActiveContest(ctx, domain.ContestDaily)

	if _, err := f.service.SubmitContestResult(ctx, domain.ContestResult{ContestID: contest.ID, UserID: "u1"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	last := lock.acquired[len(lock.acquired)-1]
	if last != "contest:rank:"+contest.ID {
		t.Fatalf("expected rank lock for the contest, got %v", lock.acquired)
	}
}
