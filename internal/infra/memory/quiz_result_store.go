package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"exam-prep-service/internal/domain"
)

// QuizResultStore keeps quiz results in insertion order.
type QuizResultStore struct {
	mu      sync.RWMutex
	results []domain.Result
}

func NewQuizResultStore() *QuizResultStore {
	return &QuizResultStore{}
}

func (s *QuizResultStore) Insert(_ context.Context, result *domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, *result)
	return nil
}

func (s *QuizResultStore) FindByID(_ context.Context, id string) (domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.results {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Result{}, domain.ErrResultNotFound
}

func (s *QuizResultStore) ListByUser(_ context.Context, userID string) ([]domain.Result, error) {
	out := s.filter(func(r domain.Result) bool { return r.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}

func (s *QuizResultStore) ListByQuiz(_ context.Context, quizID string) ([]domain.Result, error) {
	return s.filter(func(r domain.Result) bool { return r.QuizID == quizID }), nil
}

func (s *QuizResultStore) ListByContestType(_ context.Context, contestType string) ([]domain.Result, error) {
	return s.filter(func(r domain.Result) bool { return r.ContestType == contestType }), nil
}

func (s *QuizResultStore) ListCompletedBetween(_ context.Context, contestType string, from, to time.Time) ([]domain.Result, error) {
	return s.filter(func(r domain.Result) bool {
		return r.ContestType == contestType && inWindow(r.CompletedAt, from, to)
	}), nil
}

func (s *QuizResultStore) ExistsCompletedBetween(_ context.Context, userID, contestType string, from, to time.Time) (bool, error) {
	found := s.filter(func(r domain.Result) bool {
		return r.UserID == userID && r.ContestType == contestType && inWindow(r.CompletedAt, from, to)
	})
	return len(found) > 0, nil
}

func (s *QuizResultStore) filter(keep func(domain.Result) bool) []domain.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Result, 0)
	for _, r := range s.results {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
