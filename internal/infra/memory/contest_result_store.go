package memory

import (
	"context"
	"sort"
	"sync"

	"exam-prep-service/internal/domain"
)

// ContestResultStore keeps contest submissions in process memory, unique per
// (userId, contestId).
type ContestResultStore struct {
	mu     sync.RWMutex
	byID   map[string]domain.ContestResult
	byPair map[string]string
}

func NewContestResultStore() *ContestResultStore {
	return &ContestResultStore{
		byID:   make(map[string]domain.ContestResult),
		byPair: make(map[string]string),
	}
}

func pairKey(userID, contestID string) string {
	return userID + "|" + contestID
}

func (s *ContestResultStore) Insert(_ context.Context, result *domain.ContestResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(result.UserID, result.ContestID)
	if _, ok := s.byPair[key]; ok {
		return domain.ErrDuplicateSubmission
	}
	s.byID[result.ID] = cloneResult(*result)
	s.byPair[key] = result.ID
	return nil
}

func (s *ContestResultStore) ListByContest(_ context.Context, contestID string) ([]domain.ContestResult, error) {
	s.mu.RLock()
	out := make([]domain.ContestResult, 0)
	for _, r := range s.byID {
		if r.ContestID == contestID {
			out = append(out, cloneResult(r))
		}
	}
	s.mu.RUnlock()
	domain.SortContestResults(out)
	return out, nil
}

func (s *ContestResultStore) ListByUser(_ context.Context, userID string) ([]domain.ContestResult, error) {
	s.mu.RLock()
	out := make([]domain.ContestResult, 0)
	for _, r := range s.byID {
		if r.UserID == userID {
			out = append(out, cloneResult(r))
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

func (s *ContestResultStore) Find(_ context.Context, userID, contestID string) (domain.ContestResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPair[pairKey(userID, contestID)]
	if !ok {
		return domain.ContestResult{}, domain.ErrResultNotFound
	}
	return cloneResult(s.byID[id]), nil
}

// Rerank holds the write lock across the read and the rank write.
func (s *ContestResultStore) Rerank(_ context.Context, contestID string, rank func([]domain.ContestResult) []domain.ContestResult) ([]domain.ContestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := make([]domain.ContestResult, 0)
	for _, r := range s.byID {
		if r.ContestID == contestID {
			current = append(current, cloneResult(r))
		}
	}
	ranked := rank(current)
	for _, r := range ranked {
		stored, ok := s.byID[r.ID]
		if !ok || stored.ContestID != contestID {
			continue
		}
		stored.Rank = r.Rank
		s.byID[r.ID] = stored
	}
	return ranked, nil
}

func cloneResult(r domain.ContestResult) domain.ContestResult {
	if r.AnswersMap != nil {
		answers := make(map[string]int, len(r.AnswersMap))
		for k, v := range r.AnswersMap {
			answers[k] = v
		}
		r.AnswersMap = answers
	}
	return r
}
