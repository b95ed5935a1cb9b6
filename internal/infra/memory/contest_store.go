package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"exam-prep-service/internal/domain"
)

// ContestStore keeps contests in process memory.
type ContestStore struct {
	mu       sync.RWMutex
	byID     map[string]domain.Contest
	byPeriod map[string]string
}

func NewContestStore() *ContestStore {
	return &ContestStore{
		byID:     make(map[string]domain.Contest),
		byPeriod: make(map[string]string),
	}
}

func periodIndex(contestType domain.ContestType, periodKey string) string {
	return string(contestType) + "|" + periodKey
}

func (s *ContestStore) CreateIfAbsent(_ context.Context, contest *domain.Contest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := periodIndex(contest.ContestType, contest.PeriodKey)
	if _, ok := s.byPeriod[idx]; ok {
		return false, nil
	}
	s.byID[contest.ID] = cloneContest(*contest)
	s.byPeriod[idx] = contest.ID
	return true, nil
}

func (s *ContestStore) DeactivateOthers(_ context.Context, contestType domain.ContestType, keepID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.byID {
		if c.ContestType != contestType || id == keepID || !c.IsActive {
			continue
		}
		c.IsActive = false
		c.UpdatedAt = at
		s.byID[id] = c
	}
	return nil
}

func (s *ContestStore) FindByID(_ context.Context, id string) (domain.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return domain.Contest{}, domain.ErrContestNotFound
	}
	return cloneContest(c), nil
}

func (s *ContestStore) FindByPeriod(_ context.Context, contestType domain.ContestType, periodKey string) (domain.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPeriod[periodIndex(contestType, periodKey)]
	if !ok {
		return domain.Contest{}, domain.ErrContestNotFound
	}
	return cloneContest(s.byID[id]), nil
}

func (s *ContestStore) ListByType(_ context.Context, contestType domain.ContestType) ([]domain.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Contest, 0)
	for _, c := range s.byID {
		if c.ContestType == contestType {
			out = append(out, cloneContest(c))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *ContestStore) ListRecent(_ context.Context, limit int) ([]domain.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Contest, 0, len(s.byID))
	for _, c := range s.byID {
		out = append(out, cloneContest(c))
	}
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortNewestFirst(contests []domain.Contest) {
	sort.Slice(contests, func(i, j int) bool {
		if !contests[i].CreatedAt.Equal(contests[j].CreatedAt) {
			return contests[i].CreatedAt.After(contests[j].CreatedAt)
		}
		return contests[i].ID < contests[j].ID
	})
}

func cloneContest(c domain.Contest) domain.Contest {
	questions := make([]domain.ContestQuestion, len(c.Questions))
	for i, q := range c.Questions {
		q.Options = append([]string(nil), q.Options...)
		questions[i] = q
	}
	c.Questions = questions
	return c
}
