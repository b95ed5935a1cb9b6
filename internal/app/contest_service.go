package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"exam-prep-service/internal/config"
	"exam-prep-service/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DailyQuestionCount  = 10
	WeeklyQuestionCount = 30
	MarksPerQuestion    = 1
	TopPerformersLimit  = 10
	RecentContestsLimit = 10
)

// ContestService holds the contest use cases: generation, submission,
// ranking and the leaderboard queries.
type ContestService struct {
	contests ContestStore
	results  ContestResultStore
	pool     QuestionPool
	lock     CreationLock
	notifier ContestNotifier
	hub      *LeaderboardHub
	clock    func() time.Time
	loc      *time.Location
	sf       singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

// ContestOption customises a ContestService.
type ContestOption func(*ContestService)

// WithClock replaces time.Now, mainly for deterministic tests.
func WithClock(now func() time.Time) ContestOption {
	return func(s *ContestService) { s.clock = now }
}

// WithLocation sets the zone that day and week boundaries are computed in.
func WithLocation(loc *time.Location) ContestOption {
	return func(s *ContestService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithCreationLock serialises contest creation and re-ranking across processes.
func WithCreationLock(lock CreationLock) ContestOption {
	return func(s *ContestService) { s.lock = lock }
}

// WithContestNotifier receives an event after every accepted submission.
func WithContestNotifier(n ContestNotifier) ContestOption {
	return func(s *ContestService) { s.notifier = n }
}

// WithRandSource makes question sampling reproducible.
func WithRandSource(src rand.Source) ContestOption {
	return func(s *ContestService) { s.rnd = rand.New(src) }
}

func NewContestService(contests ContestStore, results ContestResultStore, pool QuestionPool, opts ...ContestOption) *ContestService {
	s := &ContestService{
		contests: contests,
		results:  results,
		pool:     pool,
		hub:      NewLeaderboardHub(),
		clock:    time.Now,
		loc:      time.Local,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ContestService) now() time.Time {
	return s.clock().In(s.loc)
}

// CreateDailyContest creates today's contest. It returns domain.ErrContestExists
// when today's contest is already there.
func (s *ContestService) CreateDailyContest(ctx context.Context) (domain.Contest, error) {
	return s.createContest(ctx, planContest(domain.ContestDaily, s.now()))
}

// CreateWeeklyContest creates the contest of the current ISO week. It returns
// domain.ErrContestExists when this week's contest is already there.
func (s *ContestService) CreateWeeklyContest(ctx context.Context) (domain.Contest, error) {
	return s.createContest(ctx, planContest(domain.ContestWeekly, s.now()))
}

// CreateContest dispatches to the daily or weekly generator.
func (s *ContestService) CreateContest(ctx context.Context, contestType domain.ContestType) (domain.Contest, error) {
	switch contestType {
	case domain.ContestDaily:
		return s.CreateDailyContest(ctx)
	case domain.ContestWeekly:
		return s.CreateWeeklyContest(ctx)
	}
	return domain.Contest{}, domain.ErrInvalidContestType
}

func (s *ContestService) createContest(ctx context.Context, plan contestPlan) (domain.Contest, error) {
	log := config.WithContext(ctx).WithFields(logrus.Fields{
		"contest_type": plan.contestType,
		"period":       plan.periodKey,
	})

	if s.lock != nil {
		release, err := s.lock.Acquire(ctx, "contest:create:"+plan.periodKey)
		if err != nil {
			return domain.Contest{}, err
		}
		defer release()
	}

	if _, err := s.contests.FindByPeriod(ctx, plan.contestType, plan.periodKey); err == nil {
		return domain.Contest{}, domain.ErrContestExists
	} else if !errors.Is(err, domain.ErrContestNotFound) {
		return domain.Contest{}, err
	}

	questions, err := s.sampleQuestions(ctx, plan.count)
	if err != nil {
		return domain.Contest{}, err
	}

	now := s.now()
	contest := domain.Contest{
		ID:               uuid.NewString(),
		Title:            plan.title,
		Description:      plan.description,
		ContestType:      plan.contestType,
		ContestDate:      plan.date,
		WeekNumber:       plan.week,
		Year:             plan.year,
		PeriodKey:        plan.periodKey,
		Questions:        questions,
		TotalQuestions:   len(questions),
		TimeLimit:        len(questions),
		MarksPerQuestion: MarksPerQuestion,
		TotalMarks:       len(questions) * MarksPerQuestion,
		IsActive:         true,
		StartTime:        plan.start,
		EndTime:          plan.end,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	created, err := s.contests.CreateIfAbsent(ctx, &contest)
	if err != nil {
		log.WithError(err).Error("failed to store contest")
		return domain.Contest{}, err
	}
	if !created {
		return domain.Contest{}, domain.ErrContestExists
	}

	if err := s.contests.DeactivateOthers(ctx, contest.ContestType, contest.ID, now); err != nil {
		log.WithError(err).Error("failed to deactivate previous contests")
		return contest, fmt.Errorf("deactivate previous contests: %w", err)
	}

	log.WithField("contest_id", contest.ID).Info("contest created")
	return contest, nil
}

// ActiveContest returns the contest of the current period, creating it on
// first access.
func (s *ContestService) ActiveContest(ctx context.Context, contestType domain.ContestType) (domain.Contest, error) {
	now := s.now()
	key := PeriodKey(contestType, now)

	contest, err := s.contests.FindByPeriod(ctx, contestType, key)
	if err == nil || !errors.Is(err, domain.ErrContestNotFound) {
		return contest, err
	}

	_, err, _ = s.sf.Do(key, func() (interface{}, error) {
		_, err := s.createContest(ctx, planContest(contestType, now))
		if errors.Is(err, domain.ErrContestExists) {
			return nil, nil
		}
		return nil, err
	})
	if err != nil {
		return domain.Contest{}, err
	}
	return s.contests.FindByPeriod(ctx, contestType, key)
}

func (s *ContestService) ContestByID(ctx context.Context, id string) (domain.Contest, error) {
	return s.contests.FindByID(ctx, id)
}

// SubmitContestResult records a user's single submission and re-ranks the contest.
// The client-reported score is trusted.
func (s *ContestService) SubmitContestResult(ctx context.Context, result domain.ContestResult) (domain.ContestResult, error) {
	log := config.WithContext(ctx).WithFields(logrus.Fields{
		"contest_id": result.ContestID,
		"user_id":    result.UserID,
	})

	if result.ContestID == "" || result.UserID == "" {
		return domain.ContestResult{}, domain.ErrInvalidSubmission
	}

	contest, err := s.contests.FindByID(ctx, result.ContestID)
	if err != nil {
		return domain.ContestResult{}, err
	}

	now := s.now()
	result.ID = uuid.NewString()
	result.ContestType = contest.ContestType
	result.Rank = 0
	result.SubmittedAt = now
	result.CreatedAt = now
	result.ComputeDerived()

	if err := s.results.Insert(ctx, &result); err != nil {
		if errors.Is(err, domain.ErrDuplicateSubmission) {
			log.Warn("duplicate contest submission rejected")
		} else {
			log.WithError(err).Error("failed to store contest result")
		}
		return domain.ContestResult{}, err
	}

	// The row is stored at this point. A failed re-rank leaves it at rank 0
	// until the next submission re-ranks the contest.
	ranked, err := s.UpdateRanks(ctx, contest.ID)
	if err != nil {
		log.WithError(err).Error("failed to update ranks")
	}
	for _, r := range ranked {
		if r.ID == result.ID {
			result.Rank = r.Rank
			break
		}
	}

	log.WithFields(logrus.Fields{"score": result.Score, "rank": result.Rank}).Info("contest result submitted")

	if s.notifier != nil {
		s.notifier.ContestCompleted(ctx, result, contest)
	}
	return result, nil
}

// UpdateRanks assigns ranks 1..N to every result of the contest through the
// store's atomic Rerank and pushes the new leaderboard to live subscribers.
// With a CreationLock configured, reranks of a contest are also serialised
// across processes.
func (s *ContestService) UpdateRanks(ctx context.Context, contestID string) ([]domain.ContestResult, error) {
	if s.lock != nil {
		release, err := s.lock.Acquire(ctx, "contest:rank:"+contestID)
		if err != nil {
			return nil, fmt.Errorf("acquire rank lock: %w", err)
		}
		defer release()
	}

	ranked, err := s.results.Rerank(ctx, contestID, RankResults)
	if err != nil {
		return nil, fmt.Errorf("persist ranks: %w", err)
	}

	s.hub.publish(domain.Leaderboard{
		ContestID: contestID,
		Entries:   ranked,
		UpdatedAt: s.now(),
	})
	return ranked, nil
}

// RankResults returns a sorted copy of results with dense ordinal ranks.
func RankResults(results []domain.ContestResult) []domain.ContestResult {
	ranked := make([]domain.ContestResult, len(results))
	copy(ranked, results)
	domain.SortContestResults(ranked)
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

func (s *ContestService) Leaderboard(ctx context.Context, contestID string) ([]domain.ContestResult, error) {
	return s.results.ListByContest(ctx, contestID)
}

func (s *ContestService) TopPerformers(ctx context.Context, contestID string) ([]domain.ContestResult, error) {
	results, err := s.results.ListByContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if len(results) > TopPerformersLimit {
		results = results[:TopPerformersLimit]
	}
	return results, nil
}

// Stats aggregates a contest's results. An empty contest yields all zeros.
func (s *ContestService) Stats(ctx context.Context, contestID string) (domain.ContestStats, error) {
	results, err := s.results.ListByContest(ctx, contestID)
	if err != nil {
		return domain.ContestStats{}, err
	}
	if len(results) == 0 {
		return domain.ContestStats{}, nil
	}

	stats := domain.ContestStats{
		ParticipantCount: len(results),
		HighestScore:     results[0].Score,
		LowestScore:      results[0].Score,
	}
	var scoreSum, timeSum float64
	for _, r := range results {
		scoreSum += float64(r.Score)
		timeSum += float64(r.TimeTakenSeconds)
		if r.Score > stats.HighestScore {
			stats.HighestScore = r.Score
		}
		if r.Score < stats.LowestScore {
			stats.LowestScore = r.Score
		}
	}
	n := float64(len(results))
	stats.AverageScore = math.Round(scoreSum/n*100) / 100
	stats.AverageTime = int64(math.Round(timeSum / n))
	return stats, nil
}

func (s *ContestService) HasUserParticipated(ctx context.Context, userID, contestID string) (bool, error) {
	_, err := s.results.Find(ctx, userID, contestID)
	if errors.Is(err, domain.ErrResultNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *ContestService) UserContestResult(ctx context.Context, userID, contestID string) (domain.ContestResult, error) {
	return s.results.Find(ctx, userID, contestID)
}

func (s *ContestService) UserHistory(ctx context.Context, userID string) ([]domain.ContestResult, error) {
	return s.results.ListByUser(ctx, userID)
}

func (s *ContestService) RecentContests(ctx context.Context) ([]domain.Contest, error) {
	return s.contests.ListRecent(ctx, RecentContestsLimit)
}

func (s *ContestService) ContestsByType(ctx context.Context, contestType domain.ContestType) ([]domain.Contest, error) {
	return s.contests.ListByType(ctx, contestType)
}

// Subscribe returns a channel of leaderboard snapshots for a contest, seeded
// with the current one. The caller must invoke cancel to release it.
func (s *ContestService) Subscribe(ctx context.Context, contestID string) (<-chan domain.Leaderboard, func(), error) {
	if _, err := s.contests.FindByID(ctx, contestID); err != nil {
		return nil, nil, err
	}
	entries, err := s.results.ListByContest(ctx, contestID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.subscribe(contestID, domain.Leaderboard{
		ContestID: contestID,
		Entries:   entries,
		UpdatedAt: s.now(),
	})
	return ch, cancel, nil
}
