package app

import (
	"context"
	"strings"
	"time"

	"exam-prep-service/internal/config"
	"exam-prep-service/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ResultService records ordinary quiz results and answers the windowed
// daily and weekly leaderboard queries over them.
type ResultService struct {
	store    QuizResultStore
	notifier QuizNotifier
	clock    func() time.Time
	loc      *time.Location
}

type ResultOption func(*ResultService)

func WithResultClock(now func() time.Time) ResultOption {
	return func(s *ResultService) { s.clock = now }
}

func WithResultLocation(loc *time.Location) ResultOption {
	return func(s *ResultService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithQuizNotifier(n QuizNotifier) ResultOption {
	return func(s *ResultService) { s.notifier = n }
}

func NewResultService(store QuizResultStore, opts ...ResultOption) *ResultService {
	s := &ResultService{store: store, clock: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ResultService) now() time.Time {
	return s.clock().In(s.loc)
}

// Submit stores a quiz result, stamping completion time server-side.
func (s *ResultService) Submit(ctx context.Context, result domain.Result) (domain.Result, error) {
	now := s.now()
	result.ID = uuid.NewString()
	result.ContestType = normalizeTag(result.ContestType)
	result.CompletedAt = now
	result.CreatedAt = now

	if err := s.store.Insert(ctx, &result); err != nil {
		config.WithContext(ctx).WithError(err).WithField("user_id", result.UserID).Error("failed to store quiz result")
		return domain.Result{}, err
	}
	config.WithContext(ctx).WithFields(logrus.Fields{
		"user_id": result.UserID,
		"quiz_id": result.QuizID,
		"score":   result.Score,
	}).Info("quiz result submitted")

	if s.notifier != nil {
		s.notifier.QuizCompleted(ctx, result)
	}
	return result, nil
}

func (s *ResultService) ByID(ctx context.Context, id string) (domain.Result, error) {
	return s.store.FindByID(ctx, id)
}

func (s *ResultService) ByUser(ctx context.Context, userID string) ([]domain.Result, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *ResultService) ByQuiz(ctx context.Context, quizID string) ([]domain.Result, error) {
	return s.store.ListByQuiz(ctx, quizID)
}

func (s *ResultService) ByContestType(ctx context.Context, contestType string) ([]domain.Result, error) {
	return s.store.ListByContestType(ctx, normalizeTag(contestType))
}

// UserAverage is the mean percentage over the user's results. Results
// without total marks are skipped; no results yields zero.
func (s *ResultService) UserAverage(ctx context.Context, userID string) (float64, error) {
	results, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	var sum float64
	var n int
	for _, r := range results {
		if r.TotalMarks == 0 {
			continue
		}
		sum += r.Percentage()
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

// DailyLeaderboard lists today's results for the tag, best first.
func (s *ResultService) DailyLeaderboard(ctx context.Context, contestType string) ([]domain.Result, error) {
	from, to := s.dayWindow()
	return s.windowLeaderboard(ctx, contestType, from, to)
}

// WeeklyLeaderboard lists results of the current Monday-to-Sunday week, best first.
func (s *ResultService) WeeklyLeaderboard(ctx context.Context, contestType string) ([]domain.Result, error) {
	from, to := s.weekWindow()
	return s.windowLeaderboard(ctx, contestType, from, to)
}

func (s *ResultService) HasParticipatedToday(ctx context.Context, userID, contestType string) (bool, error) {
	from, to := s.dayWindow()
	return s.store.ExistsCompletedBetween(ctx, userID, normalizeTag(contestType), from, to)
}

func (s *ResultService) HasParticipatedThisWeek(ctx context.Context, userID, contestType string) (bool, error) {
	from, to := s.weekWindow()
	return s.store.ExistsCompletedBetween(ctx, userID, normalizeTag(contestType), from, to)
}

func (s *ResultService) windowLeaderboard(ctx context.Context, contestType string, from, to time.Time) ([]domain.Result, error) {
	results, err := s.store.ListCompletedBetween(ctx, normalizeTag(contestType), from, to)
	if err != nil {
		return nil, err
	}
	domain.SortQuizResults(results)
	return results, nil
}

func (s *ResultService) dayWindow() (time.Time, time.Time) {
	start := StartOfDay(s.now())
	return start, start.AddDate(0, 0, 1)
}

func (s *ResultService) weekWindow() (time.Time, time.Time) {
	start := StartOfWeek(s.now())
	return start, start.AddDate(0, 0, 7)
}

func normalizeTag(tag string) string {
	return strings.ToUpper(strings.TrimSpace(tag))
}
