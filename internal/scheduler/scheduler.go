// Package scheduler triggers daily and weekly contest creation when the
// period rolls over.
package scheduler

import (
	"context"
	"errors"
	"time"

	"exam-prep-service/internal/app"
	"exam-prep-service/internal/config"
	"exam-prep-service/internal/domain"
	"github.com/sirupsen/logrus"
)

type ContestCreator interface {
	CreateDailyContest(ctx context.Context) (domain.Contest, error)
	CreateWeeklyContest(ctx context.Context) (domain.Contest, error)
}

type Scheduler struct {
	creator ContestCreator
	tick    time.Duration
	loc     *time.Location
	now     func() time.Time

	lastDaily  string
	lastWeekly string
}

func New(creator ContestCreator, tick time.Duration, loc *time.Location) *Scheduler {
	if tick <= 0 {
		tick = time.Minute
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{creator: creator, tick: tick, loc: loc, now: time.Now}
}

// Run fires once immediately, then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	log := config.Logger().WithField("component", "scheduler")
	log.WithField("tick", s.tick).Info("contest scheduler started")

	s.fire(ctx)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("contest scheduler stopped")
			return
		case <-ticker.C:
			s.fire(ctx)
		}
	}
}

// fire creates the contest of any period not yet handled by this process.
// A failed attempt is retried on the next tick.
func (s *Scheduler) fire(ctx context.Context) {
	now := s.now().In(s.loc)

	if key := app.DailyPeriodKey(now); key != s.lastDaily {
		if s.create(ctx, key, s.creator.CreateDailyContest) {
			s.lastDaily = key
		}
	}
	if key := app.WeeklyPeriodKey(now); key != s.lastWeekly {
		if s.create(ctx, key, s.creator.CreateWeeklyContest) {
			s.lastWeekly = key
		}
	}
}

func (s *Scheduler) create(ctx context.Context, key string, fn func(context.Context) (domain.Contest, error)) bool {
	log := config.Logger().WithFields(logrus.Fields{"component": "scheduler", "period_key": key})

	contest, err := fn(ctx)
	switch {
	case err == nil:
		log.WithField("contest_id", contest.ID).Info("scheduled contest created")
		return true
	case errors.Is(err, domain.ErrContestExists):
		log.Debug("contest already exists")
		return true
	default:
		log.WithError(err).Error("scheduled contest creation failed")
		return false
	}
}
