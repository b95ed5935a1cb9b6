package app_test

import (
	"context"
	"testing"
	"time"

	"exam-prep-service/internal/app"
	"exam-prep-service/internal/domain"
	"exam-prep-service/internal/infra/memory"
)

type quizRecorder struct {
	results []domain.Result
}

func (q *quizRecorder) QuizCompleted(_ context.Context, r domain.Result) {
	q.results = append(q.results, r)
}

func TestResultSubmitStampsAndNotifies(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 21, 10, 0, 0, 0, time.UTC)
	notifier := &quizRecorder{}
	svc := app.NewResultService(memory.NewQuizResultStore(),
		app.WithResultClock(func() time.Time { return now }),
		app.WithResultLocation(time.UTC),
		app.WithQuizNotifier(notifier),
	)

	saved, err := svc.Submit(ctx, domain.Result{UserID: "u1", QuizID: "quiz-1", Score: 8, TotalMarks: 10, ContestType: "daily"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if saved.ID == "" || !saved.CompletedAt.Equal(now) || saved.ContestType != "DAILY" {
		t.Fatalf("unexpected saved result: %+v", saved)
	}
	if len(notifier.results) != 1 {
		t.Fatalf("expected one completion event, got %d", len(notifier.results))
	}

	got, err := svc.ByID(ctx, saved.ID)
	if err != nil || got.QuizID != "quiz-1" {
		t.Fatalf("by id: %+v %v", got, err)
	}
}

func TestWindowedLeaderboards(t *testing.T) {
	ctx := context.Background()
	// Wednesday of ISO week 43.
	now := time.Date(2026, 10, 21, 10, 0, 0, 0, time.UTC)
	store := memory.NewQuizResultStore()
	svc := app.NewResultService(store,
		app.WithResultClock(func() time.Time { return now }),
		app.WithResultLocation(time.UTC),
	)

	seed := []domain.Result{
		{ID: "today-low", UserID: "u1", ContestType: "DAILY", Score: 5, TimeTakenSeconds: 50, CompletedAt: now.Add(-time.Hour)},
		{ID: "today-high-slow", UserID: "u2", ContestType: "DAILY", Score: 9, TimeTakenSeconds: 400, CompletedAt: now.Add(-2 * time.Hour)},
		{ID: "today-high-fast", UserID: "u3", ContestType: "DAILY", Score: 9, TimeTakenSeconds: 100, CompletedAt: now.Add(-3 * time.Hour)},
		{ID: "monday", UserID: "u4", ContestType: "DAILY", Score: 10, CompletedAt: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)},
		{ID: "last-sunday", UserID: "u5", ContestType: "DAILY", Score: 10, CompletedAt: time.Date(2026, 10, 18, 23, 59, 59, 0, time.UTC)},
		{ID: "weekly-tag", UserID: "u1", ContestType: "WEEKLY", Score: 1, CompletedAt: now},
	}
	for i := range seed {
		if err := store.Insert(ctx, &seed[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	daily, err := svc.DailyLeaderboard(ctx, "daily")
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	want := []string{"today-high-fast", "today-high-slow", "today-low"}
	if len(daily) != len(want) {
		t.Fatalf("expected %d daily results, got %+v", len(want), daily)
	}
	for i, id := range want {
		if daily[i].ID != id {
			t.Fatalf("daily position %d: expected %s, got %s", i, id, daily[i].ID)
		}
	}

	weekly, _ := svc.WeeklyLeaderboard(ctx, "DAILY")
	if len(weekly) != 4 || weekly[0].ID != "monday" {
		t.Fatalf("expected monday result to lead the week, got %+v", weekly)
	}

	if ok, _ := svc.HasParticipatedToday(ctx, "u4", "DAILY"); ok {
		t.Fatalf("expected u4 not to have participated today")
	}
	if ok, _ := svc.HasParticipatedThisWeek(ctx, "u4", "DAILY"); !ok {
		t.Fatalf("expected u4 to have participated this week")
	}
	if ok, _ := svc.HasParticipatedThisWeek(ctx, "u5", "DAILY"); ok {
		t.Fatalf("expected last week's result to be excluded")
	}
}

func TestUserAverageSkipsZeroMarks(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuizResultStore()
	svc := app.NewResultService(store)

	if avg, _ := svc.UserAverage(ctx, "u1"); avg != 0 {
		t.Fatalf("expected zero average without results, got %v", avg)
	}

	_ = store.Insert(ctx, &domain.Result{ID: "a", UserID: "u1", Score: 8, TotalMarks: 10})
	_ = store.Insert(ctx, &domain.Result{ID: "b", UserID: "u1", Score: 3, TotalMarks: 5})
	_ = store.Insert(ctx, &domain.Result{ID: "c", UserID: "u1", Score: 2, TotalMarks: 0})

	avg, err := svc.UserAverage(ctx, "u1")
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if avg != 70 {
		t.Fatalf("expected 70, got %v", avg)
	}
}
