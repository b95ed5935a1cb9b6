package app_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"exam-prep-service/internal/app"
	"exam-prep-service/internal/domain"
	"exam-prep-service/internal/infra/memory"
)

// monday is 2026-10-19, ISO week 43.
var monday = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type fixture struct {
	service  *app.ContestService
	contests *memory.ContestStore
	results  *memory.ContestResultStore
	clock    *testClock
}

func newFixture(pool []domain.Question, opts ...app.ContestOption) fixture {
	clock := &testClock{now: monday}
	contests := memory.NewContestStore()
	results := memory.NewContestResultStore()
	opts = append([]app.ContestOption{
		app.WithClock(clock.Now),
		app.WithLocation(time.UTC),
		app.WithRandSource(rand.NewSource(7)),
	}, opts...)
	return fixture{
		service:  app.NewContestService(contests, results, memory.NewStaticQuestionPool(pool), opts...),
		contests: contests,
		results:  results,
		clock:    clock,
	}
}

func poolOf(n int) []domain.Question {
	out := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Question{
			ID:            fmt.Sprintf("q%d", i),
			Question:      fmt.Sprintf("Question %d", i),
			Options:       []string{"alpha", "Beta", "gamma", "delta"},
			CorrectAnswer: "beta",
			Subject:       "Science",
		})
	}
	return out
}

func TestCreateDailyContestIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(poolOf(20))

	contest, err := f.service.CreateDailyContest(ctx)
	if err != nil {
		t.Fatalf("create daily: %v", err)
	}
	if contest.TotalQuestions != 10 || contest.TimeLimit != 10 || contest.TotalMarks != contest.TotalQuestions*contest.MarksPerQuestion {
		t.Fatalf("unexpected contest shape: %+v", contest)
	}
	if contest.Title != "Daily Challenge - 2026-10-19" || contest.PeriodKey != "DAILY:2026-10-19" {
		t.Fatalf("unexpected title/period: %q %q", contest.Title, contest.PeriodKey)
	}
	wantStart := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	if !contest.StartTime.Equal(wantStart) || !contest.EndTime.Equal(wantStart.AddDate(0, 0, 1)) {
		t.Fatalf("unexpected window %v - %v", contest.StartTime, contest.EndTime)
	}

	f.clock.Set(monday.Add(10 * time.Hour))
	if _, err := f.service.CreateDailyContest(ctx); !errors.Is(err, domain.ErrContestExists) {
		t.Fatalf("expected ErrContestExists on second create, got %v", err)
	}

	list, _ := f.service.ContestsByType(ctx, domain.ContestDaily)
	if len(list) != 1 {
		t.Fatalf("expected one daily contest, got %d", len(list))
	}
}

func TestCreateWeeklyContestUsesISOWeek(t *testing.T) {
	ctx := context.Background()
	f := newFixture(poolOf(40))
	f.clock.Set(time.Date(2026, 10, 22, 15, 0, 0, 0, time.UTC))

	contest, err := f.service.CreateWeeklyContest(ctx)
	if err != nil {
		t.Fatalf("create weekly: %v", err)
	}
	if contest.WeekNumber != 43 || contest.Year != 2026 || contest.PeriodKey != "WEEKLY:2026-W43" {
		t.Fatalf("unexpected week fields: %+v", contest)
	}
	if contest.Title != "Weekly Challenge - Week 43, 2026" {
		t.Fatalf("unexpected title %q", contest.Title)
	}
	if contest.TotalQuestions != 30 || contest.TotalMarks != 30 || len(contest.Questions) != 30 {
		t.Fatalf("expected 30 questions, got %d", len(contest.Questions))
	}
	if !contest.StartTime.Equal(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected week to start on monday, got %v", contest.StartTime)
	}

	f.clock.Set(time.Date(2026, 10, 25, 23, 0, 0, 0, time.UTC))
	if _, err := f.service.CreateWeeklyContest(ctx); !errors.Is(err, domain.ErrContestExists) {
		t.Fatalf("expected same week to be idempotent, got %v", err)
	}
}

func TestEmptyPoolFallsBackToPlaceholders(t *testing.T) {
	f := newFixture(nil)

	contest, err := f.service.CreateDailyContest(context.Background())
	if err != nil {
		t.Fatalf("create daily: %v", err)
	}
	if len(contest.Questions) != 10 {
		t.Fatalf("expected 10 placeholders, got %d", len(contest.Questions))
	}
	for i, q := range contest.Questions {
		if !strings.HasPrefix(q.ID, "sample-") || q.CorrectAnswerIndex != 0 || len(q.Options) != 4 {
			t.Fatalf("unexpected placeholder %d: %+v", i, q)
		}
	}
	if contest.Questions[0].Subject != "Tamil Nadu History" || contest.Questions[4].Subject != "General Knowledge" {
		t.Fatalf("expected round-robin subjects, got %q and %q", contest.Questions[0].Subject, contest.Questions[4].Subject)
	}
}

func TestSmallPoolFallsBackToPlaceholders(t *testing.T) {
	f := newFixture(poolOf(3))

	contest, err := f.service.CreateDailyContest(context.Background())
	if err != nil {
		t.Fatalf("create daily: %v", err)
	}
	if len(contest.Questions) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(contest.Questions))
	}
	for _, q := range contest.Questions {
		if !strings.HasPrefix(q.ID, "sample-") {
			t.Fatalf("expected only placeholders, got %q", q.ID)
		}
	}
}

func TestSamplingDrawsDistinctQuestionsAndResolvesAnswers(t *testing.T) {
	pool := poolOf(12)
	pool = append(pool, domain.Question{ID: "unresolvable", Options: []string{"a", "b"}, CorrectAnswer: "zzz"})
	f := newFixture(pool)

	contest, err := f.service.CreateDailyContest(context.Background())
	if err != nil {
		t.Fatalf("create daily: %v", err)
	}
	seen := map[string]bool{}
	for _, q := range contest.Questions {
		if seen[q.ID] {
			t.Fatalf("question %s drawn twice", q.ID)
		}
		seen[q.ID] = true
		want := 1
		if q.ID == "unresolvable" {
			want = -1
		}
		if q.CorrectAnswerIndex != want {
			t.Fatalf("question %s: expected index %d, got %d", q.ID, want, q.CorrectAnswerIndex)
		}
	}
}

func TestNewContestDeactivatesPrevious(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	first, err := f.service.CreateDailyContest(ctx)
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	f.clock.Set(monday.AddDate(0, 0, 1))
	second, err := f.service.CreateDailyContest(ctx)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	old, _ := f.service.ContestByID(ctx, first.ID)
	if old.IsActive {
		t.Fatalf("expected previous daily contest to be inactive")
	}
	current, _ := f.service.ContestByID(ctx, second.ID)
	if !current.IsActive {
		t.Fatalf("expected new daily contest to be active")
	}

	recent, _ := f.service.RecentContests(ctx)
	if len(recent) != 2 || recent[0].ID != second.ID {
		t.Fatalf("expected newest contest first, got %+v", recent)
	}
}

func TestActiveContestCreatesOnceUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	f := newFixture(poolOf(15))

	var wg sync.WaitGroup
	ids := make([]string, 8)
	errs := make([]error, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := f.service.ActiveContest(ctx, domain.ContestDaily)
			ids[i], errs[i] = c.ID, err
		}(i)
	}
	wg.Wait()

	for i := range ids {
		if errs[i] != nil {
			t.Fatalf("active contest %d: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Fatalf("expected one contest, got %s and %s", ids[0], ids[i])
		}
	}
	list, _ := f.service.ContestsByType(ctx, domain.ContestDaily)
	if len(list) != 1 {
		t.Fatalf("expected a single stored contest, got %d", len(list))
	}
}

func TestSubmitComputesDerivedFieldsAndRank(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	contest, _ := f.service.ActiveContest(ctx, domain.ContestDaily)

	saved, err := f.service.SubmitContestResult(ctx, domain.ContestResult{
		ContestID:        contest.ID,
		UserID:           "u1",
		Score:            8,
		TotalMarks:       10,
		CorrectAnswers:   8,
		TotalQuestions:   10,
		TimeTakenSeconds: 300,
		Rank:             99,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if saved.WrongAnswers != 2 || saved.Accuracy != 80.0 || saved.AverageTimePerQuestion != 30.0 {
		t.Fatalf("unexpected derived fields: %+v", saved)
	}
	if saved.Rank != 1 || saved.ContestType != domain.ContestDaily {
		t.Fatalf("expected rank 1 on daily contest, got rank %d type %s", saved.Rank, saved.ContestType)
	}
	if !saved.SubmittedAt.Equal(monday) {
		t.Fatalf("expected server-side submission time, got %v", saved.SubmittedAt)
	}
}

func TestRanksAreDenseAndScoreDominatesTime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	contest, _ := f.service.ActiveContest(ctx, domain.ContestDaily)

	submissions := []domain.ContestResult{
		{UserID: "fast-low", Score: 6, TimeTakenSeconds: 60},
		{UserID: "slow-high", Score: 9, TimeTakenSeconds: 500},
		{UserID: "quick-high", Score: 9, TimeTakenSeconds: 200},
		{UserID: "mid", Score: 7, TimeTakenSeconds: 100},
	}
	for _, s := range submissions {
		s.ContestID = contest.ID
		s.TotalQuestions = 10
		if _, err := f.service.SubmitContestResult(ctx, s); err != nil {
			t.Fatalf("submit %s: %v", s.UserID, err)
		}
	}

	board, err := f.service.Leaderboard(ctx, contest.ID)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	want := []string{"quick-high", "slow-high", "mid", "fast-low"}
	for i, r := range board {
		if r.UserID != want[i] || r.Rank != i+1 {
			t.Fatalf("position %d: expected %s rank %d, got %s rank %d", i, want[i], i+1, r.UserID, r.Rank)
		}
	}
}

func TestDuplicateSubmissionIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	contest, _ := f.service.ActiveContest(ctx, domain.ContestDaily)

	first := domain.ContestResult{ContestID: contest.ID, UserID: "u1", Score: 4}
	if _, err := f.service.SubmitContestResult(ctx, first); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second := domain.ContestResult{ContestID: contest.ID, UserID: "u1", Score: 10}
	if _, err := f.service.SubmitContestResult(ctx, second); !errors.Is(err, domain.ErrDuplicateSubmission) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	board, _ := f.service.Leaderboard(ctx, contest.ID)
	if len(board) != 1 || board[0].Score != 4 {
		t.Fatalf("expected only the first submission, got %+v", board)
	}
	ok, err := f.service.HasUserParticipated(ctx, "u1", contest.ID)
	if err != nil || !ok {
		t.Fatalf("expected participation, got %v %v", ok, err)
	}
}

func TestSubmitValidatesInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	if _, err := f.service.SubmitContestResult(ctx, domain.ContestResult{UserID: "u1"}); !errors.Is(err, domain.ErrInvalidSubmission) {
		t.Fatalf("expected invalid submission, got %v", err)
	}
	if _, err := f.service.SubmitContestResult(ctx, domain.ContestResult{ContestID: "missing", UserID: "u1"}); !errors.Is(err, domain.ErrContestNotFound) {
		t.Fatalf("expected contest not found, got %v", err)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	contest, _ := f.service.ActiveContest(ctx, domain.ContestDaily)

	empty, err := f.service.Stats(ctx, contest.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if empty != (domain.ContestStats{}) {
		t.Fatalf("expected zeroed stats, got %+v", empty)
	}

	for i, s := range []domain.ContestResult{
		{Score: 7, TimeTakenSeconds: 100},
		{Score: 8, TimeTakenSeconds: 101},
		{Score: 8, TimeTakenSeconds: 102},
	} {
		s.ContestID = contest.ID
		s.UserID = fmt.Sprintf("u%d", i)
		if _, err := f.service.SubmitContestResult(ctx, s); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	stats, _ := f.service.Stats(ctx, contest.ID)
	if stats.ParticipantCount != 3 || stats.AverageScore != 7.67 || stats.AverageTime != 101 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.HighestScore != 8 || stats.LowestScore != 7 {
		t.Fatalf("unexpected bounds: %+v", stats)
	}
}

func TestTopPerformersLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	contest, _ := f.service.ActiveContest(ctx, domain.ContestDaily)

	for i := 0; i < 12; i++ {
		_, err := f.service.SubmitContestResult(ctx, domain.ContestResult{ContestID: contest.ID, UserID: fmt.Sprintf("u%02d", i), Score: i})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	top, _ := f.service.TopPerformers(ctx, contest.ID)
	if len(top) != 10 || top[0].Score != 11 {
		t.Fatalf("expected top 10 led by score 11, got %d entries", len(top))
	}
}

func TestUserHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	daily, _ := f.service.ActiveContest(ctx, domain.ContestDaily)
	_, _ = f.service.SubmitContestResult(ctx, domain.ContestResult{ContestID: daily.ID, UserID: "u1", Score: 3})

	f.clock.Set(monday.Add(time.Hour))
	weekly, _ := f.service.ActiveContest(ctx, domain.ContestWeekly)
	_, _ = f.service.SubmitContestResult(ctx, domain.ContestResult{ContestID: weekly.ID, UserID: "u1", Score: 20})

	history, err := f.service.UserHistory(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].ContestID != weekly.ID {
		t.Fatalf("expected weekly submission first, got %+v", history)
	}
	if _, err := f.service.UserContestResult(ctx, "u2", daily.ID); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected result not found, got %v", err)
	}
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	contest, _ := f.service.ActiveContest(ctx, domain.ContestDaily)

	ch, cancel, err := f.service.Subscribe(ctx, contest.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	initial := <-ch
	if len(initial.Entries) != 0 {
		t.Fatalf("expected empty initial leaderboard, got %+v", initial.Entries)
	}

	if _, err := f.service.SubmitContestResult(ctx, domain.ContestResult{ContestID: contest.ID, UserID: "u1", Score: 5}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	update := <-ch
	if len(update.Entries) != 1 || update.Entries[0].Rank != 1 {
		t.Fatalf("expected ranked update, got %+v", update.Entries)
	}

	if _, _, err := f.service.Subscribe(ctx, "missing"); !errors.Is(err, domain.ErrContestNotFound) {
		t.Fatalf("expected not found for unknown contest, got %v", err)
	}
}

type recordingNotifier struct {
	mu      sync.Mutex
	results []domain.ContestResult
}

func (n *recordingNotifier) ContestCompleted(_ context.Context, r domain.ContestResult, _ domain.Contest) {
	n.mu.Lock()
	n.results = append(n.results, r)
	n.mu.Unlock()
}

func TestSubmitNotifiesOnlyOnSuccess(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	f := newFixture(nil, app.WithContestNotifier(notifier))
	contest, _ := f.service.ActiveContest(ctx, domain.ContestDaily)

	_, _ = f.service.SubmitContestResult(ctx, domain.ContestResult{ContestID: contest.ID, UserID: "u1", Score: 5})
	_, _ = f.service.SubmitContestResult(ctx, domain.ContestResult{ContestID: contest.ID, UserID: "u1", Score: 6})

	if len(notifier.results) != 1 || notifier.results[0].Rank != 1 {
		t.Fatalf("expected one notification with rank, got %+v", notifier.results)
	}
}

type countingLock struct {
	mu       sync.Mutex
	acquired []string
}

func (l *countingLock) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	l.acquired = append(l.acquired, key)
	l.mu.Unlock()
	return func() {}, nil
}

func TestCreationTakesLockPerPeriod(t *testing.T) {
	lock := &countingLock{}
	f := newFixture(nil, app.WithCreationLock(lock))

	_, _ = f.service.CreateDailyContest(context.Background())
	_, _ = f.service.CreateWeeklyContest(context.Background())

	want := []string{"contest:create:DAILY:2026-10-19", "contest:create:WEEKLY:2026-W43"}
	if len(lock.acquired) != 2 || lock.acquired[0] != want[0] || lock.acquired[1] != want[1] {
		t.Fatalf("unexpected lock keys: %v", lock.acquired)
	}
}
