package app

import (
	"context"
	"time"

	"exam-prep-service/internal/domain"
)

// ContestStore persists contests. CreateIfAbsent must be atomic on
// (contestType, periodKey): it reports false, without error, when a contest
// for that period already exists.
type ContestStore interface {
	CreateIfAbsent(ctx context.Context, contest *domain.Contest) (bool, error)
	DeactivateOthers(ctx context.Context, contestType domain.ContestType, keepID string, at time.Time) error
	FindByID(ctx context.Context, id string) (domain.Contest, error)
	FindByPeriod(ctx context.Context, contestType domain.ContestType, periodKey string) (domain.Contest, error)
	ListByType(ctx context.Context, contestType domain.ContestType) ([]domain.Contest, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Contest, error)
}

// ContestResultStore persists contest submissions. Insert must fail with
// domain.ErrDuplicateSubmission, writing nothing, when the (userId, contestId)
// pair already exists. ListByContest returns leaderboard order.
//
// Rerank reads every result of the contest, passes them to rank and stores
// the ranks it assigns. The read and the write form one step: two reranks of
// the same contest never interleave inside a store.
type ContestResultStore interface {
	Insert(ctx context.Context, result *domain.ContestResult) error
	ListByContest(ctx context.Context, contestID string) ([]domain.ContestResult, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ContestResult, error)
	Find(ctx context.Context, userID, contestID string) (domain.ContestResult, error)
	Rerank(ctx context.Context, contestID string, rank func([]domain.ContestResult) []domain.ContestResult) ([]domain.ContestResult, error)
}

// QuestionPool reads the full question pool contests are sampled from.
type QuestionPool interface {
	AllQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuizResultStore persists ordinary quiz results.
type QuizResultStore interface {
	Insert(ctx context.Context, result *domain.Result) error
	FindByID(ctx context.Context, id string) (domain.Result, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Result, error)
	ListByQuiz(ctx context.Context, quizID string) ([]domain.Result, error)
	ListByContestType(ctx context.Context, contestType string) ([]domain.Result, error)
	// ListCompletedBetween returns results tagged contestType with from <= completedAt < to.
	ListCompletedBetween(ctx context.Context, contestType string, from, to time.Time) ([]domain.Result, error)
	ExistsCompletedBetween(ctx context.Context, userID, contestType string, from, to time.Time) (bool, error)
}

// NotificationStore persists user notifications. ListByUser is newest first.
type NotificationStore interface {
	Insert(ctx context.Context, notifications ...*domain.Notification) error
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id string) (domain.Notification, error)
}

// UserDirectory lists the ids of every registered user.
type UserDirectory interface {
	UserIDs(ctx context.Context) ([]string, error)
}

// CreationLock serialises contest creation and re-ranking across processes.
type CreationLock interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// ContestNotifier receives one-way completion events after a contest submission.
type ContestNotifier interface {
	ContestCompleted(ctx context.Context, result domain.ContestResult, contest domain.Contest)
}

// QuizNotifier receives one-way completion events after a quiz submission.
type QuizNotifier interface {
	QuizCompleted(ctx context.Context, result domain.Result)
}
