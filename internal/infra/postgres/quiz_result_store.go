package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"exam-prep-service/internal/domain"
	"github.com/uptrace/bun"
)

type QuizResultStore struct {
	db *bun.DB
}

func NewQuizResultStore(db *bun.DB) *QuizResultStore {
	return &QuizResultStore{db: db}
}

func (s *QuizResultStore) Insert(ctx context.Context, result *domain.Result) error {
	if _, err := s.db.NewInsert().Model(newResultRow(*result)).Exec(ctx); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *QuizResultStore) FindByID(ctx context.Context, id string) (domain.Result, error) {
	row := new(resultRow)
	err := s.db.NewSelect().Model(row).Where("r.id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Result{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("find result: %w", err)
	}
	return row.toDomain(), nil
}

func (s *QuizResultStore) ListByUser(ctx context.Context, userID string) ([]domain.Result, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("r.user_id = ?", userID).Order("r.completed_at DESC")
	})
}

func (s *QuizResultStore) ListByQuiz(ctx context.Context, quizID string) ([]domain.Result, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("r.quiz_id = ?", quizID).Order("r.completed_at ASC")
	})
}

func (s *QuizResultStore) ListByContestType(ctx context.Context, contestType string) ([]domain.Result, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("r.contest_type = ?", contestType).Order("r.completed_at ASC")
	})
}

func (s *QuizResultStore) ListCompletedBetween(ctx context.Context, contestType string, from, to time.Time) ([]domain.Result, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return window(q, contestType, from, to)
	})
}

func (s *QuizResultStore) ExistsCompletedBetween(ctx context.Context, userID, contestType string, from, to time.Time) (bool, error) {
	q := s.db.NewSelect().Model((*resultRow)(nil)).Where("r.user_id = ?", userID)
	ok, err := window(q, contestType, from, to).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check participation: %w", err)
	}
	return ok, nil
}

func window(q *bun.SelectQuery, contestType string, from, to time.Time) *bun.SelectQuery {
	return q.Where("r.contest_type = ?", contestType).
		Where("r.completed_at >= ?", from).
		Where("r.completed_at < ?", to)
}

func (s *QuizResultStore) list(ctx context.Context, filter func(*bun.SelectQuery) *bun.SelectQuery) ([]domain.Result, error) {
	var rows []resultRow
	if err := filter(s.db.NewSelect().Model(&rows)).Scan(ctx); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	out := make([]domain.Result, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
