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

// ContestStore persists contests with bun. The unique (contest_type,
// period_key) constraint makes CreateIfAbsent a single atomic statement.
type ContestStore struct {
	db *bun.DB
}

func NewContestStore(db *bun.DB) *ContestStore {
	return &ContestStore{db: db}
}

func (s *ContestStore) CreateIfAbsent(ctx context.Context, contest *domain.Contest) (bool, error) {
	res, err := s.db.NewInsert().
		Model(newContestRow(*contest)).
		On("CONFLICT (contest_type, period_key) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("insert contest: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert contest: %w", err)
	}
	return n == 1, nil
}

func (s *ContestStore) DeactivateOthers(ctx context.Context, contestType domain.ContestType, keepID string, at time.Time) error {
	_, err := s.db.NewUpdate().
		Model((*contestRow)(nil)).
		Set("is_active = FALSE").
		Set("updated_at = ?", at).
		Where("contest_type = ?", string(contestType)).
		Where("id <> ?", keepID).
		Where("is_active").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("deactivate contests: %w", err)
	}
	return nil
}

func (s *ContestStore) FindByID(ctx context.Context, id string) (domain.Contest, error) {
	return s.findOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("c.id = ?", id)
	})
}

func (s *ContestStore) FindByPeriod(ctx context.Context, contestType domain.ContestType, periodKey string) (domain.Contest, error) {
	return s.findOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("c.contest_type = ?", string(contestType)).Where("c.period_key = ?", periodKey)
	})
}

func (s *ContestStore) findOne(ctx context.Context, filter func(*bun.SelectQuery) *bun.SelectQuery) (domain.Contest, error) {
	row := new(contestRow)
	err := filter(s.db.NewSelect().Model(row)).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Contest{}, domain.ErrContestNotFound
	}
	if err != nil {
		return domain.Contest{}, fmt.Errorf("find contest: %w", err)
	}
	return row.toDomain(), nil
}

func (s *ContestStore) ListByType(ctx context.Context, contestType domain.ContestType) ([]domain.Contest, error) {
	var rows []contestRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("c.contest_type = ?", string(contestType)).
		Order("c.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contests: %w", err)
	}
	return contestsToDomain(rows), nil
}

func (s *ContestStore) ListRecent(ctx context.Context, limit int) ([]domain.Contest, error) {
	var rows []contestRow
	err := s.db.NewSelect().
		Model(&rows).
		Order("c.created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recent contests: %w", err)
	}
	return contestsToDomain(rows), nil
}

func contestsToDomain(rows []contestRow) []domain.Contest {
	out := make([]domain.Contest, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}
