package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"exam-prep-service/internal/domain"
	"github.com/uptrace/bun"
)

// ContestResultStore persists contest submissions. The unique (user_id,
// contest_id) constraint turns a second submission into a no-op insert.
type ContestResultStore struct {
	db *bun.DB
}

func NewContestResultStore(db *bun.DB) *ContestResultStore {
	return &ContestResultStore{db: db}
}

func (s *ContestResultStore) Insert(ctx context.Context, result *domain.ContestResult) error {
	res, err := s.db.NewInsert().
		Model(newContestResultRow(*result)).
		On("CONFLICT (user_id, contest_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert contest result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert contest result: %w", err)
	}
	if n == 0 {
		return domain.ErrDuplicateSubmission
	}
	return nil
}

func (s *ContestResultStore) ListByContest(ctx context.Context, contestID string) ([]domain.ContestResult, error) {
	var rows []contestResultRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("cr.contest_id = ?", contestID).
		Order("cr.score DESC", "cr.time_taken_seconds ASC", "cr.submitted_at ASC", "cr.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contest results: %w", err)
	}
	return resultsToDomain(rows), nil
}

func (s *ContestResultStore) ListByUser(ctx context.Context, userID string) ([]domain.ContestResult, error) {
	var rows []contestResultRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("cr.user_id = ?", userID).
		Order("cr.submitted_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list user contest results: %w", err)
	}
	return resultsToDomain(rows), nil
}

func (s *ContestResultStore) Find(ctx context.Context, userID, contestID string) (domain.ContestResult, error) {
	row := new(contestResultRow)
	err := s.db.NewSelect().
		Model(row).
		Where("cr.user_id = ?", userID).
		Where("cr.contest_id = ?", contestID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ContestResult{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.ContestResult{}, fmt.Errorf("find contest result: %w", err)
	}
	return row.toDomain(), nil
}

// Rerank runs under a transaction-scoped advisory lock keyed by the contest,
// so concurrent reranks of one contest queue instead of interleaving. Rows are
// updated in id order.
func (s *ContestResultStore) Rerank(ctx context.Context, contestID string, rank func([]domain.ContestResult) []domain.ContestResult) ([]domain.ContestResult, error) {
	var ranked []domain.ContestResult
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext(?))", contestID); err != nil {
			return fmt.Errorf("lock contest: %w", err)
		}

		var rows []contestResultRow
		err := tx.NewSelect().
			Model(&rows).
			Where("cr.contest_id = ?", contestID).
			Order("cr.score DESC", "cr.time_taken_seconds ASC", "cr.submitted_at ASC", "cr.id ASC").
			Scan(ctx)
		if err != nil {
			return fmt.Errorf("list contest results: %w", err)
		}
		ranked = rank(resultsToDomain(rows))

		byID := make([]domain.ContestResult, len(ranked))
		copy(byID, ranked)
		sort.Slice(byID, func(i, j int) bool { return byID[i].ID < byID[j].ID })
		for _, r := range byID {
			_, err := tx.NewUpdate().
				Model((*contestResultRow)(nil)).
				Set("rank = ?", r.Rank).
				Where("id = ?", r.ID).
				Where("contest_id = ?", contestID).
				Exec(ctx)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update ranks: %w", err)
	}
	return ranked, nil
}

func resultsToDomain(rows []contestResultRow) []domain.ContestResult {
	out := make([]domain.ContestResult, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}
