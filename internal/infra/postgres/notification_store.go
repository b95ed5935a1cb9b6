package postgres

import (
	"context"
	"fmt"

	"exam-prep-service/internal/domain"
	"github.com/uptrace/bun"
)

type NotificationStore struct {
	db *bun.DB
}

func NewNotificationStore(db *bun.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) Insert(ctx context.Context, notifications ...*domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	rows := make([]notificationRow, 0, len(notifications))
	for _, n := range notifications {
		rows = append(rows, notificationRow{
			ID:        n.ID,
			UserID:    n.UserID,
			Type:      string(n.Type),
			Title:     n.Title,
			Message:   n.Message,
			Icon:      n.Icon,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}
	return nil
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	var rows []notificationRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("n.user_id = ?", userID).
		Order("n.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]domain.Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *NotificationStore) CountUnread(ctx context.Context, userID string) (int64, error) {
	n, err := s.db.NewSelect().
		Model((*notificationRow)(nil)).
		Where("n.user_id = ?", userID).
		Where("NOT n.is_read").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return int64(n), nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id string) (domain.Notification, error) {
	res, err := s.db.NewUpdate().
		Model((*notificationRow)(nil)).
		Set("is_read = TRUE").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Notification{}, domain.ErrNotificationNotFound
	}

	row := new(notificationRow)
	if err := s.db.NewSelect().Model(row).Where("n.id = ?", id).Scan(ctx); err != nil {
		return domain.Notification{}, fmt.Errorf("load notification: %w", err)
	}
	return row.toDomain(), nil
}

// UserDirectory reads user ids from the users table.
type UserDirectory struct {
	db *bun.DB
}

func NewUserDirectory(db *bun.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

func (d *UserDirectory) UserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := d.db.NewSelect().
		Model((*userRow)(nil)).
		Column("id").
		Order("u.created_at ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return ids, nil
}
