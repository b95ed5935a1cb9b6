package memory

import (
	"context"
	"sort"
	"sync"

	"exam-prep-service/internal/domain"
)

type NotificationStore struct {
	mu    sync.RWMutex
	items map[string]domain.Notification
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{items: make(map[string]domain.Notification)}
}

func (s *NotificationStore) Insert(_ context.Context, notifications ...*domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range notifications {
		s.items[n.ID] = *n
	}
	return nil
}

func (s *NotificationStore) ListByUser(_ context.Context, userID string) ([]domain.Notification, error) {
	s.mu.RLock()
	out := make([]domain.Notification, 0)
	for _, n := range s.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *NotificationStore) CountUnread(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, item := range s.items {
		if item.UserID == userID && !item.Read {
			n++
		}
	}
	return n, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, id string) (domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return domain.Notification{}, domain.ErrNotificationNotFound
	}
	n.Read = true
	s.items[id] = n
	return n, nil
}

// UserDirectory is a fixed list of user ids.
type UserDirectory struct {
	ids []string
}

func NewUserDirectory(ids ...string) *UserDirectory {
	return &UserDirectory{ids: ids}
}

func (d *UserDirectory) UserIDs(_ context.Context) ([]string, error) {
	return append([]string(nil), d.ids...), nil
}
