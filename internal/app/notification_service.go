package app

import (
	"context"
	"fmt"
	"time"

	"exam-prep-service/internal/config"
	"exam-prep-service/internal/domain"
	"github.com/google/uuid"
)

// NotificationService writes user notifications. It is the completion sink
// for contest and quiz submissions; sink failures are logged, never returned.
type NotificationService struct {
	store NotificationStore
	users UserDirectory
	clock func() time.Time
}

func NewNotificationService(store NotificationStore, users UserDirectory) *NotificationService {
	return &NotificationService{store: store, users: users, clock: time.Now}
}

// NewNotificationServiceWithClock is for deterministic timestamps in tests.
func NewNotificationServiceWithClock(store NotificationStore, users UserDirectory, now func() time.Time) *NotificationService {
	return &NotificationService{store: store, users: users, clock: now}
}

// QuizCompleted emits a QUIZ_RESULT notification for the result's owner.
func (s *NotificationService) QuizCompleted(ctx context.Context, result domain.Result) {
	pct := result.Percentage()
	s.emit(ctx, &domain.Notification{
		UserID:  result.UserID,
		Type:    domain.NotificationQuizResult,
		Title:   "Quiz Completed!",
		Message: fmt.Sprintf("You scored %d/%d (%.0f%%) in %s", result.Score, result.TotalMarks, pct, result.QuizTitle),
		Icon:    scoreIcon(pct),
	})
}

// ContestCompleted emits a CONTEST_RESULT notification carrying the user's rank.
func (s *NotificationService) ContestCompleted(ctx context.Context, result domain.ContestResult, contest domain.Contest) {
	var pct float64
	if result.TotalMarks > 0 {
		pct = float64(result.Score) * 100 / float64(result.TotalMarks)
	}
	s.emit(ctx, &domain.Notification{
		UserID:  result.UserID,
		Type:    domain.NotificationContestResult,
		Title:   "Contest Completed!",
		Message: fmt.Sprintf("You scored %d/%d in %s and are ranked #%d", result.Score, result.TotalMarks, contest.Title, result.Rank),
		Icon:    scoreIcon(pct),
	})
}

func (s *NotificationService) emit(ctx context.Context, n *domain.Notification) {
	n.ID = uuid.NewString()
	n.CreatedAt = s.clock()
	if err := s.store.Insert(ctx, n); err != nil {
		config.WithContext(ctx).WithError(err).WithField("user_id", n.UserID).Error("failed to store notification")
	}
}

func scoreIcon(pct float64) string {
	switch {
	case pct >= 80:
		return "🎉"
	case pct >= 60:
		return "👍"
	default:
		return "📚"
	}
}

// ExamAnnouncement is the payload of a broadcast exam date announcement.
type ExamAnnouncement struct {
	ExamName            string `json:"examName"`
	ExamDate            string `json:"examDate"`
	ApplicationDeadline string `json:"applicationDeadline"`
}

// BroadcastExamAnnouncement notifies every user in the directory and returns
// how many notifications were written.
func (s *NotificationService) BroadcastExamAnnouncement(ctx context.Context, a ExamAnnouncement) (int, error) {
	ids, err := s.users.UserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	now := s.clock()
	batch := make([]*domain.Notification, 0, len(ids))
	for _, id := range ids {
		batch = append(batch, &domain.Notification{
			ID:        uuid.NewString(),
			UserID:    id,
			Type:      domain.NotificationExamAnnouncement,
			Title:     fmt.Sprintf("%s - Exam Date Announced 📅", a.ExamName),
			Message:   fmt.Sprintf("Exam Date: %s | Application Deadline: %s", a.ExamDate, a.ApplicationDeadline),
			Icon:      "📅",
			CreatedAt: now,
		})
	}
	if err := s.store.Insert(ctx, batch...); err != nil {
		return 0, err
	}
	config.WithContext(ctx).WithField("recipients", len(batch)).Info("exam announcement broadcast")
	return len(batch), nil
}

func (s *NotificationService) ForUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) (domain.Notification, error) {
	return s.store.MarkRead(ctx, id)
}
