package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/elimu/instructor-backend/internal/modules/notification/domain"
)

type NotificationService struct {
	repo      domain.NotificationRepository
	publisher domain.Publisher
	now       func() time.Time
}

// NewNotificationService wires the store to a real-time publisher. publisher may be nil,
// in which case notifications are only persisted.
func NewNotificationService(repo domain.NotificationRepository, publisher domain.Publisher) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create persists a new notification and pushes it to the owner's sockets. A failed push
// is logged and counted; it never fails the call once the record is stored.
func (s *NotificationService) Create(ctx context.Context, in domain.CreateNotificationInput) (*domain.Notification, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	n := domain.NewNotification(uuid.NewString(), in, s.now())
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	notificationsCreated.WithLabelValues(string(n.Category)).Inc()

	s.deliver(ctx, n)
	return n, nil
}

func (s *NotificationService) deliver(ctx context.Context, n *domain.Notification) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, n.UserID, domain.EventNotification, n); err != nil {
		notificationDeliveries.WithLabelValues(domain.EventNotification, "error").Inc()
		slog.WarnContext(ctx, "notification delivery failed",
			"notification_id", n.ID, "user_id", n.UserID, "error", err)
		return
	}
	notificationDeliveries.WithLabelValues(domain.EventNotification, "ok").Inc()
}

// FindAllForUser returns every active notification of userID, newest first.
func (s *NotificationService) FindAllForUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.FindActiveByUser(ctx, userID, 0, 0)
}

func (s *NotificationService) FindAllForUserPage(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.FindActiveByUser(ctx, userID, limit, offset)
}

// FindByID returns the record whether or not it is active, or nil when it does not exist.
func (s *NotificationService) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	return orNil(s.repo.FindByID(ctx, id))
}

// MarkAsRead returns the updated record, or nil when it does not exist.
func (s *NotificationService) MarkAsRead(ctx context.Context, id string) (*domain.Notification, error) {
	return orNil(s.repo.MarkAsRead(ctx, id, s.now()))
}

// MarkAllAsRead returns how many records changed.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID, s.now())
}

// Delete deactivates the record and returns it, or nil when it does not exist.
func (s *NotificationService) Delete(ctx context.Context, id string) (*domain.Notification, error) {
	return orNil(s.repo.SoftDelete(ctx, id, s.now()))
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func orNil(n *domain.Notification, err error) (*domain.Notification, error) {
	if errors.Is(err, domain.ErrNotificationNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}
