package domain

import (
	"context"
	"time"
)

// NotificationRepository persists notifications. Lookups by id return
// ErrNotificationNotFound when no record matches.
type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	FindByID(ctx context.Context, id string) (*Notification, error)
	// FindActiveByUser lists active records newest first. A limit of 0 returns all of them.
	FindActiveByUser(ctx context.Context, userID string, limit, offset int) ([]Notification, error)
	MarkAsRead(ctx context.Context, id string, at time.Time) (*Notification, error)
	MarkAllAsRead(ctx context.Context, userID string, at time.Time) (int64, error)
	SoftDelete(ctx context.Context, id string, at time.Time) (*Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
}
