package domain

import "context"

// EventNotification is the socket event carrying a newly created notification.
const EventNotification = "notification"

// Publisher pushes an event to every socket joined to room.
type Publisher interface {
	Publish(ctx context.Context, room, event string, payload any) error
}
