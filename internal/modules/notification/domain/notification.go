package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeInfo, NotificationTypeSuccess, NotificationTypeWarning, NotificationTypeError:
		return true
	}
	return false
}

type Category string

const (
	CategoryCourse     Category = "course"
	CategoryEnrollment Category = "enrollment"
	CategoryReview     Category = "review"
	CategorySystem     Category = "system"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryCourse, CategoryEnrollment, CategoryReview, CategorySystem:
		return true
	}
	return false
}

// Well-known metadata keys. Metadata is otherwise free-form.
const (
	MetaCourseID     = "courseId"
	MetaStudentID    = "studentId"
	MetaInstructorID = "instructorId"
	MetaActionURL    = "actionUrl"
	MetaGroupID      = "groupId"
	MetaMeetingID    = "meetingId"
	MetaMeetingLink  = "meetingLink"
	MetaStartTime    = "startTime"
)

// Notification is a persisted message addressed to one user. It is never hard-deleted;
// Delete clears Active instead.
type Notification struct {
	ID        string            `json:"id" bson:"_id"`
	UserID    string            `json:"userId" bson:"userId"`
	Title     string            `json:"title" bson:"title"`
	Message   string            `json:"message" bson:"message"`
	Type      NotificationType  `json:"type" bson:"type"`
	Category  Category          `json:"category" bson:"category"`
	Metadata  map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Read      bool              `json:"read" bson:"read"`
	Active    bool              `json:"active" bson:"active"`
	CreatedAt time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt" bson:"updatedAt"`
}

type CreateNotificationInput struct {
	UserID   string            `json:"userId"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Type     NotificationType  `json:"type"`
	Category Category          `json:"category"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks required fields and enums. An empty Type is accepted and defaults to info.
func (in CreateNotificationInput) Validate() error {
	switch {
	case strings.TrimSpace(in.UserID) == "":
		return fmt.Errorf("%w: userId is required", ErrInvalidNotification)
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidNotification)
	case strings.TrimSpace(in.Message) == "":
		return fmt.Errorf("%w: message is required", ErrInvalidNotification)
	case in.Type != "" && !in.Type.Valid():
		return fmt.Errorf("%w: unknown type %q", ErrInvalidNotification, in.Type)
	case !in.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidNotification, in.Category)
	}
	return nil
}

// NewNotification builds an unread, active record from a validated input.
func NewNotification(id string, in CreateNotificationInput, now time.Time) *Notification {
	typ := in.Type
	if typ == "" {
		typ = NotificationTypeInfo
	}
	var metadata map[string]string
	if len(in.Metadata) > 0 {
		metadata = make(map[string]string, len(in.Metadata))
		for k, v := range in.Metadata {
			metadata[k] = v
		}
	}
	return &Notification{
		ID:        id,
		UserID:    in.UserID,
		Title:     in.Title,
		Message:   in.Message,
		Type:      typ,
		Category:  in.Category,
		Metadata:  metadata,
		Read:      false,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidNotification  = errors.New("invalid notification")
)
