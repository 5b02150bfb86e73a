package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrInvalidCourse   = errors.New("invalid course")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrAlreadyEnrolled = errors.New("student already enrolled")
	ErrNotEnrolled     = errors.New("student not enrolled")
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusPublished, StatusArchived:
		return true
	}
	return false
}

type LiveSession struct {
	Topic       string    `json:"topic" bson:"topic"`
	SessionDate time.Time `json:"sessionDate" bson:"sessionDate"`
	StartTime   string    `json:"startTime,omitempty" bson:"startTime,omitempty"`
	EndTime     string    `json:"endTime,omitempty" bson:"endTime,omitempty"`
}

type Review struct {
	StudentID string    `json:"studentId" bson:"studentId"`
	Rating    int       `json:"rating" bson:"rating"`
	Comment   string    `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Course struct {
	ID              string        `json:"id" bson:"_id"`
	Title           string        `json:"title" bson:"title"`
	Description     string        `json:"description,omitempty" bson:"description,omitempty"`
	InstructorID    string        `json:"instructorId" bson:"instructorId"`
	InstructorEmail string        `json:"instructorEmail" bson:"instructorEmail"`
	Status          Status        `json:"status" bson:"status"`
	Students        []string      `json:"students" bson:"students"`
	TotalHours      float64       `json:"totalHours" bson:"totalHours"`
	LiveSessions    []LiveSession `json:"liveSessions" bson:"liveSessions"`
	Reviews         []Review      `json:"reviews" bson:"reviews"`
	CreatedAt       time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt" bson:"updatedAt"`
}

func (c *Course) HasStudent(studentID string) bool {
	return slices.Contains(c.Students, studentID)
}

// Normalize replaces nil collections with empty ones.
func (c *Course) Normalize() {
	if c.Students == nil {
		c.Students = []string{}
	}
	if c.LiveSessions == nil {
		c.LiveSessions = []LiveSession{}
	}
	if c.Reviews == nil {
		c.Reviews = []Review{}
	}
}

type CreateCourseInput struct {
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	InstructorID    string        `json:"-"`
	InstructorEmail string        `json:"-"`
	TotalHours      float64       `json:"totalHours,omitempty"`
	LiveSessions    []LiveSession `json:"liveSessions,omitempty"`
}

func (in CreateCourseInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidCourse)
	case in.InstructorID == "":
		return fmt.Errorf("%w: instructor is required", ErrInvalidCourse)
	case in.InstructorEmail == "":
		return fmt.Errorf("%w: instructor email is required", ErrInvalidCourse)
	case in.TotalHours < 0:
		return fmt.Errorf("%w: totalHours cannot be negative", ErrInvalidCourse)
	}
	return nil
}

// UpdateCourseInput changes only the fields that are set. Publishing goes through approval.
type UpdateCourseInput struct {
	Title        *string        `json:"title,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Status       *Status        `json:"status,omitempty"`
	TotalHours   *float64       `json:"totalHours,omitempty"`
	LiveSessions *[]LiveSession `json:"liveSessions,omitempty"`
}

func (in UpdateCourseInput) Validate() error {
	switch {
	case in.Title != nil && strings.TrimSpace(*in.Title) == "":
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidCourse)
	case in.Status != nil && !in.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidCourse, *in.Status)
	case in.Status != nil && *in.Status == StatusPublished:
		return fmt.Errorf("%w: courses are published by approval", ErrInvalidCourse)
	case in.TotalHours != nil && *in.TotalHours < 0:
		return fmt.Errorf("%w: totalHours cannot be negative", ErrInvalidCourse)
	}
	return nil
}

// Apply copies the set fields onto c.
func (in UpdateCourseInput) Apply(c *Course) {
	if in.Title != nil {
		c.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Status != nil {
		c.Status = *in.Status
	}
	if in.TotalHours != nil {
		c.TotalHours = *in.TotalHours
	}
	if in.LiveSessions != nil {
		c.LiveSessions = append([]LiveSession{}, (*in.LiveSessions)...)
	}
}

func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	return nil
}
