package domain

import (
	"context"
	"time"
)

// CourseRepository persists courses. Lookups and writes by id return ErrCourseNotFound
// when no record matches.
type CourseRepository interface {
	Create(ctx context.Context, course *Course) error
	FindByID(ctx context.Context, id string) (*Course, error)
	FindByInstructor(ctx context.Context, instructorID string) ([]Course, error)
	FindByInstructorEmail(ctx context.Context, email string) ([]Course, error)
	// Update replaces title, description, status, totalHours, liveSessions and updatedAt.
	Update(ctx context.Context, course *Course) error
	Delete(ctx context.Context, id string) error
	// AddStudent appends studentID unless already present. It returns ErrCourseNotFound
	// when no course with that id lacks the student.
	AddStudent(ctx context.Context, id, studentID string, at time.Time) (*Course, error)
	AddReview(ctx context.Context, id string, review Review, at time.Time) (*Course, error)
}
