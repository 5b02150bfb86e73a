package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elimu/instructor-backend/internal/modules/course/domain"
	notificationDomain "github.com/elimu/instructor-backend/internal/modules/notification/domain"
)

// Notifier is the part of the notification producers courses use.
type Notifier interface {
	NotifyCourseCreated(ctx context.Context, courseID, instructorID, courseTitle string) (*notificationDomain.Notification, error)
	NotifyCourseApproved(ctx context.Context, courseID, instructorID, courseTitle string) (*notificationDomain.Notification, error)
	NotifyNewEnrollment(ctx context.Context, courseID, instructorID, studentID, courseTitle string) (*notificationDomain.Notification, error)
	NotifyNewReview(ctx context.Context, courseID, instructorID, studentID, courseTitle string, rating int) (*notificationDomain.Notification, error)
}

// StatsBroadcaster refreshes an instructor's live dashboard.
type StatsBroadcaster interface {
	Broadcast(ctx context.Context, instructorEmail string) error
}

type CourseService struct {
	repo     domain.CourseRepository
	notifier Notifier
	stats    StatsBroadcaster
	now      func() time.Time
}

// NewCourseService builds the service. notifier and stats may be nil.
func NewCourseService(repo domain.CourseRepository, notifier Notifier, stats StatsBroadcaster) *CourseService {
	return &CourseService{
		repo:     repo,
		notifier: notifier,
		stats:    stats,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a course pending review, notifies its instructor and refreshes their stats.
func (s *CourseService) Create(ctx context.Context, in domain.CreateCourseInput) (*domain.Course, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	c := &domain.Course{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		InstructorID:    in.InstructorID,
		InstructorEmail: in.InstructorEmail,
		Status:          domain.StatusPending,
		TotalHours:      in.TotalHours,
		LiveSessions:    append([]domain.LiveSession{}, in.LiveSessions...),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	c.Normalize()
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		_, err := s.notifier.NotifyCourseCreated(ctx, c.ID, c.InstructorID, c.Title)
		s.logNotify(ctx, "course created", c.ID, err)
	}
	s.refresh(ctx, c.InstructorEmail)
	return c, nil
}

func (s *CourseService) FindByID(ctx context.Context, id string) (*domain.Course, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CourseService) FindByInstructor(ctx context.Context, instructorID string) ([]domain.Course, error) {
	return s.repo.FindByInstructor(ctx, instructorID)
}

func (s *CourseService) Update(ctx context.Context, id string, in domain.UpdateCourseInput) (*domain.Course, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(c)
	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.refresh(ctx, c.InstructorEmail)
	return c, nil
}

// Delete removes the course and returns what was deleted.
func (s *CourseService) Delete(ctx context.Context, id string) (*domain.Course, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.refresh(ctx, c.InstructorEmail)
	return c, nil
}

// Approve publishes the course and tells its instructor.
func (s *CourseService) Approve(ctx context.Context, id string) (*domain.Course, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Status = domain.StatusPublished
	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		_, err := s.notifier.NotifyCourseApproved(ctx, c.ID, c.InstructorID, c.Title)
		s.logNotify(ctx, "course approved", c.ID, err)
	}
	s.refresh(ctx, c.InstructorEmail)
	return c, nil
}

// Enroll adds studentID to the course. Enrolling twice returns ErrAlreadyEnrolled.
func (s *CourseService) Enroll(ctx context.Context, id, studentID string) (*domain.Course, error) {
	c, err := s.repo.AddStudent(ctx, id, studentID, s.now())
	if errors.Is(err, domain.ErrCourseNotFound) {
		existing, findErr := s.repo.FindByID(ctx, id)
		if findErr != nil {
			return nil, findErr
		}
		if existing.HasStudent(studentID) {
			return nil, domain.ErrAlreadyEnrolled
		}
	}
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		_, err := s.notifier.NotifyNewEnrollment(ctx, c.ID, c.InstructorID, studentID, c.Title)
		s.logNotify(ctx, "new enrollment", c.ID, err)
	}
	s.refresh(ctx, c.InstructorEmail)
	return c, nil
}

// Review records a rating from an enrolled student and tells the instructor.
func (s *CourseService) Review(ctx context.Context, id, studentID string, rating int, comment string) (*domain.Course, error) {
	if err := domain.ValidateRating(rating); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.HasStudent(studentID) {
		return nil, domain.ErrNotEnrolled
	}

	now := s.now()
	c, err = s.repo.AddReview(ctx, id, domain.Review{StudentID: studentID, Rating: rating, Comment: comment, CreatedAt: now}, now)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		_, err := s.notifier.NotifyNewReview(ctx, c.ID, c.InstructorID, studentID, c.Title, rating)
		s.logNotify(ctx, "new review", c.ID, err)
	}
	return c, nil
}

func (s *CourseService) refresh(ctx context.Context, instructorEmail string) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Broadcast(ctx, instructorEmail); err != nil {
		slog.WarnContext(ctx, "instructor stats broadcast failed", "instructor_email", instructorEmail, "error", err)
	}
}

func (s *CourseService) logNotify(ctx context.Context, event, courseID string, err error) {
	if err != nil {
		slog.WarnContext(ctx, "course notification failed", "event", event, "course_id", courseID, "error", err)
	}
}
