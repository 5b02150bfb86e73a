package application_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/elimu/instructor-backend/internal/modules/course/domain"
	notificationDomain "github.com/elimu/instructor-backend/internal/modules/notification/domain"
)

type memCourses struct {
	mu      sync.Mutex
	courses map[string]domain.Course
	err     error
}

func newMemCourses() *memCourses { return &memCourses{courses: map[string]domain.Course{}} }

func copyCourse(c domain.Course) *domain.Course {
	c.Students = slices.Clone(c.Students)
	c.LiveSessions = slices.Clone(c.LiveSessions)
	c.Reviews = slices.Clone(c.Reviews)
	return &c
}

func (r *memCourses) Create(_ context.Context, c *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.courses[c.ID] = *copyCourse(*c)
	return nil
}

func (r *memCourses) FindByID(_ context.Context, id string) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.courses[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	return copyCourse(c), nil
}

func (r *memCourses) filter(keep func(domain.Course) bool) ([]domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := []domain.Course{}
	for _, c := range r.courses {
		if keep(c) {
			out = append(out, *copyCourse(c))
		}
	}
	return out, nil
}

func (r *memCourses) FindByInstructor(_ context.Context, instructorID string) ([]domain.Course, error) {
	return r.filter(func(c domain.Course) bool { return c.InstructorID == instructorID })
}

func (r *memCourses) FindByInstructorEmail(_ context.Context, email string) ([]domain.Course, error) {
	return r.filter(func(c domain.Course) bool { return c.InstructorEmail == email })
}

func (r *memCourses) Update(_ context.Context, c *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[c.ID]; !ok {
		return domain.ErrCourseNotFound
	}
	r.courses[c.ID] = *copyCourse(*c)
	return nil
}

func (r *memCourses) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return domain.ErrCourseNotFound
	}
	delete(r.courses, id)
	return nil
}

func (r *memCourses) AddStudent(_ context.Context, id, studentID string, at time.Time) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok || slices.Contains(c.Students, studentID) {
		return nil, domain.ErrCourseNotFound
	}
	c.Students = append(c.Students, studentID)
	c.UpdatedAt = at
	r.courses[id] = c
	return copyCourse(c), nil
}

func (r *memCourses) AddReview(_ context.Context, id string, review domain.Review, at time.Time) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	c.Reviews = append(c.Reviews, review)
	c.UpdatedAt = at
	r.courses[id] = c
	return copyCourse(c), nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) result(args mock.Arguments) (*notificationDomain.Notification, error) {
	n, _ := args.Get(0).(*notificationDomain.Notification)
	return n, args.Error(1)
}

func (m *mockNotifier) NotifyCourseCreated(ctx context.Context, courseID, instructorID, title string) (*notificationDomain.Notification, error) {
	return m.result(m.Called(ctx, courseID, instructorID, title))
}

func (m *mockNotifier) NotifyCourseApproved(ctx context.Context, courseID, instructorID, title string) (*notificationDomain.Notification, error) {
	return m.result(m.Called(ctx, courseID, instructorID, title))
}

func (m *mockNotifier) NotifyNewEnrollment(ctx context.Context, courseID, instructorID, studentID, title string) (*notificationDomain.Notification, error) {
	return m.result(m.Called(ctx, courseID, instructorID, studentID, title))
}

func (m *mockNotifier) NotifyNewReview(ctx context.Context, courseID, instructorID, studentID, title string, rating int) (*notificationDomain.Notification, error) {
	return m.result(m.Called(ctx, courseID, instructorID, studentID, title, rating))
}

type published struct {
	room, event string
	payload     any
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, room, event string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{room: room, event: event, payload: payload})
	return nil
}

func (p *recordingPublisher) events() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.sent)
}
