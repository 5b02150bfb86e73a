package application

import (
	"context"
	"fmt"
	"time"

	"github.com/elimu/instructor-backend/internal/modules/course/domain"
)

// Publisher pushes an event to every socket joined to room.
type Publisher interface {
	Publish(ctx context.Context, room, event string, payload any) error
}

// StatsService computes instructor dashboards and pushes them to the instructor's sockets,
// whose room is the instructor's email.
type StatsService struct {
	repo      domain.CourseRepository
	publisher Publisher
	now       func() time.Time
}

func NewStatsService(repo domain.CourseRepository, publisher Publisher) *StatsService {
	return &StatsService{
		repo:      repo,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *StatsService) InstructorStats(ctx context.Context, instructorEmail string) (domain.InstructorStats, error) {
	courses, err := s.repo.FindByInstructorEmail(ctx, instructorEmail)
	if err != nil {
		return domain.InstructorStats{}, fmt.Errorf("load courses for stats: %w", err)
	}
	return domain.ComputeInstructorStats(courses, s.now()), nil
}

// Broadcast recomputes the instructor's stats and publishes them to every connected socket.
func (s *StatsService) Broadcast(ctx context.Context, instructorEmail string) error {
	if s.publisher == nil || instructorEmail == "" {
		return nil
	}
	stats, err := s.InstructorStats(ctx, instructorEmail)
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, instructorEmail, domain.EventInstructorStats, stats)
}
