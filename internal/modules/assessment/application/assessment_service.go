package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elimu/instructor-backend/internal/modules/assessment/domain"
)

type AssessmentService struct {
	repo domain.AssessmentRepository
	now  func() time.Time
}

func NewAssessmentService(repo domain.AssessmentRepository) *AssessmentService {
	return &AssessmentService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a hand-written assessment. New assessments are drafts unless a status is given.
func (s *AssessmentService) Create(ctx context.Context, in domain.CreateAssessmentInput) (*domain.Assessment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = domain.StatusDraft
	}
	now := s.now()
	a := &domain.Assessment{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(in.Title),
		Subject:      strings.TrimSpace(in.Subject),
		Topic:        strings.TrimSpace(in.Topic),
		Difficulty:   strings.TrimSpace(in.Difficulty),
		InstructorID: in.InstructorID,
		Questions:    append([]domain.Question{}, in.Questions...),
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "assessment created", "assessment_id", a.ID, "instructor_id", a.InstructorID, "questions", len(a.Questions))
	return a, nil
}

func (s *AssessmentService) FindByID(ctx context.Context, id string) (*domain.Assessment, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *AssessmentService) FindByInstructor(ctx context.Context, instructorID string) ([]domain.Assessment, error) {
	return s.repo.FindByInstructor(ctx, instructorID)
}

func (s *AssessmentService) Update(ctx context.Context, id string, in domain.UpdateAssessmentInput) (*domain.Assessment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(a)
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes the assessment and returns what was deleted.
func (s *AssessmentService) Delete(ctx context.Context, id string) (*domain.Assessment, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return a, nil
}
