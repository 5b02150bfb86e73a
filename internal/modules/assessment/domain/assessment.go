package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrInvalidAssessment  = errors.New("invalid assessment")
	// ErrGenerationUnavailable is returned when questions are requested from the AI generator,
	// which this service does not run.
	ErrGenerationUnavailable = errors.New("question generation is not available")
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Question is a multiple choice item. CorrectAnswer indexes Options.
type Question struct {
	Question      string   `json:"question" bson:"question"`
	Options       []string `json:"options" bson:"options"`
	CorrectAnswer int      `json:"correctAnswer" bson:"correctAnswer"`
}

func (q Question) validate(i int) error {
	switch {
	case strings.TrimSpace(q.Question) == "":
		return fmt.Errorf("%w: question %d has no text", ErrInvalidAssessment, i+1)
	case len(q.Options) < 2:
		return fmt.Errorf("%w: question %d needs at least two options", ErrInvalidAssessment, i+1)
	case q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options):
		return fmt.Errorf("%w: question %d has no option %d", ErrInvalidAssessment, i+1, q.CorrectAnswer)
	}
	return nil
}

func validateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: at least one question is required", ErrInvalidAssessment)
	}
	for i, q := range questions {
		if err := q.validate(i); err != nil {
			return err
		}
	}
	return nil
}

type Assessment struct {
	ID           string     `json:"id" bson:"_id"`
	Title        string     `json:"title" bson:"title"`
	Subject      string     `json:"subject" bson:"subject"`
	Topic        string     `json:"topic" bson:"topic"`
	Difficulty   string     `json:"difficulty" bson:"difficulty"`
	InstructorID string     `json:"instructorId" bson:"instructorId"`
	Questions    []Question `json:"questions" bson:"questions"`
	Status       Status     `json:"status" bson:"status"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updatedAt"`
}

type CreateAssessmentInput struct {
	Title        string     `json:"title"`
	Subject      string     `json:"subject"`
	Topic        string     `json:"topic"`
	Difficulty   string     `json:"difficulty"`
	Questions    []Question `json:"questions"`
	Status       Status     `json:"status,omitempty"`
	UseAI        bool       `json:"useAI,omitempty"`
	InstructorID string     `json:"-"`
}

func (in CreateAssessmentInput) Validate() error {
	if in.UseAI {
		return ErrGenerationUnavailable
	}
	switch {
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidAssessment)
	case strings.TrimSpace(in.Subject) == "":
		return fmt.Errorf("%w: subject is required", ErrInvalidAssessment)
	case strings.TrimSpace(in.Topic) == "":
		return fmt.Errorf("%w: topic is required", ErrInvalidAssessment)
	case strings.TrimSpace(in.Difficulty) == "":
		return fmt.Errorf("%w: difficulty is required", ErrInvalidAssessment)
	case in.InstructorID == "":
		return fmt.Errorf("%w: instructor is required", ErrInvalidAssessment)
	case in.Status != "" && !in.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidAssessment, in.Status)
	}
	return validateQuestions(in.Questions)
}

// UpdateAssessmentInput changes only the fields that are set.
type UpdateAssessmentInput struct {
	Title      *string     `json:"title,omitempty"`
	Subject    *string     `json:"subject,omitempty"`
	Topic      *string     `json:"topic,omitempty"`
	Difficulty *string     `json:"difficulty,omitempty"`
	Questions  *[]Question `json:"questions,omitempty"`
	Status     *Status     `json:"status,omitempty"`
}

func (in UpdateAssessmentInput) Validate() error {
	switch {
	case blank(in.Title):
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidAssessment)
	case blank(in.Subject):
		return fmt.Errorf("%w: subject cannot be empty", ErrInvalidAssessment)
	case blank(in.Topic):
		return fmt.Errorf("%w: topic cannot be empty", ErrInvalidAssessment)
	case blank(in.Difficulty):
		return fmt.Errorf("%w: difficulty cannot be empty", ErrInvalidAssessment)
	case in.Status != nil && !in.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidAssessment, *in.Status)
	}
	if in.Questions != nil {
		return validateQuestions(*in.Questions)
	}
	return nil
}

func blank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) == ""
}

// Apply copies the set fields onto a.
func (in UpdateAssessmentInput) Apply(a *Assessment) {
	if in.Title != nil {
		a.Title = strings.TrimSpace(*in.Title)
	}
	if in.Subject != nil {
		a.Subject = strings.TrimSpace(*in.Subject)
	}
	if in.Topic != nil {
		a.Topic = strings.TrimSpace(*in.Topic)
	}
	if in.Difficulty != nil {
		a.Difficulty = strings.TrimSpace(*in.Difficulty)
	}
	if in.Questions != nil {
		a.Questions = append([]Question{}, (*in.Questions)...)
	}
	if in.Status != nil {
		a.Status = *in.Status
	}
}

// AssessmentRepository persists assessments. Lookups and writes by id return
// ErrAssessmentNotFound when no record matches.
type AssessmentRepository interface {
	Create(ctx context.Context, a *Assessment) error
	FindByID(ctx context.Context, id string) (*Assessment, error)
	FindByInstructor(ctx context.Context, instructorID string) ([]Assessment, error)
	Update(ctx context.Context, a *Assessment) error
	Delete(ctx context.Context, id string) error
}
