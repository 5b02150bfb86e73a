package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elimu/instructor-backend/internal/modules/group/domain"
	notificationDomain "github.com/elimu/instructor-backend/internal/modules/notification/domain"
)

// Notifier is the part of the notification producers groups use.
type Notifier interface {
	NotifyGroupCreation(ctx context.Context, group notificationDomain.GroupRecipients) notificationDomain.BatchResult
	NotifyStudentsAddedToGroup(ctx context.Context, group notificationDomain.GroupRecipients, newStudentIDs []string) notificationDomain.BatchResult
	NotifyGroupMeeting(ctx context.Context, groupID string, meeting notificationDomain.Meeting) (notificationDomain.BatchResult, error)
}

type GroupService struct {
	repo     domain.GroupRepository
	notifier Notifier
	now      func() time.Time
}

func NewGroupService(repo domain.GroupRepository, notifier Notifier) *GroupService {
	return &GroupService{
		repo:     repo,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create stores the group and notifies each listed student. Notification failures are
// reported in the batch and never undo the group.
func (s *GroupService) Create(ctx context.Context, in domain.CreateGroupInput) (*domain.Group, notificationDomain.BatchResult, error) {
	if err := in.Validate(); err != nil {
		return nil, notificationDomain.BatchResult{}, err
	}

	now := s.now()
	students := make([]string, 0, len(in.StudentIDs))
	for _, id := range in.StudentIDs {
		if id = strings.TrimSpace(id); id != "" {
			students = append(students, id)
		}
	}
	g := &domain.Group{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		InstructorID: in.InstructorID,
		StudentIDs:   students,
		MeetingIDs:   []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, notificationDomain.BatchResult{}, err
	}

	var batch notificationDomain.BatchResult
	if s.notifier != nil && len(g.StudentIDs) > 0 {
		batch = s.notifier.NotifyGroupCreation(ctx, recipients(g))
	}
	return g, batch, nil
}

func (s *GroupService) FindByID(ctx context.Context, id string) (*domain.Group, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *GroupService) FindByInstructor(ctx context.Context, instructorID string) ([]domain.Group, error) {
	return s.repo.FindByInstructor(ctx, instructorID)
}

func (s *GroupService) FindAll(ctx context.Context) ([]domain.Group, error) {
	return s.repo.FindAll(ctx)
}

func (s *GroupService) Update(ctx context.Context, id string, in domain.UpdateGroupInput) (*domain.Group, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		g.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		g.Description = *in.Description
	}
	g.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GroupService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// AddStudents merges ids into the group and notifies only the students that were not
// members yet.
func (s *GroupService) AddStudents(ctx context.Context, id string, studentIDs []string) (*domain.Group, notificationDomain.BatchResult, error) {
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notificationDomain.BatchResult{}, err
	}

	added := g.AddStudents(studentIDs)
	if len(added) == 0 {
		return g, notificationDomain.BatchResult{}, nil
	}
	g.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, g); err != nil {
		return nil, notificationDomain.BatchResult{}, err
	}

	var batch notificationDomain.BatchResult
	if s.notifier != nil {
		batch = s.notifier.NotifyStudentsAddedToGroup(ctx, recipients(g), added)
	}
	return g, batch, nil
}

func (s *GroupService) RemoveStudent(ctx context.Context, id, studentID string) (*domain.Group, error) {
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !g.RemoveStudent(studentID) {
		return g, nil
	}
	g.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// AddMeeting records meeting on the group and tells its students about it.
func (s *GroupService) AddMeeting(ctx context.Context, id string, meeting notificationDomain.Meeting) (*domain.Group, notificationDomain.BatchResult, error) {
	if strings.TrimSpace(meeting.ID) == "" {
		return nil, notificationDomain.BatchResult{}, fmt.Errorf("%w: meeting id is required", domain.ErrInvalidGroup)
	}
	g, err := s.repo.AppendMeeting(ctx, id, meeting.ID, s.now())
	if err != nil {
		return nil, notificationDomain.BatchResult{}, err
	}

	var batch notificationDomain.BatchResult
	if s.notifier != nil {
		batch, err = s.notifier.NotifyGroupMeeting(ctx, g.ID, meeting)
		if err != nil {
			slog.WarnContext(ctx, "meeting notification failed", "group_id", g.ID, "meeting_id", meeting.ID, "error", err)
		}
	}
	return g, batch, nil
}

func (s *GroupService) Meetings(ctx context.Context, id string) ([]string, error) {
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return g.MeetingIDs, nil
}

func recipients(g *domain.Group) notificationDomain.GroupRecipients {
	return notificationDomain.GroupRecipients{ID: g.ID, Name: g.Name, StudentIDs: g.StudentIDs}
}

// RecipientFinder lets the notification producers load group members.
type RecipientFinder struct {
	repo domain.GroupRepository
}

func NewRecipientFinder(repo domain.GroupRepository) *RecipientFinder {
	return &RecipientFinder{repo: repo}
}

func (f *RecipientFinder) FindRecipients(ctx context.Context, groupID string) (*notificationDomain.GroupRecipients, error) {
	g, err := f.repo.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrGroupNotFound) {
			return nil, nil
		}
		return nil, err
	}
	r := recipients(g)
	return &r, nil
}
