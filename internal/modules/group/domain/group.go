package domain

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrInvalidGroup  = errors.New("invalid group")
)

// Group is a set of students run by one instructor.
type Group struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
	InstructorID string    `json:"instructorId" bson:"instructorId"`
	StudentIDs   []string  `json:"studentIds" bson:"studentIds"`
	MeetingIDs   []string  `json:"meetingIds" bson:"meetingIds"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// HasStudent reports whether studentID is a member.
func (g *Group) HasStudent(studentID string) bool {
	return slices.Contains(g.StudentIDs, studentID)
}

// AddStudents appends the ids not already present, in the given order, and returns them.
func (g *Group) AddStudents(ids []string) []string {
	seen := make(map[string]struct{}, len(g.StudentIDs)+len(ids))
	for _, id := range g.StudentIDs {
		seen[id] = struct{}{}
	}
	var added []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		added = append(added, id)
	}
	g.StudentIDs = append(g.StudentIDs, added...)
	return added
}

// RemoveStudent drops every occurrence of studentID and reports whether any was removed.
func (g *Group) RemoveStudent(studentID string) bool {
	before := len(g.StudentIDs)
	g.StudentIDs = slices.DeleteFunc(g.StudentIDs, func(id string) bool { return id == studentID })
	return len(g.StudentIDs) != before
}

type CreateGroupInput struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	InstructorID string   `json:"instructorId,omitempty"`
	StudentIDs   []string `json:"studentIds,omitempty"`
}

func (in CreateGroupInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidGroup)
	case strings.TrimSpace(in.InstructorID) == "":
		return fmt.Errorf("%w: instructorId is required", ErrInvalidGroup)
	}
	return nil
}

// UpdateGroupInput changes only the fields that are set.
type UpdateGroupInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (in UpdateGroupInput) Validate() error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidGroup)
	}
	return nil
}

// GroupRepository persists groups. Lookups and writes by id return ErrGroupNotFound
// when no record matches.
type GroupRepository interface {
	Create(ctx context.Context, group *Group) error
	FindByID(ctx context.Context, id string) (*Group, error)
	FindByInstructor(ctx context.Context, instructorID string) ([]Group, error)
	FindAll(ctx context.Context) ([]Group, error)
	// Update replaces name, description, student ids and updatedAt.
	Update(ctx context.Context, group *Group) error
	AppendMeeting(ctx context.Context, id, meetingID string, at time.Time) (*Group, error)
	Delete(ctx context.Context, id string) error
}
