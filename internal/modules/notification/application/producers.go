package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/elimu/instructor-backend/internal/modules/notification/domain"
)

// Producers turns domain events into notifications with fixed templates.
type Producers struct {
	creator     Creator
	groups      domain.GroupFinder
	concurrency int
}

func NewProducers(creator Creator, groups domain.GroupFinder, concurrency int) *Producers {
	if concurrency <= 0 {
		concurrency = DefaultFanOutConcurrency
	}
	return &Producers{creator: creator, groups: groups, concurrency: concurrency}
}

func (p *Producers) NotifyCourseCreated(ctx context.Context, courseID, instructorID, courseTitle string) (*domain.Notification, error) {
	return p.creator.Create(ctx, domain.CreateNotificationInput{
		UserID:   instructorID,
		Title:    "Course Created Successfully",
		Message:  fmt.Sprintf("Your course \"%s\" has been created and is pending review.", courseTitle),
		Type:     domain.NotificationTypeSuccess,
		Category: domain.CategoryCourse,
		Metadata: map[string]string{domain.MetaCourseID: courseID},
	})
}

func (p *Producers) NotifyCourseApproved(ctx context.Context, courseID, instructorID, courseTitle string) (*domain.Notification, error) {
	return p.creator.Create(ctx, domain.CreateNotificationInput{
		UserID:   instructorID,
		Title:    "Course Approved",
		Message:  fmt.Sprintf("Your course \"%s\" has been approved and is now live!", courseTitle),
		Type:     domain.NotificationTypeSuccess,
		Category: domain.CategoryCourse,
		Metadata: map[string]string{domain.MetaCourseID: courseID},
	})
}

func (p *Producers) NotifyNewEnrollment(ctx context.Context, courseID, instructorID, studentID, courseTitle string) (*domain.Notification, error) {
	return p.creator.Create(ctx, domain.CreateNotificationInput{
		UserID:   instructorID,
		Title:    "New Course Enrollment",
		Message:  fmt.Sprintf("A new student has enrolled in your course \"%s\".", courseTitle),
		Type:     domain.NotificationTypeInfo,
		Category: domain.CategoryEnrollment,
		Metadata: map[string]string{domain.MetaCourseID: courseID, domain.MetaStudentID: studentID},
	})
}

func (p *Producers) NotifyNewReview(ctx context.Context, courseID, instructorID, studentID, courseTitle string, rating int) (*domain.Notification, error) {
	return p.creator.Create(ctx, domain.CreateNotificationInput{
		UserID:   instructorID,
		Title:    "New Course Review",
		Message:  fmt.Sprintf("A student has left a %d-star review on your course \"%s\".", rating, courseTitle),
		Type:     domain.NotificationTypeInfo,
		Category: domain.CategoryReview,
		Metadata: map[string]string{domain.MetaCourseID: courseID, domain.MetaStudentID: studentID},
	})
}

// NotifyGroupCreation tells every student of a new group they were added to it.
func (p *Producers) NotifyGroupCreation(ctx context.Context, group domain.GroupRecipients) domain.BatchResult {
	return p.addedToGroup(ctx, group, group.StudentIDs, "Added to New Group")
}

// NotifyStudentsAddedToGroup tells only newStudentIDs they joined group.
func (p *Producers) NotifyStudentsAddedToGroup(ctx context.Context, group domain.GroupRecipients, newStudentIDs []string) domain.BatchResult {
	return p.addedToGroup(ctx, group, newStudentIDs, "Added to Group")
}

func (p *Producers) addedToGroup(ctx context.Context, group domain.GroupRecipients, recipients []string, title string) domain.BatchResult {
	batch := FanOut(ctx, p.creator, p.concurrency, recipients, func(userID string) domain.CreateNotificationInput {
		return domain.CreateNotificationInput{
			UserID:   userID,
			Title:    title,
			Message:  fmt.Sprintf("You have been added to group: %s", group.Name),
			Type:     domain.NotificationTypeInfo,
			Category: domain.CategoryEnrollment,
			Metadata: map[string]string{domain.MetaGroupID: group.ID},
		}
	})
	logBatch(ctx, "group membership", group.ID, batch)
	return batch
}

// NotifyGroupMeeting tells every student of groupID about meeting. A missing group
// yields an empty batch.
func (p *Producers) NotifyGroupMeeting(ctx context.Context, groupID string, meeting domain.Meeting) (domain.BatchResult, error) {
	if p.groups == nil {
		return domain.BatchResult{}, nil
	}
	group, err := p.groups.FindRecipients(ctx, groupID)
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("load group %s: %w", groupID, err)
	}
	if group == nil {
		return domain.BatchResult{}, nil
	}

	batch := FanOut(ctx, p.creator, p.concurrency, group.StudentIDs, func(userID string) domain.CreateNotificationInput {
		return domain.CreateNotificationInput{
			UserID:   userID,
			Title:    "New Group Meeting Scheduled",
			Message:  fmt.Sprintf("A new meeting has been scheduled for %s", group.Name),
			Type:     domain.NotificationTypeInfo,
			Category: domain.CategorySystem,
			Metadata: map[string]string{
				domain.MetaGroupID:     group.ID,
				domain.MetaMeetingID:   meeting.ID,
				domain.MetaMeetingLink: meeting.JoinURL,
				domain.MetaStartTime:   meeting.StartTime,
			},
		}
	})
	logBatch(ctx, "group meeting", group.ID, batch)
	return batch, nil
}

func logBatch(ctx context.Context, kind, groupID string, batch domain.BatchResult) {
	if batch.Failed() == 0 {
		return
	}
	slog.WarnContext(ctx, "notification fan-out incomplete",
		"kind", kind, "group_id", groupID,
		"succeeded", batch.Succeeded(), "failed", batch.Failed(), "error", batch.Err())
}
