package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elimu/instructor-backend/internal/modules/notification/domain"
)

type recordingCreator struct {
	mu       sync.Mutex
	inputs   []domain.CreateNotificationInput
	failFor  map[string]bool
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (c *recordingCreator) Create(_ context.Context, in domain.CreateNotificationInput) (*domain.Notification, error) {
	cur := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		p := c.peak.Load()
		if cur <= p || c.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	if c.delay > 0 {
		time.Sleep(c.delay)
	}

	c.mu.Lock()
	c.inputs = append(c.inputs, in)
	c.mu.Unlock()

	if c.failFor[in.UserID] {
		return nil, fmt.Errorf("create for %s failed", in.UserID)
	}
	return domain.NewNotification("id-"+in.UserID, in, time.Now()), nil
}

func TestProducers_CourseTemplates(t *testing.T) {
	c := &recordingCreator{}
	p := NewProducers(c, nil, 0)
	ctx := context.Background()

	_, err := p.NotifyCourseCreated(ctx, "c1", "i1", "Go 101")
	require.NoError(t, err)
	_, err = p.NotifyCourseApproved(ctx, "c1", "i1", "Go 101")
	require.NoError(t, err)
	_, err = p.NotifyNewEnrollment(ctx, "c1", "i1", "s1", "Go 101")
	require.NoError(t, err)
	_, err = p.NotifyNewReview(ctx, "c1", "i1", "s1", "Go 101", 4)
	require.NoError(t, err)

	want := []domain.CreateNotificationInput{
		{
			UserID: "i1", Title: "Course Created Successfully",
			Message: `Your course "Go 101" has been created and is pending review.`,
			Type:    domain.NotificationTypeSuccess, Category: domain.CategoryCourse,
			Metadata: map[string]string{"courseId": "c1"},
		},
		{
			UserID: "i1", Title: "Course Approved",
			Message: `Your course "Go 101" has been approved and is now live!`,
			Type:    domain.NotificationTypeSuccess, Category: domain.CategoryCourse,
			Metadata: map[string]string{"courseId": "c1"},
		},
		{
			UserID: "i1", Title: "New Course Enrollment",
			Message: `A new student has enrolled in your course "Go 101".`,
			Type:    domain.NotificationTypeInfo, Category: domain.CategoryEnrollment,
			Metadata: map[string]string{"courseId": "c1", "studentId": "s1"},
		},
		{
			UserID: "i1", Title: "New Course Review",
			Message: `A student has left a 4-star review on your course "Go 101".`,
			Type:    domain.NotificationTypeInfo, Category: domain.CategoryReview,
			Metadata: map[string]string{"courseId": "c1", "studentId": "s1"},
		},
	}
	assert.Equal(t, want, c.inputs)
	for _, in := range c.inputs {
		assert.NoError(t, in.Validate())
	}
}

func TestProducers_NotifyGroupCreation(t *testing.T) {
	c := &recordingCreator{}
	p := NewProducers(c, nil, 2)
	group := domain.GroupRecipients{ID: "g1", Name: "Cohort A", StudentIDs: []string{"s1", "s2", "s3", "s1"}}

	batch := p.NotifyGroupCreation(context.Background(), group)

	require.Len(t, batch.Results, 4)
	assert.Equal(t, 4, batch.Succeeded())
	assert.NoError(t, batch.Err())
	for i, id := range group.StudentIDs {
		assert.Equal(t, id, batch.Results[i].UserID)
		assert.Equal(t, id, batch.Results[i].Notification.UserID)
	}
	require.Len(t, c.inputs, 4)
	for _, in := range c.inputs {
		assert.Equal(t, "Added to New Group", in.Title)
		assert.Equal(t, "You have been added to group: Cohort A", in.Message)
		assert.Equal(t, domain.CategoryEnrollment, in.Category)
		assert.Equal(t, "g1", in.Metadata[domain.MetaGroupID])
		assert.NoError(t, in.Validate())
	}
}

func TestProducers_FanOutContinuesPastFailures(t *testing.T) {
	c := &recordingCreator{failFor: map[string]bool{"s2": true}}
	p := NewProducers(c, nil, 8)

	batch := p.NotifyStudentsAddedToGroup(context.Background(),
		domain.GroupRecipients{ID: "g1", Name: "Cohort A"}, []string{"s1", "s2", "s3"})

	require.Len(t, batch.Results, 3)
	assert.Equal(t, 2, batch.Succeeded())
	assert.Equal(t, 1, batch.Failed())
	assert.Error(t, batch.Results[1].Err)
	assert.Nil(t, batch.Results[1].Notification)
	assert.NoError(t, batch.Results[2].Err)
	assert.ErrorContains(t, batch.Err(), "s2")
	assert.Len(t, c.inputs, 3)
	assert.Equal(t, "Added to Group", c.inputs[0].Title)
}

func TestFanOut_RespectsConcurrencyLimit(t *testing.T) {
	c := &recordingCreator{delay: 10 * time.Millisecond}
	recipients := make([]string, 20)
	for i := range recipients {
		recipients[i] = fmt.Sprintf("s%d", i)
	}

	batch := FanOut(context.Background(), c, 3, recipients, func(id string) domain.CreateNotificationInput {
		return systemInput(id)
	})

	assert.Equal(t, 20, batch.Succeeded())
	assert.LessOrEqual(t, c.peak.Load(), int32(3))
	for i, r := range batch.Results {
		assert.Equal(t, recipients[i], r.UserID)
	}
}

func TestFanOut_CancelledContext(t *testing.T) {
	c := &recordingCreator{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := FanOut(ctx, c, 2, []string{"s1", "s2"}, systemInput)

	assert.Equal(t, 2, batch.Failed())
	assert.ErrorIs(t, batch.Results[0].Err, context.Canceled)
	assert.Equal(t, "s2", batch.Results[1].UserID)
	assert.Empty(t, c.inputs)
}

func TestFanOut_Empty(t *testing.T) {
	batch := FanOut(context.Background(), &recordingCreator{}, 0, nil, systemInput)
	assert.Empty(t, batch.Results)
	assert.NoError(t, batch.Err())
}

func TestProducers_NotifyGroupMeeting(t *testing.T) {
	meeting := domain.Meeting{ID: "m1", JoinURL: "https://zoom.us/j/1", StartTime: "2026-03-02T10:00:00Z"}

	t.Run("notifies every student", func(t *testing.T) {
		c := &recordingCreator{}
		finder := groupFinderFunc(func(_ context.Context, id string) (*domain.GroupRecipients, error) {
			assert.Equal(t, "g1", id)
			return &domain.GroupRecipients{ID: "g1", Name: "Cohort A", StudentIDs: []string{"s1", "s2"}}, nil
		})

		batch, err := NewProducers(c, finder, 4).NotifyGroupMeeting(context.Background(), "g1", meeting)
		require.NoError(t, err)
		assert.Equal(t, 2, batch.Succeeded())

		in := c.inputs[0]
		assert.Equal(t, "New Group Meeting Scheduled", in.Title)
		assert.Equal(t, "A new meeting has been scheduled for Cohort A", in.Message)
		assert.Equal(t, domain.CategorySystem, in.Category)
		assert.Equal(t, map[string]string{
			"groupId": "g1", "meetingId": "m1", "meetingLink": "https://zoom.us/j/1", "startTime": "2026-03-02T10:00:00Z",
		}, in.Metadata)
	})

	t.Run("missing group is a no-op", func(t *testing.T) {
		c := &recordingCreator{}
		finder := groupFinderFunc(func(context.Context, string) (*domain.GroupRecipients, error) { return nil, nil })

		batch, err := NewProducers(c, finder, 4).NotifyGroupMeeting(context.Background(), "gone", meeting)
		require.NoError(t, err)
		assert.Empty(t, batch.Results)
		assert.Empty(t, c.inputs)
	})

	t.Run("finder error", func(t *testing.T) {
		finder := groupFinderFunc(func(context.Context, string) (*domain.GroupRecipients, error) {
			return nil, errors.New("db down")
		})

		_, err := NewProducers(&recordingCreator{}, finder, 4).NotifyGroupMeeting(context.Background(), "g1", meeting)
		assert.ErrorContains(t, err, "db down")
	})

	t.Run("no finder", func(t *testing.T) {
		batch, err := NewProducers(&recordingCreator{}, nil, 4).NotifyGroupMeeting(context.Background(), "g1", meeting)
		require.NoError(t, err)
		assert.Empty(t, batch.Results)
	})
}

func TestProducers_WithService(t *testing.T) {
	repo := newMemRepo()
	pub := &recordingPublisher{}
	svc := newTestService(repo, pub)
	p := NewProducers(svc, nil, 4)

	batch := p.NotifyGroupCreation(context.Background(), domain.GroupRecipients{ID: "g1", Name: "A", StudentIDs: []string{"s1", "s2", "s3"}})
	require.NoError(t, batch.Err())

	for _, id := range []string{"s1", "s2", "s3"} {
		all, err := svc.FindAllForUser(context.Background(), id)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	}
	assert.Len(t, pub.calls, 3)
}
