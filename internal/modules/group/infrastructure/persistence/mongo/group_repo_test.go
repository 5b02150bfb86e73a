package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/elimu/instructor-backend/internal/modules/group/domain"
)

const ns = "elimu.groups"

func groupDoc(id string, students, meetings bson.A, at time.Time) bson.D {
	doc := bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Algebra"},
		{Key: "instructorId", Value: "i1"},
		{Key: "createdAt", Value: at},
		{Key: "updatedAt", Value: at},
	}
	if students != nil {
		doc = append(doc, bson.E{Key: "studentIds", Value: students})
	}
	if meetings != nil {
		doc = append(doc, bson.E{Key: "meetingIds", Value: meetings})
	}
	return doc
}

func TestGroupRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	now := time.Now().UTC().Truncate(time.Millisecond)

	mt.Run("create", func(mt *mtest.T) {
		repo := NewGroupRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		g := &domain.Group{ID: "g1", Name: "Algebra", InstructorID: "i1", CreatedAt: now, UpdatedAt: now}
		require.NoError(t, repo.Create(context.Background(), g))
		assert.Nil(t, g.StudentIDs)
	})

	mt.Run("find by id normalizes arrays", func(mt *mtest.T) {
		repo := NewGroupRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, groupDoc("g1", bson.A{"s1"}, nil, now)))

		g, err := repo.FindByID(context.Background(), "g1")
		require.NoError(t, err)
		assert.Equal(t, []string{"s1"}, g.StudentIDs)
		assert.Equal(t, []string{}, g.MeetingIDs)
	})

	mt.Run("find by id missing", func(mt *mtest.T) {
		repo := NewGroupRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	})

	mt.Run("find by instructor", func(mt *mtest.T) {
		repo := NewGroupRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			groupDoc("g2", bson.A{}, bson.A{}, now),
			groupDoc("g1", bson.A{"s1", "s2"}, bson.A{"m1"}, now),
		))

		groups, err := repo.FindByInstructor(context.Background(), "i1")
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, "g2", groups[0].ID)
		assert.Equal(t, []string{"m1"}, groups[1].MeetingIDs)
	})

	mt.Run("find all error", func(mt *mtest.T) {
		repo := NewGroupRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad query"}))

		_, err := repo.FindAll(context.Background())
		assert.Error(t, err)
	})

	mt.Run("update", func(mt *mtest.T) {
		repo := NewGroupRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 1}})

		require.NoError(t, repo.Update(context.Background(), &domain.Group{ID: "g1", Name: "B", UpdatedAt: now}))
	})

	mt.Run("update missing", func(mt *mtest.T) {
		repo := NewGroupRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := repo.Update(context.Background(), &domain.Group{ID: "missing"})
		assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	})

	mt.Run("append meeting", func(mt *mtest.T) {
		repo := NewGroupRepository(mt.DB)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: groupDoc("g1", bson.A{"s1"}, bson.A{"m1", "m2"}, now)},
		})

		g, err := repo.AppendMeeting(context.Background(), "g1", "m2", now)
		require.NoError(t, err)
		assert.Equal(t, []string{"m1", "m2"}, g.MeetingIDs)
	})

	mt.Run("append meeting missing", func(mt *mtest.T) {
		repo := NewGroupRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		_, err := repo.AppendMeeting(context.Background(), "missing", "m2", now)
		assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewGroupRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}})
		require.NoError(t, repo.Delete(context.Background(), "g1"))
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := NewGroupRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}})
		assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), domain.ErrGroupNotFound)
	})
}
