package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/elimu/instructor-backend/internal/modules/group/domain"
)

const Collection = "groups"

type GroupRepository struct {
	coll *mongo.Collection
}

func NewGroupRepository(db *mongo.Database) *GroupRepository {
	return &GroupRepository{coll: db.Collection(Collection)}
}

func (r *GroupRepository) Create(ctx context.Context, g *domain.Group) error {
	doc := *g
	normalize(&doc)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

func (r *GroupRepository) FindByID(ctx context.Context, id string) (*domain.Group, error) {
	var g domain.Group
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return nil, notFound(err)
	}
	normalize(&g)
	return &g, nil
}

func (r *GroupRepository) FindByInstructor(ctx context.Context, instructorID string) ([]domain.Group, error) {
	return r.find(ctx, bson.M{"instructorId": instructorID})
}

func (r *GroupRepository) FindAll(ctx context.Context) ([]domain.Group, error) {
	return r.find(ctx, bson.M{})
}

func (r *GroupRepository) Update(ctx context.Context, g *domain.Group) error {
	students := g.StudentIDs
	if students == nil {
		students = []string{}
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": g.ID}, bson.M{"$set": bson.M{
		"name":        g.Name,
		"description": g.Description,
		"studentIds":  students,
		"updatedAt":   g.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

func (r *GroupRepository) AppendMeeting(ctx context.Context, id, meetingID string, at time.Time) (*domain.Group, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$push": bson.M{"meetingIds": meetingID},
		"$set":  bson.M{"updatedAt": at},
	}
	var g domain.Group
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&g); err != nil {
		return nil, notFound(err)
	}
	normalize(&g)
	return &g, nil
}

func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

func (r *GroupRepository) find(ctx context.Context, filter bson.M) ([]domain.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	out := make([]domain.Group, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	for i := range out {
		normalize(&out[i])
	}
	return out, nil
}

// normalize keeps id arrays non-nil so $push never meets a null field.
func normalize(g *domain.Group) {
	if g.StudentIDs == nil {
		g.StudentIDs = []string{}
	}
	if g.MeetingIDs == nil {
		g.MeetingIDs = []string{}
	}
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrGroupNotFound
	}
	return fmt.Errorf("query group: %w", err)
}
