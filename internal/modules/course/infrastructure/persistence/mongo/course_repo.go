package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/elimu/instructor-backend/internal/modules/course/domain"
)

const Collection = "courses"

type CourseRepository struct {
	coll *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{coll: db.Collection(Collection)}
}

func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) error {
	doc := *c
	doc.Normalize()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*domain.Course, error) {
	var c domain.Course
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	c.Normalize()
	return &c, nil
}

func (r *CourseRepository) FindByInstructor(ctx context.Context, instructorID string) ([]domain.Course, error) {
	return r.find(ctx, bson.M{"instructorId": instructorID})
}

func (r *CourseRepository) FindByInstructorEmail(ctx context.Context, email string) ([]domain.Course, error) {
	return r.find(ctx, bson.M{"instructorEmail": email})
}

func (r *CourseRepository) Update(ctx context.Context, c *domain.Course) error {
	sessions := c.LiveSessions
	if sessions == nil {
		sessions = []domain.LiveSession{}
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$set": bson.M{
		"title":        c.Title,
		"description":  c.Description,
		"status":       c.Status,
		"totalHours":   c.TotalHours,
		"liveSessions": sessions,
		"updatedAt":    c.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepository) AddStudent(ctx context.Context, id, studentID string, at time.Time) (*domain.Course, error) {
	filter := bson.M{"_id": id, "students": bson.M{"$ne": studentID}}
	update := bson.M{
		"$push": bson.M{"students": studentID},
		"$set":  bson.M{"updatedAt": at},
	}
	return r.updateAndReturn(ctx, filter, update)
}

func (r *CourseRepository) AddReview(ctx context.Context, id string, review domain.Review, at time.Time) (*domain.Course, error) {
	update := bson.M{
		"$push": bson.M{"reviews": review},
		"$set":  bson.M{"updatedAt": at},
	}
	return r.updateAndReturn(ctx, bson.M{"_id": id}, update)
}

func (r *CourseRepository) updateAndReturn(ctx context.Context, filter, update bson.M) (*domain.Course, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c domain.Course
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	c.Normalize()
	return &c, nil
}

func (r *CourseRepository) find(ctx context.Context, filter bson.M) ([]domain.Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	out := make([]domain.Course, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode courses: %w", err)
	}
	for i := range out {
		out[i].Normalize()
	}
	return out, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrCourseNotFound
	}
	return fmt.Errorf("query course: %w", err)
}
