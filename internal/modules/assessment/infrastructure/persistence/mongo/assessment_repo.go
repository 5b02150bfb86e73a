package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/elimu/instructor-backend/internal/modules/assessment/domain"
)

const Collection = "assessments"

type AssessmentRepository struct {
	coll *mongo.Collection
}

func NewAssessmentRepository(db *mongo.Database) *AssessmentRepository {
	return &AssessmentRepository{coll: db.Collection(Collection)}
}

func (r *AssessmentRepository) Create(ctx context.Context, a *domain.Assessment) error {
	doc := *a
	normalize(&doc)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (r *AssessmentRepository) FindByID(ctx context.Context, id string) (*domain.Assessment, error) {
	var a domain.Assessment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("query assessment: %w", err)
	}
	normalize(&a)
	return &a, nil
}

func (r *AssessmentRepository) FindByInstructor(ctx context.Context, instructorID string) ([]domain.Assessment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"instructorId": instructorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	out := make([]domain.Assessment, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode assessments: %w", err)
	}
	for i := range out {
		normalize(&out[i])
	}
	return out, nil
}

func (r *AssessmentRepository) Update(ctx context.Context, a *domain.Assessment) error {
	doc := *a
	normalize(&doc)
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": a.ID}, bson.M{"$set": bson.M{
		"title":      doc.Title,
		"subject":    doc.Subject,
		"topic":      doc.Topic,
		"difficulty": doc.Difficulty,
		"questions":  doc.Questions,
		"status":     doc.Status,
		"updatedAt":  doc.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update assessment: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAssessmentNotFound
	}
	return nil
}

func (r *AssessmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAssessmentNotFound
	}
	return nil
}

func normalize(a *domain.Assessment) {
	if a.Questions == nil {
		a.Questions = []domain.Question{}
	}
}
