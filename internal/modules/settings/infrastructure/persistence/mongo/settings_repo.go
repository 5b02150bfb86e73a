package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/elimu/instructor-backend/internal/modules/settings/domain"
)

const Collection = "settings"

type SettingsRepository struct {
	coll *mongo.Collection
}

func NewSettingsRepository(db *mongo.Database) *SettingsRepository {
	return &SettingsRepository{coll: db.Collection(Collection)}
}

func (r *SettingsRepository) FindByEmail(ctx context.Context, email string) (*domain.Settings, error) {
	var s domain.Settings
	if err := r.coll.FindOne(ctx, bson.M{"_id": email}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("query settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, s *domain.Settings) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": s.Email}, s, opts); err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
