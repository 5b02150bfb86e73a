package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/elimu/instructor-backend/internal/modules/notification/domain"
)

const Collection = "notifications"

type NotificationRepository struct {
	coll *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{coll: db.Collection(Collection)}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	var n domain.Notification
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

func (r *NotificationRepository) FindActiveByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit)).SetSkip(int64(offset))
	}

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID, "active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]domain.Notification, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return out, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id string, at time.Time) (*domain.Notification, error) {
	return r.setAndReturn(ctx, id, bson.M{"read": true, "updatedAt": at})
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"userId": userID, "read": false, "active": true},
		bson.M{"$set": bson.M{"read": true, "updatedAt": at}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *NotificationRepository) SoftDelete(ctx context.Context, id string, at time.Time) (*domain.Notification, error) {
	return r.setAndReturn(ctx, id, bson.M{"active": false, "updatedAt": at})
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"userId": userID, "read": false, "active": true})
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (r *NotificationRepository) setAndReturn(ctx context.Context, id string, set bson.M) (*domain.Notification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var n domain.Notification
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&n); err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotificationNotFound
	}
	return fmt.Errorf("query notification: %w", err)
}
