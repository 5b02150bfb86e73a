package application

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/elimu/instructor-backend/internal/modules/notification/domain"
)

const DefaultFanOutConcurrency = 8

// Creator creates a single notification.
type Creator interface {
	Create(ctx context.Context, in domain.CreateNotificationInput) (*domain.Notification, error)
}

// FanOut issues one Create per recipient with at most concurrency calls in flight.
// Every recipient gets a result at its own index; one failure does not stop the others.
// Recipients not yet started when ctx is cancelled report ctx.Err().
func FanOut(ctx context.Context, creator Creator, concurrency int, recipients []string, build func(userID string) domain.CreateNotificationInput) domain.BatchResult {
	if concurrency <= 0 {
		concurrency = DefaultFanOutConcurrency
	}
	results := make([]domain.RecipientResult, len(recipients))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, userID := range recipients {
		g.Go(func() error {
			results[i].UserID = userID
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Notification, results[i].Err = creator.Create(ctx, build(userID))
			return nil
		})
	}
	_ = g.Wait()

	batch := domain.BatchResult{Results: results}
	fanOutRecipients.WithLabelValues("ok").Add(float64(batch.Succeeded()))
	fanOutRecipients.WithLabelValues("error").Add(float64(batch.Failed()))
	return batch
}
