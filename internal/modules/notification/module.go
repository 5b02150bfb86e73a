package notification

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/elimu/instructor-backend/internal/modules/notification/application"
	"github.com/elimu/instructor-backend/internal/modules/notification/domain"
	notificationmongo "github.com/elimu/instructor-backend/internal/modules/notification/infrastructure/persistence/mongo"
	"github.com/elimu/instructor-backend/internal/modules/notification/infrastructure/persistence/postgres"
	notification_http "github.com/elimu/instructor-backend/internal/modules/notification/interfaces/http"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/database"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/realtime"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/websocket"
)

// Options tunes delivery. A nil Redis client keeps delivery on this instance only.
type Options struct {
	FanOutConcurrency int
	Redis             *redis.Client
	Channel           string
}

type Module struct {
	service   *application.NotificationService
	producers *application.Producers
	handler   *notification_http.NotificationHandler
	hub       *websocket.Hub
	cancel    context.CancelFunc
}

func NewModule(h database.Handles, opts Options, groups domain.GroupFinder) *Module {
	hub := websocket.NewHub("notifications")
	go hub.Run()

	ctx, cancel := context.WithCancel(context.Background())

	var publisher domain.Publisher = hub
	if opts.Redis != nil {
		bridge := realtime.NewBridge(opts.Redis, opts.Channel+":notifications", hub)
		go func() {
			if err := bridge.Run(ctx); err != nil {
				log.Printf("[Notification] Redis bridge stopped, falling back to local delivery: %v", err)
			}
		}()
		publisher = bridge
	}

	service := application.NewNotificationService(newRepository(h), publisher)

	return &Module{
		service:   service,
		producers: application.NewProducers(service, groups, opts.FanOutConcurrency),
		handler:   notification_http.NewNotificationHandler(service, hub),
		hub:       hub,
		cancel:    cancel,
	}
}

func newRepository(h database.Handles) domain.NotificationRepository {
	if h.UsesPostgres() {
		return postgres.NewPgNotificationRepository(h.Postgres)
	}
	return notificationmongo.NewNotificationRepository(h.Mongo)
}

func (m *Module) HTTPHandler() *notification_http.NotificationHandler {
	return m.handler
}

func (m *Module) Service() *application.NotificationService {
	return m.service
}

// Producers returns the template helpers other modules notify through.
func (m *Module) Producers() *application.Producers {
	return m.producers
}

// Shutdown stops the Redis subscriber and the hub.
func (m *Module) Shutdown() {
	m.cancel()
	m.hub.Stop()
}
