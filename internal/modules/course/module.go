package course

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/elimu/instructor-backend/internal/modules/course/application"
	"github.com/elimu/instructor-backend/internal/modules/course/domain"
	courseMongo "github.com/elimu/instructor-backend/internal/modules/course/infrastructure/persistence/mongo"
	"github.com/elimu/instructor-backend/internal/modules/course/infrastructure/persistence/postgres"
	course_http "github.com/elimu/instructor-backend/internal/modules/course/interfaces/http"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/database"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/realtime"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/websocket"
)

// Options tunes stats delivery. A nil Redis client keeps it on this instance only.
type Options struct {
	Redis   *redis.Client
	Channel string
}

type Module struct {
	service *application.CourseService
	handler *course_http.CourseHandler
	gateway *course_http.StatsGateway
	hub     *websocket.Hub
	cancel  context.CancelFunc
}

func NewModule(h database.Handles, notifier application.Notifier, opts Options) *Module {
	hub := websocket.NewHub("instructor_stats")
	go hub.Run()

	ctx, cancel := context.WithCancel(context.Background())

	var publisher application.Publisher = hub
	if opts.Redis != nil {
		bridge := realtime.NewBridge(opts.Redis, opts.Channel+":instructor-stats", hub)
		go func() {
			if err := bridge.Run(ctx); err != nil {
				log.Printf("[Course] Redis bridge stopped, falling back to local delivery: %v", err)
			}
		}()
		publisher = bridge
	}

	repo := newRepository(h)
	stats := application.NewStatsService(repo, publisher)
	service := application.NewCourseService(repo, notifier, stats)

	return &Module{
		service: service,
		handler: course_http.NewCourseHandler(service, stats),
		gateway: course_http.NewStatsGateway(hub, stats),
		hub:     hub,
		cancel:  cancel,
	}
}

func newRepository(h database.Handles) domain.CourseRepository {
	if h.UsesPostgres() {
		return postgres.NewPgCourseRepository(h.Postgres)
	}
	return courseMongo.NewCourseRepository(h.Mongo)
}

func (m *Module) Service() *application.CourseService {
	return m.service
}

func (m *Module) HTTPHandler() *course_http.CourseHandler {
	return m.handler
}

func (m *Module) StatsGateway() *course_http.StatsGateway {
	return m.gateway
}

// Shutdown stops the Redis subscriber and the stats hub.
func (m *Module) Shutdown() {
	m.cancel()
	m.hub.Stop()
}
