package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/elimu/instructor-backend/internal/gateway"
	"github.com/elimu/instructor-backend/internal/gateway/middleware"
	"github.com/elimu/instructor-backend/internal/modules/assessment"
	"github.com/elimu/instructor-backend/internal/modules/auth"
	"github.com/elimu/instructor-backend/internal/modules/course"
	"github.com/elimu/instructor-backend/internal/modules/group"
	groupapp "github.com/elimu/instructor-backend/internal/modules/group/application"
	"github.com/elimu/instructor-backend/internal/modules/notification"
	"github.com/elimu/instructor-backend/internal/modules/settings"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/config"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/database"
	"github.com/elimu/instructor-backend/pkg/migration"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from the environment")
	}
	cfg := config.Load()
	slog.SetDefault(newLogger(cfg.LogLevel))

	if err := run(cfg); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run(cfg config.Config) error {
	ctx := context.Background()

	h, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	var rdb *redis.Client
	if cfg.Realtime.RedisEnabled {
		rdb, err = database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		log.Println("Redis connected, realtime events are shared across instances")
	}

	app := buildApp(cfg, h, rdb)
	srv := gateway.NewServer(cfg.Server.Port, app.handler)
	srv.OnShutdown(app.shutdown)
	return srv.Start()
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}

// openStorage connects the configured backend. Postgres schemas are migrated before use.
func openStorage(ctx context.Context, cfg config.Config) (database.Handles, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageMongo:
		log.Println("Connecting to MongoDB...")
		client, db, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return database.Handles{}, nil, err
		}
		if err := database.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return database.Handles{}, nil, err
		}
		log.Printf("MongoDB connected (database %s)", cfg.Mongo.Database)
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		return database.Handles{Driver: database.DriverMongo, Mongo: db}, closeFn, nil

	case config.StoragePostgres:
		log.Println("Connecting to Postgres...")
		db, err := database.NewPostgresDB(cfg.Database)
		if err != nil {
			return database.Handles{}, nil, err
		}
		err = migration.AutoMigrate(migration.Config{
			MigrationsPath: cfg.Storage.MigrationsPath,
			DatabaseURL:    cfg.Database.DSN(),
			Logger:         slog.Default(),
		})
		if err != nil {
			_ = db.Close()
			return database.Handles{}, nil, err
		}
		log.Println("Postgres connected and migrated")
		closeFn := func() { _ = db.Close() }
		return database.Handles{Driver: database.DriverPostgres, Postgres: db}, closeFn, nil

	default:
		return database.Handles{}, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

type app struct {
	handler  http.Handler
	shutdown func()
}

func buildApp(cfg config.Config, h database.Handles, rdb *redis.Client) app {
	authModule := auth.NewModule(cfg.Auth)

	groupRepo := group.NewRepository(h)
	notifications := notification.NewModule(h, notification.Options{
		FanOutConcurrency: cfg.Notification.FanOutConcurrency,
		Redis:             rdb,
		Channel:           cfg.Realtime.Channel,
	}, groupapp.NewRecipientFinder(groupRepo))
	groups := group.NewModule(groupRepo, notifications.Producers())
	courses := course.NewModule(h, notifications.Producers(), course.Options{
		Redis:   rdb,
		Channel: cfg.Realtime.Channel,
	})
	assessments := assessment.NewModule(h)
	userSettings := settings.NewModule(h)

	mux := gateway.SetupRoutes(gateway.RouterConfig{
		AuthHandler:         authModule.HTTPHandler(),
		AuthMiddleware:      middleware.NewAuthMiddleware(authModule.Service()),
		NotificationHandler: notifications.HTTPHandler(),
		GroupHandler:        groups.HTTPHandler(),
		CourseHandler:       courses.HTTPHandler(),
		StatsGateway:        courses.StatsGateway(),
		AssessmentHandler:   assessments.HTTPHandler(),
		SettingsHandler:     userSettings.HTTPHandler(),
	})

	return app{
		handler: middleware.PrometheusMiddleware(middleware.CORSMiddleware(mux, cfg.Server.AllowedOrigins)),
		shutdown: func() {
			notifications.Shutdown()
			courses.Shutdown()
		},
	}
}
