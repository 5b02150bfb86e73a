package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/elimu/instructor-backend/internal/shared/infrastructure/database"
)

const (
	StorageMongo    = database.DriverMongo
	StoragePostgres = database.DriverPostgres

	AuthModeCentral = "central"
	AuthModeLocal   = "local"

	defaultAuthServiceURL = "https://centralize-auth-elimu.onrender.com"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig
	Storage      StorageConfig
	Mongo        database.MongoConfig
	Database     database.PostgresConfig
	Redis        database.RedisConfig
	Realtime     RealtimeConfig
	Auth         AuthConfig
	Notification NotificationConfig
	LogLevel     string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins string
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver         string
	MigrationsPath string
}

// RealtimeConfig controls cross-instance websocket delivery through Redis.
type RealtimeConfig struct {
	RedisEnabled bool
	Channel      string
}

// AuthConfig holds token validation settings
type AuthConfig struct {
	Mode       string
	ServiceURL string
	Timeout    time.Duration
	JWTSecret  string
}

type NotificationConfig struct {
	FanOutConcurrency int
}

// Load reads configuration from environment variables
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnv("FRONTEND_URL", "http://localhost:5173"),
		},
		Storage: StorageConfig{
			Driver:         strings.ToLower(getEnv("STORAGE_DRIVER", StorageMongo)),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Mongo: database.MongoConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "elimu"),
		},
		Database: database.PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "elimu"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: database.RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		},
		Realtime: RealtimeConfig{
			RedisEnabled: getEnv("REDIS_ENABLED", "false") == "true",
			Channel:      getEnv("REDIS_CHANNEL", "elimu:realtime"),
		},
		Auth: AuthConfig{
			Mode:       strings.ToLower(getEnv("AUTH_MODE", AuthModeCentral)),
			ServiceURL: strings.TrimRight(getEnv("AUTH_SERVICE_URL", defaultAuthServiceURL), "/"),
			Timeout:    parseDuration(getEnv("AUTH_TIMEOUT", "5s"), 5*time.Second),
			JWTSecret:  getEnv("JWT_SECRET", "default-dev-secret"),
		},
		Notification: NotificationConfig{
			FanOutConcurrency: parseInt(getEnv("FANOUT_CONCURRENCY", "8"), 8),
		},
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration string or returns a default value
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	return defaultValue
}

func parseInt(value string, defaultValue int) int {
	if n, err := strconv.Atoi(value); err == nil && n > 0 {
		return n
	}
	return defaultValue
}
