package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elimu/instructor-backend/internal/shared/infrastructure/config"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/database"
)

func TestNewLogger_Levels(t *testing.T) {
	ctx := context.Background()
	for level, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	} {
		logger := newLogger(level)
		assert.True(t, logger.Enabled(ctx, want), level)
		if want > slog.LevelDebug {
			assert.False(t, logger.Enabled(ctx, want-1), level)
		}
	}
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	cfg := config.Config{Storage: config.StorageConfig{Driver: "sqlite"}}
	_, _, err := openStorage(context.Background(), cfg)
	assert.ErrorContains(t, err, `unknown storage driver "sqlite"`)
}

func TestOpenStorage_MongoUnreachable(t *testing.T) {
	cfg := config.Config{
		Storage: config.StorageConfig{Driver: config.StorageMongo},
		Mongo:   database.MongoConfig{URI: "not-a-uri", Database: "elimu"},
	}
	_, _, err := openStorage(context.Background(), cfg)
	assert.Error(t, err)
}

func TestBuildApp(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	cfg := config.Config{
		Server: config.ServerConfig{AllowedOrigins: "http://localhost:5173"},
		Auth:   config.AuthConfig{Mode: config.AuthModeLocal, JWTSecret: "secret"},
	}
	h := database.Handles{Driver: database.DriverPostgres, Postgres: sqlx.NewDb(sqlDB, "sqlmock")}

	a := buildApp(cfg, h, nil)
	defer a.shutdown()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	a.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/groups", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
