package settings

import (
	"github.com/elimu/instructor-backend/internal/modules/settings/application"
	"github.com/elimu/instructor-backend/internal/modules/settings/domain"
	settingsMongo "github.com/elimu/instructor-backend/internal/modules/settings/infrastructure/persistence/mongo"
	"github.com/elimu/instructor-backend/internal/modules/settings/infrastructure/persistence/postgres"
	settings_http "github.com/elimu/instructor-backend/internal/modules/settings/interfaces/http"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/database"
)

type Module struct {
	service *application.SettingsService
	handler *settings_http.SettingsHandler
}

func NewModule(h database.Handles) *Module {
	var repo domain.SettingsRepository
	if h.UsesPostgres() {
		repo = postgres.NewPgSettingsRepository(h.Postgres)
	} else {
		repo = settingsMongo.NewSettingsRepository(h.Mongo)
	}

	service := application.NewSettingsService(repo)
	return &Module{
		service: service,
		handler: settings_http.NewSettingsHandler(service),
	}
}

func (m *Module) Service() *application.SettingsService {
	return m.service
}

func (m *Module) HTTPHandler() *settings_http.SettingsHandler {
	return m.handler
}
