package group

import (
	"github.com/elimu/instructor-backend/internal/modules/group/application"
	"github.com/elimu/instructor-backend/internal/modules/group/domain"
	groupMongo "github.com/elimu/instructor-backend/internal/modules/group/infrastructure/persistence/mongo"
	"github.com/elimu/instructor-backend/internal/modules/group/infrastructure/persistence/postgres"
	group_http "github.com/elimu/instructor-backend/internal/modules/group/interfaces/http"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/database"
)

type Module struct {
	service *application.GroupService
	handler *group_http.GroupHandler
}

// NewRepository picks the group store matching the open storage driver. It is built
// ahead of the module so the notification producers can look up group members.
func NewRepository(h database.Handles) domain.GroupRepository {
	if h.UsesPostgres() {
		return postgres.NewPgGroupRepository(h.Postgres)
	}
	return groupMongo.NewGroupRepository(h.Mongo)
}

func NewModule(repo domain.GroupRepository, notifier application.Notifier) *Module {
	service := application.NewGroupService(repo, notifier)
	return &Module{
		service: service,
		handler: group_http.NewGroupHandler(service),
	}
}

func (m *Module) Service() *application.GroupService {
	return m.service
}

func (m *Module) HTTPHandler() *group_http.GroupHandler {
	return m.handler
}
