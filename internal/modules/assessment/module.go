package assessment

import (
	"github.com/elimu/instructor-backend/internal/modules/assessment/application"
	"github.com/elimu/instructor-backend/internal/modules/assessment/domain"
	assessmentMongo "github.com/elimu/instructor-backend/internal/modules/assessment/infrastructure/persistence/mongo"
	"github.com/elimu/instructor-backend/internal/modules/assessment/infrastructure/persistence/postgres"
	assessment_http "github.com/elimu/instructor-backend/internal/modules/assessment/interfaces/http"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/database"
)

type Module struct {
	service *application.AssessmentService
	handler *assessment_http.AssessmentHandler
}

func NewModule(h database.Handles) *Module {
	var repo domain.AssessmentRepository
	if h.UsesPostgres() {
		repo = postgres.NewPgAssessmentRepository(h.Postgres)
	} else {
		repo = assessmentMongo.NewAssessmentRepository(h.Mongo)
	}

	service := application.NewAssessmentService(repo)
	return &Module{
		service: service,
		handler: assessment_http.NewAssessmentHandler(service),
	}
}

func (m *Module) Service() *application.AssessmentService {
	return m.service
}

func (m *Module) HTTPHandler() *assessment_http.AssessmentHandler {
	return m.handler
}
