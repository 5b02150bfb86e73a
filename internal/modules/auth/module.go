package auth

import (
	"github.com/elimu/instructor-backend/internal/modules/auth/application"
	"github.com/elimu/instructor-backend/internal/modules/auth/domain"
	"github.com/elimu/instructor-backend/internal/modules/auth/infrastructure/central"
	"github.com/elimu/instructor-backend/internal/modules/auth/infrastructure/jwt"
	auth_http "github.com/elimu/instructor-backend/internal/modules/auth/interfaces/http"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/config"
)

// Module represents the Auth module
type Module struct {
	service *application.AuthService
	handler *auth_http.AuthHandler
}

// NewModule picks the token validator for cfg.Mode: local HS256 tokens or the central auth service.
func NewModule(cfg config.AuthConfig) *Module {
	var validator domain.TokenValidator
	if cfg.Mode == config.AuthModeLocal {
		validator = jwt.NewLocalValidator(cfg.JWTSecret)
	} else {
		validator = central.NewValidator(cfg.ServiceURL, cfg.Timeout)
	}

	return &Module{
		service: application.NewAuthService(validator),
		handler: auth_http.NewAuthHandler(),
	}
}

// Service returns the auth service for use by the gateway layer
func (m *Module) Service() *application.AuthService {
	return m.service
}

// HTTPHandler returns the HTTP handler for the auth module
func (m *Module) HTTPHandler() *auth_http.AuthHandler {
	return m.handler
}
