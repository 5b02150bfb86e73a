package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/elimu/instructor-backend/internal/gateway/middleware"
	"github.com/elimu/instructor-backend/internal/modules/settings/application"
	"github.com/elimu/instructor-backend/internal/modules/settings/domain"
	"github.com/elimu/instructor-backend/internal/shared/utils"
)

type SettingsHandler struct {
	service *application.SettingsService
}

func NewSettingsHandler(service *application.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	s, err := h.service.Get(r.Context(), email)
	if err != nil {
		h.fail(w, r, "failed to fetch settings", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, s)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	var in domain.UpdateSettingsInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	s, err := h.service.Update(r.Context(), email, in)
	if err != nil {
		h.fail(w, r, "failed to update settings", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, s)
}

// callerEmail returns the email settings are keyed by.
func callerEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return "", false
	}
	if identity.Email == "" {
		utils.WriteError(w, http.StatusBadRequest, "token carries no email", nil)
		return "", false
	}
	return identity.Email, true
}

func (h *SettingsHandler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	if errors.Is(err, domain.ErrInvalidSettings) {
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	slog.ErrorContext(r.Context(), message, "path", r.URL.Path, "error", err)
	utils.WriteError(w, http.StatusInternalServerError, message, nil)
}
