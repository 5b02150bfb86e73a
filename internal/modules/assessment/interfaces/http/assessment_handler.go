package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/elimu/instructor-backend/internal/gateway/middleware"
	"github.com/elimu/instructor-backend/internal/modules/assessment/application"
	"github.com/elimu/instructor-backend/internal/modules/assessment/domain"
	authDomain "github.com/elimu/instructor-backend/internal/modules/auth/domain"
	"github.com/elimu/instructor-backend/internal/shared/utils"
)

type AssessmentHandler struct {
	service *application.AssessmentService
}

func NewAssessmentHandler(service *application.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{service: service}
}

func (h *AssessmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if identity.Role == authDomain.RoleStudent {
		utils.WriteError(w, http.StatusForbidden, "students cannot create assessments", nil)
		return
	}

	var in domain.CreateAssessmentInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	in.InstructorID = identity.UserID

	a, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, "failed to create assessment", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, a)
}

// List returns the caller's own assessments.
func (h *AssessmentHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	list, err := h.service.FindByInstructor(r.Context(), identity.UserID)
	if err != nil {
		h.fail(w, r, "failed to fetch assessments", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"data": list})
}

// Get returns a published assessment to anyone, and a draft only to its owner or an admin.
func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	a, err := h.service.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "failed to fetch assessment", err)
		return
	}
	if a.Status != domain.StatusPublished && !canManage(identity, a) {
		utils.WriteError(w, http.StatusNotFound, "assessment not found", nil)
		return
	}
	utils.WriteJSON(w, http.StatusOK, a)
}

func (h *AssessmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.load(w, r); !ok {
		return
	}

	var in domain.UpdateAssessmentInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	a, err := h.service.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.fail(w, r, "failed to update assessment", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, a)
}

func (h *AssessmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.load(w, r); !ok {
		return
	}

	if _, err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, "failed to delete assessment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// load fetches the assessment named in the path and checks the caller may change it.
func (h *AssessmentHandler) load(w http.ResponseWriter, r *http.Request) (*domain.Assessment, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}
	a, err := h.service.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "failed to fetch assessment", err)
		return nil, false
	}
	if !canManage(identity, a) {
		utils.WriteError(w, http.StatusForbidden, "only the owner can change this assessment", nil)
		return nil, false
	}
	return a, true
}

func canManage(identity authDomain.Identity, a *domain.Assessment) bool {
	return identity.IsAdmin() || a.InstructorID == identity.UserID
}

func (h *AssessmentHandler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, domain.ErrAssessmentNotFound):
		utils.WriteError(w, http.StatusNotFound, "assessment not found", nil)
	case errors.Is(err, domain.ErrInvalidAssessment):
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrGenerationUnavailable):
		utils.WriteError(w, http.StatusNotImplemented, err.Error(), nil)
	default:
		slog.ErrorContext(r.Context(), message, "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, message, nil)
	}
}
