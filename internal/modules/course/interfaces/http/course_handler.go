package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/elimu/instructor-backend/internal/gateway/middleware"
	authDomain "github.com/elimu/instructor-backend/internal/modules/auth/domain"
	"github.com/elimu/instructor-backend/internal/modules/course/application"
	"github.com/elimu/instructor-backend/internal/modules/course/domain"
	"github.com/elimu/instructor-backend/internal/shared/utils"
)

type CourseHandler struct {
	service *application.CourseService
	stats   *application.StatsService
}

func NewCourseHandler(service *application.CourseService, stats *application.StatsService) *CourseHandler {
	return &CourseHandler{service: service, stats: stats}
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if identity.Role == authDomain.RoleStudent {
		utils.WriteError(w, http.StatusForbidden, "students cannot create courses", nil)
		return
	}

	var in domain.CreateCourseInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	in.InstructorID = identity.UserID
	in.InstructorEmail = identity.Email

	c, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, "failed to create course", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, c)
}

// List returns the caller's own courses.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	courses, err := h.service.FindByInstructor(r.Context(), identity.UserID)
	if err != nil {
		h.fail(w, r, "failed to fetch courses", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"data": courses})
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.IdentityFromContext(r.Context()); !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	c, err := h.service.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "failed to fetch course", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.owner(w, r) {
		return
	}

	var in domain.UpdateCourseInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	c, err := h.service.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.fail(w, r, "failed to update course", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.owner(w, r) {
		return
	}

	if _, err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, "failed to delete course", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CourseHandler) Approve(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if !identity.IsAdmin() {
		utils.WriteError(w, http.StatusForbidden, "only admins can approve courses", nil)
		return
	}

	c, err := h.service.Approve(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "failed to approve course", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

// Enroll adds the caller to the course's students.
func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	c, err := h.service.Enroll(r.Context(), r.PathValue("id"), identity.UserID)
	if err != nil {
		h.fail(w, r, "failed to enroll", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *CourseHandler) Review(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req reviewRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	c, err := h.service.Review(r.Context(), r.PathValue("id"), identity.UserID, req.Rating, req.Comment)
	if err != nil {
		h.fail(w, r, "failed to add review", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, c)
}

// InstructorStats returns the caller's dashboard snapshot.
func (h *CourseHandler) InstructorStats(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if identity.Email == "" {
		utils.WriteError(w, http.StatusBadRequest, "identity has no email", nil)
		return
	}

	stats, err := h.stats.InstructorStats(r.Context(), identity.Email)
	if err != nil {
		h.fail(w, r, "failed to compute instructor stats", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

// owner reports whether the caller may change the course named by the path.
func (h *CourseHandler) owner(w http.ResponseWriter, r *http.Request) bool {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return false
	}

	c, err := h.service.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "failed to fetch course", err)
		return false
	}
	if c.InstructorID != identity.UserID && !identity.IsAdmin() {
		utils.WriteError(w, http.StatusForbidden, "only the course's instructor can change it", nil)
		return false
	}
	return true
}

func (h *CourseHandler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, domain.ErrCourseNotFound):
		utils.WriteError(w, http.StatusNotFound, "course not found", nil)
	case errors.Is(err, domain.ErrInvalidCourse), errors.Is(err, domain.ErrInvalidRating):
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrAlreadyEnrolled):
		utils.WriteError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, domain.ErrNotEnrolled):
		utils.WriteError(w, http.StatusForbidden, "only enrolled students can review", nil)
	default:
		slog.ErrorContext(r.Context(), message, "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, message, nil)
	}
}
