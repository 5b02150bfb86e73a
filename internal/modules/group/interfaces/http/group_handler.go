package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/elimu/instructor-backend/internal/gateway/middleware"
	authDomain "github.com/elimu/instructor-backend/internal/modules/auth/domain"
	"github.com/elimu/instructor-backend/internal/modules/group/application"
	"github.com/elimu/instructor-backend/internal/modules/group/domain"
	notificationDomain "github.com/elimu/instructor-backend/internal/modules/notification/domain"
	"github.com/elimu/instructor-backend/internal/shared/utils"
)

type GroupHandler struct {
	service *application.GroupService
}

func NewGroupHandler(service *application.GroupService) *GroupHandler {
	return &GroupHandler{service: service}
}

type notificationSummary struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// GroupChangeResponse is returned by writes that notify students.
type GroupChangeResponse struct {
	Group         *domain.Group       `json:"group"`
	Notifications notificationSummary `json:"notifications"`
}

func changeResponse(g *domain.Group, batch notificationDomain.BatchResult) GroupChangeResponse {
	return GroupChangeResponse{
		Group:         g,
		Notifications: notificationSummary{Sent: batch.Succeeded(), Failed: batch.Failed()},
	}
}

type addStudentsRequest struct {
	StudentIDs []string `json:"studentIds"`
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if identity.Role == authDomain.RoleStudent {
		utils.WriteError(w, http.StatusForbidden, "students cannot create groups", nil)
		return
	}

	var in domain.CreateGroupInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if in.InstructorID == "" || !identity.IsAdmin() {
		in.InstructorID = identity.UserID
	}

	g, batch, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, "failed to create group", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, changeResponse(g, batch))
}

// List returns the caller's groups. Admins may pass all=true to list every group.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var (
		groups []domain.Group
		err    error
	)
	if r.URL.Query().Get("all") == "true" {
		if !identity.IsAdmin() {
			utils.WriteError(w, http.StatusForbidden, "only admins can list all groups", nil)
			return
		}
		groups, err = h.service.FindAll(r.Context())
	} else {
		groups, err = h.service.FindByInstructor(r.Context(), identity.UserID)
	}
	if err != nil {
		h.fail(w, r, "failed to fetch groups", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"data": groups})
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, ok := h.load(w, r, canView)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, g)
}

func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.load(w, r, canManage); !ok {
		return
	}

	var in domain.UpdateGroupInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	g, err := h.service.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.fail(w, r, "failed to update group", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, g)
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.load(w, r, canManage); !ok {
		return
	}
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, "failed to delete group", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) AddStudents(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.load(w, r, canManage); !ok {
		return
	}

	var req addStudentsRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(req.StudentIDs) == 0 {
		utils.WriteError(w, http.StatusBadRequest, "studentIds is required", nil)
		return
	}

	g, batch, err := h.service.AddStudents(r.Context(), r.PathValue("id"), req.StudentIDs)
	if err != nil {
		h.fail(w, r, "failed to add students", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, changeResponse(g, batch))
}

func (h *GroupHandler) RemoveStudent(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.load(w, r, canManage); !ok {
		return
	}

	g, err := h.service.RemoveStudent(r.Context(), r.PathValue("id"), r.PathValue("studentId"))
	if err != nil {
		h.fail(w, r, "failed to remove student", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, g)
}

func (h *GroupHandler) AddMeeting(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.load(w, r, canManage); !ok {
		return
	}

	var meeting notificationDomain.Meeting
	if err := utils.DecodeJSON(r, &meeting); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	g, batch, err := h.service.AddMeeting(r.Context(), r.PathValue("id"), meeting)
	if err != nil {
		h.fail(w, r, "failed to add meeting", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, changeResponse(g, batch))
}

func (h *GroupHandler) Meetings(w http.ResponseWriter, r *http.Request) {
	g, ok := h.load(w, r, canView)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"data": g.MeetingIDs})
}

func canManage(identity authDomain.Identity, g *domain.Group) bool {
	return identity.IsAdmin() || g.InstructorID == identity.UserID
}

func canView(identity authDomain.Identity, g *domain.Group) bool {
	return canManage(identity, g) || g.HasStudent(identity.UserID)
}

// load fetches the group named by the path and applies allow. Groups the caller may not
// see are reported as missing; groups they may see but not change are forbidden.
func (h *GroupHandler) load(w http.ResponseWriter, r *http.Request, allow func(authDomain.Identity, *domain.Group) bool) (*domain.Group, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}

	g, err := h.service.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "failed to fetch group", err)
		return nil, false
	}
	switch {
	case !canView(identity, g):
		utils.WriteError(w, http.StatusNotFound, "group not found", nil)
		return nil, false
	case !allow(identity, g):
		utils.WriteError(w, http.StatusForbidden, "only the group's instructor can change it", nil)
		return nil, false
	}
	return g, true
}

func (h *GroupHandler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, domain.ErrGroupNotFound):
		utils.WriteError(w, http.StatusNotFound, "group not found", nil)
	case errors.Is(err, domain.ErrInvalidGroup):
		utils.WriteError(w, http.StatusBadRequest, "invalid group", err)
	default:
		slog.ErrorContext(r.Context(), message, "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, message, nil)
	}
}
