package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/elimu/instructor-backend/internal/gateway/middleware"
	"github.com/elimu/instructor-backend/internal/modules/notification/application"
	"github.com/elimu/instructor-backend/internal/modules/notification/domain"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/websocket"
	"github.com/elimu/instructor-backend/internal/shared/utils"
)

const defaultPageSize = 20

type NotificationHandler struct {
	service *application.NotificationService
	hub     *websocket.Hub
}

func NewNotificationHandler(service *application.NotificationService, hub *websocket.Hub) *NotificationHandler {
	return &NotificationHandler{service: service, hub: hub}
}

// Subscribe upgrades the connection and joins it to the caller's room.
func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	_, _ = websocket.ServeWs(h.hub, w, r, identity.UserID)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var (
		notifications []domain.Notification
		err           error
	)
	if limit, offset, paged := utils.Pagination(r, defaultPageSize); paged {
		notifications, err = h.service.FindAllForUserPage(r.Context(), identity.UserID, limit, offset)
	} else {
		notifications, err = h.service.FindAllForUser(r.Context(), identity.UserID)
	}
	if err != nil {
		h.internalError(w, r, "failed to fetch notifications", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{"data": notifications})
}

func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	n, err := h.service.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.internalError(w, r, "failed to fetch notification", err)
		return
	}
	if n == nil || n.UserID != identity.UserID {
		utils.WriteError(w, http.StatusNotFound, "notification not found", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, n)
}

// Create lets a caller notify themselves; admins may target any user.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var in domain.CreateNotificationInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if in.UserID == "" {
		in.UserID = identity.UserID
	}
	if in.UserID != identity.UserID && !identity.IsAdmin() {
		utils.WriteError(w, http.StatusForbidden, "cannot create notifications for other users", nil)
		return
	}

	n, err := h.service.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidNotification) {
			utils.WriteError(w, http.StatusBadRequest, "invalid notification", err)
			return
		}
		h.internalError(w, r, "failed to create notification", err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, n)
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.owned(w, r); !ok {
		return
	}

	n, err := h.service.MarkAsRead(r.Context(), r.PathValue("id"))
	if err != nil {
		h.internalError(w, r, "failed to mark notification as read", err)
		return
	}
	if n == nil {
		utils.WriteError(w, http.StatusNotFound, "notification not found", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	updated, err := h.service.MarkAllAsRead(r.Context(), identity.UserID)
	if err != nil {
		h.internalError(w, r, "failed to mark all notifications as read", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.owned(w, r); !ok {
		return
	}

	n, err := h.service.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		h.internalError(w, r, "failed to delete notification", err)
		return
	}
	if n == nil {
		utils.WriteError(w, http.StatusNotFound, "notification not found", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	count, err := h.service.UnreadCount(r.Context(), identity.UserID)
	if err != nil {
		h.internalError(w, r, "failed to get unread count", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// owned loads the notification named by the path and checks the caller owns it.
// Other users' notifications are reported as missing.
func (h *NotificationHandler) owned(w http.ResponseWriter, r *http.Request) (*domain.Notification, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}

	n, err := h.service.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.internalError(w, r, "failed to fetch notification", err)
		return nil, false
	}
	if n == nil || n.UserID != identity.UserID {
		utils.WriteError(w, http.StatusNotFound, "notification not found", nil)
		return nil, false
	}
	return n, true
}

func (h *NotificationHandler) internalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	slog.ErrorContext(r.Context(), message, "path", r.URL.Path, "error", err)
	utils.WriteError(w, http.StatusInternalServerError, message, nil)
}
