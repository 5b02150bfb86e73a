package http

import (
	"net/http"

	"github.com/elimu/instructor-backend/internal/gateway/middleware"
	"github.com/elimu/instructor-backend/internal/shared/utils"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Me returns the identity resolved from the caller's token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	utils.WriteJSON(w, http.StatusOK, identity)
}
