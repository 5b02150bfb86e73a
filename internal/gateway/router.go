package gateway

import (
	"net/http"

	"github.com/elimu/instructor-backend/internal/gateway/middleware"
)

// Router wraps http.ServeMux and applies the right auth to each route.
type Router struct {
	mux  *http.ServeMux
	auth *middleware.AuthMiddleWare
}

// NewRouter creates a new router
func NewRouter(auth *middleware.AuthMiddleWare) *Router {
	return &Router{
		mux:  http.NewServeMux(),
		auth: auth,
	}
}

// Mux returns the underlying http.ServeMux
func (r *Router) Mux() *http.ServeMux {
	return r.mux
}

// Public registers a handler that needs no identity.
func (r *Router) Public(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

// Protected registers a handler behind bearer-header authentication.
func (r *Router) Protected(pattern string, handler http.HandlerFunc) {
	r.mux.Handle(pattern, r.auth.RequireAuth(handler))
}

// Socket registers a websocket upgrade handler. The token may also come from ?token=.
func (r *Router) Socket(pattern string, handler http.HandlerFunc) {
	r.mux.Handle(pattern, r.auth.RequireSocketAuth(handler))
}
