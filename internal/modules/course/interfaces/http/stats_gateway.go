package http

import (
	"log"
	"net/http"

	"github.com/elimu/instructor-backend/internal/gateway/middleware"
	"github.com/elimu/instructor-backend/internal/modules/course/application"
	"github.com/elimu/instructor-backend/internal/modules/course/domain"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/websocket"
	"github.com/elimu/instructor-backend/internal/shared/utils"
)

// StatsGateway serves the instructor dashboard socket. Each socket joins the room named
// by the instructor's email and receives a snapshot as soon as it connects.
type StatsGateway struct {
	hub   *websocket.Hub
	stats *application.StatsService
}

func NewStatsGateway(hub *websocket.Hub, stats *application.StatsService) *StatsGateway {
	return &StatsGateway{hub: hub, stats: stats}
}

func (g *StatsGateway) Subscribe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if identity.Email == "" {
		utils.WriteError(w, http.StatusUnauthorized, "identity has no email", nil)
		return
	}

	client, err := websocket.ServeWs(g.hub, w, r, identity.Email)
	if err != nil {
		return
	}
	log.Printf("[Instructor Stats] Socket connected: %s", identity.Email)

	ctx := r.Context()
	stats, err := g.stats.InstructorStats(ctx, identity.Email)
	if err != nil {
		log.Printf("[Instructor Stats] Initial stats for %s failed: %v", identity.Email, err)
		client.Close()
		return
	}
	if err := g.hub.Send(ctx, client, domain.EventInstructorStats, stats); err != nil {
		log.Printf("[Instructor Stats] Initial stats for %s not delivered: %v", identity.Email, err)
	}
}
