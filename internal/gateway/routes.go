package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elimu/instructor-backend/internal/gateway/middleware"
	assessment_http "github.com/elimu/instructor-backend/internal/modules/assessment/interfaces/http"
	auth_http "github.com/elimu/instructor-backend/internal/modules/auth/interfaces/http"
	course_http "github.com/elimu/instructor-backend/internal/modules/course/interfaces/http"
	group_http "github.com/elimu/instructor-backend/internal/modules/group/interfaces/http"
	notification_http "github.com/elimu/instructor-backend/internal/modules/notification/interfaces/http"
	settings_http "github.com/elimu/instructor-backend/internal/modules/settings/interfaces/http"
)

// RouterConfig holds all the handlers and middleware needed for routing
type RouterConfig struct {
	AuthHandler         *auth_http.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleWare
	NotificationHandler *notification_http.NotificationHandler
	GroupHandler        *group_http.GroupHandler
	CourseHandler       *course_http.CourseHandler
	StatsGateway        *course_http.StatsGateway
	AssessmentHandler   *assessment_http.AssessmentHandler
	SettingsHandler     *settings_http.SettingsHandler
}

// SetupRoutes creates and configures all application routes
func SetupRoutes(config RouterConfig) *http.ServeMux {
	r := NewRouter(config.AuthMiddleware)

	// Health Check
	r.Public("GET /health", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}))

	// Prometheus Metrics Endpoint
	r.Public("GET /metrics", promhttp.Handler())

	// Auth Routes
	r.Protected("GET /api/auth/me", config.AuthHandler.Me)

	// Notification Routes
	n := config.NotificationHandler
	r.Protected("GET /api/notifications", n.List)
	r.Protected("GET /api/notifications/unread-count", n.UnreadCount)
	r.Protected("GET /api/notifications/{id}", n.Get)
	r.Protected("POST /api/notifications", n.Create)
	r.Protected("PATCH /api/notifications/read-all", n.MarkAllAsRead)
	r.Protected("PATCH /api/notifications/{id}/read", n.MarkAsRead)
	r.Protected("DELETE /api/notifications/{id}", n.Delete)
	r.Socket("GET /api/ws/notifications", n.Subscribe)

	// Group Routes
	g := config.GroupHandler
	r.Protected("GET /api/groups", g.List)
	r.Protected("POST /api/groups", g.Create)
	r.Protected("GET /api/groups/{id}", g.Get)
	r.Protected("PATCH /api/groups/{id}", g.Update)
	r.Protected("DELETE /api/groups/{id}", g.Delete)
	r.Protected("POST /api/groups/{id}/students", g.AddStudents)
	r.Protected("DELETE /api/groups/{id}/students/{studentId}", g.RemoveStudent)
	r.Protected("GET /api/groups/{id}/meetings", g.Meetings)
	r.Protected("POST /api/groups/{id}/meetings", g.AddMeeting)

	// Course Routes
	c := config.CourseHandler
	r.Protected("GET /api/courses", c.List)
	r.Protected("POST /api/courses", c.Create)
	r.Protected("GET /api/courses/{id}", c.Get)
	r.Protected("PATCH /api/courses/{id}", c.Update)
	r.Protected("DELETE /api/courses/{id}", c.Delete)
	r.Protected("POST /api/courses/{id}/approve", c.Approve)
	r.Protected("POST /api/courses/{id}/enroll", c.Enroll)
	r.Protected("POST /api/courses/{id}/reviews", c.Review)

	// Instructor Stats
	r.Protected("GET /api/instructor/stats", c.InstructorStats)
	r.Socket("GET /api/ws/instructor-stats", config.StatsGateway.Subscribe)

	// Assessment Routes
	a := config.AssessmentHandler
	r.Protected("GET /api/assessments", a.List)
	r.Protected("POST /api/assessments", a.Create)
	r.Protected("GET /api/assessments/{id}", a.Get)
	r.Protected("PUT /api/assessments/{id}", a.Update)
	r.Protected("DELETE /api/assessments/{id}", a.Delete)

	// Settings Routes
	r.Protected("GET /api/settings", config.SettingsHandler.Get)
	r.Protected("POST /api/settings", config.SettingsHandler.Update)

	return r.Mux()
}
