package http

import (
	"kanban_board/internal/config"
	"kanban_board/internal/http/handlers"
	"kanban_board/internal/http/middleware"
	"kanban_board/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// Deps is everything the router needs. Redis may be nil.
type Deps struct {
	Handler *handlers.Handler
	Health  *handlers.HealthHandler
	Hub     *realtime.Hub
	Redis   *redis.Client
	Config  *config.Config
}

// NewRouter builds the engine with the standard middleware stack and all routes.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics(), middleware.CORS(d.Config.AllowedOrigin))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	h := d.Handler

	// Health checks (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)

	authRL := middleware.SimpleRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow)
	if d.Redis != nil {
		authRL = middleware.RedisRateLimit(d.Redis, cfg.AuthRateLimit, cfg.AuthRateWindow)
	}
	requireUser := middleware.JWT(h.Auth)
	writeRL := middleware.UserRateLimit(d.Redis, cfg.WriteRateLimit, cfg.WriteRateWindow)

	auth := r.Group("/auth/v1")
	{
		auth.POST("/signup", authRL, h.SignUp)
		auth.POST("/token", authRL, h.Token)
		auth.POST("/logout", requireUser, h.Logout)
		auth.GET("/user", requireUser, h.User)
	}

	rest := r.Group("/rest/v1")
	rest.Use(requireUser)
	{
		rest.GET("/profiles", h.ListProfiles)
		rest.PATCH("/profiles/:id", writeRL, h.UpdateProfile)
		rest.DELETE("/profiles/:id", writeRL, h.DeleteProfile)

		rest.GET("/tasks", h.ListTasks)
		rest.POST("/tasks", writeRL, h.CreateTask)
		rest.PATCH("/tasks/:id", writeRL, h.UpdateTask)
		rest.DELETE("/tasks/:id", writeRL, h.DeleteTask)

		rest.GET("/audit_logs", h.ListAuditLogs)
	}

	r.GET("/realtime/v1", realtime.Handle(d.Hub, h.Auth, cfg.AllowedOrigin))
}
