package http

import (
	"tasklists/internal/config"
	"tasklists/internal/db"
	"tasklists/internal/http/handlers"
	"tasklists/internal/http/middleware"
	"tasklists/internal/service"
	"tasklists/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the long-lived components shared by all routes.
type Deps struct {
	Store    *db.Store
	Accounts *service.AccountService
	Hub      *ws.Hub
	Limiter  *middleware.RateLimiter

	Limits        config.LimitConfig
	AllowedOrigin string
	Version       string
}

// NewRouter builds the engine with the global middleware chain and all
// routes registered.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.CORS(d.AllowedOrigin),
	)
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	var events handlers.EventPublisher
	if d.Hub != nil {
		events = d.Hub
	}
	h := handlers.NewHandler(d.Accounts, events)
	healthHandler := handlers.NewHealthHandler(d.Store, d.Version)
	auth := d.Accounts.Auth()

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	authRL := d.Limiter.Limit("auth", d.Limits.AuthRequests, d.Limits.AuthWindow())
	apiRL := d.Limiter.Limit("api", d.Limits.APIRequests, d.Limits.APIWindow())
	session := middleware.StoreSession(d.Store)

	authGroup := v1.Group("/auth", authRL, session)
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	// JWT runs before the limiter so callers are keyed by user id
	api := v1.Group("", middleware.JWT(auth), apiRL, session)
	{
		api.GET("/me", h.Me)

		api.GET("/lists", h.GetLists)
		api.POST("/lists", h.CreateList)
		api.DELETE("/lists/:id", h.DeleteList)
		api.GET("/lists/:id/tasks", h.GetTasks)
		api.POST("/lists/:id/tasks", h.CreateTask)

		api.PATCH("/tasks/:id", h.UpdateTask)
		api.DELETE("/tasks/:id", h.DeleteTask)
	}

	if d.Hub != nil {
		v1.GET("/ws", ws.HandleWS(d.Hub, auth, d.AllowedOrigin))
	}
}
