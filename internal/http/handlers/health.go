package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StoreStatus is the view of *db.Store the health endpoints need.
type StoreStatus interface {
	Ping(ctx context.Context) error
	Driver() string
	ActiveSessions() int
}

type HealthHandler struct {
	store   StoreStatus
	started time.Time
	version string
}

func NewHealthHandler(store StoreStatus, version string) *HealthHandler {
	return &HealthHandler{store: store, started: time.Now(), version: version}
}

// StoreReport describes the store as seen by the last ping.
type StoreReport struct {
	Driver   string `json:"driver"`
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Error    string `json:"error,omitempty"`
}

type ReadinessResponse struct {
	Status  string      `json:"status"`
	Version string      `json:"version,omitempty"`
	Uptime  string      `json:"uptime"`
	Store   StoreReport `json:"store"`
}

func (h *HealthHandler) probeStore(ctx context.Context, timeout time.Duration) (StoreReport, bool) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rep := StoreReport{
		Driver:   h.store.Driver(),
		Status:   "up",
		Sessions: h.store.ActiveSessions(),
	}
	if err := h.store.Ping(ctx); err != nil {
		rep.Status = "down"
		rep.Error = err.Error()
		return rep, false
	}
	return rep, true
}

// Liveness only says the process serves HTTP.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness answers 503 while the store does not respond.
func (h *HealthHandler) Readiness(c *gin.Context) {
	rep, ok := h.probeStore(c.Request.Context(), 5*time.Second)

	resp := ReadinessResponse{
		Status:  "ready",
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Store:   rep,
	}
	code := http.StatusOK
	if !ok {
		resp.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

func (h *HealthHandler) Health(c *gin.Context) {
	rep, ok := h.probeStore(c.Request.Context(), 3*time.Second)
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "store unavailable", "driver": rep.Driver})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version, "driver": rep.Driver})
}
