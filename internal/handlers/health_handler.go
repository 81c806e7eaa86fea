package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness.
type HealthHandler struct {
	env     string
	started time.Time
}

// NewHealthHandler creates a HealthHandler whose uptime counts from now.
func NewHealthHandler(env string) *HealthHandler {
	return &HealthHandler{env: env, started: time.Now()}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string    `json:"status"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Env           string    `json:"env"`
	Timestamp     time.Time `json:"timestamp"`
}

// Health returns service status
// @Summary     Health check
// @Tags        health
// @Produce     json
// @Success     200 {object} HealthResponse "Service is up"
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	now := time.Now()
	c.JSON(http.StatusOK, HealthResponse{
		Status:        "ok",
		UptimeSeconds: int64(now.Sub(h.started).Seconds()),
		Env:           h.env,
		Timestamp:     now.UTC(),
	})
}
