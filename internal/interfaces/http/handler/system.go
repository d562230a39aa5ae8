package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/erp/invoicing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Pinger checks one dependency
type Pinger interface {
	Ping() error
}

// PingerFunc adapts a function to Pinger
type PingerFunc func() error

// Ping implements Pinger
func (f PingerFunc) Ping() error {
	return f()
}

// SystemHandler answers liveness and readiness probes
type SystemHandler struct {
	BaseHandler
	checks  map[string]Pinger
	version string
	started time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(version string, checks map[string]Pinger) *SystemHandler {
	return &SystemHandler{checks: checks, version: version, started: time.Now()}
}

// HealthStatus is the body of /health
type HealthStatus struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Uptime  string            `json:"uptime"`
	Checks  map[string]string `json:"checks"`
}

// Health reports "healthy" with 200, or "unhealthy" with 503 when any check fails
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:  "healthy",
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Checks:  make(map[string]string, len(h.checks)),
	}
	for name, check := range h.checks {
		errCh := make(chan error, 1)
		go func(p Pinger) { errCh <- p.Ping() }(check)
		select {
		case err := <-errCh:
			if err != nil {
				status.Status = "unhealthy"
				status.Checks[name] = err.Error()
				continue
			}
			status.Checks[name] = "ok"
		case <-ctx.Done():
			status.Status = "unhealthy"
			status.Checks[name] = "timeout"
		}
	}

	if status.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Message: "Service unavailable", Data: status})
		return
	}
	h.Success(c, "Service healthy", status)
}
