package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Pinger func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	res := gin.H{}

	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			slog.Warn("health check failed", "check", name, "error", err)
			res[name] = "disconnected"
			status = http.StatusServiceUnavailable
			continue
		}
		res[name] = "connected"
	}

	if status == http.StatusOK {
		res["status"] = "healthy"
	} else {
		res["status"] = "unhealthy"
	}
	c.JSON(status, res)
}
