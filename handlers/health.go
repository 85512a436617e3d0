package handlers

import (
	"net/http"

	"homeserve/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	monitor *utils.HealthMonitor
}

func NewHealthHandler(monitor *utils.HealthMonitor) *HealthHandler {
	return &HealthHandler{monitor: monitor}
}

// Health reports the last dependency check, running one if none has happened yet.
func (h *HealthHandler) Health(c *gin.Context) {
	status := h.monitor.Status()
	if status.CheckedAt.IsZero() {
		status = h.monitor.Check(c.Request.Context())
	}
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
