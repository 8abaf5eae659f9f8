package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Readiness reports whether lazily acquired resources are up.
type Readiness interface {
	Ready() bool
}

type HealthHandler struct {
	readiness Readiness
}

func NewHealthHandler(readiness Readiness) *HealthHandler {
	return &HealthHandler{readiness: readiness}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(c *gin.Context) {
	if !h.readiness.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "warming up"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
