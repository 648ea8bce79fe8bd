package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/casawatch/casawatch/models"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
	})
}

// Root handles GET /: a minimal service banner with the route map.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "casawatch",
		"version": Version,
		"endpoints": gin.H{
			"health": "GET /health",
			"status": "GET /api/status",
			"scrape": "POST /api/scrape",
			"email":  "POST /api/email",
		},
	})
}
