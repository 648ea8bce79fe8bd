// Package api wires the gin router.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/casawatch/casawatch/api/handler"
	"github.com/casawatch/casawatch/api/middleware"
	"github.com/casawatch/casawatch/config"
	"github.com/casawatch/casawatch/notify"
	"github.com/casawatch/casawatch/scraper"
)

// NewRouter builds the HTTP router. Scraping endpoints sit behind the
// per-client rate limiter; read-only endpoints do not.
func NewRouter(cfg *config.Config, s *scraper.Scraper, m *notify.Mailer) *gin.Engine {
	gin.SetMode(ginMode(cfg.Server.Mode))

	r := gin.New()
	r.Use(gin.Recovery(), gin.Logger())

	h := handler.New(cfg, s, m)

	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	apiGroup := r.Group("/api")
	apiGroup.GET("/status", h.Status)

	limited := apiGroup.Group("")
	limited.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	limited.POST("/scrape", h.Scrape)
	limited.POST("/email", h.Email)

	return r
}

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}
