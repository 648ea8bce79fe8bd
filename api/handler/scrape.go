// Package handler implements the HTTP endpoints.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/casawatch/casawatch/artifacts"
	"github.com/casawatch/casawatch/config"
	"github.com/casawatch/casawatch/models"
	"github.com/casawatch/casawatch/notify"
	"github.com/casawatch/casawatch/scraper"
)

// Handler carries the endpoint dependencies. All fields are safe for
// concurrent use.
type Handler struct {
	cfg     *config.Config
	scraper *scraper.Scraper
	mailer  *notify.Mailer
}

// New creates the endpoint handler.
func New(cfg *config.Config, s *scraper.Scraper, m *notify.Mailer) *Handler {
	return &Handler{cfg: cfg, scraper: s, mailer: m}
}

// Scrape handles POST /api/scrape: validate, run the retry loop, respond with
// the outcome. Validation failures never reach the browser.
func (h *Handler) Scrape(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": models.ErrorDetail{
				Code:    models.ErrCodeInvalidInput,
				Message: err.Error(),
			},
		})
		return
	}
	req.Defaults()

	sink := artifacts.NewSink(h.cfg.Artifacts.Dir)
	slog.Info("scrape request accepted",
		"requestId", sink.ID(),
		"url", req.URL,
		"searchTerm", req.SearchTerm,
		"maxPrice", req.MaxPrice,
		"browser", req.Browser,
	)

	outcome := h.scraper.Run(c.Request.Context(), &req, sink)

	if h.mailer.Configured() && h.cfg.Mail.DebugTo != "" {
		go h.sendDebugMail(sink, &req, outcome)
	}

	c.JSON(statusFor(outcome), outcome)
}

// statusFor maps the outcome onto an HTTP status. Challenges map to 403 so a
// caller polling the API can tell "blocked" apart from "broken".
func statusFor(out *models.ScrapeOutcome) int {
	if out.Success {
		return http.StatusOK
	}
	if out.Error != nil && out.Error.Code == models.ErrCodeCaptchaDetected {
		return http.StatusForbidden
	}
	return http.StatusBadGateway
}

// sendDebugMail ships the request's debug artifacts to the configured debug
// recipient. Best-effort: runs detached from the request and only logs
// failures.
func (h *Handler) sendDebugMail(sink *artifacts.Sink, req *models.SearchRequest, out *models.ScrapeOutcome) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	status := "OK"
	if !out.Success {
		status = "FAILED"
		if out.Error != nil {
			status = "FAILED (" + out.Error.Code + ")"
		}
	}
	subject := fmt.Sprintf("[casawatch debug] %s — %s", status, out.Description)
	body := fmt.Sprintf("Request %s\nURL: %s\nSearch term: %s\nFinal URL: %s\n\n%s",
		sink.ID(), req.URL, req.SearchTerm, out.FinalURL, out.Content)

	if err := h.mailer.Send(ctx, h.cfg.Mail.DebugTo, subject, body, out.ContentHTML, sink.Existing()); err != nil {
		slog.Warn("debug mail failed", "requestId", sink.ID(), "error", err)
	}
}
