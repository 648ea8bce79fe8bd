package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casawatch/casawatch/artifacts"
	"github.com/casawatch/casawatch/models"
)

// EmailRequest is the payload for POST /api/email: a regular search plus the
// recipient the rendered results go to.
type EmailRequest struct {
	models.SearchRequest
	To      string `json:"to" binding:"required,email"`
	Subject string `json:"subject,omitempty"`
}

// Email handles POST /api/email: run the scrape, then mail the rendered
// results to the requested recipient. The scrape outcome is returned either
// way, with an emailSent flag.
func (h *Handler) Email(c *gin.Context) {
	var req EmailRequest
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
	if !h.mailer.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": models.ErrorDetail{
				Code:    models.ErrCodeInvalidInput,
				Message: "mail delivery is not configured on this server",
			},
		})
		return
	}
	req.Defaults()

	sink := artifacts.NewSink(h.cfg.Artifacts.Dir)
	slog.Info("scrape-and-mail request accepted",
		"requestId", sink.ID(), "url", req.URL, "to", req.To)

	outcome := h.scraper.Run(c.Request.Context(), &req.SearchRequest, sink)

	emailSent := false
	if outcome.Success {
		subject := req.Subject
		if subject == "" {
			subject = fmt.Sprintf("🏠 %s", outcome.Description)
		}
		if err := h.mailer.Send(c.Request.Context(), req.To, subject,
			outcome.Content, outcome.ContentHTML, nil); err != nil {
			slog.Error("result mail failed", "requestId", sink.ID(), "to", req.To, "error", err)
		} else {
			emailSent = true
		}
	}

	if h.cfg.Mail.DebugTo != "" && h.cfg.Mail.DebugTo != req.To {
		go h.sendDebugMail(sink, &req.SearchRequest, outcome)
	}

	c.JSON(statusFor(outcome), gin.H{
		"success":   outcome.Success,
		"emailSent": emailSent,
		"outcome":   outcome,
	})
}
