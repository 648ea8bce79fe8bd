package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casawatch/casawatch/browser"
	"github.com/casawatch/casawatch/models"
)

// Status handles GET /api/status: the capability report covering stealth
// measures, extraction, mail and browser engines.
func (h *Handler) Status(c *gin.Context) {
	llm := models.CapabilityStatus{Configured: h.cfg.LLM.Configured()}
	if llm.Configured {
		llm.Detail = h.cfg.LLM.Model
	} else {
		llm.Detail = "OPENAI_API_KEY not set"
	}

	mail := models.CapabilityStatus{Configured: h.cfg.Mail.Configured()}
	if !mail.Configured {
		mail.Detail = "EMAIL_HOST/EMAIL_USER/EMAIL_PASS not set"
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Server:  "running",
		Stealth: models.StealthStatus{Enabled: true, Features: browser.StealthFeatures()},
		LLM:     llm,
		Mail:    mail,
		Browser: models.BrowserEngineState{
			Default:        models.BrowserChromium,
			BraveAvailable: h.cfg.Browser.BraveBin != "",
			Headless:       h.cfg.Browser.Headless,
		},
	})
}
