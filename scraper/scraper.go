// Package scraper drives one portal search end to end: a fresh fingerprinted
// browser session, the interactive navigation flow, content capture with
// CAPTCHA detection, and LLM extraction — wrapped in a bounded retry loop
// that tears the session down on every exit path.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/casawatch/casawatch/artifacts"
	"github.com/casawatch/casawatch/browser"
	"github.com/casawatch/casawatch/config"
	"github.com/casawatch/casawatch/extract"
	"github.com/casawatch/casawatch/models"
)

// attemptFunc runs one full attempt. Swapped for a stub in orchestrator
// tests so retry behavior is verifiable without a browser.
type attemptFunc func(ctx context.Context, req *models.SearchRequest, sink *artifacts.Sink) (*models.ScrapeOutcome, error)

// Scraper is the retry/recovery orchestrator. It is safe for concurrent use:
// every request gets its own browser session and artifact sink, and the
// Scraper itself holds only immutable configuration.
type Scraper struct {
	browserCfg config.BrowserConfig
	cfg        config.ScraperConfig
	profile    SiteProfile
	engine     *extract.Engine

	attempt attemptFunc
}

// New builds the orchestrator from explicit configuration; there is no
// ambient global state.
func New(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig, profile SiteProfile, eng *extract.Engine) *Scraper {
	s := &Scraper{
		browserCfg: browserCfg,
		cfg:        scraperCfg,
		profile:    profile,
		engine:     eng,
	}
	s.attempt = s.runAttempt
	return s
}

// runState is the orchestrator's bounded state machine. Retries are an
// explicit loop, not recursion, so the retry bound is structural.
type runState int

const (
	stateAttempt runState = iota
	stateRetry
	stateSuccess
	stateFailed
)

// Run executes the scrape with up to MaxRetries retries. Every transition
// out of an attempt happens after that attempt's session has been torn down;
// the only state carried between attempts is the retry counter and the
// original request. CAPTCHA detection is terminal regardless of remaining
// budget.
func (s *Scraper) Run(ctx context.Context, req *models.SearchRequest, sink *artifacts.Sink) *models.ScrapeOutcome {
	var (
		state      = stateAttempt
		retryCount = 0
		outcome    *models.ScrapeOutcome
		lastErr    error
	)

	for {
		switch state {
		case stateAttempt:
			if retryCount > 0 {
				slog.Info("retrying scrape", "retry", retryCount, "max", s.cfg.MaxRetries)
			}
			out, err := s.attempt(ctx, req, sink)
			if err == nil {
				outcome = out
				state = stateSuccess
				continue
			}
			lastErr = err
			slog.Warn("attempt failed", "retry", retryCount, "error", err)

			if !models.IsRetryable(err) || retryCount >= s.cfg.MaxRetries {
				state = stateFailed
				continue
			}
			state = stateRetry

		case stateRetry:
			retryCount++
			select {
			case <-time.After(s.cfg.RetryBackoff):
			case <-ctx.Done():
				lastErr = models.NewScrapeError(models.ErrCodeInternal,
					"request context canceled during backoff", ctx.Err())
				state = stateFailed
				continue
			}
			state = stateAttempt

		case stateSuccess:
			return outcome

		case stateFailed:
			return s.failureOutcome(req, lastErr)
		}
	}
}

// runAttempt is one pass through session → navigation → capture → extraction.
// The deferred Close guarantees teardown on every exit path, including
// panics recovered further up.
func (s *Scraper) runAttempt(ctx context.Context, req *models.SearchRequest, sink *artifacts.Sink) (*models.ScrapeOutcome, error) {
	sess, err := browser.Open(s.browserCfg, req.Browser)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	finalURL, err := s.navigate(ctx, sess, req, sink)
	if err != nil {
		return nil, err
	}

	captured, err := s.capture(ctx, sess, finalURL, sink)
	if err != nil {
		return nil, err
	}

	if kw, found := DetectChallenge(captured.VisibleText); found {
		slog.Error("verification challenge detected", "keyword", kw, "url", finalURL)
		sink.WriteScreenshot(artifacts.CaptchaPNG, sess.Page())
		return nil, models.NewScrapeError(models.ErrCodeCaptchaDetected,
			fmt.Sprintf("verification challenge detected (%q)", kw), nil)
	}

	links := extract.HarvestLinks(captured.HTML, s.profile.ListingLinkPattern, s.profile.BaseURL, s.cfg.MaxItems)
	slog.Info("listing links harvested", "count", len(links))

	sink.WriteContentDebug(finalURL, len(captured.VisibleText), links,
		extract.TruncateText(captured.VisibleText, s.cfg.TextCap))

	result, err := s.engine.Extract(ctx, extract.Input{
		Text:       captured.VisibleText,
		Links:      links,
		SearchTerm: req.SearchTerm,
		URL:        req.URL,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("extraction complete",
		"items", len(result.Items), "totalResults", result.TotalResults)

	return &models.ScrapeOutcome{
		Success:     true,
		Content:     extract.RenderText(result, s.cfg.MaxItems),
		ContentHTML: extract.RenderHTML(result, captured.FinalURL, s.cfg.MaxItems),
		Description: describe(req),
		FinalURL:    captured.FinalURL,
	}, nil
}

// failureOutcome maps the terminal error to the outcome returned to the
// caller. Retryable kinds never surface individually — only CAPTCHA or the
// exhausted retry budget.
func (s *Scraper) failureOutcome(req *models.SearchRequest, err error) *models.ScrapeOutcome {
	code := models.ErrorCode(err)

	if code == models.ErrCodeCaptchaDetected {
		return &models.ScrapeOutcome{
			Success:     false,
			Content:     "CAPTCHA/verificación detectada.\n\nLa página muestra un sistema de verificación anti-bot.",
			Description: "CAPTCHA detectado",
			FinalURL:    req.URL,
			Error: &models.ErrorDetail{
				Code:    models.ErrCodeCaptchaDetected,
				Message: err.Error(),
			},
		}
	}

	detail := &models.ErrorDetail{Code: code, Message: err.Error()}
	if models.IsRetryable(err) {
		detail = &models.ErrorDetail{
			Code:    models.ErrCodeRetriesExhausted,
			Message: fmt.Sprintf("giving up after %d retries: %v", s.cfg.MaxRetries, err),
		}
	}
	return &models.ScrapeOutcome{
		Success:     false,
		Description: describe(req),
		FinalURL:    req.URL,
		Error:       detail,
	}
}

func describe(req *models.SearchRequest) string {
	if req.SearchTerm != "" {
		return "Viviendas en " + req.SearchTerm
	}
	return "Contenido extraído de " + req.URL
}
