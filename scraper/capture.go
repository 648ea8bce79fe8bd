package scraper

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/go-rod/rod"

	"github.com/casawatch/casawatch/artifacts"
	"github.com/casawatch/casawatch/browser"
	"github.com/casawatch/casawatch/models"
)

// revealJS forces elements hidden via inline styling to render and scrolls
// back to the top so the progressive scroll starts from a known position.
const revealJS = `() => {
	document.querySelectorAll('[style*="display: none"]').forEach(el => {
		el.style.display = 'block';
	});
	document.querySelectorAll('[style*="visibility: hidden"]').forEach(el => {
		el.style.visibility = 'visible';
	});
	window.scrollTo(0, 0);
}`

// capture waits a humanlike delay, triggers lazy-loaded listings with a
// progressive scroll loop, then snapshots HTML, visible text and a
// screenshot. Screenshot and artifact writes are best-effort; only losing
// the HTML or the body text fails the attempt.
func (s *Scraper) capture(ctx context.Context, sess *browser.Session, finalURL string, sink *artifacts.Sink) (*models.CapturedPage, error) {
	page := sess.Page().Context(ctx)

	// Simulate a reader pausing on the results before touching anything.
	pause(ctx, 3*time.Second, 5*time.Second)

	if _, err := page.Eval(revealJS); err != nil {
		slog.Warn("could not force-reveal hidden elements", "error", err)
	}

	for i := 0; i < s.cfg.ScrollSteps; i++ {
		amount := 300 + rand.Intn(301)
		if err := page.Mouse.Scroll(0, float64(amount), 1); err != nil {
			slog.Debug("scroll step failed", "step", i+1, "error", err)
		}
		pause(ctx, time.Second, 2*time.Second)
	}

	pause(ctx, 3*time.Second, 5*time.Second)

	sink.WriteScreenshot(artifacts.ResultsPNG, page)

	count, sel := s.countListingCards(page)
	switch {
	case count == 0:
		slog.Error("no listing cards found on the page",
			"selectors", s.profile.ListingCardSelectors)
	case count < s.cfg.MaxItems:
		slog.Warn("fewer listing cards than expected", "count", count, "selector", sel)
	default:
		slog.Info("listing cards detected", "count", count, "selector", sel)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash,
			"failed to extract page HTML", err)
	}
	body, err := page.Element("body")
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash,
			"page has no body element", err)
	}
	text, err := body.Text()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash,
			"failed to extract visible text", err)
	}

	slog.Info("page content captured",
		"htmlChars", len(html),
		"textChars", len(text),
		"url", finalURL,
	)

	if len(text) < s.cfg.MinContentLen {
		slog.Warn("captured text below content threshold, persisting HTML",
			"textChars", len(text), "threshold", s.cfg.MinContentLen)
		sink.WriteFile(artifacts.LowContentHTML, []byte(html))
	}

	return &models.CapturedPage{
		HTML:        html,
		VisibleText: text,
		FinalURL:    finalURL,
		Timestamp:   time.Now(),
	}, nil
}

// countListingCards probes the ordered card selectors and returns the count
// from the first selector matching at least one element. Zero matches is an
// error condition for the log only; downstream validation decides the
// attempt's fate.
func (s *Scraper) countListingCards(page *rod.Page) (int, string) {
	for _, sel := range s.profile.ListingCardSelectors {
		els, err := page.Elements(sel)
		if err != nil {
			continue
		}
		if len(els) > 0 {
			return len(els), sel
		}
	}
	return 0, ""
}
