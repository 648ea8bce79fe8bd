package scraper

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"

	"github.com/casawatch/casawatch/artifacts"
	"github.com/casawatch/casawatch/browser"
	"github.com/casawatch/casawatch/models"
)

// navigate drives the site-specific interactive search and returns the final
// URL. Failures inside the interactive flow are absorbed here: the controller
// falls back level by level (suggestion → Enter → direct URL) and capture
// proceeds on whatever page state exists. Only a failed initial navigation
// surfaces as an error, since then there is nothing to capture at all.
func (s *Scraper) navigate(ctx context.Context, sess *browser.Session, req *models.SearchRequest, sink *artifacts.Sink) (string, error) {
	page := sess.Page().Context(ctx)

	sess.SetReferer(req.URL)

	if err := page.Timeout(s.cfg.NavTimeout).Navigate(req.URL); err != nil {
		return req.URL, models.NewScrapeError(models.ErrCodeNavigation,
			"navigation to target URL failed", err)
	}
	if err := page.Timeout(s.cfg.NavTimeout).WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("DOM did not stabilize, proceeding with current state", "error", err)
	}

	pause(ctx, time.Second, 2*time.Second)
	s.dismissConsent(page)

	if !s.profile.Matches(req.URL) || strings.TrimSpace(req.SearchTerm) == "" {
		slog.Info("no interactive search for this request, capturing page as-is",
			"url", req.URL)
		return req.URL, nil
	}

	return s.interactiveSearch(ctx, page, req, sink), nil
}

// interactiveSearch types the locality into the portal's search box, selects
// the first autocomplete suggestion (or submits with Enter), re-dismisses
// popups and rewrites the result URL with the fixed sort order and price
// filter. If no search input ever becomes interactive it falls back to a
// directly constructed listing URL.
func (s *Scraper) interactiveSearch(ctx context.Context, page *rod.Page, req *models.SearchRequest, sink *artifacts.Sink) string {
	slog.Info("interactive search", "term", req.SearchTerm)

	searchDone := false
	for _, sel := range s.profile.SearchInputSelectors {
		el, err := page.Timeout(s.cfg.ProbeTimeout).Element(sel)
		if err != nil {
			continue
		}
		visible, _ := el.Visible()
		// Headless rendering sometimes reports visible=false for an
		// interactive input; fall back to the disabled property.
		if !visible && !elementEnabled(el) {
			continue
		}

		pause(ctx, 500*time.Millisecond, time.Second)
		_ = el.Focus()
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			slog.Debug("search input click failed", "selector", sel, "error", err)
			continue
		}
		pause(ctx, 300*time.Millisecond, 600*time.Millisecond)
		if err := el.Input(req.SearchTerm); err != nil {
			slog.Debug("search input typing failed", "selector", sel, "error", err)
			continue
		}
		slog.Info("search term typed", "selector", sel)

		// Give the autocomplete surface time to appear.
		pause(ctx, 1500*time.Millisecond, 2500*time.Millisecond)

		if sugSel, ok := s.clickFirstSuggestion(ctx, page); ok {
			slog.Info("autocomplete suggestion selected", "selector", sugSel)
			pause(ctx, 2*time.Second, 3*time.Second)
		} else {
			slog.Warn("no suggestion became visible, submitting with Enter")
			if err := page.Keyboard.Press(input.Enter); err != nil {
				slog.Warn("enter submission failed", "error", err)
			}
			pause(ctx, 3*time.Second, 5*time.Second)
		}

		searchDone = true
		break
	}

	if !searchDone {
		slog.Error("search input never became interactive",
			"url", currentURL(page, req.URL))
		sink.WriteScreenshot(artifacts.SearchFailedPNG, page)
		if html, err := page.HTML(); err == nil {
			sink.WriteFile(artifacts.SearchFailedHTML, []byte(truncate(html, 5000)))
		}
		return s.directURLFallback(ctx, page, req)
	}

	// Popups may reappear after the results navigation.
	s.dismissPopups(ctx, page)

	cur := currentURL(page, req.URL)
	finalURL, err := s.profile.ApplyFilters(cur, req.MaxPrice)
	if err != nil {
		slog.Warn("could not rewrite result URL with filters", "url", cur, "error", err)
		return cur
	}
	if req.MaxPrice > 0 {
		slog.Info("applying price filter", "maxPrice", req.MaxPrice)
	}

	if err := page.Timeout(s.cfg.NavTimeout).Navigate(finalURL); err != nil {
		slog.Warn("navigation to filtered URL failed, keeping unfiltered results",
			"url", finalURL, "error", err)
		return cur
	}
	pause(ctx, 2*time.Second, 3*time.Second)
	s.dismissPopups(ctx, page)
	pause(ctx, time.Second, 2*time.Second)

	return finalURL
}

// directURLFallback builds the portal's listing URL from the slugified
// locality and navigates there directly. A timeout waiting for listing cards
// is logged but non-fatal: capture proceeds with whatever loaded.
func (s *Scraper) directURLFallback(ctx context.Context, page *rod.Page, req *models.SearchRequest) string {
	target := s.profile.ListingURL(req.SearchTerm, req.MaxPrice)
	slog.Warn("falling back to direct listing URL", "url", target)

	if err := page.Timeout(s.cfg.FallbackNavTimeout).Navigate(target); err != nil {
		slog.Error("direct URL fallback navigation failed", "url", target, "error", err)
		return currentURL(page, req.URL)
	}

	cardSel := s.profile.ListingCardSelectors[0]
	if err := page.Timeout(s.cfg.ListingWaitTimeout).WaitElementsMoreThan(cardSel, 0); err != nil {
		slog.Warn("timeout waiting for listing cards, continuing", "selector", cardSel)
	} else {
		slog.Info("listing cards detected after fallback navigation")
	}
	pause(ctx, 2*time.Second, 3*time.Second)

	return target
}

// dismissConsent probes the cookie/consent banner selectors and clicks the
// first visible match. Absence of a banner is not an error.
func (s *Scraper) dismissConsent(page *rod.Page) {
	if sel, ok := s.clickFirstByText(page, s.profile.CookieButtonTexts); ok {
		slog.Info("cookie banner accepted", "selector", sel)
		return
	}
	if sel, ok := s.clickFirstCSS(page, s.profile.CookieSelectors); ok {
		slog.Info("cookie banner accepted", "selector", sel)
		return
	}
	slog.Debug("no cookie banner detected")
}

// dismissPopups closes promo/newsletter popups. Unlike the consent banner,
// several popups can stack, so every matching dismissal is clicked.
func (s *Scraper) dismissPopups(ctx context.Context, page *rod.Page) {
	if sel, ok := s.clickFirstByText(page, s.profile.PopupButtonTexts); ok {
		slog.Info("popup dismissed", "selector", sel)
		pause(ctx, 500*time.Millisecond, time.Second)
	}
	if sel, ok := s.clickFirstCSS(page, s.profile.PopupSelectors); ok {
		slog.Info("popup dismissed", "selector", sel)
		pause(ctx, 500*time.Millisecond, time.Second)
	}
}

// clickFirstSuggestion probes the autocomplete suggestion selectors with the
// suggestion wait window and clicks the first visible one.
func (s *Scraper) clickFirstSuggestion(ctx context.Context, page *rod.Page) (string, bool) {
	for _, sel := range s.profile.SuggestionSelectors {
		el, err := page.Timeout(s.cfg.SuggestionTimeout).Element(sel)
		if err != nil {
			continue
		}
		if visible, _ := el.Visible(); !visible {
			continue
		}
		pause(ctx, 300*time.Millisecond, 600*time.Millisecond)
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			continue
		}
		return sel, true
	}
	return "", false
}

// clickFirstByText probes buttons by exact visible text, ordered.
func (s *Scraper) clickFirstByText(page *rod.Page, texts []string) (string, bool) {
	for _, text := range texts {
		el, err := page.Timeout(s.cfg.ProbeTimeout).ElementR("button", "/^\\s*"+text+"\\s*$/")
		if err != nil {
			continue
		}
		if visible, _ := el.Visible(); !visible {
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			continue
		}
		return text, true
	}
	return "", false
}

// clickFirstCSS probes an ordered CSS selector list and clicks the first
// visible match.
func (s *Scraper) clickFirstCSS(page *rod.Page, selectors []string) (string, bool) {
	for _, sel := range selectors {
		el, err := page.Timeout(s.cfg.ProbeTimeout).Element(sel)
		if err != nil {
			continue
		}
		if visible, _ := el.Visible(); !visible {
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			continue
		}
		return sel, true
	}
	return "", false
}

// elementEnabled checks the disabled property, swallowing evaluation errors.
func elementEnabled(el *rod.Element) bool {
	res, err := el.Eval(`() => !this.disabled`)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}

// currentURL reads window.location.href, falling back when evaluation fails.
func currentURL(page *rod.Page, fallback string) string {
	res, err := page.Eval(`() => window.location.href`)
	if err != nil || res.Value.Str() == "" {
		return fallback
	}
	return res.Value.Str()
}

// pause sleeps a random duration in [min,max), returning early when the
// context is done. The jitter keeps the interaction cadence humanlike.
func pause(ctx context.Context, min, max time.Duration) {
	d := min
	if max > min {
		d = min + time.Duration(rand.Int63n(int64(max-min)))
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// truncate caps a string at n bytes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
