package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/casawatch/casawatch/artifacts"
	"github.com/casawatch/casawatch/config"
	"github.com/casawatch/casawatch/models"
)

func newTestScraper(maxRetries int) *Scraper {
	return New(
		config.BrowserConfig{Headless: true},
		config.ScraperConfig{
			MaxRetries:   maxRetries,
			RetryBackoff: time.Millisecond,
			MaxItems:     15,
			TextCap:      20000,
		},
		Fotocasa(),
		nil,
	)
}

func testRequest() *models.SearchRequest {
	return &models.SearchRequest{
		URL:        "https://www.fotocasa.es",
		SearchTerm: "Mataró",
		Browser:    models.BrowserChromium,
	}
}

func TestRunSucceedsFirstAttempt(t *testing.T) {
	s := newTestScraper(2)
	calls := 0
	s.attempt = func(ctx context.Context, req *models.SearchRequest, sink *artifacts.Sink) (*models.ScrapeOutcome, error) {
		calls++
		return &models.ScrapeOutcome{Success: true, Content: "ok"}, nil
	}

	out := s.Run(context.Background(), testRequest(), nil)
	if !out.Success {
		t.Fatalf("expected success, got %+v", out)
	}
	if calls != 1 {
		t.Errorf("attempts = %d, want 1", calls)
	}
}

func TestRunRetriesThenSucceeds(t *testing.T) {
	s := newTestScraper(2)
	calls := 0
	s.attempt = func(ctx context.Context, req *models.SearchRequest, sink *artifacts.Sink) (*models.ScrapeOutcome, error) {
		calls++
		if calls < 3 {
			return nil, models.NewScrapeError(models.ErrCodeNavigation, "flaky", nil)
		}
		return &models.ScrapeOutcome{Success: true}, nil
	}

	out := s.Run(context.Background(), testRequest(), nil)
	if !out.Success {
		t.Fatalf("expected success after retries, got %+v", out.Error)
	}
	if calls != 3 {
		t.Errorf("attempts = %d, want 3", calls)
	}
}

func TestRunExhaustsRetries(t *testing.T) {
	s := newTestScraper(2)
	calls := 0
	s.attempt = func(ctx context.Context, req *models.SearchRequest, sink *artifacts.Sink) (*models.ScrapeOutcome, error) {
		calls++
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "session lost", nil)
	}

	out := s.Run(context.Background(), testRequest(), nil)
	if out.Success {
		t.Fatal("expected failure")
	}
	// Initial attempt plus MaxRetries retries.
	if calls != 3 {
		t.Errorf("attempts = %d, want 3", calls)
	}
	if out.Error == nil || out.Error.Code != models.ErrCodeRetriesExhausted {
		t.Errorf("error = %+v, want code %s", out.Error, models.ErrCodeRetriesExhausted)
	}
}

func TestRunCaptchaIsTerminal(t *testing.T) {
	s := newTestScraper(2)
	calls := 0
	s.attempt = func(ctx context.Context, req *models.SearchRequest, sink *artifacts.Sink) (*models.ScrapeOutcome, error) {
		calls++
		return nil, models.NewScrapeError(models.ErrCodeCaptchaDetected, "blocked", nil)
	}

	out := s.Run(context.Background(), testRequest(), nil)
	if calls != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on challenge)", calls)
	}
	if out.Error == nil || out.Error.Code != models.ErrCodeCaptchaDetected {
		t.Errorf("error = %+v, want code %s", out.Error, models.ErrCodeCaptchaDetected)
	}
	if out.Content == "" {
		t.Error("challenge outcome should carry explanatory content")
	}
}

func TestRunAuthFailureIsTerminal(t *testing.T) {
	s := newTestScraper(2)
	calls := 0
	s.attempt = func(ctx context.Context, req *models.SearchRequest, sink *artifacts.Sink) (*models.ScrapeOutcome, error) {
		calls++
		return nil, models.NewScrapeError(models.ErrCodeLLMAuthFailure, "bad key", nil)
	}

	out := s.Run(context.Background(), testRequest(), nil)
	if calls != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on auth failure)", calls)
	}
	if out.Error == nil || out.Error.Code != models.ErrCodeLLMAuthFailure {
		t.Errorf("error = %+v, want code %s", out.Error, models.ErrCodeLLMAuthFailure)
	}
}

func TestRunParseAndEmptyErrorsShareRetryPath(t *testing.T) {
	for _, code := range []string{models.ErrCodeExtractionParse, models.ErrCodeEmptyResult, models.ErrCodeLLMFailure} {
		t.Run(code, func(t *testing.T) {
			s := newTestScraper(1)
			calls := 0
			s.attempt = func(ctx context.Context, req *models.SearchRequest, sink *artifacts.Sink) (*models.ScrapeOutcome, error) {
				calls++
				return nil, models.NewScrapeError(code, "transient", nil)
			}

			out := s.Run(context.Background(), testRequest(), nil)
			if calls != 2 {
				t.Errorf("attempts = %d, want 2", calls)
			}
			if out.Error == nil || out.Error.Code != models.ErrCodeRetriesExhausted {
				t.Errorf("error = %+v, want code %s", out.Error, models.ErrCodeRetriesExhausted)
			}
		})
	}
}

func TestRunHonorsContextDuringBackoff(t *testing.T) {
	s := newTestScraper(5)
	s.cfg.RetryBackoff = time.Minute
	calls := 0
	s.attempt = func(ctx context.Context, req *models.SearchRequest, sink *artifacts.Sink) (*models.ScrapeOutcome, error) {
		calls++
		return nil, models.NewScrapeError(models.ErrCodeNavigation, "flaky", nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	done := make(chan *models.ScrapeOutcome, 1)
	go func() { done <- s.Run(ctx, testRequest(), nil) }()

	select {
	case out := <-done:
		if out.Success {
			t.Fatal("expected failure after cancellation")
		}
		if calls != 1 {
			t.Errorf("attempts = %d, want 1", calls)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestDescribe(t *testing.T) {
	withTerm := &models.SearchRequest{URL: "https://www.fotocasa.es", SearchTerm: "Cabrils"}
	if got := describe(withTerm); got != "Viviendas en Cabrils" {
		t.Errorf("describe = %q", got)
	}
	noTerm := &models.SearchRequest{URL: "https://www.fotocasa.es/l"}
	if got := describe(noTerm); got != "Contenido extraído de https://www.fotocasa.es/l" {
		t.Errorf("describe = %q", got)
	}
}
