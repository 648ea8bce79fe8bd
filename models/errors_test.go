package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"direct scrape error", NewScrapeError(ErrCodeNavigation, "nav failed", nil), ErrCodeNavigation},
		{"wrapped scrape error", fmt.Errorf("attempt 2: %w", NewScrapeError(ErrCodeCaptchaDetected, "blocked", nil)), ErrCodeCaptchaDetected},
		{"plain error", errors.New("boom"), ErrCodeInternal},
		{"nested cause keeps outer code", NewScrapeError(ErrCodeBrowserCrash, "crash", errors.New("pipe closed")), ErrCodeBrowserCrash},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []string{
		ErrCodeBrowserCrash,
		ErrCodeNavigation,
		ErrCodeExtractionParse,
		ErrCodeEmptyResult,
		ErrCodeLLMFailure,
		ErrCodeLLMRateLimited,
		ErrCodeInternal,
	}
	for _, code := range retryable {
		if !IsRetryable(NewScrapeError(code, "x", nil)) {
			t.Errorf("IsRetryable(%s) = false, want true", code)
		}
	}

	terminal := []string{
		ErrCodeCaptchaDetected,
		ErrCodeLLMAuthFailure,
		ErrCodeInvalidInput,
		ErrCodeRateLimited,
		ErrCodeRetriesExhausted,
	}
	for _, code := range terminal {
		if IsRetryable(NewScrapeError(code, "x", nil)) {
			t.Errorf("IsRetryable(%s) = true, want false", code)
		}
	}

	// Unknown errors map to INTERNAL_ERROR, which is retryable.
	if !IsRetryable(errors.New("unknown")) {
		t.Error("IsRetryable(plain error) = false, want true")
	}
}

func TestScrapeErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewScrapeError(ErrCodeBrowserCrash, "session lost", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestScrapeErrorToDetail(t *testing.T) {
	err := NewScrapeError(ErrCodeEmptyResult, "nothing found", errors.New("cause"))
	d := err.ToDetail()
	if d.Code != ErrCodeEmptyResult {
		t.Errorf("Code = %q, want %q", d.Code, ErrCodeEmptyResult)
	}
	if d.Message != "nothing found" {
		t.Errorf("Message = %q, want %q", d.Message, "nothing found")
	}
}

func TestSearchRequestDefaults(t *testing.T) {
	req := &SearchRequest{URL: "https://www.fotocasa.es"}
	req.Defaults()
	if req.Browser != BrowserChromium {
		t.Errorf("Browser = %q, want %q", req.Browser, BrowserChromium)
	}

	req = &SearchRequest{URL: "https://www.fotocasa.es", Browser: BrowserBrave}
	req.Defaults()
	if req.Browser != BrowserBrave {
		t.Errorf("Defaults overwrote explicit browser choice: %q", req.Browser)
	}
}
