package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/casawatch/casawatch/config"
	"github.com/casawatch/casawatch/models"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), config.LLMConfig{
		APIKey:  "sk-test",
		Model:   "gpt-4o-mini",
		BaseURL: srv.URL,
	})
}

func TestCompleteSuccess(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("auth header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  {\"summary\":\"ok\"}  "}}],"usage":{"total_tokens":10}}`))
	})

	got, err := c.Complete(context.Background(), "extract this")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != `{"summary":"ok"}` {
		t.Errorf("content = %q (should be trimmed)", got)
	}
}

func TestCompleteErrorClassification(t *testing.T) {
	tests := []struct {
		status   int
		wantCode string
	}{
		{http.StatusUnauthorized, models.ErrCodeLLMAuthFailure},
		{http.StatusForbidden, models.ErrCodeLLMAuthFailure},
		{http.StatusTooManyRequests, models.ErrCodeLLMRateLimited},
		{http.StatusInternalServerError, models.ErrCodeLLMFailure},
		{http.StatusBadRequest, models.ErrCodeLLMFailure},
	}
	for _, tt := range tests {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"error":{"message":"nope"}}`))
		})
		_, err := c.Complete(context.Background(), "p")
		if err == nil {
			t.Fatalf("status %d: expected error", tt.status)
		}
		if got := models.ErrorCode(err); got != tt.wantCode {
			t.Errorf("status %d: code = %s, want %s", tt.status, got, tt.wantCode)
		}
	}
}

func TestCompleteNoChoices(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})
	_, err := c.Complete(context.Background(), "p")
	if models.ErrorCode(err) != models.ErrCodeLLMFailure {
		t.Errorf("code = %s, want %s", models.ErrorCode(err), models.ErrCodeLLMFailure)
	}
}

func TestCompleteUnconfigured(t *testing.T) {
	c := NewClient(nil, config.LLMConfig{})
	_, err := c.Complete(context.Background(), "p")
	if models.ErrorCode(err) != models.ErrCodeLLMAuthFailure {
		t.Errorf("code = %s, want %s", models.ErrorCode(err), models.ErrCodeLLMAuthFailure)
	}
}
