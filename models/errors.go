package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeBrowserCrash     = "BROWSER_CRASH"
	ErrCodeNavigation       = "NAVIGATION_FAILED"
	ErrCodeCaptchaDetected  = "CAPTCHA_DETECTED"
	ErrCodeExtractionParse  = "EXTRACTION_PARSE_FAILED"
	ErrCodeEmptyResult      = "EMPTY_RESULT"
	ErrCodeRetriesExhausted = "RETRIES_EXHAUSTED"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeInternal         = "INTERNAL_ERROR"

	// LLM transport errors. They count as retryable extraction faults.
	ErrCodeLLMFailure     = "LLM_FAILURE"
	ErrCodeLLMAuthFailure = "LLM_AUTH_FAILURE"
	ErrCodeLLMRateLimited = "LLM_RATE_LIMITED"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// ErrorCode extracts the scrape error code from any error in the chain.
// Unknown errors map to ErrCodeInternal.
func ErrorCode(err error) string {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// IsRetryable reports whether the orchestrator may re-enter the attempt loop
// for this error. CAPTCHA detection is deliberately excluded: retrying a
// blocked session cannot succeed.
func IsRetryable(err error) bool {
	switch ErrorCode(err) {
	case ErrCodeBrowserCrash,
		ErrCodeNavigation,
		ErrCodeExtractionParse,
		ErrCodeEmptyResult,
		ErrCodeLLMFailure,
		ErrCodeLLMRateLimited,
		ErrCodeInternal:
		return true
	}
	return false
}
