package models

// ScrapeOutcome is the terminal artifact of a scrape request, returned to the
// API layer once the retry loop settles.
type ScrapeOutcome struct {
	// Success indicates whether the scrape produced usable results.
	Success bool `json:"success"`

	// Content is the plain-text rendering of the extracted listings.
	Content string `json:"content"`

	// ContentHTML is the HTML-table rendering of the extracted listings,
	// suitable for mail bodies.
	ContentHTML string `json:"contentHtml,omitempty"`

	// Description is a short human-readable label for the search.
	Description string `json:"description"`

	// FinalURL is the last successfully navigated URL, or the original
	// request URL if interactive navigation never completed.
	FinalURL string `json:"finalUrl,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// StatusResponse is the response for GET /api/status.
type StatusResponse struct {
	Server  string             `json:"server"`
	Stealth StealthStatus      `json:"stealth_mode"`
	LLM     CapabilityStatus   `json:"llm"`
	Mail    CapabilityStatus   `json:"email"`
	Browser BrowserEngineState `json:"browser"`
}

// StealthStatus describes the anti-detection measures in effect.
type StealthStatus struct {
	Enabled  bool     `json:"enabled"`
	Features []string `json:"features"`
}

// CapabilityStatus reports whether an external collaborator is configured.
type CapabilityStatus struct {
	Configured bool   `json:"configured"`
	Detail     string `json:"detail,omitempty"`
}

// BrowserEngineState reports the available browser engines.
type BrowserEngineState struct {
	Default        string `json:"default"`
	BraveAvailable bool   `json:"brave_available"`
	Headless       bool   `json:"headless"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}
