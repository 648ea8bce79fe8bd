package models

// Browser engine choices accepted in SearchRequest.Browser.
const (
	BrowserChromium = "chromium"
	BrowserBrave    = "brave"
)

// SearchRequest is the payload for POST /api/scrape. It is immutable once
// accepted: the orchestrator reads it but never mutates it across retries.
type SearchRequest struct {
	// URL is the target portal page. Required.
	URL string `json:"url" binding:"required,url"`

	// SearchTerm is the locality to search for interactively
	// (e.g. "Mataró", "Cabrils"). Optional; when empty the page is
	// captured as-is without the interactive search flow.
	SearchTerm string `json:"searchTerm,omitempty"`

	// MaxPrice is the maximum listing price filter in euros. Optional.
	MaxPrice int `json:"maxPrice,omitempty" binding:"omitempty,min=1"`

	// Browser selects the engine: "chromium" (default) or "brave".
	// Brave requires a configured executable path and falls back to
	// chromium when unavailable.
	Browser string `json:"browser,omitempty" binding:"omitempty,oneof=chromium brave"`
}

// Defaults applies default values to unset fields.
func (r *SearchRequest) Defaults() {
	if r.Browser == "" {
		r.Browser = BrowserChromium
	}
}
