package scraper

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SiteProfile carries the portal-specific markup knowledge: ordered selector
// lists probed until one succeeds, plus the portal's URL conventions. Keeping
// it as data means the target site's markup can change without touching the
// navigation logic.
type SiteProfile struct {
	// HostPattern identifies the portal in a request URL.
	HostPattern string

	// CookieButtonTexts are exact-text matches for consent buttons,
	// tried before the CSS selectors.
	CookieButtonTexts []string

	// CookieSelectors are CSS selectors for common consent-platform
	// accept buttons.
	CookieSelectors []string

	// PopupButtonTexts dismiss promo/alert popups by button text.
	PopupButtonTexts []string

	// PopupSelectors dismiss popups by CSS selector.
	PopupSelectors []string

	// SearchInputSelectors locate the main search box.
	SearchInputSelectors []string

	// SuggestionSelectors locate the first autocomplete entry.
	SuggestionSelectors []string

	// ListingCardSelectors detect listing cards, most specific first.
	ListingCardSelectors []string

	// ListingLinkPattern is the substring identifying listing detail
	// links inside anchor hrefs.
	ListingLinkPattern string

	// BaseURL absolutizes relative listing links.
	BaseURL string

	// ListingPathFormat builds the direct search URL from a slugified
	// locality.
	ListingPathFormat string
}

// Fotocasa returns the profile for fotocasa.es, the single supported portal.
func Fotocasa() SiteProfile {
	return SiteProfile{
		HostPattern: "fotocasa",
		CookieButtonTexts: []string{
			"Aceptar y continuar",
			"Aceptar todo",
			"Aceptar todas",
			"Aceptar cookies",
			"Acepto",
			"Accept all",
			"Accept",
		},
		CookieSelectors: []string{
			"#onetrust-accept-btn-handler",
			"#acceptAll",
			".accept-cookies",
			`[data-testid="TcfAccept"]`,
			"#didomi-notice-agree-button",
			".css-1hy2vtq", // fotocasa-specific consent button
		},
		PopupButtonTexts: []string{
			"No, gracias",
			"No gracias",
			"Ahora no",
			"Rechazar",
		},
		PopupSelectors: []string{
			`[data-testid="reject-button"]`,
			`[aria-label*="Cerrar"]`,
			`button[aria-label*="Close"]`,
			".close-button",
			"button.close",
		},
		SearchInputSelectors: []string{
			`input[placeholder*="Buscar vivienda"]`,
			`input[placeholder*="municipio"]`,
			`input[placeholder*="barrio"]`,
			`input[type="search"]`,
			`input[placeholder*="Búsqueda"]`,
			"#search-input",
			`[data-testid="search-input"]`,
			`input[name*="search"]`,
			`input[id*="search"]`,
		},
		SuggestionSelectors: []string{
			`[role="option"]`,
			`[class*="autocomplete"] li:first-child`,
			`[class*="suggestion"] li:first-child`,
			`[data-testid="suggestion-item"]`,
			`ul[role="listbox"] li:first-child`,
			".re-Autocomplete-list li:first-child",
		},
		ListingCardSelectors: []string{
			"article",
			`[data-testid*="property"]`,
			`[class*="PropertyCard"]`,
			".re-CardPackMinimal",
			".re-Card",
			`[class*="listing"]`,
			`[class*="card"]`,
		},
		ListingLinkPattern: "/comprar/vivienda/",
		BaseURL:            "https://www.fotocasa.es",
		ListingPathFormat:  "https://www.fotocasa.es/es/comprar/viviendas/%s/todas-las-zonas/l",
	}
}

// Matches reports whether the request URL targets this portal.
func (p SiteProfile) Matches(rawURL string) bool {
	return strings.Contains(rawURL, p.HostPattern)
}

// ListingURL builds the direct filtered search URL for a locality, used as
// the fallback when the interactive search never becomes available.
func (p SiteProfile) ListingURL(searchTerm string, maxPrice int) string {
	base := fmt.Sprintf(p.ListingPathFormat, Slugify(searchTerm))

	params := url.Values{}
	params.Set("sortType", "price")
	params.Set("sortOrderDesc", "false")
	if maxPrice > 0 {
		params.Set("maxPrice", strconv.Itoa(maxPrice))
	}
	return base + "?" + params.Encode()
}

// ApplyFilters rewrites the query string of the current URL to force the
// fixed sort order and, when given, the maximum price.
func (p SiteProfile) ApplyFilters(rawURL string, maxPrice int) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse current url: %w", err)
	}

	params := u.Query()
	params.Set("sortType", "price")
	params.Set("sortOrderDesc", "false")
	if maxPrice > 0 {
		params.Set("maxPrice", strconv.Itoa(maxPrice))
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// Slugify converts a locality name into the portal's URL path convention.
func Slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}
