package scraper

import "strings"

// challengeKeywords is the fixed set of verification/CAPTCHA markers, in the
// site's two languages. Matching is case-insensitive substring membership
// over the captured visible text.
var challengeKeywords = []string{
	"captcha",
	"verification",
	"verify you",
	"too many requests",
	"verificación",
	"demasiadas peticiones",
	"robot",
}

// DetectChallenge scans visible text for an anti-automation interstitial.
// It returns the first matched keyword. A match is terminal for the whole
// request: a blocked session cannot be retried into success.
func DetectChallenge(visibleText string) (string, bool) {
	lower := strings.ToLower(visibleText)
	for _, kw := range challengeKeywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}
