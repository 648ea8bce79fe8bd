package extract

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HarvestLinks pulls listing detail links from the captured HTML, in DOM
// order, so the completion service can align them positionally with the
// extracted listings. It looks for the first matching anchor inside each
// listing card, normalizes relative links to absolute, and caps the result
// at max entries. Harvest failures degrade to an empty list — the extraction
// still works, the items just carry no links.
func HarvestLinks(html, linkPattern, baseURL string, max int) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		slog.Warn("could not parse captured HTML for links", "error", err)
		return nil
	}

	var links []string
	doc.Find("article").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(links) >= max {
			return false
		}
		href, ok := card.Find(`a[href*="` + linkPattern + `"]`).First().Attr("href")
		if !ok || href == "" {
			return true
		}
		if strings.HasPrefix(href, "/") {
			href = baseURL + href
		}
		links = append(links, href)
		return true
	})

	return links
}
