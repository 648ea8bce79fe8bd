package extract

import (
	"fmt"
	"html"
	"strings"

	"github.com/casawatch/casawatch/models"
)

// RenderText builds the plain-text view of an extraction result, capped at
// maxItems listings with a trailing "+N more" note.
func RenderText(res *models.ExtractionResult, maxItems int) string {
	if len(res.Items) == 0 {
		return res.Summary
	}

	shown := res.Items
	if len(shown) > maxItems {
		shown = shown[:maxItems]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Resumen: %s\n", res.Summary)
	fmt.Fprintf(&b, "Total resultados: %d (mostrando primeros %d)\n\n", res.TotalResults, len(shown))

	for i, item := range shown {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item.Title)
		if item.Link != "" {
			fmt.Fprintf(&b, "   Link: %s\n", item.Link)
		}
		fmt.Fprintf(&b, "   %s\n", item.Description)
		fmt.Fprintf(&b, "   Precio: %s\n\n", priceOrNA(item.Price))
	}

	if remaining := len(res.Items) - maxItems; remaining > 0 {
		fmt.Fprintf(&b, "... y %d resultados más.\n", remaining)
	}

	return b.String()
}

// RenderHTML builds the HTML-table view used in mail bodies: numbered rows,
// linked titles when a link is present, and a right-aligned fixed-width
// price column. Capped at maxItems with a "+N more" note linking back to the
// live results.
func RenderHTML(res *models.ExtractionResult, resultsURL string, maxItems int) string {
	if len(res.Items) == 0 {
		return fmt.Sprintf("<p>%s</p>", html.EscapeString(res.Summary))
	}

	shown := res.Items
	if len(shown) > maxItems {
		shown = shown[:maxItems]
	}

	var rows strings.Builder
	for i, item := range shown {
		title := html.EscapeString(item.Title)
		if item.Link != "" {
			title = fmt.Sprintf(`<a href="%s" style="color:#007bff;text-decoration:none;">%s</a>`,
				html.EscapeString(item.Link), title)
		}
		fmt.Fprintf(&rows, `
        <tr>
          <td style="padding:10px;border-bottom:1px solid #dee2e6;text-align:center;font-weight:bold;">%d</td>
          <td style="padding:10px;border-bottom:1px solid #dee2e6;">%s</td>
          <td style="padding:10px;border-bottom:1px solid #dee2e6;">%s</td>
          <td style="padding:10px;border-bottom:1px solid #dee2e6;text-align:right;font-weight:bold;white-space:nowrap;">%s</td>
        </tr>`,
			i+1, title, html.EscapeString(item.Description), html.EscapeString(priceOrNA(item.Price)))
	}

	more := ""
	if remaining := len(res.Items) - maxItems; remaining > 0 {
		more = fmt.Sprintf(
			`<p style="margin-top:10px;color:#6c757d;font-style:italic;">... y %d resultados más. <a href="%s">Ver todos en la web</a></p>`,
			remaining, html.EscapeString(resultsURL))
	}

	return fmt.Sprintf(`
    <p style="margin-bottom:5px;"><strong>Resumen:</strong> %s</p>
    <p style="margin-bottom:15px;color:#6c757d;">Total de resultados en la página: %d (mostrando los primeros %d)</p>
    <table style="width:100%%;border-collapse:collapse;font-size:14px;">
      <thead>
        <tr style="background-color:#007bff;color:white;">
          <th style="padding:10px;text-align:center;width:50px;">#</th>
          <th style="padding:10px;text-align:left;">Anuncio</th>
          <th style="padding:10px;text-align:left;">Descripción</th>
          <th style="padding:10px;text-align:right;width:120px;">Precio</th>
        </tr>
      </thead>
      <tbody>%s
      </tbody>
    </table>
    %s`,
		html.EscapeString(res.Summary), res.TotalResults, len(shown), rows.String(), more)
}

func priceOrNA(price string) string {
	if price == "" {
		return "N/A"
	}
	return price
}
