package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/casawatch/casawatch/models"
)

func manyItems(n int) *models.ExtractionResult {
	items := make([]models.ListingItem, n)
	for i := range items {
		items[i] = models.ListingItem{
			Title:       fmt.Sprintf("Piso %d", i+1),
			Link:        fmt.Sprintf("https://www.fotocasa.es/es/comprar/vivienda/m/p-%d/d", i+1),
			Description: "3 hab, 90 m²",
			Price:       "250.000 €",
		}
	}
	return &models.ExtractionResult{
		Summary:      fmt.Sprintf("%d viviendas encontradas", n),
		TotalResults: n,
		Items:        items,
	}
}

func TestRenderTextBasic(t *testing.T) {
	res := &models.ExtractionResult{
		Summary:      "3 viviendas en Cabrils",
		TotalResults: 3,
		Items: []models.ListingItem{
			{Title: "Casa con jardín", Link: "https://x/1", Description: "4 hab", Price: "510.000 €"},
			{Title: "Piso céntrico", Description: "2 hab", Price: ""},
			{Title: "Ático", Link: "https://x/3", Description: "3 hab", Price: "390.000 €"},
		},
	}

	out := RenderText(res, 15)
	if !strings.Contains(out, "Resumen: 3 viviendas en Cabrils") {
		t.Error("summary line missing")
	}
	if !strings.Contains(out, "1. Casa con jardín") || !strings.Contains(out, "3. Ático") {
		t.Error("numbered items missing")
	}
	if !strings.Contains(out, "Link: https://x/1") {
		t.Error("link line missing")
	}
	if !strings.Contains(out, "Precio: N/A") {
		t.Error("missing price should render as N/A")
	}
	if strings.Contains(out, "resultados más") {
		t.Error("no overflow note expected under the cap")
	}
}

func TestRenderTextCapsItems(t *testing.T) {
	out := RenderText(manyItems(20), 15)
	if !strings.Contains(out, "15. Piso 15") {
		t.Error("15th item missing")
	}
	if strings.Contains(out, "16. Piso 16") {
		t.Error("item beyond cap rendered")
	}
	if !strings.Contains(out, "... y 5 resultados más.") {
		t.Errorf("overflow note missing:\n%s", out)
	}
}

func TestRenderTextEmptyItems(t *testing.T) {
	res := &models.ExtractionResult{Summary: "Sin resultados para este filtro"}
	if out := RenderText(res, 15); out != "Sin resultados para este filtro" {
		t.Errorf("empty-items render = %q", out)
	}
}

func TestRenderTextDeterministic(t *testing.T) {
	res := manyItems(5)
	if RenderText(res, 15) != RenderText(res, 15) {
		t.Error("identical input must render identically")
	}
}

func TestRenderHTMLEscapesAndLinks(t *testing.T) {
	res := &models.ExtractionResult{
		Summary:      `Pisos <baratos> & "bonitos"`,
		TotalResults: 1,
		Items: []models.ListingItem{
			{Title: "Piso <ático>", Link: "https://x/1?a=b&c=d", Description: "2 hab & terraza", Price: "300.000 €"},
		},
	}

	out := RenderHTML(res, "https://www.fotocasa.es/l", 15)
	if strings.Contains(out, "Pisos <baratos>") {
		t.Error("summary not escaped")
	}
	if !strings.Contains(out, "Pisos &lt;baratos&gt;") {
		t.Error("escaped summary missing")
	}
	if !strings.Contains(out, "Piso &lt;ático&gt;") {
		t.Error("escaped title missing")
	}
	if !strings.Contains(out, `href="https://x/1?a=b&amp;c=d"`) {
		t.Error("link href not escaped")
	}
	if !strings.Contains(out, "2 hab &amp; terraza") {
		t.Error("description not escaped")
	}
}

func TestRenderHTMLCapsWithMoreNote(t *testing.T) {
	out := RenderHTML(manyItems(20), "https://www.fotocasa.es/l", 15)
	if !strings.Contains(out, "... y 5 resultados más.") {
		t.Error("overflow note missing")
	}
	if !strings.Contains(out, `href="https://www.fotocasa.es/l"`) {
		t.Error("overflow note should link back to the live results")
	}
	if !strings.Contains(out, "(mostrando los primeros 15)") {
		t.Error("shown-count note missing")
	}
	if strings.Contains(out, "Piso 16") {
		t.Error("item beyond cap rendered")
	}
}

func TestRenderHTMLEmptyItems(t *testing.T) {
	res := &models.ExtractionResult{Summary: "Sin resultados"}
	out := RenderHTML(res, "https://www.fotocasa.es/l", 15)
	if out != "<p>Sin resultados</p>" {
		t.Errorf("empty-items render = %q", out)
	}
}

func TestRenderHTMLUnlinkedTitleStaysPlain(t *testing.T) {
	res := &models.ExtractionResult{
		Summary:      "uno",
		TotalResults: 1,
		Items:        []models.ListingItem{{Title: "Piso sin enlace", Description: "d", Price: "100.000 €"}},
	}
	out := RenderHTML(res, "https://www.fotocasa.es/l", 15)
	if strings.Contains(out, `<a href="">`) {
		t.Error("empty link rendered as anchor")
	}
	if !strings.Contains(out, "Piso sin enlace") {
		t.Error("title missing")
	}
}
