// Package extract turns captured page text into structured listings through
// a completion-service call, and renders the validated result. The service
// sits behind the narrow Completer interface so tests can substitute a
// deterministic stub.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/casawatch/casawatch/models"
)

// Completer is the completion-service collaborator: one prompt in, one text
// response out, no streaming.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Engine builds bounded prompts and validates completion responses.
type Engine struct {
	completer Completer
	textCap   int
	maxItems  int
}

// NewEngine creates an extraction engine. textCap bounds the prompt text,
// maxItems caps both the harvested links and the extraction instruction.
func NewEngine(c Completer, textCap, maxItems int) *Engine {
	return &Engine{completer: c, textCap: textCap, maxItems: maxItems}
}

// Input is one extraction request: captured visible text, the ordered
// harvested listing links, and the original search context.
type Input struct {
	Text       string
	Links      []string
	SearchTerm string
	URL        string
}

// Extract invokes the completion service and parses the structured result.
// Parse failures and contentless responses return retryable errors; the
// orchestrator owns the retry decision.
func (e *Engine) Extract(ctx context.Context, in Input) (*models.ExtractionResult, error) {
	raw, err := e.completer.Complete(ctx, e.buildPrompt(in))
	if err != nil {
		return nil, err
	}

	result, err := ParseResult(raw)
	if err != nil {
		return nil, err
	}

	if len(result.Items) == 0 && result.Summary == "" {
		return nil, models.NewScrapeError(models.ErrCodeEmptyResult,
			"completion response is well-formed but contains no results", nil)
	}

	return result, nil
}

// buildPrompt assembles the extraction prompt: truncated page text, the
// labeled link block for positional alignment, and the JSON-only
// instructions.
func (e *Engine) buildPrompt(in Input) string {
	text := TruncateText(in.Text, e.textCap)

	if len(in.Links) > 0 {
		var b strings.Builder
		b.WriteString(text)
		b.WriteString("\n\nENLACES DE ANUNCIOS ENCONTRADOS:\n")
		for i, link := range in.Links {
			if i >= e.maxItems {
				break
			}
			b.WriteString("- ")
			b.WriteString(link)
			b.WriteString("\n")
		}
		text = b.String()
	}

	searchContext := ""
	if strings.TrimSpace(in.SearchTerm) != "" {
		searchContext = fmt.Sprintf(
			"Esta es una página de resultados de Fotocasa con viviendas en venta en: %q\n",
			in.SearchTerm)
	}

	return fmt.Sprintf(`Analiza el siguiente contenido de una página de FOTOCASA (portal inmobiliario español): %s
%s
Contenido de la página:
%s

CONTEXTO: Esto es una página de resultados de búsqueda de Fotocasa. Cada anuncio de vivienda contiene:
- Dirección o ubicación del inmueble
- Precio (ejemplo: "200.000 €")
- Características: número de habitaciones, baños, metros cuadrados (m²)
- Descripción breve

Tu tarea es extraer TODOS los anuncios de viviendas que encuentres en el texto.

IMPORTANTE: Responde EXCLUSIVAMENTE con un JSON válido, sin markdown, sin `+"```json"+`, sin texto adicional.

El JSON debe tener esta estructura exacta:
{
  "summary": "Resumen breve de lo encontrado (1-2 frases)",
  "total_results": 0,
  "items": [
    {
      "title": "Título o dirección del anuncio/elemento",
      "link": "URL directa si está disponible, o vacío",
      "description": "Descripción breve: habitaciones, baños, superficie, planta, características principales",
      "price": "Precio tal como aparece (ej: 510.000 €)"
    }
  ]
}

Reglas:
- Extrae TODOS los anuncios/elementos/listados que encuentres en la página (máximo %d)
- IMPORTANTE: Los enlaces están en la sección "ENLACES DE ANUNCIOS ENCONTRADOS" al final del texto
- Asigna los enlaces a los anuncios en el mismo orden (primer anuncio = primer enlace, segundo = segundo, etc.)
- Si hay más anuncios que enlaces, deja el "link" vacío para los restantes
- NO incluyas info de cookies, banners o elementos de navegación`,
		in.URL, searchContext, text, e.maxItems)
}

// ParseResult strips any surrounding code-fence markers and parses the
// completion response into an ExtractionResult. A malformed response is a
// retryable extraction error.
func ParseResult(raw string) (*models.ExtractionResult, error) {
	cleaned := StripFences(raw)

	var result models.ExtractionResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeExtractionParse,
			"completion response is not valid JSON", err)
	}

	if result.TotalResults <= 0 {
		result.TotalResults = len(result.Items)
	}
	return &result, nil
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag, from the raw completion text.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// TruncateText caps text at n bytes so the prompt stays within the
// completion service's context budget.
func TruncateText(text string, n int) string {
	if n <= 0 || len(text) <= n {
		return text
	}
	return text[:n]
}
