// Package artifacts persists per-request debug artifacts (screenshots, HTML
// snapshots, prompt text) into an isolated directory named after the request
// ID. Every write is best-effort: a failed artifact write is logged and
// swallowed, never surfaced to the scrape itself.
package artifacts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/google/uuid"
)

// Well-known artifact names. The mail notifier attaches whichever of these
// exist after a scrape.
const (
	SearchFailedPNG  = "search_failed.png"
	SearchFailedHTML = "search_failed.html"
	LowContentHTML   = "low_content.html"
	ResultsPNG       = "results.png"
	ContentDebugTXT  = "content_debug.txt"
	CaptchaPNG       = "captcha.png"
)

// Sink writes artifacts for a single request. A nil Sink is valid and drops
// every write, which keeps callers free of nil checks.
type Sink struct {
	id  string
	dir string
}

// NewSink creates the per-request artifact directory under baseDir. Returns a
// nil (no-op) sink when the directory cannot be created.
func NewSink(baseDir string) *Sink {
	id := uuid.NewString()
	dir := filepath.Join(baseDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("could not create artifact directory", "dir", dir, "error", err)
		return nil
	}
	return &Sink{id: id, dir: dir}
}

// ID returns the request ID the sink's directory is named after.
func (s *Sink) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Path returns the absolute path for an artifact name, or "" on a nil sink.
func (s *Sink) Path(name string) string {
	if s == nil {
		return ""
	}
	return filepath.Join(s.dir, name)
}

// WriteFile persists raw bytes under the given artifact name.
func (s *Sink) WriteFile(name string, data []byte) {
	if s == nil {
		return
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Warn("could not write artifact", "path", path, "error", err)
		return
	}
	slog.Debug("artifact written", "path", path, "bytes", len(data))
}

// WriteScreenshot captures the current viewport and persists it as PNG.
func (s *Sink) WriteScreenshot(name string, page *rod.Page) {
	if s == nil || page == nil {
		return
	}
	data, err := page.Screenshot(false, nil)
	if err != nil {
		slog.Warn("could not capture screenshot", "name", name, "error", err)
		return
	}
	s.WriteFile(name, data)
}

// WriteContentDebug persists the exact text handed to the completion service
// along with the capture metadata, so a bad extraction can be replayed.
func (s *Sink) WriteContentDebug(url string, textLen int, links []string, truncated string) {
	if s == nil {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", url)
	fmt.Fprintf(&b, "Captured: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "Visible text length: %d\n", textLen)
	fmt.Fprintf(&b, "Harvested links: %d\n", len(links))
	for _, link := range links {
		fmt.Fprintf(&b, "  - %s\n", link)
	}
	b.WriteString("\n--- TEXT SENT TO EXTRACTION ---\n")
	b.WriteString(truncated)
	s.WriteFile(ContentDebugTXT, []byte(b.String()))
}

// Existing returns the absolute paths of the artifacts written so far, in
// lexical order.
func (s *Sink) Existing() []string {
	if s == nil {
		return nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		slog.Warn("could not list artifact directory", "dir", s.dir, "error", err)
		return nil
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, e.Name()))
	}
	return paths
}
