package artifacts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewSinkCreatesIsolatedDirs(t *testing.T) {
	base := t.TempDir()

	a := NewSink(base)
	b := NewSink(base)
	if a == nil || b == nil {
		t.Fatal("sinks should be created under a writable base")
	}
	if a.ID() == b.ID() {
		t.Error("request IDs must be unique")
	}
	if a.dir == b.dir {
		t.Error("request directories must be isolated")
	}

	info, err := os.Stat(a.dir)
	if err != nil || !info.IsDir() {
		t.Errorf("sink directory not created: %v", err)
	}
}

func TestWriteFileAndExisting(t *testing.T) {
	s := NewSink(t.TempDir())

	s.WriteFile(SearchFailedHTML, []byte("<html></html>"))
	s.WriteFile(ContentDebugTXT, []byte("debug"))

	got := s.Existing()
	if len(got) != 2 {
		t.Fatalf("Existing() = %d files, want 2: %v", len(got), got)
	}
	for _, p := range got {
		if !strings.HasPrefix(p, s.dir) {
			t.Errorf("artifact path %q escapes sink dir %q", p, s.dir)
		}
		if _, err := os.Stat(p); err != nil {
			t.Errorf("listed artifact missing on disk: %v", err)
		}
	}
}

func TestPathJoinsName(t *testing.T) {
	s := NewSink(t.TempDir())
	want := filepath.Join(s.dir, ResultsPNG)
	if got := s.Path(ResultsPNG); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestWriteContentDebug(t *testing.T) {
	s := NewSink(t.TempDir())
	s.WriteContentDebug("https://www.fotocasa.es/l", 12345,
		[]string{"https://x/1", "https://x/2"}, "truncated text body")

	data, err := os.ReadFile(s.Path(ContentDebugTXT))
	if err != nil {
		t.Fatalf("content debug not written: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"URL: https://www.fotocasa.es/l",
		"Visible text length: 12345",
		"Harvested links: 2",
		"https://x/1",
		"truncated text body",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content debug missing %q", want)
		}
	}
}

func TestNilSinkIsNoOp(t *testing.T) {
	var s *Sink

	// None of these may panic.
	s.WriteFile("x.txt", []byte("x"))
	s.WriteScreenshot(ResultsPNG, nil)
	s.WriteContentDebug("u", 0, nil, "")

	if s.ID() != "" {
		t.Errorf("nil sink ID = %q", s.ID())
	}
	if s.Path("x") != "" {
		t.Errorf("nil sink Path = %q", s.Path("x"))
	}
	if got := s.Existing(); got != nil {
		t.Errorf("nil sink Existing = %v", got)
	}
}
