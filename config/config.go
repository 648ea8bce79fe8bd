package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	LLM       LLMConfig
	Mail      MailConfig
	Artifacts ArtifactsConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 3000
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the per-attempt Rod browser sessions.
type BrowserConfig struct {
	// Headless is the resolved headless policy: an explicit HEADLESS env
	// override wins, otherwise headless is forced when no DISPLAY surface
	// exists (containers), otherwise the browser runs visible.
	Headless bool

	// BraveBin is the Brave executable path. Empty means Brave is
	// unavailable and requests for it fall back to chromium.
	BraveBin string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: true
}

// ScraperConfig controls navigation, capture and retry behavior.
type ScraperConfig struct {
	// NavTimeout bounds the initial navigation plus settle wait.
	NavTimeout time.Duration // default: 30s

	// FallbackNavTimeout bounds the direct-URL fallback navigation.
	FallbackNavTimeout time.Duration // default: 20s

	// ListingWaitTimeout bounds the wait for listing cards to appear
	// after the direct-URL fallback.
	ListingWaitTimeout time.Duration // default: 10s

	// ProbeTimeout bounds each individual selector visibility probe.
	ProbeTimeout time.Duration // default: 1s

	// SuggestionTimeout bounds the autocomplete suggestion probe.
	SuggestionTimeout time.Duration // default: 1500ms

	// ScrollSteps is the number of progressive scroll iterations used to
	// trigger lazy-loaded listings.
	ScrollSteps int // default: 15

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int // default: 2

	// RetryBackoff is the pause between teardown and the next attempt.
	RetryBackoff time.Duration // default: 3s

	// TextCap is the visible-text truncation applied before prompting.
	TextCap int // default: 20000

	// MinContentLen is the visible-text length below which the HTML is
	// persisted for debugging.
	MinContentLen int // default: 500

	// MaxItems caps the listings rendered in content and mail views.
	MaxItems int // default: 15
}

// LLMConfig controls the completion-service collaborator.
type LLMConfig struct {
	APIKey  string
	Model   string // default: "gpt-4o-mini"
	BaseURL string // default: "https://api.openai.com/v1"
}

// Configured reports whether the completion service can be called.
func (c LLMConfig) Configured() bool { return c.APIKey != "" }

// MailConfig controls the SMTP notification collaborator.
type MailConfig struct {
	Host string
	Port int // default: 587
	User string
	Pass string

	// DebugTo receives the debug-artifact mail after each scrape.
	// Defaults to User when unset.
	DebugTo string
}

// Configured reports whether mail can be sent.
func (c MailConfig) Configured() bool {
	return c.Host != "" && c.User != "" && c.Pass != ""
}

// ArtifactsConfig controls the debug artifact sink.
type ArtifactsConfig struct {
	// Dir is the base directory for per-request artifact directories.
	Dir string // default: os.TempDir()/casawatch
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 1
	Burst             int     // default: 3
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("CASAWATCH_HOST", "0.0.0.0"),
			Port: envIntOr("PORT", 3000),
			Mode: envOr("CASAWATCH_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:  ResolveHeadless(os.Getenv("HEADLESS"), os.Getenv("DISPLAY")),
			BraveBin:  os.Getenv("BRAVE_PATH"),
			NoSandbox: envBoolOr("CASAWATCH_NO_SANDBOX", true),
		},
		Scraper: ScraperConfig{
			NavTimeout:         envDurationOr("CASAWATCH_NAV_TIMEOUT", 30*time.Second),
			FallbackNavTimeout: envDurationOr("CASAWATCH_FALLBACK_NAV_TIMEOUT", 20*time.Second),
			ListingWaitTimeout: envDurationOr("CASAWATCH_LISTING_WAIT", 10*time.Second),
			ProbeTimeout:       envDurationOr("CASAWATCH_PROBE_TIMEOUT", time.Second),
			SuggestionTimeout:  envDurationOr("CASAWATCH_SUGGESTION_TIMEOUT", 1500*time.Millisecond),
			ScrollSteps:        envIntOr("CASAWATCH_SCROLL_STEPS", 15),
			MaxRetries:         envIntOr("CASAWATCH_MAX_RETRIES", 2),
			RetryBackoff:       envDurationOr("CASAWATCH_RETRY_BACKOFF", 3*time.Second),
			TextCap:            envIntOr("CASAWATCH_TEXT_CAP", 20000),
			MinContentLen:      envIntOr("CASAWATCH_MIN_CONTENT", 500),
			MaxItems:           envIntOr("CASAWATCH_MAX_ITEMS", 15),
		},
		LLM: LLMConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   envOr("LLM_MODEL", "gpt-4o-mini"),
			BaseURL: envOr("LLM_BASE_URL", "https://api.openai.com/v1"),
		},
		Mail: MailConfig{
			Host:    os.Getenv("EMAIL_HOST"),
			Port:    envIntOr("EMAIL_PORT", 587),
			User:    os.Getenv("EMAIL_USER"),
			Pass:    os.Getenv("EMAIL_PASS"),
			DebugTo: envOr("EMAIL_DEBUG_TO", os.Getenv("EMAIL_USER")),
		},
		Artifacts: ArtifactsConfig{
			Dir: envOr("CASAWATCH_ARTIFACT_DIR", defaultArtifactDir()),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("CASAWATCH_RATE_RPS", 1.0),
			Burst:             envIntOr("CASAWATCH_RATE_BURST", 3),
		},
		Log: LogConfig{
			Level:  envOr("CASAWATCH_LOG_LEVEL", "info"),
			Format: envOr("CASAWATCH_LOG_FORMAT", "json"),
		},
	}
}

// ResolveHeadless implements the headless policy: an explicit override wins,
// otherwise headless when no display surface is available.
func ResolveHeadless(override, display string) bool {
	if override != "" {
		switch strings.ToLower(override) {
		case "1", "true", "yes":
			return true
		default:
			return false
		}
	}
	return display == ""
}

func defaultArtifactDir() string {
	return os.TempDir() + string(os.PathSeparator) + "casawatch"
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
