// Package browser owns the per-attempt browser lifecycle: one engine process,
// one isolated incognito context and one page, fingerprinted at creation time
// and torn down idempotently. Sessions are never shared or reused across
// attempts.
package browser

import (
	"log/slog"
	"net/url"
	"os"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/casawatch/casawatch/config"
	"github.com/casawatch/casawatch/models"
)

// Session owns one browser process, one incognito context and one page.
type Session struct {
	launcher  *launcher.Launcher
	browser   *rod.Browser
	incognito *rod.Browser
	page      *rod.Page

	// Engine is the engine actually launched ("chromium" or "brave");
	// it may differ from the requested one after a Brave fallback.
	Engine string

	closed atomic.Bool
}

// Open launches a fresh fingerprinted session for one attempt.
//
// Engine choice: "brave" requires a configured executable that exists on
// disk; otherwise chromium is launched and the fallback is reported in the
// log rather than silently swallowed.
func Open(cfg config.BrowserConfig, engineChoice string) (*Session, error) {
	bin, engine := resolveEngine(cfg, engineChoice)

	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)
	if bin != "" {
		l = l.Bin(bin)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("window-size"), "1920,1080")
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash,
			"failed to launch browser", err)
	}

	s := &Session{launcher: l, Engine: engine}

	s.browser = rod.New().ControlURL(controlURL)
	if err := s.browser.Connect(); err != nil {
		s.Close()
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash,
			"failed to connect to browser", err)
	}

	s.incognito, err = s.browser.Incognito()
	if err != nil {
		s.Close()
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash,
			"failed to create incognito context", err)
	}

	s.page, err = s.incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		s.Close()
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash,
			"failed to create page", err)
	}

	if err := s.applyFingerprint(DefaultProfile()); err != nil {
		s.Close()
		return nil, err
	}

	slog.Info("browser session opened", "engine", engine, "headless", cfg.Headless)
	return s, nil
}

// Page returns the session's single page.
func (s *Session) Page() *rod.Page { return s.page }

// Close releases page, context and engine process in that order. Every step
// is individually guarded so a failure releasing one resource does not
// prevent releasing the others, and Close is safe to call multiple times.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			slog.Warn("teardown: failed to close page", "error", err)
		}
	}
	if s.incognito != nil && s.incognito.BrowserContextID != "" {
		err := proto.TargetDisposeBrowserContext{
			BrowserContextID: s.incognito.BrowserContextID,
		}.Call(s.incognito)
		if err != nil {
			slog.Warn("teardown: failed to dispose incognito context", "error", err)
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			slog.Warn("teardown: failed to close browser", "error", err)
		}
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
	slog.Debug("browser session closed", "engine", s.Engine)
}

// resolveEngine maps the requested engine to an executable path, falling back
// to the bundled chromium when Brave is requested but unavailable.
func resolveEngine(cfg config.BrowserConfig, choice string) (bin, engine string) {
	if choice == models.BrowserBrave {
		if cfg.BraveBin != "" {
			if _, err := os.Stat(cfg.BraveBin); err == nil {
				return cfg.BraveBin, models.BrowserBrave
			}
		}
		slog.Warn("brave requested but unavailable, falling back to chromium",
			"bravePath", cfg.BraveBin)
	}
	return "", models.BrowserChromium
}

// applyFingerprint configures viewport, user agent, locale, timezone and
// geolocation, grants only the geolocation permission, and installs the
// init-time property overrides. All of this must happen before the first
// navigation — init scripts only affect documents created afterwards.
func (s *Session) applyFingerprint(p Profile) error {
	err := s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             p.ViewportWidth,
		Height:            p.ViewportHeight,
		DeviceScaleFactor: 1,
		Mobile:            false,
	})
	if err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserCrash,
			"failed to set viewport", err)
	}

	err = s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      p.UserAgent,
		AcceptLanguage: p.AcceptLanguage,
		Platform:       p.Platform,
	})
	if err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserCrash,
			"failed to set user agent", err)
	}

	if err := (proto.EmulationSetLocaleOverride{Locale: p.Locale}).Call(s.page); err != nil {
		slog.Warn("fingerprint: locale override failed", "error", err)
	}
	if err := (proto.EmulationSetTimezoneOverride{TimezoneID: p.TimezoneID}).Call(s.page); err != nil {
		slog.Warn("fingerprint: timezone override failed", "error", err)
	}

	lat, lon, acc := p.Latitude, p.Longitude, float64(1)
	err = proto.EmulationSetGeolocationOverride{
		Latitude:  &lat,
		Longitude: &lon,
		Accuracy:  &acc,
	}.Call(s.page)
	if err != nil {
		slog.Warn("fingerprint: geolocation override failed", "error", err)
	}

	err = proto.BrowserGrantPermissions{
		Permissions: []proto.BrowserPermissionType{proto.BrowserPermissionTypeGeolocation},
	}.Call(s.incognito)
	if err != nil {
		slog.Warn("fingerprint: permission grant failed", "error", err)
	}

	// Baseline stealth first, then the portal-specific overrides on top.
	if _, err := s.page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without baseline stealth",
			"error", err)
	}
	if _, err := s.page.EvalOnNewDocument(fingerprintJS); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserCrash,
			"failed to install fingerprint overrides", err)
	}

	return nil
}

// SetReferer injects a Google-search referer for the target host unless the
// page already carries one, making the first navigation look like an organic
// visit.
func (s *Session) SetReferer(targetURL string) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return
	}
	headers := proto.NetworkHeaders{
		"Referer": gson.New("https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())),
	}
	if err := (proto.NetworkSetExtraHTTPHeaders{Headers: headers}).Call(s.page); err != nil {
		slog.Debug("referer injection failed", "error", err)
	}
}
