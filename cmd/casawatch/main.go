package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/casawatch/casawatch/api"
	"github.com/casawatch/casawatch/config"
	"github.com/casawatch/casawatch/extract"
	"github.com/casawatch/casawatch/llm"
	"github.com/casawatch/casawatch/notify"
	"github.com/casawatch/casawatch/scraper"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	initLogger(cfg.Log)

	if !cfg.LLM.Configured() {
		slog.Warn("OPENAI_API_KEY not set, scrape requests will fail at extraction")
	}
	if !cfg.Mail.Configured() {
		slog.Warn("mail not configured, /api/email is disabled and no debug mail is sent")
	}

	client := llm.NewClient(nil, cfg.LLM)
	engine := extract.NewEngine(client, cfg.Scraper.TextCap, cfg.Scraper.MaxItems)
	s := scraper.New(cfg.Browser, cfg.Scraper, scraper.Fotocasa(), engine)
	mailer := notify.NewMailer(cfg.Mail)

	router := api.NewRouter(cfg, s, mailer)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server listening",
			"addr", addr,
			"headless", cfg.Browser.Headless,
			"braveAvailable", cfg.Browser.BraveBin != "",
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}

// initLogger sets the process-wide slog default from config.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}
