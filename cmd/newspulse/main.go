package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/newspulse/backend/internal/app"
	"github.com/newspulse/backend/internal/config"
	"github.com/newspulse/backend/internal/logger"
	"github.com/newspulse/backend/internal/metrics"
	"github.com/newspulse/backend/internal/poller"
)

func main() {
	// Local runs keep settings in .env; deployments use real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Init(false)
		logger.Error("Configuration invalid", "error", err.Error())
		os.Exit(1)
	}
	logger.Init(cfg.Debug)

	if err := run(cfg); err != nil {
		logger.Error("Startup failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	var srv *http.Server
	if os.Getenv("ENABLE_HTTP") != "false" {
		srv = startHTTPServer(cfg.HTTPAddr, application)
	}

	refresh := func() {
		if _, err := application.RunOnce(ctx); err != nil {
			if errors.Is(err, app.ErrNoContent) {
				logger.Warn("Refresh produced no digest")
				return
			}
			logger.Error("Refresh failed", "error", err.Error())
		}
	}

	// First digest right away; the poller takes over from here.
	refresh()

	p := poller.New(cfg.PollInterval)
	if err := p.Start(refresh); err != nil {
		return err
	}
	defer p.Stop()

	<-ctx.Done()
	logger.Info("Shutting down")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown failed", "error", err.Error())
		}
	}
	return nil
}

func startHTTPServer(addr string, application *app.App) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/metrics", metricsHandler(application))
	mux.HandleFunc("/api/digest", digestHandler(application))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err.Error())
		}
	}()
	return srv
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")
	status := "ok"
	if healthy, _ := stats["is_healthy"].(bool); !healthy {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func metricsHandler(application *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := metrics.Global.GetStats()
		stats["ai"] = application.LimiterStats()
		stats["seen_store"] = application.StoreStats(r.Context())

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	}
}

func digestHandler(application *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		digest := application.Latest()

		w.Header().Set("Content-Type", "application/json")
		if digest == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"error": "no digest published yet"})
			return
		}
		json.NewEncoder(w).Encode(digest)
	}
}
