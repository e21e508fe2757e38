package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/docrat/docrat/agent/internal/config"
	"github.com/docrat/docrat/agent/internal/sensors"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("docrat-agent starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	level.Set(parseLevel(cfg.Agent.LogLevel))
	slog.Info("config loaded",
		"listen", cfg.Agent.Listen,
		"sensors", len(cfg.Agent.Sensors),
		"tick_interval", cfg.Agent.TickInterval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sim := sensors.New(cfg.Agent.Sensors, cfg.Agent.Seed)
	go sim.Run(ctx, cfg.Agent.TickInterval)

	// Hot reload swaps the sensor set; the tick interval needs a restart.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			level.Set(parseLevel(updated.Agent.LogLevel))
			sim.Reconfigure(updated.Agent.Sensors)
		}); err != nil {
			slog.Warn("config watcher stopped", "err", err)
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", sim)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok")) //nolint:errcheck
	})

	srv := &http.Server{
		Addr:              cfg.Agent.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("metrics endpoint listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("docrat-agent shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	srv.Shutdown(shutdownCtx) //nolint:errcheck
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
