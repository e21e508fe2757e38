package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/docrat/docrat/server/internal/api"
	"github.com/docrat/docrat/server/internal/auth"
	"github.com/docrat/docrat/server/internal/config"
	"github.com/docrat/docrat/server/internal/insight"
	"github.com/docrat/docrat/server/internal/reading"
	"github.com/docrat/docrat/server/internal/scheduler"
	"github.com/docrat/docrat/server/internal/source"
	"github.com/docrat/docrat/server/internal/store"
	"github.com/docrat/docrat/server/internal/summarize"
	"github.com/docrat/docrat/server/internal/ws"
	"github.com/docrat/docrat/server/internal/youtube"
)

// snapshotService is the gRPC health service name that tracks data freshness.
const snapshotService = "docrat.Snapshot"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	watch := flag.Bool("watch", true, "reload scheduler and insight settings when the config file changes")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("docrat-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	level.Set(parseLevel(cfg.Server.LogLevel))

	slog.Info("config loaded",
		"addr", cfg.Server.Addr(),
		"grpc_port", cfg.Server.GRPCPort,
		"mode", cfg.Server.Scheduler.Mode,
		"min_interval", cfg.Server.Scheduler.MinInterval,
		"max_interval", cfg.Server.Scheduler.MaxInterval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rng := source.NewRand(time.Now().UnixNano())

	// Snapshot store, seeded with a day of history for the AQI chart.
	st := store.New()
	st.SeedHistory(source.SynthHistory(rng, store.HistoryLen, time.Now()))

	hub := ws.New(st, cfg.Server.AllowedOrigins)
	engine := insight.New(cfg.Server.Insights)

	sched := scheduler.New(cfg.Server.Scheduler, st, hub, rng)
	srcs := cfg.Server.Sources
	sched.Use(source.NewAirQuality(srcs.AirQuality), source.NewSynth(reading.KindAirQuality, rng))
	sched.Use(source.NewNews(srcs.News), source.NewSynth(reading.KindNews, rng))
	sched.Use(source.NewScore(rng), source.NewSynth(reading.KindScore, rng))
	sched.Use(source.NewInsights(rng.Intn(64)), source.NewSynth(reading.KindInsight, rng))
	sched.Use(source.NewSensors(srcs.Sensors), source.NewSynth(reading.KindSensors, rng))
	sched.SetEvaluator(engine)
	sched.Prime(ctx)

	sum := summarize.New(cfg.Server.Summarizer)
	yt, err := youtube.NewClient(ctx, cfg.Server.YouTube, sum)
	if err != nil {
		slog.Error("failed to create YouTube client", "err", err)
		os.Exit(1)
	}
	slog.Info("meeting extraction ready", "youtube_live", yt.Live(), "summaries_live", sum.Enabled())

	go hub.Run(ctx)
	go sched.Run(ctx)

	if *watch {
		go func() {
			err := config.Watch(ctx, *configPath, func(c *config.Config) {
				level.Set(parseLevel(c.Server.LogLevel))
				sched.Reconfigure(c.Server.Scheduler)
				engine.Reload(c.Server.Insights)
			})
			if err != nil {
				slog.Warn("config watch disabled", "path", *configPath, "err", err)
			}
		}()
	}

	authCfg := cfg.Server.Auth
	if authCfg.Key() == "" {
		slog.Info("API key not set; gRPC health and extraction are open")
	}

	// Optional gRPC health service for orchestrators.
	var grpcSrv *grpc.Server
	if cfg.Server.GRPCPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
		if err != nil {
			slog.Error("failed to listen on gRPC port", "port", cfg.Server.GRPCPort, "err", err)
			os.Exit(1)
		}
		hs := health.NewServer()
		hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		grpcSrv = grpc.NewServer(
			grpc.UnaryInterceptor(auth.UnaryAPIKey(authCfg.Header, authCfg.Key())),
			grpc.StreamInterceptor(auth.StreamAPIKey(authCfg.Header, authCfg.Key())),
		)
		healthpb.RegisterHealthServer(grpcSrv, hs)
		go reportFreshness(ctx, st, sched, hs)

		go func() {
			slog.Info("gRPC health listening", "port", cfg.Server.GRPCPort)
			if err := grpcSrv.Serve(lis); err != nil {
				slog.Error("gRPC server stopped", "err", err)
			}
		}()
	}

	// Combined HTTP server: REST API, metrics and the WebSocket channel.
	rest := api.New(api.Deps{
		Store:     st,
		Hub:       hub,
		Scheduler: sched,
		Insights:  engine,
		Meetings:  yt,
	})
	httpMux := http.NewServeMux()
	httpMux.Handle("/ws", hub)
	httpMux.Handle("/api", rest)
	httpMux.Handle("/api/", rest)
	httpMux.Handle("/api/extract", auth.RequireAPIKey(authCfg.Header, authCfg.Key(), rest))
	httpMux.Handle("/health", rest)
	httpMux.Handle("/metrics", rest)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           httpMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("docrat-server shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
}

// reportFreshness marks the snapshot service NOT_SERVING while any kind is
// older than the scheduler expects.
func reportFreshness(ctx context.Context, st *store.Store, sched *scheduler.Scheduler, hs *health.Server) {
	t := time.NewTicker(30 * time.Second)
	defer t.Stop()
	for {
		status := healthpb.HealthCheckResponse_SERVING
		if stale := st.StaleBy(sched.MaxAge); len(stale) > 0 || st.Count() == 0 {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus(snapshotService, status)

		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-t.C:
		}
	}
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
