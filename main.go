// Command backend is the main entrypoint for the chatmood API and background workers.
// It:
//   - Loads configuration and initializes structured logging.
//   - Connects to MongoDB and ensures the indexes the service relies on.
//   - Starts the connection reconciler, which keeps the single Twitch IRC
//     connection subscribed to the union of all tenants' tracked channels
//     and fans every inbound message out to the interested tenants.
//   - Exposes the HTTP API with health, status, metrics, channel tracking,
//     and analytics endpoints.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // G108: pprof endpoints enabled only when ENABLE_PPROF=1
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/onnwee/chatmood/backend/analytics"
	"github.com/onnwee/chatmood/backend/chat"
	"github.com/onnwee/chatmood/backend/config"
	"github.com/onnwee/chatmood/backend/db"
	"github.com/onnwee/chatmood/backend/registry"
	"github.com/onnwee/chatmood/backend/server"
	"github.com/onnwee/chatmood/backend/store"
	"github.com/onnwee/chatmood/backend/telemetry"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load(".env")

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		// unknown level -> keep info but note once using temporary logger
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()), slog.String("format", map[bool]string{true: "json", false: "text"}[format == "json"]))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("chatmood", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Mongo. An unreachable store at startup is fatal; everything downstream
	// depends on it.
	database, err := db.Connect(ctx)
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := db.Disconnect(context.Background(), database); err != nil {
			slog.Error("failed to close database", slog.Any("err", err))
		}
	}()

	slog.Info("ensuring indexes", slog.String("component", "db"))
	if err := db.EnsureIndexes(ctx, database); err != nil {
		slog.Error("failed to ensure indexes", slog.Any("err", err))
		os.Exit(1)
	}

	// Wire the core: registry -> reconciler -> pipeline -> store.
	st := store.New(database)
	reg := registry.New(st)
	pipeline := chat.NewPipeline(st, st)
	dial := chat.NewTwitchDialer(ctx, cfg, pipeline)
	reconciler := chat.NewReconciler(reg, dial, cfg.ReconcileInterval)
	go reconciler.Run(ctx)

	aggregator := analytics.NewAggregator(st, cfg.ActivityWindow)

	// Enable pprof profiling endpoints in debug mode (ENABLE_PPROF=1)
	if os.Getenv("ENABLE_PPROF") == "1" {
		pprofAddr := os.Getenv("PPROF_ADDR")
		if pprofAddr == "" {
			pprofAddr = "localhost:6060"
		}
		go func() {
			slog.Info("pprof profiling enabled", slog.String("addr", pprofAddr))
			// Use an http.Server with timeouts to satisfy G114 and avoid DoS risks
			srv := &http.Server{
				Addr:              pprofAddr,
				Handler:           nil, // default mux exposes /debug/pprof
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      10 * time.Second,
				IdleTimeout:       60 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil {
				slog.Error("pprof server error", slog.Any("err", err))
			}
		}()
	}

	// HTTP server
	deps := server.Deps{
		Store:      st,
		Registry:   reg,
		Aggregator: aggregator,
		Resolver:   st,
		Reconciler: reconciler,
		Ping: func(pingCtx context.Context) error {
			return database.Client().Ping(pingCtx, readpref.Primary())
		},
	}
	go func() {
		if err := server.Start(ctx, deps, cfg.HTTPAddr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal, then let in-flight fan-out writes finish
	// before the deferred disconnect closes the client.
	<-ctx.Done()
	slog.Info("shutting down")
	pipeline.Drain()
	slog.Info("fan-out drained")
}
