// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Ingest counters
	MessagesSeen      prometheus.Counter
	MessagesDiscarded prometheus.Counter
	FanoutWrites      prometheus.Counter
	FanoutFailures    prometheus.Counter

	// Reconciler counters
	ReconcilerPasses     prometheus.Counter
	ReconcilerReconnects prometheus.Counter
	ReconcilerSkips      prometheus.Counter

	// Gauges
	ConnectedChannelsGauge prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		MessagesSeen = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_messages_seen_total", Help: "Inbound chat events received from the transport"})
		MessagesDiscarded = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_messages_discarded_total", Help: "Inbound chat events dropped (self-echo, no interested tenants, or tenant resolution failure)"})
		FanoutWrites = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_fanout_writes_total", Help: "Per-tenant message documents persisted"})
		FanoutFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_fanout_failures_total", Help: "Per-tenant message inserts that failed"})
		ReconcilerPasses = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_reconciler_passes_total", Help: "Reconciliation passes run"})
		ReconcilerReconnects = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_reconciler_reconnects_total", Help: "Full reconnects triggered by a changed channel set"})
		ReconcilerSkips = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_reconciler_skips_total", Help: "Passes skipped because the registry read failed"})
		ConnectedChannelsGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "chat_connected_channels", Help: "Channels the live connection is subscribed to"})
	})
}

// SetConnectedChannels records the size of the subscribed channel set.
func SetConnectedChannels(n int) {
	if ConnectedChannelsGauge != nil {
		ConnectedChannelsGauge.Set(float64(n))
	}
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding correlation id (if absent) and the id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
