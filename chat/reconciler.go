package chat

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/onnwee/chatmood/backend/telemetry"
)

// State describes the reconciler's view of the external connection.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
)

// Conn is one live subscription to the chat network. Start begins connecting
// asynchronously; the transport handles its own retries after that. Close
// tears the connection down.
type Conn interface {
	Start(channels []string)
	Close() error
	Connected() bool
}

// DialFunc produces a fresh, unconnected Conn.
type DialFunc func() Conn

// ChannelSource yields the set of channels the connection must cover.
type ChannelSource interface {
	AllRequiredChannels(ctx context.Context) ([]string, error)
}

// DefaultReconcileInterval is how often the required channel set is
// recomputed when RECONCILE_INTERVAL is not configured.
const DefaultReconcileInterval = 30 * time.Second

// Reconciler keeps the single IRC connection subscribed to exactly the union
// of all tenants' tracked channels. The mutex serializes reconciliation
// passes: two passes can never race to create two live connections.
type Reconciler struct {
	source   ChannelSource
	dial     DialFunc
	interval time.Duration

	mu       sync.Mutex
	conn     Conn
	channels []string

	// status holds a statusSnapshot published at every transition, so
	// Status never contends with an in-progress pass and can observe the
	// teardown window.
	status atomic.Value
}

// statusSnapshot is the externally visible connection state.
type statusSnapshot struct {
	conn     Conn
	tearing  bool
	channels []string
}

// NewReconciler builds a reconciler. A zero interval selects the default.
func NewReconciler(source ChannelSource, dial DialFunc, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	return &Reconciler{source: source, dial: dial, interval: interval}
}

// Run reconciles immediately, then on every tick until the context is
// canceled, at which point the live connection is closed.
func (r *Reconciler) Run(ctx context.Context) {
	slog.Info("reconciler started", slog.Duration("interval", r.interval))
	r.Reconcile(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return
		case <-ticker.C:
			r.Reconcile(ctx)
		}
	}
}

// Reconcile runs one pass: recompute the required set, compare it to the
// current subscription ignoring order, and reconnect only when they differ.
// A registry read failure skips the pass and keeps the previous connection.
func (r *Reconciler) Reconcile(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	telemetry.ReconcilerPasses.Inc()

	required, err := r.source.AllRequiredChannels(ctx)
	if err != nil {
		slog.Warn("reconciler: channel set read failed; keeping current connection", slog.Any("err", err))
		telemetry.ReconcilerSkips.Inc()
		return
	}

	if sameSet(required, r.channels) {
		return
	}

	slog.Info("reconciler: channel set changed",
		slog.Any("current", r.channels),
		slog.Any("required", required))

	// Best-effort teardown; a close error must not block the replacement.
	if r.conn != nil {
		r.publish(r.conn, true, r.channels)
		if err := r.conn.Close(); err != nil {
			slog.Warn("reconciler: close previous connection", slog.Any("err", err))
		}
		r.conn = nil
	}

	if len(required) == 0 {
		r.channels = nil
		r.publish(nil, false, nil)
		telemetry.SetConnectedChannels(0)
		slog.Info("reconciler: no channels required; staying disconnected")
		return
	}

	conn := r.dial()
	conn.Start(required)
	r.conn = conn
	r.channels = required
	r.publish(conn, false, required)
	telemetry.ReconcilerReconnects.Inc()
	telemetry.SetConnectedChannels(len(required))
}

// Status reports the connection state and the currently subscribed channels.
// It reads the last published snapshot, so it stays responsive while a pass
// is tearing a connection down.
func (r *Reconciler) Status() (State, []string) {
	snap, _ := r.status.Load().(statusSnapshot)
	channels := make([]string, len(snap.channels))
	copy(channels, snap.channels)
	switch {
	case snap.tearing:
		return StateReconnecting, channels
	case snap.conn == nil:
		return StateDisconnected, channels
	case snap.conn.Connected():
		return StateConnected, channels
	default:
		return StateConnecting, channels
	}
}

func (r *Reconciler) publish(conn Conn, tearing bool, channels []string) {
	r.status.Store(statusSnapshot{conn: conn, tearing: tearing, channels: channels})
}

func (r *Reconciler) shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			slog.Warn("reconciler: close on shutdown", slog.Any("err", err))
		}
		r.conn = nil
	}
	r.channels = nil
	r.publish(nil, false, nil)
	telemetry.SetConnectedChannels(0)
	slog.Info("reconciler stopped")
}

// sameSet reports order-independent equality of two channel lists. Inputs
// are already normalized and duplicate-free.
func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, ch := range a {
		seen[ch] = struct{}{}
	}
	for _, ch := range b {
		if _, ok := seen[ch]; !ok {
			return false
		}
	}
	return true
}
