package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onnwee/chatmood/backend/registry"
	"github.com/onnwee/chatmood/backend/sentiment"
	"github.com/onnwee/chatmood/backend/store"
	"github.com/onnwee/chatmood/backend/telemetry"
)

// Event is one inbound chat line as delivered by the transport.
type Event struct {
	Channel        string
	Username       string
	DisplayName    string
	ExternalUserID string
	Text           string
	Badges         map[string]int
	Color          string
	Self           bool
}

// TenantSource resolves which tenants track a given normalized channel.
type TenantSource interface {
	TenantsTracking(ctx context.Context, channel string) ([]primitive.ObjectID, error)
}

// MessageWriter persists one chat message document.
type MessageWriter interface {
	InsertMessage(ctx context.Context, msg store.ChatMessage) error
}

// Pipeline turns one inbound event into one stored message per interested
// tenant. Invocations are independent and safe to run concurrently; the only
// shared state is the persistence layer.
type Pipeline struct {
	tenants  TenantSource
	writer   MessageWriter
	now      func() time.Time
	inflight sync.WaitGroup
}

// NewPipeline builds a fan-out pipeline.
func NewPipeline(tenants TenantSource, writer MessageWriter) *Pipeline {
	return &Pipeline{
		tenants: tenants,
		writer:  writer,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Dispatch handles one event on its own goroutine. The write context is
// detached from the caller's cancellation: a shutdown must not abort inserts
// that are already in flight. Drain waits for them instead.
func (p *Pipeline) Dispatch(ctx context.Context, ev Event) {
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		p.Handle(context.WithoutCancel(ctx), ev)
	}()
}

// Drain blocks until every dispatched event has been fully handled.
func (p *Pipeline) Drain() {
	p.inflight.Wait()
}

// Handle processes one event: score, resolve interested tenants, write one
// record per tenant. A zero-tenant event is silently dropped; the subscribed
// channel set can trail a just-removed tracking entry by up to one
// reconciliation interval, so this is expected. Per-tenant writes run
// concurrently and fail independently.
func (p *Pipeline) Handle(ctx context.Context, ev Event) {
	telemetry.MessagesSeen.Inc()
	if ev.Self {
		telemetry.MessagesDiscarded.Inc()
		return
	}

	score, label := sentiment.Analyze(ev.Text)
	channel := registry.Normalize(ev.Channel)

	tenants, err := p.tenants.TenantsTracking(ctx, channel)
	if err != nil {
		slog.Warn("pipeline: resolve tenants failed; dropping event",
			slog.String("channel", channel), slog.Any("err", err))
		telemetry.MessagesDiscarded.Inc()
		return
	}
	if len(tenants) == 0 {
		telemetry.MessagesDiscarded.Inc()
		return
	}

	username := ev.DisplayName
	if username == "" {
		username = ev.Username
	}
	now := p.now()

	var wg sync.WaitGroup
	for _, tenantID := range tenants {
		wg.Add(1)
		go func(tenantID primitive.ObjectID) {
			defer wg.Done()
			msg := store.ChatMessage{
				TenantID:       tenantID,
				Channel:        channel,
				Username:       username,
				ExternalUserID: ev.ExternalUserID,
				Message:        ev.Text,
				Sentiment:      label,
				SentimentScore: score,
				Timestamp:      now,
				Badges:         ev.Badges,
				Color:          ev.Color,
			}
			if err := p.writer.InsertMessage(ctx, msg); err != nil {
				slog.Error("pipeline: insert failed for tenant",
					slog.String("tenant", tenantID.Hex()),
					slog.String("channel", channel),
					slog.Any("err", err))
				telemetry.FanoutFailures.Inc()
				return
			}
			telemetry.FanoutWrites.Inc()
		}(tenantID)
	}
	wg.Wait()
}
