package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onnwee/chatmood/backend/sentiment"
	"github.com/onnwee/chatmood/backend/store"
	"github.com/onnwee/chatmood/backend/testutil"
)

func fixedNow(p *Pipeline, at time.Time) {
	p.now = func() time.Time { return at }
}

func TestHandleFansOutPerTenant(t *testing.T) {
	ctx := context.Background()
	channels := testutil.NewFakeChannelStore()
	writer := testutil.NewFakeMessageWriter()

	tenants := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}
	for _, id := range tenants {
		if err := channels.UpsertChannelSet(ctx, store.TrackedChannelSet{TenantID: id, Channels: []string{"xqc"}}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	p := NewPipeline(channels, writer)
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fixedNow(p, at)

	p.Handle(ctx, Event{
		Channel:     "#XQC",
		Username:    "viewer1",
		DisplayName: "Viewer1",
		Text:        "that was amazing",
		Color:       "#FF0000",
	})

	msgs := writer.Messages()
	if len(msgs) != len(tenants) {
		t.Fatalf("wrote %d messages, want %d (one per tenant)", len(msgs), len(tenants))
	}

	seen := make(map[primitive.ObjectID]bool)
	for _, msg := range msgs {
		if seen[msg.TenantID] {
			t.Errorf("tenant %s received two copies", msg.TenantID.Hex())
		}
		seen[msg.TenantID] = true

		if msg.Channel != "xqc" {
			t.Errorf("channel = %q, want normalized %q", msg.Channel, "xqc")
		}
		if msg.Message != "that was amazing" {
			t.Errorf("message = %q", msg.Message)
		}
		if msg.Username != "Viewer1" {
			t.Errorf("username = %q, want display name", msg.Username)
		}
		if msg.Sentiment != sentiment.Positive {
			t.Errorf("sentiment = %q, want %q", msg.Sentiment, sentiment.Positive)
		}
		if msg.SentimentScore != 4 {
			t.Errorf("score = %v, want 4", msg.SentimentScore)
		}
		if !msg.Timestamp.Equal(at) {
			t.Errorf("timestamp = %v, want %v", msg.Timestamp, at)
		}
	}
	for _, id := range tenants {
		if !seen[id] {
			t.Errorf("tenant %s received no copy", id.Hex())
		}
	}
}

func TestHandleDropsWhenNoTenantTracks(t *testing.T) {
	writer := testutil.NewFakeMessageWriter()
	p := NewPipeline(testutil.NewFakeChannelStore(), writer)

	p.Handle(context.Background(), Event{Channel: "nobody", Username: "x", Text: "hello"})

	if got := writer.Messages(); len(got) != 0 {
		t.Errorf("wrote %d messages for an untracked channel, want 0", len(got))
	}
}

func TestHandleDropsSelfEcho(t *testing.T) {
	ctx := context.Background()
	channels := testutil.NewFakeChannelStore()
	tenant := primitive.NewObjectID()
	if err := channels.UpsertChannelSet(ctx, store.TrackedChannelSet{TenantID: tenant, Channels: []string{"xqc"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	writer := testutil.NewFakeMessageWriter()
	p := NewPipeline(channels, writer)

	p.Handle(ctx, Event{Channel: "xqc", Username: "chatmoodbot", Text: "hi", Self: true})

	if got := writer.Messages(); len(got) != 0 {
		t.Errorf("wrote %d messages for a self echo, want 0", len(got))
	}
}

func TestHandleDropsOnTenantResolutionFailure(t *testing.T) {
	channels := testutil.NewFakeChannelStore()
	channels.Err = errors.New("mongo down")
	writer := testutil.NewFakeMessageWriter()
	p := NewPipeline(channels, writer)

	// Must not panic or write; the event is dropped.
	p.Handle(context.Background(), Event{Channel: "xqc", Username: "x", Text: "hello"})

	if got := writer.Messages(); len(got) != 0 {
		t.Errorf("wrote %d messages after a resolution failure, want 0", len(got))
	}
}

func TestHandlePerTenantFailureIsolation(t *testing.T) {
	ctx := context.Background()
	channels := testutil.NewFakeChannelStore()
	good := primitive.NewObjectID()
	bad := primitive.NewObjectID()
	for _, id := range []primitive.ObjectID{good, bad} {
		if err := channels.UpsertChannelSet(ctx, store.TrackedChannelSet{TenantID: id, Channels: []string{"xqc"}}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	writer := testutil.NewFakeMessageWriter()
	writer.FailFor[bad] = errors.New("write timeout")
	p := NewPipeline(channels, writer)

	p.Handle(ctx, Event{Channel: "xqc", Username: "viewer", Text: "hello"})

	msgs := writer.Messages()
	if len(msgs) != 1 {
		t.Fatalf("wrote %d messages, want 1 (failing tenant must not block the other)", len(msgs))
	}
	if msgs[0].TenantID != good {
		t.Errorf("surviving write went to %s, want %s", msgs[0].TenantID.Hex(), good.Hex())
	}
}

// ctxCapturingWriter records the context error seen by each insert.
type ctxCapturingWriter struct {
	inner   *testutil.FakeMessageWriter
	mu      sync.Mutex
	ctxErrs []error
}

func (w *ctxCapturingWriter) InsertMessage(ctx context.Context, msg store.ChatMessage) error {
	w.mu.Lock()
	w.ctxErrs = append(w.ctxErrs, ctx.Err())
	w.mu.Unlock()
	return w.inner.InsertMessage(ctx, msg)
}

// gatedWriter blocks inserts until released.
type gatedWriter struct {
	inner   *testutil.FakeMessageWriter
	entered chan struct{}
	release chan struct{}
}

func (w *gatedWriter) InsertMessage(ctx context.Context, msg store.ChatMessage) error {
	close(w.entered)
	<-w.release
	return w.inner.InsertMessage(ctx, msg)
}

func TestDispatchWritesSurviveCancellation(t *testing.T) {
	channels := testutil.NewFakeChannelStore()
	tenant := primitive.NewObjectID()
	if err := channels.UpsertChannelSet(context.Background(), store.TrackedChannelSet{TenantID: tenant, Channels: []string{"xqc"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	writer := &ctxCapturingWriter{inner: testutil.NewFakeMessageWriter()}
	p := NewPipeline(channels, writer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // canceled before the event is even dispatched

	p.Dispatch(ctx, Event{Channel: "xqc", Username: "viewer", Text: "hello"})
	p.Drain()

	msgs := writer.inner.Messages()
	if len(msgs) != 1 {
		t.Fatalf("wrote %d messages, want 1 (shutdown must not abort in-flight writes)", len(msgs))
	}
	if len(writer.ctxErrs) != 1 || writer.ctxErrs[0] != nil {
		t.Errorf("insert saw ctx errs %v, want [nil]", writer.ctxErrs)
	}
}

func TestDrainWaitsForInFlightWrites(t *testing.T) {
	channels := testutil.NewFakeChannelStore()
	tenant := primitive.NewObjectID()
	if err := channels.UpsertChannelSet(context.Background(), store.TrackedChannelSet{TenantID: tenant, Channels: []string{"xqc"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	writer := &gatedWriter{
		inner:   testutil.NewFakeMessageWriter(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	p := NewPipeline(channels, writer)

	p.Dispatch(context.Background(), Event{Channel: "xqc", Username: "viewer", Text: "hello"})
	<-writer.entered

	drained := make(chan struct{})
	go func() {
		p.Drain()
		close(drained)
	}()

	select {
	case <-drained:
		t.Fatal("Drain returned while a write was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(writer.release)
	<-drained

	if msgs := writer.inner.Messages(); len(msgs) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(msgs))
	}
}

func TestHandleFallsBackToLoginName(t *testing.T) {
	ctx := context.Background()
	channels := testutil.NewFakeChannelStore()
	tenant := primitive.NewObjectID()
	if err := channels.UpsertChannelSet(ctx, store.TrackedChannelSet{TenantID: tenant, Channels: []string{"xqc"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	writer := testutil.NewFakeMessageWriter()
	p := NewPipeline(channels, writer)

	p.Handle(ctx, Event{Channel: "xqc", Username: "viewer1", Text: "hello"})

	msgs := writer.Messages()
	if len(msgs) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(msgs))
	}
	if msgs[0].Username != "viewer1" {
		t.Errorf("username = %q, want login name fallback", msgs[0].Username)
	}
}
