// Package testutil provides in-memory fakes for the persistence interfaces
// so the registry, pipeline, reconciler, and aggregator can be tested
// without a running MongoDB.
package testutil

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onnwee/chatmood/backend/store"
)

// FakeChannelStore is an in-memory ChannelStore/TenantSource implementation.
type FakeChannelStore struct {
	mu   sync.Mutex
	sets map[primitive.ObjectID]store.TrackedChannelSet

	// Err, when set, is returned by every method (simulates StorageError).
	Err error
}

// NewFakeChannelStore returns an empty fake.
func NewFakeChannelStore() *FakeChannelStore {
	return &FakeChannelStore{sets: make(map[primitive.ObjectID]store.TrackedChannelSet)}
}

func (f *FakeChannelStore) ChannelSet(_ context.Context, tenantID primitive.ObjectID) (store.TrackedChannelSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return store.TrackedChannelSet{}, f.Err
	}
	set, ok := f.sets[tenantID]
	if !ok {
		return store.TrackedChannelSet{}, store.ErrNotFound
	}
	return set, nil
}

func (f *FakeChannelStore) UpsertChannelSet(_ context.Context, set store.TrackedChannelSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.sets[set.TenantID] = set
	return nil
}

func (f *FakeChannelStore) AllChannelSets(_ context.Context) ([]store.TrackedChannelSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	sets := make([]store.TrackedChannelSet, 0, len(f.sets))
	for _, set := range f.sets {
		sets = append(sets, set)
	}
	return sets, nil
}

func (f *FakeChannelStore) TenantsTracking(_ context.Context, channel string) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var ids []primitive.ObjectID
	for id, set := range f.sets {
		if slices.Contains(set.Channels, channel) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// FakeMessageWriter records inserted messages in memory.
type FakeMessageWriter struct {
	mu       sync.Mutex
	messages []store.ChatMessage

	// FailFor makes InsertMessage fail for the given tenant ids.
	FailFor map[primitive.ObjectID]error
}

// NewFakeMessageWriter returns an empty fake.
func NewFakeMessageWriter() *FakeMessageWriter {
	return &FakeMessageWriter{FailFor: make(map[primitive.ObjectID]error)}
}

func (f *FakeMessageWriter) InsertMessage(_ context.Context, msg store.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.FailFor[msg.TenantID]; ok {
		return err
	}
	f.messages = append(f.messages, msg)
	return nil
}

// Messages returns a copy of everything inserted so far.
func (f *FakeMessageWriter) Messages() []store.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.ChatMessage, len(f.messages))
	copy(out, f.messages)
	return out
}

// FakeStats serves canned aggregation rows to the analytics aggregator.
type FakeStats struct {
	UserStats       []store.UserStats
	Messages        []store.ChatMessage
	SentimentCounts []store.SentimentCount
	Err             error
}

func (f *FakeStats) AggregateUserStats(_ context.Context, _ *primitive.ObjectID, limit int) ([]store.UserStats, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.UserStats) > limit {
		return f.UserStats[:limit], nil
	}
	return f.UserStats, nil
}

func (f *FakeStats) MessagesSince(_ context.Context, _ *primitive.ObjectID, since time.Time) ([]store.ChatMessage, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	var out []store.ChatMessage
	for _, msg := range f.Messages {
		if !msg.Timestamp.Before(since) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (f *FakeStats) CountBySentiment(_ context.Context, _ *primitive.ObjectID) ([]store.SentimentCount, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.SentimentCounts, nil
}

// FakeCleanupStore serves the stale-message cleanup job.
type FakeCleanupStore struct {
	Users []store.User
	// Deleted maps tenant id -> number of documents reported deleted.
	Deleted map[primitive.ObjectID]int64
	// FailFor makes DeleteMessagesBefore fail for the given tenant ids.
	FailFor map[primitive.ObjectID]error

	// Cutoffs records the cutoff passed per tenant.
	Cutoffs map[primitive.ObjectID]time.Time
}

func (f *FakeCleanupStore) AllUsers(_ context.Context) ([]store.User, error) {
	return f.Users, nil
}

func (f *FakeCleanupStore) DeleteMessagesBefore(_ context.Context, tenantID primitive.ObjectID, cutoff time.Time) (int64, error) {
	if f.Cutoffs == nil {
		f.Cutoffs = make(map[primitive.ObjectID]time.Time)
	}
	f.Cutoffs[tenantID] = cutoff
	if err, ok := f.FailFor[tenantID]; ok {
		return 0, err
	}
	return f.Deleted[tenantID], nil
}
