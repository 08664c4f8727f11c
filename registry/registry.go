// Package registry tracks which channels each tenant follows and derives the
// union of all followed channels, which is what the connection reconciler
// subscribes to.
package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onnwee/chatmood/backend/store"
)

// Caller-visible error taxonomy. Validation and conflict errors are never
// retried; they map to 4xx responses at the HTTP layer.
var (
	ErrValidation     = errors.New("channel name is required")
	ErrAlreadyTracked = errors.New("channel already being tracked")
	ErrNotTracked     = errors.New("channel not found")
)

// ChannelStore is the slice of the persistence layer the registry needs.
type ChannelStore interface {
	ChannelSet(ctx context.Context, tenantID primitive.ObjectID) (store.TrackedChannelSet, error)
	UpsertChannelSet(ctx context.Context, set store.TrackedChannelSet) error
	AllChannelSets(ctx context.Context) ([]store.TrackedChannelSet, error)
}

// Registry exposes per-tenant channel tracking over a ChannelStore.
type Registry struct {
	channels ChannelStore
	now      func() time.Time
}

// New returns a Registry over the given store.
func New(channels ChannelStore) *Registry {
	return &Registry{channels: channels, now: func() time.Time { return time.Now().UTC() }}
}

// Normalize canonicalizes a raw channel name: trim whitespace, strip one
// leading '#', lowercase. An empty result means the input was invalid.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
}

// TrackedChannels returns the tenant's followed channels. A tenant with no
// record has an empty set.
func (r *Registry) TrackedChannels(ctx context.Context, tenantID primitive.ObjectID) ([]string, error) {
	set, err := r.channels.ChannelSet(ctx, tenantID)
	if errors.Is(err, store.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load tracked channels: %w", err)
	}
	return set.Channels, nil
}

// AddChannel normalizes and appends a channel to the tenant's set, persisting
// the full updated set. Returns the new set.
func (r *Registry) AddChannel(ctx context.Context, tenantID primitive.ObjectID, raw string) ([]string, error) {
	name := Normalize(raw)
	if name == "" {
		return nil, ErrValidation
	}
	channels, err := r.TrackedChannels(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if slices.Contains(channels, name) {
		return nil, ErrAlreadyTracked
	}
	channels = append(channels, name)
	if err := r.persist(ctx, tenantID, channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// RemoveChannel normalizes and removes a channel from the tenant's set,
// persisting the full updated set. Returns the new set.
func (r *Registry) RemoveChannel(ctx context.Context, tenantID primitive.ObjectID, raw string) ([]string, error) {
	name := Normalize(raw)
	if name == "" {
		return nil, ErrValidation
	}
	channels, err := r.TrackedChannels(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	idx := slices.Index(channels, name)
	if idx < 0 {
		return nil, ErrNotTracked
	}
	channels = slices.Delete(channels, idx, idx+1)
	if err := r.persist(ctx, tenantID, channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// AllRequiredChannels returns the sorted union of every tenant's tracked
// channels. This is the set the reconciler keeps the live connection
// subscribed to.
func (r *Registry) AllRequiredChannels(ctx context.Context) ([]string, error) {
	sets, err := r.channels.AllChannelSets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load channel sets: %w", err)
	}
	seen := make(map[string]struct{})
	union := make([]string, 0)
	for _, set := range sets {
		for _, ch := range set.Channels {
			if _, ok := seen[ch]; ok {
				continue
			}
			seen[ch] = struct{}{}
			union = append(union, ch)
		}
	}
	slices.Sort(union)
	return union, nil
}

func (r *Registry) persist(ctx context.Context, tenantID primitive.ObjectID, channels []string) error {
	set := store.TrackedChannelSet{
		TenantID:  tenantID,
		Channels:  channels,
		UpdatedAt: r.now(),
	}
	if err := r.channels.UpsertChannelSet(ctx, set); err != nil {
		return fmt.Errorf("persist tracked channels: %w", err)
	}
	return nil
}
