package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChannelSet returns the tenant's tracked-channel set, or ErrNotFound if the
// tenant has never tracked anything.
func (s *Store) ChannelSet(ctx context.Context, tenantID primitive.ObjectID) (TrackedChannelSet, error) {
	var set TrackedChannelSet
	err := s.channelSets().FindOne(ctx, bson.M{"tenant_id": tenantID}).Decode(&set)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return TrackedChannelSet{}, ErrNotFound
	}
	if err != nil {
		return TrackedChannelSet{}, fmt.Errorf("find channel set: %w", err)
	}
	return set, nil
}

// UpsertChannelSet writes the full set for a tenant (last-writer-wins at
// tenant granularity; no delta updates).
func (s *Store) UpsertChannelSet(ctx context.Context, set TrackedChannelSet) error {
	_, err := s.channelSets().UpdateOne(ctx,
		bson.M{"tenant_id": set.TenantID},
		bson.M{"$set": bson.M{"channels": set.Channels, "updated_at": set.UpdatedAt}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert channel set: %w", err)
	}
	return nil
}

// AllChannelSets returns every tenant's tracked-channel set.
func (s *Store) AllChannelSets(ctx context.Context) ([]TrackedChannelSet, error) {
	cur, err := s.channelSets().Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find channel sets: %w", err)
	}
	var sets []TrackedChannelSet
	if err := cur.All(ctx, &sets); err != nil {
		return nil, fmt.Errorf("decode channel sets: %w", err)
	}
	return sets, nil
}

// TenantsTracking returns the ids of all tenants whose set contains the
// given (normalized) channel name.
func (s *Store) TenantsTracking(ctx context.Context, channel string) ([]primitive.ObjectID, error) {
	cur, err := s.channelSets().Find(ctx, bson.M{"channels": channel})
	if err != nil {
		return nil, fmt.Errorf("find tenants tracking %q: %w", channel, err)
	}
	var sets []TrackedChannelSet
	if err := cur.All(ctx, &sets); err != nil {
		return nil, fmt.Errorf("decode tenants tracking %q: %w", channel, err)
	}
	ids := make([]primitive.ObjectID, 0, len(sets))
	for _, set := range sets {
		ids = append(ids, set.TenantID)
	}
	return ids, nil
}

// DeleteChannelSet removes a tenant's tracked-channel record (used when the
// tenant account is deleted).
func (s *Store) DeleteChannelSet(ctx context.Context, tenantID primitive.ObjectID) error {
	if _, err := s.channelSets().DeleteOne(ctx, bson.M{"tenant_id": tenantID}); err != nil {
		return fmt.Errorf("delete channel set: %w", err)
	}
	return nil
}
