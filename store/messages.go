package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertMessage persists one chat message document.
func (s *Store) InsertMessage(ctx context.Context, msg ChatMessage) error {
	if _, err := s.messages().InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

// RecentMessages returns the newest messages, optionally scoped to a tenant.
func (s *Store) RecentMessages(ctx context.Context, tenantID *primitive.ObjectID, limit int64) ([]ChatMessage, error) {
	filter := bson.M{}
	if tenantID != nil {
		filter["tenant_id"] = *tenantID
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit)
	cur, err := s.messages().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	msgs := make([]ChatMessage, 0)
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return msgs, nil
}

// MessageByID returns a single message or ErrNotFound.
func (s *Store) MessageByID(ctx context.Context, id primitive.ObjectID) (ChatMessage, error) {
	var msg ChatMessage
	err := s.messages().FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ChatMessage{}, ErrNotFound
	}
	if err != nil {
		return ChatMessage{}, fmt.Errorf("find message: %w", err)
	}
	return msg, nil
}

// UpdateMessage applies a partial update to a message (manual edit endpoint).
func (s *Store) UpdateMessage(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()
	res, err := s.messages().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMessage removes one message by id.
func (s *Store) DeleteMessage(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.messages().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMessagesBefore removes a tenant's messages older than the cutoff and
// reports how many were removed. Used by the stale-message cleanup job.
func (s *Store) DeleteMessagesBefore(ctx context.Context, tenantID primitive.ObjectID, cutoff time.Time) (int64, error) {
	res, err := s.messages().DeleteMany(ctx, bson.M{
		"tenant_id": tenantID,
		"timestamp": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, fmt.Errorf("delete stale messages: %w", err)
	}
	return res.DeletedCount, nil
}

// DeleteTenantMessages removes every message belonging to a tenant.
func (s *Store) DeleteTenantMessages(ctx context.Context, tenantID primitive.ObjectID) (int64, error) {
	res, err := s.messages().DeleteMany(ctx, bson.M{"tenant_id": tenantID})
	if err != nil {
		return 0, fmt.Errorf("delete tenant messages: %w", err)
	}
	return res.DeletedCount, nil
}
