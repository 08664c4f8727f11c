package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ResolveTenant maps a bearer token to a tenant id. Expired or unknown
// tokens yield ErrNotFound. Login and token issuance belong to the auth
// collaborator; this is the lookup side only.
func (s *Store) ResolveTenant(ctx context.Context, token string) (primitive.ObjectID, error) {
	var sess Session
	err := s.sessions().FindOne(ctx, bson.M{"token": token}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return primitive.NilObjectID, ErrNotFound
	}
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("find session: %w", err)
	}
	if !sess.ExpiresAt.IsZero() && time.Now().After(sess.ExpiresAt) {
		return primitive.NilObjectID, ErrNotFound
	}
	return sess.TenantID, nil
}
