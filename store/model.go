// Package store is the persistence layer over MongoDB. It exposes typed
// accessors for the collections the service owns: users, tracked channel
// sets, chat messages, and auth sessions.
package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a dashboard account (tenant). Credentials live with the auth
// collaborator; only identity and creation time matter here.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// TrackedChannelSet is the per-tenant record of followed channels. Channel
// names are stored normalized (lowercase, no leading '#') and duplicate-free.
type TrackedChannelSet struct {
	TenantID  primitive.ObjectID `bson:"tenant_id" json:"tenantId"`
	Channels  []string           `bson:"channels" json:"channels"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ChatMessage is one persisted chat event, denormalized per tracking tenant:
// a single inbound line produces one document per tenant following the
// channel at the time it arrived.
type ChatMessage struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID       primitive.ObjectID `bson:"tenant_id" json:"tenantId"`
	Channel        string             `bson:"channel" json:"channel"`
	Username       string             `bson:"username" json:"username"`
	ExternalUserID string             `bson:"external_user_id,omitempty" json:"externalUserId,omitempty"`
	Message        string             `bson:"message" json:"message"`
	Sentiment      string             `bson:"sentiment" json:"sentiment"`
	SentimentScore float64            `bson:"sentiment_score" json:"sentimentScore"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
	Badges         map[string]int     `bson:"badges,omitempty" json:"badges,omitempty"`
	Color          string             `bson:"color,omitempty" json:"color,omitempty"`
}

// Session maps a bearer token to a tenant. Token issuance (login, hashing)
// is the auth collaborator's business; this side only resolves.
type Session struct {
	Token     string             `bson:"token" json:"-"`
	TenantID  primitive.ObjectID `bson:"tenant_id" json:"tenantId"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	ExpiresAt time.Time          `bson:"expires_at,omitempty" json:"expiresAt,omitempty"`
}
