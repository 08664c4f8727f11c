package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStats is one per-username aggregation row used by the leaderboard and
// scatterplot views.
type UserStats struct {
	Username     string    `bson:"_id"`
	Count        int64     `bson:"count"`
	AvgSentiment float64   `bson:"avg_sentiment"`
	Channels     []string  `bson:"channels"`
	LastMessage  time.Time `bson:"last_message"`
}

// SentimentCount is one per-label aggregation row.
type SentimentCount struct {
	Sentiment string `bson:"_id"`
	Count     int64  `bson:"count"`
}

// ChannelMessages groups recent messages under their source channel.
type ChannelMessages struct {
	Channel     string        `bson:"_id" json:"channel"`
	Messages    []ChatMessage `bson:"messages" json:"messages"`
	Count       int64         `bson:"count" json:"count"`
	LastMessage time.Time     `bson:"last_message" json:"lastMessage"`
}

func tenantMatch(tenantID *primitive.ObjectID) bson.M {
	if tenantID == nil {
		return bson.M{}
	}
	return bson.M{"tenant_id": *tenantID}
}

// AggregateUserStats groups messages by username within the optional tenant
// scope, ordered by message count descending, limited to top n.
func (s *Store) AggregateUserStats(ctx context.Context, tenantID *primitive.ObjectID, limit int) ([]UserStats, error) {
	pipeline := []bson.M{
		{"$match": tenantMatch(tenantID)},
		{"$group": bson.M{
			"_id":           "$username",
			"count":         bson.M{"$sum": 1},
			"avg_sentiment": bson.M{"$avg": "$sentiment_score"},
			"channels":      bson.M{"$addToSet": "$channel"},
			"last_message":  bson.M{"$max": "$timestamp"},
		}},
		{"$sort": bson.M{"count": -1}},
		{"$limit": limit},
	}
	cur, err := s.messages().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate user stats: %w", err)
	}
	stats := make([]UserStats, 0)
	if err := cur.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("decode user stats: %w", err)
	}
	return stats, nil
}

// MessagesSince returns messages newer than the cutoff within the optional
// tenant scope. Only timestamps are needed by the activity histogram, but
// full documents keep this reusable.
func (s *Store) MessagesSince(ctx context.Context, tenantID *primitive.ObjectID, since time.Time) ([]ChatMessage, error) {
	filter := tenantMatch(tenantID)
	filter["timestamp"] = bson.M{"$gte": since}
	cur, err := s.messages().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find messages since %s: %w", since.Format(time.RFC3339), err)
	}
	msgs := make([]ChatMessage, 0)
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("decode messages since: %w", err)
	}
	return msgs, nil
}

// CountBySentiment returns the number of messages per sentiment label within
// the optional tenant scope.
func (s *Store) CountBySentiment(ctx context.Context, tenantID *primitive.ObjectID) ([]SentimentCount, error) {
	pipeline := []bson.M{
		{"$match": tenantMatch(tenantID)},
		{"$group": bson.M{"_id": "$sentiment", "count": bson.M{"$sum": 1}}},
	}
	cur, err := s.messages().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate sentiment counts: %w", err)
	}
	counts := make([]SentimentCount, 0)
	if err := cur.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("decode sentiment counts: %w", err)
	}
	return counts, nil
}

// RecentByChannel groups the newest messages under their channel, most
// recently active channel first.
func (s *Store) RecentByChannel(ctx context.Context, tenantID *primitive.ObjectID, limit int) ([]ChannelMessages, error) {
	pipeline := []bson.M{
		{"$match": tenantMatch(tenantID)},
		{"$sort": bson.M{"timestamp": -1}},
		{"$limit": limit},
		{"$group": bson.M{
			"_id":          "$channel",
			"messages":     bson.M{"$push": "$$ROOT"},
			"count":        bson.M{"$sum": 1},
			"last_message": bson.M{"$max": "$timestamp"},
		}},
		{"$sort": bson.M{"last_message": -1}},
	}
	cur, err := s.messages().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate messages by channel: %w", err)
	}
	groups := make([]ChannelMessages, 0)
	if err := cur.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode messages by channel: %w", err)
	}
	return groups, nil
}
