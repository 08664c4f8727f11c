// Package analytics computes the read-side dashboard views from stored chat
// messages: leaderboard, scatterplot, hourly activity, and sentiment
// distribution. All views are pure aggregation reads; an empty result set
// yields zeros, never an error. Each view takes an optional tenant scope
// (nil = global, across every tenant's messages).
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onnwee/chatmood/backend/sentiment"
	"github.com/onnwee/chatmood/backend/store"
)

const (
	leaderboardLimit = 10
	scatterLimit     = 50

	// The two views scale activity with different divisors. That is the
	// dashboard's historical behavior; do not unify them.
	leaderboardActivityDivisor = 100
	scatterActivityDivisor     = 50
)

// Risk levels attached to leaderboard entries.
const (
	RiskHigh   = "high"
	RiskMedium = "medium"
	RiskLow    = "low"
)

// LeaderboardEntry is one row of the top-chatters view.
type LeaderboardEntry struct {
	Username      string    `json:"username"`
	TotalMessages int64     `json:"totalMessages"`
	AvgSentiment  float64   `json:"avgSentiment"`
	ActivityRate  float64   `json:"activityRate"`
	ChannelCount  int       `json:"channelCount"`
	LastMessage   time.Time `json:"lastMessage"`
	RiskLevel     string    `json:"riskLevel"`
}

// ScatterPoint is one point of the activity-vs-sentiment view.
type ScatterPoint struct {
	Username      string  `json:"username"`
	ActivityRate  float64 `json:"activityRate"`
	AvgSentiment  float64 `json:"avgSentiment"`
	TotalMessages int64   `json:"totalMessages"`
}

// ActivityBucket is one hour-of-day bucket of the trailing activity window.
type ActivityBucket struct {
	Hour  string `json:"hour"`
	Count int64  `json:"count"`
}

// Distribution counts messages per sentiment label.
type Distribution struct {
	Positive int64 `json:"positive"`
	Negative int64 `json:"negative"`
	Neutral  int64 `json:"neutral"`
}

// Stats is the slice of the persistence layer the aggregator reads from.
type Stats interface {
	AggregateUserStats(ctx context.Context, tenantID *primitive.ObjectID, limit int) ([]store.UserStats, error)
	MessagesSince(ctx context.Context, tenantID *primitive.ObjectID, since time.Time) ([]store.ChatMessage, error)
	CountBySentiment(ctx context.Context, tenantID *primitive.ObjectID) ([]store.SentimentCount, error)
}

// Aggregator computes dashboard views over a Stats source.
type Aggregator struct {
	stats  Stats
	window time.Duration
	now    func() time.Time
}

// NewAggregator builds an aggregator; window is the trailing span of the
// activity histogram (24h in production).
func NewAggregator(stats Stats, window time.Duration) *Aggregator {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Aggregator{stats: stats, window: window, now: time.Now}
}

// Leaderboard returns the top chatters by message count with mean sentiment,
// channel spread, recency, and a risk label.
func (a *Aggregator) Leaderboard(ctx context.Context, tenantID *primitive.ObjectID) ([]LeaderboardEntry, error) {
	rows, err := a.stats.AggregateUserStats(ctx, tenantID, leaderboardLimit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	entries := make([]LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		// Classify the rounded mean so the label always matches the
		// displayed value.
		mean := round2(row.AvgSentiment)
		entries = append(entries, LeaderboardEntry{
			Username:      row.Username,
			TotalMessages: row.Count,
			AvgSentiment:  mean,
			ActivityRate:  ActivityRate(row.Count, leaderboardActivityDivisor),
			ChannelCount:  len(row.Channels),
			LastMessage:   row.LastMessage,
			RiskLevel:     RiskLevel(mean),
		})
	}
	return entries, nil
}

// Scatterplot returns activity-vs-sentiment points for the most active users.
func (a *Aggregator) Scatterplot(ctx context.Context, tenantID *primitive.ObjectID) ([]ScatterPoint, error) {
	rows, err := a.stats.AggregateUserStats(ctx, tenantID, scatterLimit)
	if err != nil {
		return nil, fmt.Errorf("scatterplot: %w", err)
	}
	points := make([]ScatterPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, ScatterPoint{
			Username:      row.Username,
			ActivityRate:  ActivityRate(row.Count, scatterActivityDivisor),
			AvgSentiment:  round2(row.AvgSentiment),
			TotalMessages: row.Count,
		})
	}
	return points, nil
}

// ChannelActivity buckets the trailing window's messages by hour of day,
// oldest bucket first.
func (a *Aggregator) ChannelActivity(ctx context.Context, tenantID *primitive.ObjectID) ([]ActivityBucket, error) {
	now := a.now()
	msgs, err := a.stats.MessagesSince(ctx, tenantID, now.Add(-a.window))
	if err != nil {
		return nil, fmt.Errorf("channel activity: %w", err)
	}
	return BucketByHour(msgs, now), nil
}

// SentimentDistribution counts messages per label, zero-filling labels with
// no messages.
func (a *Aggregator) SentimentDistribution(ctx context.Context, tenantID *primitive.ObjectID) (Distribution, error) {
	counts, err := a.stats.CountBySentiment(ctx, tenantID)
	if err != nil {
		return Distribution{}, fmt.Errorf("sentiment distribution: %w", err)
	}
	var dist Distribution
	for _, c := range counts {
		switch c.Sentiment {
		case sentiment.Positive:
			dist.Positive = c.Count
		case sentiment.Negative:
			dist.Negative = c.Count
		case sentiment.Neutral:
			dist.Neutral = c.Count
		}
	}
	return dist, nil
}

// RiskLevel labels a mean sentiment score. Boundaries are strict: exactly
// -0.5 is medium, exactly -0.2 is low.
func RiskLevel(mean float64) string {
	switch {
	case mean < -0.5:
		return RiskHigh
	case mean < -0.2:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ActivityRate scales a message count to a 0-100 rate against the given
// divisor, capped at 100.
func ActivityRate(count int64, divisor float64) float64 {
	return math.Min(float64(count)/divisor*100, 100)
}

// BucketByHour counts messages per hour-of-day over the 24 hours preceding
// now. Buckets are emitted oldest first and labeled "15:00" style, matching
// the dashboard's chart axis.
func BucketByHour(msgs []store.ChatMessage, now time.Time) []ActivityBucket {
	counts := make(map[int]int64, 24)
	for _, msg := range msgs {
		counts[msg.Timestamp.Local().Hour()]++
	}
	buckets := make([]ActivityBucket, 0, 24)
	for i := 23; i >= 0; i-- {
		hour := now.Add(-time.Duration(i) * time.Hour).Local().Hour()
		buckets = append(buckets, ActivityBucket{
			Hour:  fmt.Sprintf("%d:00", hour),
			Count: counts[hour],
		})
	}
	return buckets
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
