package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onnwee/chatmood/backend/store"
)

// CleanupStore is the slice of the persistence layer the stale-message
// cleanup needs.
type CleanupStore interface {
	AllUsers(ctx context.Context) ([]store.User, error)
	DeleteMessagesBefore(ctx context.Context, tenantID primitive.ObjectID, cutoff time.Time) (int64, error)
}

// CleanupStaleMessages deletes, for every tenant, messages whose timestamp
// predates the tenant's account creation. It is a one-shot batch job; a
// failure for one tenant is logged and the rest are still attempted. Returns
// the total number of deleted documents.
func CleanupStaleMessages(ctx context.Context, s CleanupStore) (int64, error) {
	users, err := s.AllUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleanup: list users: %w", err)
	}

	var total int64
	for _, u := range users {
		deleted, err := s.DeleteMessagesBefore(ctx, u.ID, u.CreatedAt)
		if err != nil {
			slog.Warn("cleanup: delete failed for tenant",
				slog.String("tenant", u.ID.Hex()), slog.Any("err", err))
			continue
		}
		if deleted > 0 {
			slog.Info("cleanup: removed pre-registration messages",
				slog.String("tenant", u.ID.Hex()),
				slog.String("username", u.Username),
				slog.Int64("deleted", deleted))
		}
		total += deleted
	}
	return total, nil
}
