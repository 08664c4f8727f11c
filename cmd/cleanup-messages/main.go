// Command cleanup-messages is a one-shot batch job that deletes chat
// messages persisted before their tenant's account was created. Run it from
// cron or by hand; it is not part of the live request path.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/onnwee/chatmood/backend/analytics"
	"github.com/onnwee/chatmood/backend/db"
	"github.com/onnwee/chatmood/backend/store"
)

func main() {
	_ = godotenv.Load(".env")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	database, err := db.Connect(ctx)
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := db.Disconnect(context.Background(), database); err != nil {
			slog.Error("failed to close database", slog.Any("err", err))
		}
	}()

	deleted, err := analytics.CleanupStaleMessages(ctx, store.New(database))
	if err != nil {
		slog.Error("cleanup failed", slog.Any("err", err))
		os.Exit(1)
	}
	slog.Info("cleanup completed", slog.Int64("deleted", deleted))
}
