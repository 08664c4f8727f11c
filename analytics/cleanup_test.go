package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onnwee/chatmood/backend/store"
	"github.com/onnwee/chatmood/backend/testutil"
)

func TestCleanupStaleMessages(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	aliceCreated := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	bobCreated := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)

	fake := &testutil.FakeCleanupStore{
		Users: []store.User{
			{ID: alice, Username: "alice", CreatedAt: aliceCreated},
			{ID: bob, Username: "bob", CreatedAt: bobCreated},
		},
		Deleted: map[primitive.ObjectID]int64{alice: 12, bob: 0},
	}

	total, err := CleanupStaleMessages(context.Background(), fake)
	if err != nil {
		t.Fatalf("CleanupStaleMessages: %v", err)
	}
	if total != 12 {
		t.Errorf("total = %d, want 12", total)
	}

	// Each tenant's cutoff is its own account creation time.
	if got := fake.Cutoffs[alice]; !got.Equal(aliceCreated) {
		t.Errorf("alice cutoff = %v, want %v", got, aliceCreated)
	}
	if got := fake.Cutoffs[bob]; !got.Equal(bobCreated) {
		t.Errorf("bob cutoff = %v, want %v", got, bobCreated)
	}
}

func TestCleanupContinuesPastTenantFailure(t *testing.T) {
	failing := primitive.NewObjectID()
	healthy := primitive.NewObjectID()

	fake := &testutil.FakeCleanupStore{
		Users: []store.User{
			{ID: failing, Username: "failing", CreatedAt: time.Now()},
			{ID: healthy, Username: "healthy", CreatedAt: time.Now()},
		},
		Deleted: map[primitive.ObjectID]int64{healthy: 5},
		FailFor: map[primitive.ObjectID]error{failing: errors.New("timeout")},
	}

	total, err := CleanupStaleMessages(context.Background(), fake)
	if err != nil {
		t.Fatalf("CleanupStaleMessages: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5 (failure for one tenant must not abort the rest)", total)
	}
	if _, ok := fake.Cutoffs[healthy]; !ok {
		t.Error("healthy tenant was never attempted after the failing one")
	}
}

func TestCleanupNoUsers(t *testing.T) {
	total, err := CleanupStaleMessages(context.Background(), &testutil.FakeCleanupStore{})
	if err != nil {
		t.Fatalf("CleanupStaleMessages: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
}
