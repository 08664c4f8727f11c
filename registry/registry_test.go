package registry

import (
	"context"
	"errors"
	"slices"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onnwee/chatmood/backend/testutil"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"xqc", "xqc"},
		{"#xqc", "xqc"},
		{"  #XQC  ", "xqc"},
		{"XQC", "xqc"},
		{"#", ""},
		{"   ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAddChannel(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewFakeChannelStore()
	reg := New(fake)
	tenant := primitive.NewObjectID()

	got, err := reg.AddChannel(ctx, tenant, "  #Pokimane ")
	if err != nil {
		t.Fatalf("AddChannel: %v", err)
	}
	if want := []string{"pokimane"}; !slices.Equal(got, want) {
		t.Errorf("AddChannel returned %v, want %v", got, want)
	}

	// Duplicate adds are rejected regardless of the raw spelling.
	if _, err := reg.AddChannel(ctx, tenant, "POKIMANE"); !errors.Is(err, ErrAlreadyTracked) {
		t.Errorf("duplicate add error = %v, want ErrAlreadyTracked", err)
	}

	if _, err := reg.AddChannel(ctx, tenant, "  # "); !errors.Is(err, ErrValidation) {
		t.Errorf("empty add error = %v, want ErrValidation", err)
	}
}

func TestRemoveChannel(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewFakeChannelStore()
	reg := New(fake)
	tenant := primitive.NewObjectID()

	if _, err := reg.RemoveChannel(ctx, tenant, "ghost"); !errors.Is(err, ErrNotTracked) {
		t.Errorf("remove absent error = %v, want ErrNotTracked", err)
	}

	if _, err := reg.AddChannel(ctx, tenant, "a"); err != nil {
		t.Fatalf("AddChannel: %v", err)
	}
	if _, err := reg.AddChannel(ctx, tenant, "b"); err != nil {
		t.Fatalf("AddChannel: %v", err)
	}

	got, err := reg.RemoveChannel(ctx, tenant, "#A")
	if err != nil {
		t.Fatalf("RemoveChannel: %v", err)
	}
	if want := []string{"b"}; !slices.Equal(got, want) {
		t.Errorf("RemoveChannel returned %v, want %v", got, want)
	}
}

// A sequence of adds and removes leaves the net set, never duplicates.
func TestAddRemoveSequence(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewFakeChannelStore()
	reg := New(fake)
	tenant := primitive.NewObjectID()

	steps := []struct {
		op   string
		name string
	}{
		{"add", "a"},
		{"add", "b"},
		{"remove", "a"},
		{"add", "c"},
		{"add", "a"},
		{"remove", "b"},
	}
	for _, s := range steps {
		var err error
		switch s.op {
		case "add":
			_, err = reg.AddChannel(ctx, tenant, s.name)
		case "remove":
			_, err = reg.RemoveChannel(ctx, tenant, s.name)
		}
		if err != nil {
			t.Fatalf("%s %q: %v", s.op, s.name, err)
		}
	}

	got, err := reg.TrackedChannels(ctx, tenant)
	if err != nil {
		t.Fatalf("TrackedChannels: %v", err)
	}
	slices.Sort(got)
	if want := []string{"a", "c"}; !slices.Equal(got, want) {
		t.Errorf("final set = %v, want %v", got, want)
	}
}

func TestTrackedChannelsEmptyForUnknownTenant(t *testing.T) {
	reg := New(testutil.NewFakeChannelStore())
	got, err := reg.TrackedChannels(context.Background(), primitive.NewObjectID())
	if err != nil {
		t.Fatalf("TrackedChannels: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("TrackedChannels = %v, want empty", got)
	}
}

func TestAllRequiredChannelsUnion(t *testing.T) {
	ctx := context.Background()
	fake := testutil.NewFakeChannelStore()
	reg := New(fake)
	tenantA := primitive.NewObjectID()
	tenantB := primitive.NewObjectID()

	for _, ch := range []string{"shroud", "xqc"} {
		if _, err := reg.AddChannel(ctx, tenantA, ch); err != nil {
			t.Fatalf("AddChannel: %v", err)
		}
	}
	if _, err := reg.AddChannel(ctx, tenantB, "lirik"); err != nil {
		t.Fatalf("AddChannel: %v", err)
	}

	union, err := reg.AllRequiredChannels(ctx)
	if err != nil {
		t.Fatalf("AllRequiredChannels: %v", err)
	}
	if want := []string{"lirik", "shroud", "xqc"}; !slices.Equal(union, want) {
		t.Errorf("union = %v, want %v", union, want)
	}

	// Tenant B tracking a channel tenant A already tracks must not grow
	// the union.
	if _, err := reg.AddChannel(ctx, tenantB, "xqc"); err != nil {
		t.Fatalf("AddChannel: %v", err)
	}
	union, err = reg.AllRequiredChannels(ctx)
	if err != nil {
		t.Fatalf("AllRequiredChannels: %v", err)
	}
	if len(union) != 3 {
		t.Errorf("union after overlapping add = %v, want 3 entries", union)
	}
}

func TestStorageErrorPropagates(t *testing.T) {
	fake := testutil.NewFakeChannelStore()
	fake.Err = errors.New("mongo down")
	reg := New(fake)

	if _, err := reg.AddChannel(context.Background(), primitive.NewObjectID(), "xqc"); err == nil {
		t.Fatal("AddChannel with failing store returned nil error")
	}
	if _, err := reg.AllRequiredChannels(context.Background()); err == nil {
		t.Fatal("AllRequiredChannels with failing store returned nil error")
	}
}
