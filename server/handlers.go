// Package server exposes the HTTP API: health, status, metrics, channel
// tracking, analytics views, and message/user CRUD used by the dashboard.
// Responses use a {success, data|error} envelope. It includes permissive
// CORS for development and injects correlation IDs into request contexts
// for consistent logging.
package server

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onnwee/chatmood/backend/analytics"
	"github.com/onnwee/chatmood/backend/chat"
	"github.com/onnwee/chatmood/backend/registry"
	"github.com/onnwee/chatmood/backend/store"
)

// TenantResolver maps a bearer token to a tenant id. The store-backed
// implementation is the default; auth mechanics (login, hashing) live with
// the external auth service.
type TenantResolver interface {
	ResolveTenant(ctx context.Context, token string) (primitive.ObjectID, error)
}

// StatusReporter exposes the reconciler's connection state for /status.
type StatusReporter interface {
	Status() (chat.State, []string)
}

// Deps carries everything the handlers need.
type Deps struct {
	Store      *store.Store
	Registry   *registry.Registry
	Aggregator *analytics.Aggregator
	Resolver   TenantResolver
	Reconciler StatusReporter
	Ping       func(ctx context.Context) error
}

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	deps Deps
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(deps Deps) *Handlers {
	return &Handlers{deps: deps}
}
