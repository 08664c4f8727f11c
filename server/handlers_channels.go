package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/onnwee/chatmood/backend/registry"
)

// HandleChannelsList returns the authenticated tenant's tracked channels.
func (h *Handlers) HandleChannelsList(w http.ResponseWriter, r *http.Request) {
	tenantID, err := h.tenantFromRequest(r)
	if err != nil {
		respondAuthError(w, err)
		return
	}
	channels, err := h.deps.Registry.TrackedChannels(r.Context(), tenantID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(w, http.StatusOK, map[string]any{"channels": channels})
}

// HandleChannelAdd starts tracking a channel for the authenticated tenant.
// The reconciler picks the change up on its next pass.
func (h *Handlers) HandleChannelAdd(w http.ResponseWriter, r *http.Request) {
	tenantID, err := h.tenantFromRequest(r)
	if err != nil {
		respondAuthError(w, err)
		return
	}
	var body struct {
		ChannelName string `json:"channelName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	channels, err := h.deps.Registry.AddChannel(r.Context(), tenantID, body.ChannelName)
	if err != nil {
		respondRegistryError(w, err)
		return
	}
	name := registry.Normalize(body.ChannelName)
	respondMessage(w, http.StatusOK, fmt.Sprintf("Added channel: %s", name), map[string]any{"channels": channels})
}

// HandleChannelRemove stops tracking a channel for the authenticated tenant.
func (h *Handlers) HandleChannelRemove(w http.ResponseWriter, r *http.Request) {
	tenantID, err := h.tenantFromRequest(r)
	if err != nil {
		respondAuthError(w, err)
		return
	}
	raw := r.PathValue("channel")
	channels, err := h.deps.Registry.RemoveChannel(r.Context(), tenantID, raw)
	if err != nil {
		respondRegistryError(w, err)
		return
	}
	name := registry.Normalize(raw)
	respondMessage(w, http.StatusOK, fmt.Sprintf("Removed channel: %s", name), map[string]any{"channels": channels})
}

// HandleChannelMessages returns the tenant's recent messages grouped by
// source channel, most recently active channel first.
func (h *Handlers) HandleChannelMessages(w http.ResponseWriter, r *http.Request) {
	scope, err := h.scopeFromRequest(r)
	if err != nil {
		respondAuthError(w, err)
		return
	}
	limit := parseIntQuery(r, "limit", 200)
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	groups, err := h.deps.Store.RecentByChannel(r.Context(), scope, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(w, http.StatusOK, groups)
}

// respondRegistryError maps the registry error taxonomy onto status codes.
func respondRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrValidation):
		respondError(w, http.StatusBadRequest, "Channel name is required")
	case errors.Is(err, registry.ErrAlreadyTracked):
		respondError(w, http.StatusBadRequest, "Channel already being tracked")
	case errors.Is(err, registry.ErrNotTracked):
		respondError(w, http.StatusNotFound, "Channel not found")
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
