package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onnwee/chatmood/backend/store"
)

// Manual message CRUD. The pipeline is the normal writer; these endpoints
// exist for dashboard corrections and data inspection.

// HandleMessagesList returns the tenant's newest messages.
func (h *Handlers) HandleMessagesList(w http.ResponseWriter, r *http.Request) {
	scope, err := h.scopeFromRequest(r)
	if err != nil {
		respondAuthError(w, err)
		return
	}
	limit := parseIntQuery(r, "limit", 100)
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	msgs, err := h.deps.Store.RecentMessages(r.Context(), scope, int64(limit))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(w, http.StatusOK, msgs)
}

// HandleMessageGet returns one message by id.
func (h *Handlers) HandleMessageGet(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDFromPath(w, r)
	if !ok {
		return
	}
	msg, err := h.deps.Store.MessageByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Message not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(w, http.StatusOK, msg)
}

// HandleMessageCreate inserts a message document directly.
func (h *Handlers) HandleMessageCreate(w http.ResponseWriter, r *http.Request) {
	tenantID, err := h.tenantFromRequest(r)
	if err != nil {
		respondAuthError(w, err)
		return
	}
	var msg store.ChatMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	msg.ID = primitive.NewObjectID()
	msg.TenantID = tenantID
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if err := h.deps.Store.InsertMessage(r.Context(), msg); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondMessage(w, http.StatusCreated, "Message added successfully", map[string]any{"id": msg.ID})
}

// HandleMessageUpdate applies a partial edit to a message.
func (h *Handlers) HandleMessageUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDFromPath(w, r)
	if !ok {
		return
	}
	var fields bson.M
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	delete(fields, "_id")
	delete(fields, "id")
	err := h.deps.Store.UpdateMessage(r.Context(), id, fields)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Message not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondMessage(w, http.StatusOK, "Message updated successfully", nil)
}

// HandleMessageDelete removes a message by id.
func (h *Handlers) HandleMessageDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDFromPath(w, r)
	if !ok {
		return
	}
	err := h.deps.Store.DeleteMessage(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Message not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondMessage(w, http.StatusOK, "Message deleted successfully", nil)
}

// objectIDFromPath parses the {id} path segment, writing a 400 on failure.
func objectIDFromPath(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}
