package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/onnwee/chatmood/backend/store"
)

// HandleUsersList returns all accounts.
func (h *Handlers) HandleUsersList(w http.ResponseWriter, r *http.Request) {
	users, err := h.deps.Store.AllUsers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(w, http.StatusOK, users)
}

// HandleUserGet returns one account by id.
func (h *Handlers) HandleUserGet(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDFromPath(w, r)
	if !ok {
		return
	}
	user, err := h.deps.Store.UserByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(w, http.StatusOK, user)
}

// HandleUserCreate registers a new account.
func (h *Handlers) HandleUserCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Username == "" || body.Email == "" {
		respondError(w, http.StatusBadRequest, "Username and email are required")
		return
	}
	id, err := h.deps.Store.CreateUser(r.Context(), store.User{
		Username:  body.Username,
		Email:     body.Email,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondMessage(w, http.StatusCreated, "User created successfully", map[string]any{"id": id})
}

// HandleUserUpdate applies a partial edit to an account.
func (h *Handlers) HandleUserUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDFromPath(w, r)
	if !ok {
		return
	}
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	fields := bson.M{}
	if body.Username != "" {
		fields["username"] = body.Username
	}
	if body.Email != "" {
		fields["email"] = body.Email
	}
	err := h.deps.Store.UpdateUser(r.Context(), id, fields)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondMessage(w, http.StatusOK, "User updated successfully", nil)
}

// HandleUserDelete removes an account together with its tracked-channel set
// and messages, so no orphaned tracking entries keep the reconciler
// subscribed to channels nobody watches.
func (h *Handlers) HandleUserDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDFromPath(w, r)
	if !ok {
		return
	}
	err := h.deps.Store.DeleteUser(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.deps.Store.DeleteChannelSet(r.Context(), id); err != nil {
		slog.Warn("delete user: channel set cleanup failed", slog.String("tenant", id.Hex()), slog.Any("err", err))
	}
	if _, err := h.deps.Store.DeleteTenantMessages(r.Context(), id); err != nil {
		slog.Warn("delete user: message cleanup failed", slog.String("tenant", id.Hex()), slog.Any("err", err))
	}
	respondMessage(w, http.StatusOK, "User deleted successfully", nil)
}
