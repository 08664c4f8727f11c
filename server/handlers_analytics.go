package server

import "net/http"

// The four analytics views share the same scoping rule: ?global=true
// aggregates across all tenants without auth, anything else is scoped to the
// bearer token's tenant.

// HandleLeaderboard returns the top chatters ranked by message count.
func (h *Handlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	scope, err := h.scopeFromRequest(r)
	if err != nil {
		respondAuthError(w, err)
		return
	}
	entries, err := h.deps.Aggregator.Leaderboard(r.Context(), scope)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(w, http.StatusOK, entries)
}

// HandleScatterplot returns activity-vs-sentiment points for active users.
func (h *Handlers) HandleScatterplot(w http.ResponseWriter, r *http.Request) {
	scope, err := h.scopeFromRequest(r)
	if err != nil {
		respondAuthError(w, err)
		return
	}
	points, err := h.deps.Aggregator.Scatterplot(r.Context(), scope)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(w, http.StatusOK, points)
}

// HandleChannelActivity returns hourly message counts over the trailing day.
func (h *Handlers) HandleChannelActivity(w http.ResponseWriter, r *http.Request) {
	scope, err := h.scopeFromRequest(r)
	if err != nil {
		respondAuthError(w, err)
		return
	}
	buckets, err := h.deps.Aggregator.ChannelActivity(r.Context(), scope)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(w, http.StatusOK, buckets)
}

// HandleSentimentDistribution returns message counts per sentiment label.
func (h *Handlers) HandleSentimentDistribution(w http.ResponseWriter, r *http.Request) {
	scope, err := h.scopeFromRequest(r)
	if err != nil {
		respondAuthError(w, err)
		return
	}
	dist, err := h.deps.Aggregator.SentimentDistribution(r.Context(), scope)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(w, http.StatusOK, dist)
}
