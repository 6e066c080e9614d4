package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/isdelr/aurora-be/internal/models"
	"github.com/isdelr/aurora-be/internal/monitoring"
	"github.com/isdelr/aurora-be/internal/repository"
)

// StatusHandler reports liveness and a few counters.
type StatusHandler struct {
	store repository.Store
	stats monitoring.StatsProvider
}

// NewStatusHandler creates a new StatusHandler. stats may be nil.
func NewStatusHandler(store repository.Store, stats monitoring.StatsProvider) *StatusHandler {
	return &StatusHandler{store: store, stats: stats}
}

// Health pings the store.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status returns record counts and the latest host sample.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	var status models.Status
	var err error

	if status.Posts, err = h.store.Posts().CountPosts(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	if status.Users, err = h.store.Users().CountUsers(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	if h.stats != nil {
		if sample, ok := h.stats.Latest(); ok {
			status.Host = &sample
		}
	}
	writeJSON(w, http.StatusOK, status)
}
