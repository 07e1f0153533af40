package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rcaballes/salesdesk/backend/internal/auth"
	"github.com/rcaballes/salesdesk/backend/internal/cache"
	"github.com/rcaballes/salesdesk/backend/internal/storage"
)

// CacheRefresher reloads the activity cache from the store on demand
type CacheRefresher interface {
	Refresh(ctx context.Context) error
}

// AdminHandler handles operational endpoints: cache resets, store wipes
// and manual refreshes
type AdminHandler struct {
	activities *cache.ActivityCache
	roster     *cache.RosterCache
	store      storage.Store
	refresher  CacheRefresher
	logger     zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(activities *cache.ActivityCache, roster *cache.RosterCache, store storage.Store, refresher CacheRefresher, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		activities: activities,
		roster:     roster,
		store:      store,
		refresher:  refresher,
		logger:     logger,
	}
}

// RequireAdmin middleware — only admin role allowed
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.GetUserFromContext(r.Context())
		if !ok || !auth.HasRole(claims, "admin") {
			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error":"admin role required"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireManagerOrAdmin middleware — manager or admin role allowed
func RequireManagerOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.GetUserFromContext(r.Context())
		if !ok || (claims.Role != "admin" && claims.Role != "manager" && claims.Role != "supervisor") {
			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error":"manager or admin role required"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ResetMemory clears backend in-memory state (activity cache)
func (h *AdminHandler) ResetMemory(w http.ResponseWriter, r *http.Request) {
	cleared := h.activities.Size()
	h.activities.Clear()

	h.logger.Info().Int("activities", cleared).Msg("backend memory reset")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":           "backend memory reset",
		"activitiesCleared": cleared,
	})
}

// WipeStore truncates all persisted data
func (h *AdminHandler) WipeStore(w http.ResponseWriter, r *http.Request) {
	if err := h.store.TruncateAll(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("failed to truncate store")
		http.Error(w, fmt.Sprintf(`{"error":"failed to truncate: %s"}`, err), http.StatusInternalServerError)
		return
	}

	h.logger.Info().Msg("store truncated")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "store truncated",
	})
}

// RefreshCache reloads the activity cache from the store immediately
func (h *AdminHandler) RefreshCache(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		http.Error(w, `{"error":"refresh not configured"}`, http.StatusServiceUnavailable)
		return
	}

	if err := h.refresher.Refresh(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("manual cache refresh failed")
		http.Error(w, fmt.Sprintf(`{"error":"refresh failed: %s"}`, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":    "cache refreshed",
		"activities": h.activities.Size(),
	})
}

// GetStats returns cache sizes for operational checks
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"activities": h.activities.Size(),
		"roster":     h.roster.Size(),
	})
}
