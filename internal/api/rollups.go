package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rcaballes/salesdesk/backend/internal/storage"
	"github.com/rcaballes/salesdesk/backend/internal/types"
)

// RollupsHandler provides REST endpoints for persisted daily rollups
type RollupsHandler struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewRollupsHandler creates a new RollupsHandler
func NewRollupsHandler(store storage.Store, logger zerolog.Logger) *RollupsHandler {
	return &RollupsHandler{
		store:  store,
		logger: logger.With().Str("component", "rollups_handler").Logger(),
	}
}

// GetRollups returns persisted daily rollups for one grouping key
// GET /api/rollups/{ref}
func (h *RollupsHandler) GetRollups(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	if ref == "" {
		http.Error(w, "ref is required", http.StatusBadRequest)
		return
	}

	rollups, err := h.store.GetDailyRollups(r.Context(), ref)
	if err != nil {
		h.logger.Error().Err(err).Str("ref", ref).Msg("failed to get daily rollups")
		http.Error(w, "failed to retrieve rollups", http.StatusInternalServerError)
		return
	}

	if rollups == nil {
		rollups = []types.DailyRollup{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rollups)
}
