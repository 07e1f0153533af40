package event

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/rcaballes/salesdesk/backend/internal/ingestion"
	"github.com/rcaballes/salesdesk/backend/internal/metrics"
	"github.com/rcaballes/salesdesk/backend/internal/types"
)

// Receiver handles incoming activity records from the CRM sync
type Receiver struct {
	processor          ingestion.ActivityProcessor
	logger             zerolog.Logger
	activitiesReceived int64
	rosterReceived     int64
	lastReceived       time.Time
	mu                 sync.RWMutex
}

// NewReceiver creates a new activity receiver
func NewReceiver(processor ingestion.ActivityProcessor, logger zerolog.Logger) *Receiver {
	return &Receiver{
		processor: processor,
		logger:    logger,
	}
}

// HandleActivities receives a single activity or a batch. The sync job posts
// one JSON object per ticket update and a JSON array on full resyncs.
func (r *Receiver) HandleActivities(w http.ResponseWriter, req *http.Request) {
	m := metrics.Get()

	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := readBody(req)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read activity payload")
		m.RecordIngestError()
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	activities, err := decodeActivities(body)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to decode activity payload")
		m.RecordIngestError()
		http.Error(w, "invalid activity", http.StatusBadRequest)
		return
	}

	r.processor.ProcessActivities(activities)

	count := atomic.AddInt64(&r.activitiesReceived, int64(len(activities)))
	r.mu.Lock()
	r.lastReceived = time.Now()
	r.mu.Unlock()

	if count%1000 == 0 {
		r.logger.Info().
			Int64("total_received", count).
			Msg("activities received")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]int{"accepted": len(activities)})
}

// HandleRoster receives people records used for display-name resolution
func (r *Receiver) HandleRoster(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := readBody(req)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read roster payload")
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	people, err := decodePeople(body)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to decode roster payload")
		http.Error(w, "invalid roster entry", http.StatusBadRequest)
		return
	}

	for _, p := range people {
		r.processor.ProcessRosterEntry(p)
	}
	atomic.AddInt64(&r.rosterReceived, int64(len(people)))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]int{"accepted": len(people)})
}

// GetStats returns receiver statistics
func (r *Receiver) GetStats(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	lastReceived := r.lastReceived
	r.mu.RUnlock()

	stats := map[string]interface{}{
		"activities_received": atomic.LoadInt64(&r.activitiesReceived),
		"roster_received":     atomic.LoadInt64(&r.rosterReceived),
		"last_received":       lastReceived,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func readBody(req *http.Request) ([]byte, error) {
	defer req.Body.Close()
	var buf json.RawMessage
	if err := json.NewDecoder(req.Body).Decode(&buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// decodeActivities accepts either a single object or an array of objects
func decodeActivities(body []byte) ([]types.Activity, error) {
	trimmed := firstNonSpace(body)
	if trimmed == '[' {
		var batch []types.Activity
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, err
		}
		return batch, nil
	}
	var one types.Activity
	if err := json.Unmarshal(body, &one); err != nil {
		return nil, err
	}
	return []types.Activity{one}, nil
}

func decodePeople(body []byte) ([]types.Person, error) {
	trimmed := firstNonSpace(body)
	if trimmed == '[' {
		var batch []types.Person
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, err
		}
		return batch, nil
	}
	var one types.Person
	if err := json.Unmarshal(body, &one); err != nil {
		return nil, err
	}
	return []types.Person{one}, nil
}

func firstNonSpace(body []byte) byte {
	for _, b := range body {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
