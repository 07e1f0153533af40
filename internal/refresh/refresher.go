package refresh

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rcaballes/salesdesk/backend/internal/cache"
	"github.com/rcaballes/salesdesk/backend/internal/metrics"
	"github.com/rcaballes/salesdesk/backend/internal/storage"
	"github.com/rcaballes/salesdesk/backend/internal/types"
)

// Refresher periodically reloads the activity cache from the store so a
// restarted instance converges on persisted history
type Refresher struct {
	store      storage.Store
	activities *cache.ActivityCache
	interval   time.Duration
	windowDays int
	logger     zerolog.Logger
}

// NewRefresher creates a new Refresher
func NewRefresher(store storage.Store, activities *cache.ActivityCache, interval time.Duration, windowDays int, logger zerolog.Logger) *Refresher {
	return &Refresher{
		store:      store,
		activities: activities,
		interval:   interval,
		windowDays: windowDays,
		logger:     logger,
	}
}

// Start reloads the cache once immediately and then on every interval
func (r *Refresher) Start(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil {
		r.logger.Error().Err(err).Msg("initial cache load failed")
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("refresher started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("refresher stopped")
			return

		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				r.logger.Error().Err(err).Msg("cache refresh failed")
			}
		}
	}
}

// Refresh loads the trailing window of activities from the store and swaps
// the cache contents
func (r *Refresher) Refresh(ctx context.Context) error {
	start := time.Now()

	activities, err := r.loadWindow(ctx)
	metrics.Get().RecordRefreshRun(err)
	if err != nil {
		return err
	}

	r.activities.ReplaceAll(activities)

	r.logger.Info().
		Int("activities", len(activities)).
		Dur("elapsed", time.Since(start)).
		Msg("activity cache refreshed")
	return nil
}

// loadWindow queries the store one day key at a time, oldest first so
// cache insertion order matches chronology
func (r *Refresher) loadWindow(ctx context.Context) ([]types.Activity, error) {
	var all []types.Activity

	today := time.Now()
	for offset := r.windowDays - 1; offset >= 0; offset-- {
		dateKey := today.AddDate(0, 0, -offset).Format("2006-01-02")
		activities, err := r.store.GetActivitiesByDate(ctx, dateKey)
		if err != nil {
			return nil, err
		}
		all = append(all, activities...)
	}

	return all, nil
}
