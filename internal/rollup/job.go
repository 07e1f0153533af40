package rollup

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/rcaballes/salesdesk/backend/internal/analytics"
	"github.com/rcaballes/salesdesk/backend/internal/cache"
	"github.com/rcaballes/salesdesk/backend/internal/metrics"
	"github.com/rcaballes/salesdesk/backend/internal/storage"
	"github.com/rcaballes/salesdesk/backend/internal/types"
)

// Job persists per-key daily aggregates on a cron schedule. The nightly run
// covers the previous calendar day so a day's rollup is only written once
// the day is complete.
type Job struct {
	engine     *analytics.Engine
	activities *cache.ActivityCache
	store      storage.Store
	schedule   cron.Schedule
	logger     zerolog.Logger
}

// NewJob creates a rollup job from a 5-field cron expression
// (minute hour day-of-month month day-of-week)
func NewJob(engine *analytics.Engine, activities *cache.ActivityCache, store storage.Store, schedule string, logger zerolog.Logger) (*Job, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, err
	}

	return &Job{
		engine:     engine,
		activities: activities,
		store:      store,
		schedule:   sched,
		logger:     logger,
	}, nil
}

// Start runs the job on its schedule until the context is cancelled
func (j *Job) Start(ctx context.Context) {
	j.logger.Info().Msg("rollup job started")

	for {
		now := time.Now()
		next := j.schedule.Next(now)

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			j.logger.Info().Msg("rollup job stopped")
			return

		case fired := <-timer.C:
			day := fired.AddDate(0, 0, -1)
			if err := j.RunForDay(ctx, day); err != nil {
				j.logger.Error().Err(err).Msg("rollup run failed")
			}
		}
	}
}

// RunForDay computes and persists rollups for every grouping over one
// calendar day
func (j *Job) RunForDay(ctx context.Context, day time.Time) error {
	start := time.Now()
	dateRange := analytics.NewDateRange(day, day)
	dateKey := day.Format("2006-01-02")

	activities := j.activities.Snapshot()
	written := 0

	var runErr error
	for _, grouping := range types.AllGroupings {
		accs := j.engine.Aggregate(activities, dateRange, grouping.KeyOf)

		for _, key := range accs.Keys() {
			acc, ok := accs.Lookup(key)
			if !ok {
				continue
			}
			row := j.engine.Finalize(acc)
			rollup := rollupFromRow(key, dateKey, grouping, row)

			if err := j.store.SaveDailyRollup(ctx, rollup); err != nil {
				j.logger.Error().Err(err).
					Str("group_key", key).
					Str("date", dateKey).
					Msg("failed to save daily rollup")
				runErr = err
				continue
			}
			written++
		}
	}

	metrics.Get().RecordRollupRun(runErr)

	j.logger.Info().
		Str("date", dateKey).
		Int("rollups_written", written).
		Dur("elapsed", time.Since(start)).
		Msg("daily rollup complete")
	return runErr
}

// rollupFromRow flattens a finalized report row into the persisted shape
func rollupFromRow(key, dateKey string, grouping types.Grouping, row types.ReportRow) types.DailyRollup {
	return types.DailyRollup{
		GroupKey:       key,
		Date:           dateKey,
		Grouping:       string(grouping),
		SalesCount:     row.SalesCount,
		NonSalesCount:  row.NonSalesCount,
		ConvertedCount: row.ConvertedCount,
		TotalAmount:    row.TotalAmount,
		TotalQty:       row.TotalQty,
		ConversionRate: row.ConversionRate,

		AvgResponseSeconds:     bucketAvg(row, types.BucketResponse),
		AvgQuotationSeconds:    bucketAvg(row, types.BucketQuotation),
		AvgNonQuotationSeconds: bucketAvg(row, types.BucketNonQuotation),
		AvgSPFSeconds:          bucketAvg(row, types.BucketSPF),
	}
}

func bucketAvg(row types.ReportRow, bucket types.Bucket) float64 {
	stats, ok := row.Buckets[bucket]
	if !ok || stats.AvgSeconds == nil {
		return 0
	}
	return float64(*stats.AvgSeconds)
}
