package live

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/rcaballes/salesdesk/backend/internal/alerts"
	"github.com/rcaballes/salesdesk/backend/internal/analytics"
	"github.com/rcaballes/salesdesk/backend/internal/cache"
	"github.com/rcaballes/salesdesk/backend/internal/metrics"
	"github.com/rcaballes/salesdesk/backend/internal/types"
	"github.com/rcaballes/salesdesk/backend/internal/websocket"
)

// Publisher recomputes reports over the trailing window and broadcasts
// them to dashboard clients
type Publisher struct {
	engine     *analytics.Engine
	activities *cache.ActivityCache
	roster     *cache.RosterCache
	hub        *websocket.Hub
	interval   time.Duration
	windowDays int
	thresholds alerts.Thresholds
	logger     zerolog.Logger
}

// NewPublisher creates a new Publisher
func NewPublisher(engine *analytics.Engine, activities *cache.ActivityCache, roster *cache.RosterCache, hub *websocket.Hub, interval time.Duration, windowDays int, thresholds alerts.Thresholds, logger zerolog.Logger) *Publisher {
	return &Publisher{
		engine:     engine,
		activities: activities,
		roster:     roster,
		hub:        hub,
		interval:   interval,
		windowDays: windowDays,
		thresholds: thresholds,
		logger:     logger,
	}
}

// Start begins recomputing and broadcasting report snapshots
func (p *Publisher) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	m := metrics.Get()
	p.logger.Info().
		Dur("interval", p.interval).
		Int("window_days", p.windowDays).
		Msg("publisher started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("publisher stopped")
			return

		case <-ticker.C:
			cycleStart := time.Now()

			activities := p.activities.Snapshot()
			if len(activities) == 0 {
				continue
			}

			dateRange := p.window(time.Now())
			published := 0

			for _, grouping := range types.AllGroupings {
				snapshot := p.computeSnapshot(activities, grouping, dateRange)

				data, err := json.Marshal(snapshot)
				if err != nil {
					p.logger.Error().Err(err).Msg("failed to marshal snapshot")
					m.RecordReportError()
					continue
				}

				p.hub.Broadcast(data)
				m.RecordSnapshotPublished()
				published++
			}

			m.RecordReportComputed(time.Since(cycleStart), len(activities))

			p.logger.Debug().
				Int("activities", len(activities)).
				Int("snapshots", published).
				Int("clients", p.hub.ClientCount()).
				Msg("snapshots broadcasted")
		}
	}
}

// computeSnapshot builds one grouping's report with alerts attached
func (p *Publisher) computeSnapshot(activities []types.Activity, grouping types.Grouping, dateRange analytics.DateRange) types.Snapshot {
	accs := p.engine.Aggregate(activities, dateRange, grouping.KeyOf)
	report := p.engine.BuildReport(accs, grouping, dateRange, p.roster.DisplayName)
	alerts.CheckRowAlerts(report.Rows, p.thresholds)

	return types.Snapshot{
		Type:      "report_snapshot",
		Grouping:  grouping,
		Timestamp: time.Now(),
		Report:    report,
	}
}

// window returns the trailing inclusive date range ending today
func (p *Publisher) window(now time.Time) analytics.DateRange {
	from := now.AddDate(0, 0, -(p.windowDays - 1))
	return analytics.NewDateRange(from, now)
}
