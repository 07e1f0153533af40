package ingestion

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rcaballes/salesdesk/backend/internal/analytics"
	"github.com/rcaballes/salesdesk/backend/internal/cache"
	"github.com/rcaballes/salesdesk/backend/internal/metrics"
	"github.com/rcaballes/salesdesk/backend/internal/types"
)

// ActivitySaver persists activities (set late to avoid circular init)
type ActivitySaver interface {
	SaveActivity(ctx context.Context, a types.Activity) error
}

// DefaultProcessor implements ActivityProcessor by writing records into the
// activity cache and persisting them through the configured saver.
type DefaultProcessor struct {
	activities *cache.ActivityCache
	roster     *cache.RosterCache
	saver      ActivitySaver
	logger     zerolog.Logger
}

// NewDefaultProcessor creates a new DefaultProcessor
func NewDefaultProcessor(activities *cache.ActivityCache, roster *cache.RosterCache, logger zerolog.Logger) *DefaultProcessor {
	return &DefaultProcessor{
		activities: activities,
		roster:     roster,
		logger:     logger,
	}
}

// SetSaver sets the persistence backend (to avoid circular init)
func (p *DefaultProcessor) SetSaver(s ActivitySaver) {
	p.saver = s
}

func (p *DefaultProcessor) ProcessActivity(a types.Activity) {
	metrics.Get().RecordActivityReceived()

	a = normalizeActivity(a)

	p.activities.Upsert(a)
	metrics.Get().RecordActivityProcessed()

	if p.saver != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.saver.SaveActivity(ctx, a); err != nil {
			metrics.Get().RecordIngestError()
			p.logger.Error().Err(err).Str("activity_id", a.ID).Msg("failed to persist activity")
		}
	}

	p.logger.Debug().
		Str("activity_id", a.ID).
		Str("agent_ref", a.AgentRef).
		Str("traffic", a.Traffic).
		Msg("activity processed")
}

func (p *DefaultProcessor) ProcessActivities(activities []types.Activity) {
	for _, a := range activities {
		p.ProcessActivity(a)
	}
}

func (p *DefaultProcessor) ProcessRosterEntry(person types.Person) {
	p.roster.Register(person)
	metrics.Get().RecordRosterEntry()

	p.logger.Debug().
		Str("reference_id", person.ReferenceID).
		Str("role", string(person.Role)).
		Msg("roster entry registered")
}

// normalizeActivity fills in fields sources routinely leave empty. Records
// without an ID get one so cache upserts stay keyed; DateKey is derived from
// the creation timestamp when the source omits it.
func normalizeActivity(a types.Activity) types.Activity {
	if strings.TrimSpace(a.ID) == "" {
		a.ID = uuid.New().String()
	}
	if strings.TrimSpace(a.DateKey) == "" {
		if t := analytics.ParseSafe(a.DateCreated); t != nil {
			a.DateKey = t.Format("2006-01-02")
		}
	}
	return a
}
