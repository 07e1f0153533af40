package ingestion

import (
	"context"

	"github.com/rcaballes/salesdesk/backend/internal/types"
)

// ActivityProcessor processes activity records from any source (CRM webhook,
// import job, admin backfill).
type ActivityProcessor interface {
	ProcessActivity(a types.Activity)
	ProcessActivities(activities []types.Activity)
	ProcessRosterEntry(p types.Person)
}

// ActivitySource represents a source of activity records (HTTP receiver,
// queue consumer, file importer).
type ActivitySource interface {
	// Start begins receiving activities and forwarding them to the processor
	Start(ctx context.Context, processor ActivityProcessor) error
}
