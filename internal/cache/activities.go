package cache

import (
	"sync"

	"github.com/rcaballes/salesdesk/backend/internal/types"
)

// ActivityCache holds the current in-memory set of activity records the
// engine computes over. Writers replace or upsert; readers get a copied
// snapshot so aggregation never races with ingest.
type ActivityCache struct {
	byID  map[string]types.Activity
	order []string
	mu    sync.RWMutex
}

// NewActivityCache creates an empty activity cache
func NewActivityCache() *ActivityCache {
	return &ActivityCache{
		byID: make(map[string]types.Activity, 2000),
	}
}

// Upsert inserts or replaces one activity by ID. First insertion order is
// preserved so report tie-breaking stays stable across refreshes.
func (c *ActivityCache) Upsert(a types.Activity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[a.ID]; !ok {
		c.order = append(c.order, a.ID)
	}
	c.byID[a.ID] = a
}

// ReplaceAll swaps the whole cache contents for a fresh load
func (c *ActivityCache) ReplaceAll(activities []types.Activity) {
	byID := make(map[string]types.Activity, len(activities))
	order := make([]string, 0, len(activities))
	for _, a := range activities {
		if _, ok := byID[a.ID]; !ok {
			order = append(order, a.ID)
		}
		byID[a.ID] = a
	}

	c.mu.Lock()
	c.byID = byID
	c.order = order
	c.mu.Unlock()
}

// Snapshot returns a copy of all cached activities in insertion order
func (c *ActivityCache) Snapshot() []types.Activity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]types.Activity, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Size returns the current number of cached activities
func (c *ActivityCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

// Clear removes all cached activities
func (c *ActivityCache) Clear() {
	c.mu.Lock()
	c.byID = make(map[string]types.Activity, 2000)
	c.order = nil
	c.mu.Unlock()
}
