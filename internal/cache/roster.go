package cache

import (
	"sync"

	"github.com/rcaballes/salesdesk/backend/internal/types"
)

// RosterCache maps reference IDs to people for display-name resolution.
// Reports only need names, never roster-driven computation.
type RosterCache struct {
	people map[string]types.Person
	mu     sync.RWMutex
}

// NewRosterCache creates an empty roster cache
func NewRosterCache() *RosterCache {
	return &RosterCache{
		people: make(map[string]types.Person),
	}
}

// Register adds or replaces a roster entry
func (c *RosterCache) Register(p types.Person) {
	c.mu.Lock()
	c.people[p.ReferenceID] = p
	c.mu.Unlock()
}

// DisplayName resolves a reference ID to a display name, falling back to
// the reference ID itself for unknown people
func (c *RosterCache) DisplayName(referenceID string) string {
	c.mu.RLock()
	p, ok := c.people[referenceID]
	c.mu.RUnlock()
	if !ok {
		return referenceID
	}
	return p.DisplayName()
}

// Lookup returns the roster entry for a reference ID
func (c *RosterCache) Lookup(referenceID string) (types.Person, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.people[referenceID]
	return p, ok
}

// All returns a copy of every roster entry
func (c *RosterCache) All() []types.Person {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]types.Person, 0, len(c.people))
	for _, p := range c.people {
		out = append(out, p)
	}
	return out
}

// Size returns the number of roster entries
func (c *RosterCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.people)
}
