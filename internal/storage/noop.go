package storage

import (
	"context"

	"github.com/rcaballes/salesdesk/backend/internal/types"
)

// Store defines the persistence interface
type Store interface {
	SaveActivity(ctx context.Context, a types.Activity) error
	GetActivitiesByDate(ctx context.Context, dateKey string) ([]types.Activity, error)
	SaveDailyRollup(ctx context.Context, rollup types.DailyRollup) error
	GetDailyRollups(ctx context.Context, groupKey string) ([]types.DailyRollup, error)
	TruncateAll(ctx context.Context) error
}

// NoopStore is a no-op implementation when persistence is disabled
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) SaveActivity(_ context.Context, _ types.Activity) error { return nil }
func (s *NoopStore) GetActivitiesByDate(_ context.Context, _ string) ([]types.Activity, error) {
	return nil, nil
}
func (s *NoopStore) SaveDailyRollup(_ context.Context, _ types.DailyRollup) error { return nil }
func (s *NoopStore) GetDailyRollups(_ context.Context, _ string) ([]types.DailyRollup, error) {
	return nil, nil
}
func (s *NoopStore) TruncateAll(_ context.Context) error { return nil }
