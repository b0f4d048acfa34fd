package query

import (
	"context"

	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/ranking"
)

// NoopCache is a Cache that never hits. Used when caching is disabled,
// so handlers recompute on every request.
type NoopCache struct{}

// NewNoopCache creates a NoopCache.
func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

// GetRankings always misses.
func (NoopCache) GetRankings(ctx context.Context, periodType period.Type, targetID string) ([]ranking.Item, bool, error) {
	return nil, false, nil
}

// SetRankings discards the table.
func (NoopCache) SetRankings(ctx context.Context, periodType period.Type, targetID string, items []ranking.Item) error {
	return nil
}

// GetViolationStats always misses.
func (NoopCache) GetViolationStats(ctx context.Context, periodType period.Type, targetID string) ([]ranking.ViolationStat, bool, error) {
	return nil, false, nil
}

// SetViolationStats discards the table.
func (NoopCache) SetViolationStats(ctx context.Context, periodType period.Type, targetID string, stats []ranking.ViolationStat) error {
	return nil
}
