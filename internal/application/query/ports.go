// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"

	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/ranking"
)

// SnapshotReader loads a consistent aggregation snapshot: no mutation
// may interleave mid-read. The in-memory store reads under its lock; the
// postgres store reads inside one repeatable-read transaction.
type SnapshotReader interface {
	LoadSnapshot(ctx context.Context) (*ranking.Snapshot, error)
}

// Cache stores computed rankings and statistics keyed by window. A miss
// is (nil, false, nil); errors are treated as misses by callers.
type Cache interface {
	GetRankings(ctx context.Context, periodType period.Type, targetID string) ([]ranking.Item, bool, error)
	SetRankings(ctx context.Context, periodType period.Type, targetID string, items []ranking.Item) error

	GetViolationStats(ctx context.Context, periodType period.Type, targetID string) ([]ranking.ViolationStat, bool, error)
	SetViolationStats(ctx context.Context, periodType period.Type, targetID string, stats []ranking.ViolationStat) error
}
