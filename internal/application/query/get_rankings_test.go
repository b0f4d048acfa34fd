package query

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/ranking"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
	"github.com/thidua-hub/school-merit-hub/internal/infrastructure/persistence/memory"
	"github.com/thidua-hub/school-merit-hub/pkg/logger"
)

// countingSnapshots wraps a SnapshotReader and counts loads, so tests
// can tell a cache hit from a recompute.
type countingSnapshots struct {
	inner SnapshotReader
	loads int
}

func (c *countingSnapshots) LoadSnapshot(ctx context.Context) (*ranking.Snapshot, error) {
	c.loads++
	return c.inner.LoadSnapshot(ctx)
}

// stubCache is an in-process Cache with observable reads and writes.
type stubCache struct {
	rankings map[string][]ranking.Item
	stats    map[string][]ranking.ViolationStat
	getErr   error
	sets     int
}

func newStubCache() *stubCache {
	return &stubCache{
		rankings: make(map[string][]ranking.Item),
		stats:    make(map[string][]ranking.ViolationStat),
	}
}

func cacheKey(periodType period.Type, targetID string) string {
	return string(periodType) + ":" + targetID
}

func (c *stubCache) GetRankings(ctx context.Context, periodType period.Type, targetID string) ([]ranking.Item, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	items, ok := c.rankings[cacheKey(periodType, targetID)]
	return items, ok, nil
}

func (c *stubCache) SetRankings(ctx context.Context, periodType period.Type, targetID string, items []ranking.Item) error {
	c.sets++
	c.rankings[cacheKey(periodType, targetID)] = items
	return nil
}

func (c *stubCache) GetViolationStats(ctx context.Context, periodType period.Type, targetID string) ([]ranking.ViolationStat, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	stats, ok := c.stats[cacheKey(periodType, targetID)]
	return stats, ok, nil
}

func (c *stubCache) SetViolationStats(ctx context.Context, periodType period.Type, targetID string, stats []ranking.ViolationStat) error {
	c.sets++
	c.stats[cacheKey(periodType, targetID)] = stats
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard})
}

func TestGetRankings_MissComputesAndFillsCache(t *testing.T) {
	snapshots := &countingSnapshots{inner: memory.Fixture()}
	cache := newStubCache()
	handler := NewGetRankingsHandler(snapshots, ranking.NewCalculator(), cache, testLogger())

	items, err := handler.Handle(context.Background(), GetRankingsQuery{
		PeriodType: period.TypeWeek, TargetID: "w1",
	})
	require.NoError(t, err)
	require.Len(t, items, 3, "one row per class")
	assert.Equal(t, 1, snapshots.loads)
	assert.Equal(t, 1, cache.sets)

	// No entries yet, so every class sits at the weekly base.
	for _, item := range items {
		assert.InDelta(t, 100.0, item.TotalPoints, 1e-9)
	}
}

func TestGetRankings_HitSkipsSnapshot(t *testing.T) {
	snapshots := &countingSnapshots{inner: memory.Fixture()}
	cache := newStubCache()
	canned := []ranking.Item{{ClassID: "c9", ClassName: "9A9", TotalPoints: 42, Rank: 1}}
	cache.rankings[cacheKey(period.TypeWeek, "w1")] = canned

	handler := NewGetRankingsHandler(snapshots, ranking.NewCalculator(), cache, testLogger())
	items, err := handler.Handle(context.Background(), GetRankingsQuery{
		PeriodType: period.TypeWeek, TargetID: "w1",
	})
	require.NoError(t, err)
	assert.Equal(t, canned, items)
	assert.Zero(t, snapshots.loads)
	assert.Zero(t, cache.sets)
}

func TestGetRankings_CacheErrorIsAMiss(t *testing.T) {
	snapshots := &countingSnapshots{inner: memory.Fixture()}
	cache := newStubCache()
	cache.getErr = errors.New("connection refused")

	handler := NewGetRankingsHandler(snapshots, ranking.NewCalculator(), cache, testLogger())
	items, err := handler.Handle(context.Background(), GetRankingsQuery{
		PeriodType: period.TypeWeek, TargetID: "w1",
	})
	require.NoError(t, err, "a broken cache must not break the read path")
	assert.Len(t, items, 3)
	assert.Equal(t, 1, snapshots.loads)
}

func TestGetRankings_NoopCacheAlwaysRecomputes(t *testing.T) {
	snapshots := &countingSnapshots{inner: memory.Fixture()}
	handler := NewGetRankingsHandler(snapshots, ranking.NewCalculator(), NewNoopCache(), testLogger())

	for i := 0; i < 2; i++ {
		_, err := handler.Handle(context.Background(), GetRankingsQuery{
			PeriodType: period.TypeWeek, TargetID: "w1",
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, snapshots.loads)
}

func TestGetRankings_Validation(t *testing.T) {
	handler := NewGetRankingsHandler(memory.Fixture(), ranking.NewCalculator(), NewNoopCache(), testLogger())

	_, err := handler.Handle(context.Background(), GetRankingsQuery{PeriodType: "DAY", TargetID: "w1"})
	assert.True(t, shared.IsValidation(err))

	_, err = handler.Handle(context.Background(), GetRankingsQuery{PeriodType: period.TypeWeek})
	assert.True(t, shared.IsValidation(err))
}

func TestGetViolationStats_MissThenHit(t *testing.T) {
	snapshots := &countingSnapshots{inner: memory.Fixture()}
	cache := newStubCache()
	handler := NewGetViolationStatsHandler(snapshots, ranking.NewCalculator(), cache, testLogger())
	ctx := context.Background()

	q := GetViolationStatsQuery{PeriodType: period.TypeWeek, TargetID: "w1"}

	stats, err := handler.Handle(ctx, q)
	require.NoError(t, err)
	require.Len(t, stats, 1, "the fixture has one category, kept even with zero entries")
	assert.Zero(t, stats[0].Frequency)
	assert.Equal(t, 1, snapshots.loads)

	// Second read comes from the cache.
	_, err = handler.Handle(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, snapshots.loads)
}
