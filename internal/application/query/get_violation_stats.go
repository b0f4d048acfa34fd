package query

import (
	"context"
	"fmt"

	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/ranking"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
	"github.com/thidua-hub/school-merit-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET VIOLATION STATS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetViolationStatsQuery selects the aggregation window.
type GetViolationStatsQuery struct {
	PeriodType period.Type
	TargetID   string
}

// Validate validates the query.
func (q GetViolationStatsQuery) Validate() error {
	if !q.PeriodType.IsValid() {
		return shared.NewDomainError("ranking", "GetViolationStats", shared.ErrValidation, "unknown period type")
	}
	if q.TargetID == "" {
		return shared.NewDomainError("ranking", "GetViolationStats", shared.ErrValidation, "target_id is required")
	}
	return nil
}

// GetViolationStatsHandler handles the GetViolationStatsQuery.
type GetViolationStatsHandler struct {
	snapshots SnapshotReader
	calc      *ranking.Calculator
	cache     Cache
	log       *logger.Logger
}

// NewGetViolationStatsHandler creates a new GetViolationStatsHandler.
func NewGetViolationStatsHandler(snapshots SnapshotReader, calc *ranking.Calculator, cache Cache, log *logger.Logger) *GetViolationStatsHandler {
	return &GetViolationStatsHandler{snapshots: snapshots, calc: calc, cache: cache, log: log}
}

// Handle computes per-category statistics, serving from cache when
// possible.
func (h *GetViolationStatsHandler) Handle(ctx context.Context, q GetViolationStatsQuery) ([]ranking.ViolationStat, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if stats, hit, err := h.cache.GetViolationStats(ctx, q.PeriodType, q.TargetID); err == nil && hit {
		return stats, nil
	} else if err != nil {
		h.log.Warn("violation stats cache read failed", logger.Err(err))
	}

	snap, err := h.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_violation_stats: load snapshot: %w", err)
	}

	stats, err := h.calc.ViolationStats(snap, q.PeriodType, q.TargetID)
	if err != nil {
		return nil, err
	}

	if err := h.cache.SetViolationStats(ctx, q.PeriodType, q.TargetID, stats); err != nil {
		h.log.Warn("violation stats cache write failed", logger.Err(err))
	}

	return stats, nil
}
