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
// GET RANKINGS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetRankingsQuery selects the aggregation window. YEAR windows take an
// explicit school-year id; callers resolve "active" before reaching
// here.
type GetRankingsQuery struct {
	PeriodType period.Type
	TargetID   string
}

// Validate validates the query.
func (q GetRankingsQuery) Validate() error {
	if !q.PeriodType.IsValid() {
		return shared.NewDomainError("ranking", "GetRankings", shared.ErrValidation, "unknown period type")
	}
	if q.TargetID == "" {
		return shared.NewDomainError("ranking", "GetRankings", shared.ErrValidation, "target_id is required")
	}
	return nil
}

// GetRankingsHandler handles the GetRankingsQuery.
type GetRankingsHandler struct {
	snapshots SnapshotReader
	calc      *ranking.Calculator
	cache     Cache
	log       *logger.Logger
}

// NewGetRankingsHandler creates a new GetRankingsHandler.
func NewGetRankingsHandler(snapshots SnapshotReader, calc *ranking.Calculator, cache Cache, log *logger.Logger) *GetRankingsHandler {
	return &GetRankingsHandler{snapshots: snapshots, calc: calc, cache: cache, log: log}
}

// Handle computes the ranking table, serving from cache when possible.
func (h *GetRankingsHandler) Handle(ctx context.Context, q GetRankingsQuery) ([]ranking.Item, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if items, hit, err := h.cache.GetRankings(ctx, q.PeriodType, q.TargetID); err == nil && hit {
		return items, nil
	} else if err != nil {
		h.log.Warn("rankings cache read failed", logger.Err(err))
	}

	snap, err := h.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_rankings: load snapshot: %w", err)
	}

	items, err := h.calc.Rankings(snap, q.PeriodType, q.TargetID)
	if err != nil {
		return nil, err
	}

	if err := h.cache.SetRankings(ctx, q.PeriodType, q.TargetID, items); err != nil {
		h.log.Warn("rankings cache write failed", logger.Err(err))
	}

	return items, nil
}
