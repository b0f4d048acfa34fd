package messaging

import (
	"context"

	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
	"github.com/thidua-hub/school-merit-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CACHE INVALIDATION
// Any score write or lock change can move any window's totals, so the
// whole derived namespace is dropped rather than tracking fine-grained
// key dependencies.
// ══════════════════════════════════════════════════════════════════════════════

// Invalidator drops all cached derived tables.
type Invalidator interface {
	InvalidateAll(ctx context.Context) error
}

// RegisterCacheInvalidation subscribes cache invalidation to the events
// that change aggregation inputs.
func RegisterCacheInvalidation(d *Dispatcher, cache Invalidator, log *logger.Logger) error {
	invalidate := func(event shared.Event) error {
		if err := cache.InvalidateAll(context.Background()); err != nil {
			log.Warn("cache invalidation failed",
				logger.String("event", event.EventName()),
				logger.Err(err),
			)
		}
		return nil
	}

	for _, name := range []string{
		"score_entry.created",
		"score_entry.deleted",
		"period.lock_changed",
	} {
		if err := d.Subscribe(name, invalidate); err != nil {
			return err
		}
	}
	return nil
}
