package shared

import (
	"time"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN EVENTS
// Emitted by command handlers after a mutation commits. Consumers (cache
// invalidation, logging) subscribe through the EventPublisher.
// ══════════════════════════════════════════════════════════════════════════════

// Event is the interface implemented by all domain events.
type Event interface {
	// EventName returns a stable, machine-readable name.
	EventName() string

	// OccurredAt returns when the event happened.
	OccurredAt() time.Time
}

// EventPublisher publishes domain events to interested subscribers.
type EventPublisher interface {
	Publish(event Event) error
}

// BaseEvent contains fields common to all events.
type BaseEvent struct {
	ID            string
	Name          string
	Timestamp     time.Time
	CorrelationID string
}

// NewBaseEvent creates a base event with a fresh identity.
func NewBaseEvent(name string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Name:      name,
		Timestamp: time.Now().UTC(),
	}
}

// EventName returns the event name.
func (e BaseEvent) EventName() string {
	return e.Name
}

// OccurredAt returns the event timestamp.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// WithCorrelationID returns a copy of the event carrying a correlation id.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ─────────────────────────────────────────────────────────────────────────────
// Concrete events
// ─────────────────────────────────────────────────────────────────────────────

// ScoreEntryCreatedEvent is emitted after a score entry is persisted.
type ScoreEntryCreatedEvent struct {
	BaseEvent
	EntryID     string
	WeekID      string
	ClassID     string
	PointsDelta float64
}

// NewScoreEntryCreatedEvent creates a ScoreEntryCreatedEvent.
func NewScoreEntryCreatedEvent(entryID, weekID, classID string, pointsDelta float64) ScoreEntryCreatedEvent {
	return ScoreEntryCreatedEvent{
		BaseEvent:   NewBaseEvent("score_entry.created"),
		EntryID:     entryID,
		WeekID:      weekID,
		ClassID:     classID,
		PointsDelta: pointsDelta,
	}
}

// ScoreEntryDeletedEvent is emitted after a score entry is removed.
type ScoreEntryDeletedEvent struct {
	BaseEvent
	EntryID     string
	WeekID      string
	ClassID     string
	PointsDelta float64
}

// NewScoreEntryDeletedEvent creates a ScoreEntryDeletedEvent.
func NewScoreEntryDeletedEvent(entryID, weekID, classID string, pointsDelta float64) ScoreEntryDeletedEvent {
	return ScoreEntryDeletedEvent{
		BaseEvent:   NewBaseEvent("score_entry.deleted"),
		EntryID:     entryID,
		WeekID:      weekID,
		ClassID:     classID,
		PointsDelta: pointsDelta,
	}
}

// PeriodLockChangedEvent is emitted after a week, month, or year changes
// lock status.
type PeriodLockChangedEvent struct {
	BaseEvent
	TargetType string
	TargetID   string
	NewStatus  string
}

// NewPeriodLockChangedEvent creates a PeriodLockChangedEvent.
func NewPeriodLockChangedEvent(targetType, targetID, newStatus string) PeriodLockChangedEvent {
	return PeriodLockChangedEvent{
		BaseEvent:  NewBaseEvent("period.lock_changed"),
		TargetType: targetType,
		TargetID:   targetID,
		NewStatus:  newStatus,
	}
}
