package scoring

import "context"

// ClassRepository provides access to classes.
type ClassRepository interface {
	GetClass(ctx context.Context, id string) (*ClassRoom, error)
	ListClasses(ctx context.Context) ([]*ClassRoom, error)
	SaveClass(ctx context.Context, class *ClassRoom) error
	DeleteClass(ctx context.Context, id string) error
}

// ViolationRepository provides access to violation categories.
type ViolationRepository interface {
	GetViolation(ctx context.Context, id string) (*ViolationCategory, error)
	ListViolations(ctx context.Context) ([]*ViolationCategory, error)
	SaveViolation(ctx context.Context, category *ViolationCategory) error
	DeleteViolation(ctx context.Context, id string) error
}

// EntryRepository provides access to score entries. Entries have no
// update path: Save inserts, Delete removes, nothing edits in place.
type EntryRepository interface {
	GetEntry(ctx context.Context, id string) (*ScoreEntry, error)
	ListEntries(ctx context.Context) ([]*ScoreEntry, error)
	ListEntriesByWeek(ctx context.Context, weekID string) ([]*ScoreEntry, error)
	SaveEntry(ctx context.Context, entry *ScoreEntry) error
	DeleteEntry(ctx context.Context, id string) error
}
