package audit

import "context"

// Filter narrows an audit log listing. Zero values mean "no filter".
type Filter struct {
	ActorID    string
	Action     Action
	TargetType string
	Limit      int
	Offset     int
}

// Repository provides append and read access to the audit trail.
// Implementations must return entries newest first and must not expose
// any update or delete path.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter) ([]*Entry, error)
}
