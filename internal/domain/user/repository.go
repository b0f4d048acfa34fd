package user

import "context"

// Repository provides access to staff accounts. Implementations must
// return shared.ErrNotFound (wrapped or bare) for missing records.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}
