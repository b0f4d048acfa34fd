package postgres

import (
	"context"
	"fmt"

	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
	"github.com/thidua-hub/school-merit-hub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository on PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

const userColumns = `id, display_name, role, username, password, is_first_login, phone, email, created_at`

// GetByID loads one user account.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	row := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("postgres", "GetByID", shared.ErrNotFound, "user "+id)
		}
		return nil, fmt.Errorf("postgres: get user: %w", err)
	}
	return u, nil
}

// GetByUsername loads one user account by login name. The lookup is
// case-insensitive.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	row := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)`, username)

	u, err := scanUser(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("postgres", "GetByUsername", shared.ErrNotFound, "user "+username)
		}
		return nil, fmt.Errorf("postgres: get user by username: %w", err)
	}
	return u, nil
}

// ListUsers lists all user accounts in creation order.
func (r *UserRepository) ListUsers(ctx context.Context) ([]*user.User, error) {
	rows, err := r.conn.querier(ctx).Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list users: %w", err)
	}
	defer rows.Close()

	var out []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns the number of user accounts.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn.querier(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: count users: %w", err)
	}
	return n, nil
}

// Save upserts a user account.
func (r *UserRepository) Save(ctx context.Context, account *user.User) error {
	_, err := r.conn.querier(ctx).Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			role = EXCLUDED.role,
			username = EXCLUDED.username,
			password = EXCLUDED.password,
			is_first_login = EXCLUDED.is_first_login,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email`,
		account.ID, account.DisplayName, account.Role, account.Username,
		account.Password, account.IsFirstLogin, account.Phone, account.Email, account.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("postgres", "Save", shared.ErrAlreadyExists, "username "+account.Username)
		}
		return fmt.Errorf("postgres: save user: %w", err)
	}
	return nil
}

// Delete deletes a user account.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.conn.querier(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("postgres", "Delete", shared.ErrNotFound, "user "+id)
	}
	return nil
}

func scanUser(row rowScanner) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.DisplayName, &u.Role, &u.Username, &u.Password,
		&u.IsFirstLogin, &u.Phone, &u.Email, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
