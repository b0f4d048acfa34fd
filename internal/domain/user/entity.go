// Package user contains staff accounts, roles, and the permission rules
// that govern score mutations.
package user

import (
	"strings"
	"time"

	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROLES & PERMISSIONS
// ══════════════════════════════════════════════════════════════════════════════

// Role determines what a staff member may do.
type Role string

const (
	// RoleAdmin - full control, may override locks with a reason.
	RoleAdmin Role = "ADMIN"
	// RoleDutyTeacher - records scores while the period is open.
	RoleDutyTeacher Role = "DUTY_TEACHER"
	// RoleTeacher - read-only access to scores.
	RoleTeacher Role = "TEACHER"
)

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDutyTeacher, RoleTeacher:
		return true
	default:
		return false
	}
}

// CanEditScore decides whether the role may create or delete score
// entries given the effective lock state of the target week. Admins may
// always edit (a locked period routes them through the override
// workflow). Duty teachers may edit only while the period is open.
// Teachers and unknown roles may never edit.
func (r Role) CanEditScore(locked bool) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleDutyTeacher:
		return !locked
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PASSWORD RULES
// ══════════════════════════════════════════════════════════════════════════════

const (
	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 6

	// DefaultPassword is assigned on account creation and password reset.
	// Accounts carrying it are forced through a first-login change.
	DefaultPassword = "Demo@123"
)

// ValidateNewPassword checks a password change request: minimum length
// and exact match of the confirmation input.
func ValidateNewPassword(newPassword, confirmPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return shared.NewDomainError("user", "ValidateNewPassword", shared.ErrValidation, "password must be at least 6 characters")
	}
	if newPassword != confirmPassword {
		return shared.NewDomainError("user", "ValidateNewPassword", shared.ErrValidation, "password confirmation does not match")
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: USER
// ══════════════════════════════════════════════════════════════════════════════

// User is a staff account.
//
// Passwords are stored and compared as plain text. The source system
// works this way and several flows (default reset password, first-login
// detection) depend on literal values.
type User struct {
	ID          string
	DisplayName string
	Role        Role
	Username    string
	Password    string
	// IsFirstLogin forces a password change before a session is granted.
	IsFirstLogin bool
	Phone        string
	Email        string
	CreatedAt    time.Time
}

// NewUserParams contains parameters for creating a user.
type NewUserParams struct {
	ID          string
	DisplayName string
	Role        Role
	Username    string
	Password    string
	Phone       string
	Email       string
}

// NewUser creates a user with validated fields. New accounts always
// start with IsFirstLogin set so the owner must pick their own password.
func NewUser(params NewUserParams) (*User, error) {
	if params.ID == "" {
		return nil, shared.NewDomainError("user", "NewUser", shared.ErrInvalidID, "user id is required")
	}
	displayName := strings.TrimSpace(params.DisplayName)
	if displayName == "" {
		return nil, shared.NewDomainError("user", "NewUser", shared.ErrEmptyValue, "display name is required")
	}
	if !params.Role.IsValid() {
		return nil, shared.NewDomainError("user", "NewUser", shared.ErrInvalidInput, "unknown role")
	}
	username := strings.TrimSpace(params.Username)
	if username == "" {
		return nil, shared.NewDomainError("user", "NewUser", shared.ErrEmptyValue, "username is required")
	}
	password := params.Password
	if password == "" {
		password = DefaultPassword
	}

	return &User{
		ID:           params.ID,
		DisplayName:  displayName,
		Role:         params.Role,
		Username:     username,
		Password:     password,
		IsFirstLogin: true,
		Phone:        strings.TrimSpace(params.Phone),
		Email:        strings.TrimSpace(params.Email),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Authenticate compares the supplied password against the stored one.
func (u *User) Authenticate(password string) error {
	if u.Password != password {
		return shared.NewDomainError("user", "Authenticate", shared.ErrBadCredentials, "invalid username or password")
	}
	return nil
}

// ChangePassword applies a validated password change and clears the
// first-login flag.
func (u *User) ChangePassword(newPassword, confirmPassword string) error {
	if err := ValidateNewPassword(newPassword, confirmPassword); err != nil {
		return err
	}
	u.Password = newPassword
	u.IsFirstLogin = false
	return nil
}

// ResetPassword puts the account back on the default password and
// re-arms the first-login flow.
func (u *User) ResetPassword() {
	u.Password = DefaultPassword
	u.IsFirstLogin = true
}
