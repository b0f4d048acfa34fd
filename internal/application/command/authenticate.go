package command

import (
	"context"
	"fmt"

	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
	"github.com/thidua-hub/school-merit-hub/internal/domain/user"
	"github.com/thidua-hub/school-merit-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION COMMANDS
// Login and the forced first-login password change.
// ══════════════════════════════════════════════════════════════════════════════

// AuthenticateCommand contains login credentials.
type AuthenticateCommand struct {
	Username string
	Password string
}

// Validate validates the command.
func (c AuthenticateCommand) Validate() error {
	if c.Username == "" || c.Password == "" {
		return shared.NewDomainError("user", "Authenticate", shared.ErrValidation, "username and password are required")
	}
	return nil
}

// AuthenticateResult contains the outcome of a login attempt.
type AuthenticateResult struct {
	User *user.User

	// MustChangePassword blocks session issuance until the owner sets a
	// new password.
	MustChangePassword bool
}

// AuthenticateHandler handles logins and password changes.
type AuthenticateHandler struct {
	users user.Repository
	log   *logger.Logger
}

// NewAuthenticateHandler creates a new AuthenticateHandler.
func NewAuthenticateHandler(users user.Repository, log *logger.Logger) *AuthenticateHandler {
	return &AuthenticateHandler{users: users, log: log}
}

// Handle verifies credentials. A wrong username and a wrong password
// produce the same error so the response does not leak which usernames
// exist.
func (h *AuthenticateHandler) Handle(ctx context.Context, cmd AuthenticateCommand) (*AuthenticateResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	account, err := h.users.GetByUsername(ctx, cmd.Username)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("user", "Authenticate", shared.ErrBadCredentials, "invalid username or password")
		}
		return nil, fmt.Errorf("authenticate: load account: %w", err)
	}

	if err := account.Authenticate(cmd.Password); err != nil {
		h.log.Warn("failed login attempt", logger.String("username", cmd.Username))
		return nil, err
	}

	h.log.Info("login", logger.String("user_id", account.ID), logger.String("role", string(account.Role)))
	return &AuthenticateResult{
		User:               account,
		MustChangePassword: account.IsFirstLogin,
	}, nil
}

// ChangePasswordCommand contains the data for a password change.
type ChangePasswordCommand struct {
	UserID          string
	NewPassword     string
	ConfirmPassword string
}

// ChangePassword applies a validated password change and clears the
// first-login flag.
func (h *AuthenticateHandler) ChangePassword(ctx context.Context, cmd ChangePasswordCommand) error {
	if cmd.UserID == "" {
		return shared.NewDomainError("user", "ChangePassword", shared.ErrUnauthorized, "user is required")
	}

	account, err := h.users.GetByID(ctx, cmd.UserID)
	if err != nil {
		if shared.IsNotFound(err) {
			return shared.NewDomainError("user", "ChangePassword", shared.ErrUnauthorized, "unknown user")
		}
		return fmt.Errorf("change_password: load account: %w", err)
	}

	if err := account.ChangePassword(cmd.NewPassword, cmd.ConfirmPassword); err != nil {
		return err
	}

	if err := h.users.Save(ctx, account); err != nil {
		return fmt.Errorf("change_password: save account: %w", err)
	}

	h.log.Info("password changed", logger.String("user_id", account.ID))
	return nil
}
