package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/thidua-hub/school-merit-hub/internal/domain/audit"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
	"github.com/thidua-hub/school-merit-hub/internal/domain/user"
	"github.com/thidua-hub/school-merit-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER ADMIN COMMANDS
// Admin management of staff accounts. At least one account must always
// exist and nobody may delete their own account.
// ══════════════════════════════════════════════════════════════════════════════

// UserAdminHandler handles account administration.
type UserAdminHandler struct {
	users    user.Repository
	auditLog audit.Repository
	atomic   Atomic
	log      *logger.Logger
}

// NewUserAdminHandler creates a new UserAdminHandler.
func NewUserAdminHandler(users user.Repository, auditLog audit.Repository, atomic Atomic, log *logger.Logger) *UserAdminHandler {
	return &UserAdminHandler{
		users:    users,
		auditLog: auditLog,
		atomic:   atomic,
		log:      log,
	}
}

func (h *UserAdminHandler) requireAdmin(ctx context.Context, actorID string) (*user.User, error) {
	if actorID == "" {
		return nil, shared.NewDomainError("user", "requireAdmin", shared.ErrUnauthorized, "actor is required")
	}
	actor, err := h.users.GetByID(ctx, actorID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("user", "requireAdmin", shared.ErrUnauthorized, "unknown actor")
		}
		return nil, fmt.Errorf("user_admin: load actor: %w", err)
	}
	if actor.Role != user.RoleAdmin {
		return nil, shared.NewDomainError("user", "requireAdmin", shared.ErrForbidden, "only admins manage accounts")
	}
	return actor, nil
}

func (h *UserAdminHandler) mutate(ctx context.Context, save func(context.Context) error, auditEntry *audit.Entry) error {
	return h.atomic.WithinTx(ctx, func(ctx context.Context) error {
		if err := save(ctx); err != nil {
			return err
		}
		return h.auditLog.Append(ctx, auditEntry)
	})
}

// CreateUserCommand contains the data to create an account.
type CreateUserCommand struct {
	DisplayName string
	Role        user.Role
	Username    string
	Password    string
	Phone       string
	Email       string
	ActorID     string
}

// CreateUser creates an account. New accounts are always first-login so
// the owner must pick their own password.
func (h *UserAdminHandler) CreateUser(ctx context.Context, cmd CreateUserCommand) (*user.User, error) {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	if existing, gerr := h.users.GetByUsername(ctx, cmd.Username); gerr == nil && existing != nil {
		return nil, shared.NewDomainError("user", "CreateUser", shared.ErrAlreadyExists, "username is taken")
	} else if gerr != nil && !shared.IsNotFound(gerr) {
		return nil, fmt.Errorf("user_admin: check username: %w", gerr)
	}

	account, err := user.NewUser(user.NewUserParams{
		ID:          uuid.NewString(),
		DisplayName: cmd.DisplayName,
		Role:        cmd.Role,
		Username:    cmd.Username,
		Password:    cmd.Password,
		Phone:       cmd.Phone,
		Email:       cmd.Email,
	})
	if err != nil {
		return nil, err
	}

	auditEntry, err := newAuditEntry(actor, audit.ActionCreate, audit.TargetUser, account.ID, "account "+account.Username, "")
	if err != nil {
		return nil, err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.users.Save(ctx, account)
	}, auditEntry); err != nil {
		return nil, fmt.Errorf("user_admin: create: %w", err)
	}

	h.log.Info("account created", logger.ActorID(actor.ID), logger.String("user_id", account.ID))
	return account, nil
}

// UpdateUserCommand contains the data to update an account's profile.
type UpdateUserCommand struct {
	ID          string
	DisplayName string
	Role        user.Role
	Phone       string
	Email       string
	ActorID     string
}

// UpdateUser updates profile fields of an account. Credentials are
// untouched; password changes go through their own flows.
func (h *UserAdminHandler) UpdateUser(ctx context.Context, cmd UpdateUserCommand) (*user.User, error) {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	account, err := h.users.GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, fmt.Errorf("user_admin: load account: %w", err)
	}
	if cmd.DisplayName != "" {
		account.DisplayName = cmd.DisplayName
	}
	if cmd.Role != "" {
		if !cmd.Role.IsValid() {
			return nil, shared.NewDomainError("user", "UpdateUser", shared.ErrValidation, "unknown role")
		}
		account.Role = cmd.Role
	}
	account.Phone = cmd.Phone
	account.Email = cmd.Email

	auditEntry, err := newAuditEntry(actor, audit.ActionUpdate, audit.TargetUser, account.ID, "account updated: "+account.Username, "")
	if err != nil {
		return nil, err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.users.Save(ctx, account)
	}, auditEntry); err != nil {
		return nil, fmt.Errorf("user_admin: update: %w", err)
	}
	return account, nil
}

// DeleteUserCommand contains the data to delete an account.
type DeleteUserCommand struct {
	ID      string
	ActorID string
}

// DeleteUser deletes an account. The last remaining account is
// undeletable, and the actor may not delete their own account.
func (h *UserAdminHandler) DeleteUser(ctx context.Context, cmd DeleteUserCommand) error {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return err
	}

	if cmd.ID == actor.ID {
		return shared.NewDomainError("user", "DeleteUser", shared.ErrSelfDelete, "cannot delete own account")
	}

	count, err := h.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("user_admin: count accounts: %w", err)
	}
	if count <= 1 {
		return shared.NewDomainError("user", "DeleteUser", shared.ErrLastRemaining, "at least one account must exist")
	}

	account, err := h.users.GetByID(ctx, cmd.ID)
	if err != nil {
		return fmt.Errorf("user_admin: load account: %w", err)
	}

	auditEntry, err := newAuditEntry(actor, audit.ActionDelete, audit.TargetUser, account.ID, "account "+account.Username, "")
	if err != nil {
		return err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.users.Delete(ctx, account.ID)
	}, auditEntry); err != nil {
		return fmt.Errorf("user_admin: delete: %w", err)
	}

	h.log.Info("account deleted", logger.ActorID(actor.ID), logger.String("user_id", account.ID))
	return nil
}

// ResetPasswordCommand contains the data to reset an account's password.
type ResetPasswordCommand struct {
	ID      string
	ActorID string
}

// ResetPassword puts the account back on the default password and forces
// a password change at the next login.
func (h *UserAdminHandler) ResetPassword(ctx context.Context, cmd ResetPasswordCommand) error {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return err
	}

	account, err := h.users.GetByID(ctx, cmd.ID)
	if err != nil {
		return fmt.Errorf("user_admin: load account: %w", err)
	}
	account.ResetPassword()

	auditEntry, err := newAuditEntry(actor, audit.ActionUpdate, audit.TargetUser, account.ID, "password reset for "+account.Username, "")
	if err != nil {
		return err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.users.Save(ctx, account)
	}, auditEntry); err != nil {
		return fmt.Errorf("user_admin: reset password: %w", err)
	}

	h.log.Info("password reset", logger.ActorID(actor.ID), logger.String("user_id", account.ID))
	return nil
}
