package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
)

func TestAuthenticate_Success(t *testing.T) {
	e := newEnv(t)

	result, err := e.auth.Handle(context.Background(), AuthenticateCommand{
		Username: "admin",
		Password: "Demo@123",
	})
	require.NoError(t, err)
	assert.Equal(t, adminID, result.User.ID)
	assert.True(t, result.MustChangePassword, "seeded accounts still carry the first-login flag")
}

func TestAuthenticate_BadCredentialsAreIndistinguishable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, unknownErr := e.auth.Handle(ctx, AuthenticateCommand{Username: "nobody", Password: "Demo@123"})
	require.Error(t, unknownErr)
	assert.True(t, shared.IsBadCredentials(unknownErr))

	_, wrongErr := e.auth.Handle(ctx, AuthenticateCommand{Username: "admin", Password: "wrong"})
	require.Error(t, wrongErr)
	assert.True(t, shared.IsBadCredentials(wrongErr))

	// Neither response reveals whether the username exists.
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestAuthenticate_EmptyCredentials(t *testing.T) {
	e := newEnv(t)

	_, err := e.auth.Handle(context.Background(), AuthenticateCommand{Username: "admin"})
	assert.True(t, shared.IsValidation(err))

	_, err = e.auth.Handle(context.Background(), AuthenticateCommand{Password: "Demo@123"})
	assert.True(t, shared.IsValidation(err))
}

func TestChangePassword_ClearsFirstLoginFlag(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	err := e.auth.ChangePassword(ctx, ChangePasswordCommand{
		UserID:          adminID,
		NewPassword:     "Fresh@456",
		ConfirmPassword: "Fresh@456",
	})
	require.NoError(t, err)

	result, err := e.auth.Handle(ctx, AuthenticateCommand{Username: "admin", Password: "Fresh@456"})
	require.NoError(t, err)
	assert.False(t, result.MustChangePassword)

	// The old password no longer works.
	_, err = e.auth.Handle(ctx, AuthenticateCommand{Username: "admin", Password: "Demo@123"})
	assert.True(t, shared.IsBadCredentials(err))
}

func TestChangePassword_Rejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	t.Run("too short", func(t *testing.T) {
		err := e.auth.ChangePassword(ctx, ChangePasswordCommand{
			UserID: adminID, NewPassword: "abc12", ConfirmPassword: "abc12",
		})
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("mismatch", func(t *testing.T) {
		err := e.auth.ChangePassword(ctx, ChangePasswordCommand{
			UserID: adminID, NewPassword: "Fresh@456", ConfirmPassword: "Fresh@457",
		})
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("missing user id", func(t *testing.T) {
		err := e.auth.ChangePassword(ctx, ChangePasswordCommand{
			NewPassword: "Fresh@456", ConfirmPassword: "Fresh@456",
		})
		assert.True(t, shared.IsForbidden(err))
	})

	// A rejected change leaves the stored account untouched.
	account, err := e.store.GetByID(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, "Demo@123", account.Password)
	assert.True(t, account.IsFirstLogin)
}
