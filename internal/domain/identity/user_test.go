package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utilitrack/backend/internal/domain/shared"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser(" Cashier.One ", "s3cretpass", "Cash Desk", RoleCashier)
	require.NoError(t, err)

	assert.Equal(t, "cashier.one", u.Username)
	assert.NotEqual(t, "s3cretpass", u.PasswordHash)
	assert.True(t, u.VerifyPassword("s3cretpass"))
	assert.False(t, u.VerifyPassword("wrong"))
	assert.True(t, u.CanLogin())
	assert.Equal(t, "Cash Desk", u.DisplayName())
}

func TestNewUser_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		role     Role
	}{
		{"short username", "ab", "password1", RoleStaff},
		{"bad username chars", "bad user", "password1", RoleStaff},
		{"short password", "operator", "pass1", RoleStaff},
		{"password without digit", "operator", "password", RoleStaff},
		{"unknown role", "operator", "password1", Role("Root")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.username, tt.password, "", tt.role)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestUser_LoginLockout(t *testing.T) {
	u, err := NewUser("operator", "password1", "", RoleStaff)
	require.NoError(t, err)

	assert.False(t, u.RecordLoginFailure(3, time.Minute))
	assert.False(t, u.RecordLoginFailure(3, time.Minute))
	assert.True(t, u.RecordLoginFailure(3, time.Minute))
	assert.True(t, u.IsLocked())
	assert.False(t, u.CanLogin())

	u.RecordLoginSuccess()
	assert.True(t, u.CanLogin())
	assert.Zero(t, u.FailedAttempts)
}
