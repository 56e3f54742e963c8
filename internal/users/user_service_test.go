package users_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"tunevault/db"
	"tunevault/internal/users"
	"tunevault/tests/testutils"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) (*users.UserService, db.UserRepository) {
	factory := testutils.SetupTestRepositoryFactory(t)
	manager := db.NewManager()
	t.Cleanup(manager.Stop)
	repo := factory.NewUserRepository()
	return users.NewUserService(repo, manager, log.New(io.Discard)), repo
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.IsAdmin)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	authed, err := svc.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
	assert.False(t, authed.IsAdmin)
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	// Wrong password and unknown user fail identically.
	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other-password")
	assert.ErrorIs(t, err, users.ErrUsernameTaken)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"short username", "ab", "secret1", users.ErrShortUsername},
		{"bad characters", "alice!", "secret1", users.ErrInvalidUsername},
		{"short password", "alice", "12345", users.ErrShortPassword},
		{"long password", "alice", strings.Repeat("a", 73), users.ErrLongPassword},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.username, tc.password)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRegisterAcceptsMaximumLengthPassword(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	// 72 bytes is the longest password bcrypt will hash.
	password := strings.Repeat("a", 72)
	_, err := svc.Register(ctx, "alice", password)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "alice", password)
	require.NoError(t, err)
}

func TestAuthenticateAgainstStoredHash(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	// A row written directly to the store authenticates like a registered one.
	_, err := repo.Create(ctx, testutils.CreateTestUser(t, "bob", "secret2", true))
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "bob", "secret2")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)

	_, err = svc.Authenticate(ctx, "bob", "wrong")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
}

func TestEnsureAdmin(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "admin_password"))

	admin, err := svc.Authenticate(ctx, "admin", "admin_password")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	// A second call leaves the existing account untouched.
	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "different_password"))
	again, err := svc.Authenticate(ctx, "admin", "admin_password")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
}
