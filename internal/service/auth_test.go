package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitloop/habitloop-server/internal/auth"
	"github.com/habitloop/habitloop-server/internal/domain"
	domainerrors "github.com/habitloop/habitloop-server/internal/errors"
)

func newTestAuthService(t *testing.T, env *testEnv) *AuthService {
	t.Helper()

	keyHex, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(keyHex, time.Hour)
	require.NoError(t, err)

	return NewAuthService(env.store, tokens, testLogger())
}

func TestAuthService_Register_FirstUserIsAdmin(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestAuthService(t, env)
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterRequest{
		Email:       "alice@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, first.User.Role)
	assert.NotEmpty(t, first.AccessToken)
	assert.Empty(t, first.User.PasswordHash)
	assert.NotEmpty(t, first.User.AvatarColor)

	second, err := svc.Register(ctx, RegisterRequest{
		Email:       "bob@example.com",
		Password:    "another-long-password",
		DisplayName: "Bob",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, second.User.Role)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestAuthService(t, env)
	ctx := context.Background()

	req := RegisterRequest{
		Email:       "alice@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "Alice",
	}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	// Same address with different case still collides
	req.Email = "Alice@Example.com"
	_, err = svc.Register(ctx, req)
	require.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestAuthService(t, env)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "alice@example.com",
		Password:    "short",
		DisplayName: "Alice",
	})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestAuthService(t, env)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		Email:       "alice@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "Alice",
	})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{
		Email:    "ALICE@example.com", // login is case-insensitive
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", resp.User.DisplayName)
	assert.Empty(t, resp.User.PasswordHash)

	claims, err := svc.VerifyToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestAuthService(t, env)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		Email:       "alice@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "Alice",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password-entirely",
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestAuthService(t, env)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever-password",
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}
