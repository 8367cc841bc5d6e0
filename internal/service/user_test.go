package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/habitloop/habitloop-server/internal/errors"
)

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store, testLogger())
	ctx := context.Background()

	env.createUser(t, "user-1", "Alice")

	name := "Alice B"
	color := "#ff8800"
	user, err := svc.UpdateProfile(ctx, "user-1", UpdateProfileRequest{
		DisplayName: &name,
		AvatarColor: &color,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", user.DisplayName)
	assert.Equal(t, "#ff8800", user.AvatarColor)

	fetched, err := svc.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", fetched.DisplayName)
}

func TestUserService_UpdateProfile_BadColor(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store, testLogger())

	env.createUser(t, "user-1", "Alice")

	color := "not-a-color"
	_, err := svc.UpdateProfile(context.Background(), "user-1", UpdateProfileRequest{AvatarColor: &color})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestUserService_Friends(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store, testLogger())
	ctx := context.Background()

	env.createUser(t, "user-1", "Alice")
	env.createUser(t, "user-2", "Bob")

	user, err := svc.AddFriend(ctx, "user-1", "user-2")
	require.NoError(t, err)
	assert.True(t, user.IsFriend("user-2"))

	// Duplicate add is rejected
	_, err = svc.AddFriend(ctx, "user-1", "user-2")
	require.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	friends, err := svc.ListFriends(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "Bob", friends[0].DisplayName)

	// Friendship is one-directional
	friends, err = svc.ListFriends(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, friends)

	user, err = svc.RemoveFriend(ctx, "user-1", "user-2")
	require.NoError(t, err)
	assert.False(t, user.IsFriend("user-2"))

	_, err = svc.RemoveFriend(ctx, "user-1", "user-2")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUserService_AddFriend_Self(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store, testLogger())

	env.createUser(t, "user-1", "Alice")

	_, err := svc.AddFriend(context.Background(), "user-1", "user-1")
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestUserService_AddFriend_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store, testLogger())

	env.createUser(t, "user-1", "Alice")

	_, err := svc.AddFriend(context.Background(), "user-1", "user-ghost")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}
