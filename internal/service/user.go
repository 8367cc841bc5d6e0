package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/habitloop/habitloop-server/internal/domain"
	domainerrors "github.com/habitloop/habitloop-server/internal/errors"
	"github.com/habitloop/habitloop-server/internal/store"
)

// UserService handles profiles and the friend graph.
type UserService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(st *store.Store, logger *slog.Logger) *UserService {
	return &UserService{store: st, logger: logger}
}

// GetProfile returns a user with sensitive fields stripped.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// UpdateProfileRequest contains the profile fields a user may change.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=1,max=100"`
	AvatarColor *string `json:"avatar_color" validate:"omitempty,hexcolor"`
}

// UpdateProfile applies a partial profile update.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.AvatarColor != nil {
		user.AvatarColor = *req.AvatarColor
	}
	user.Touch()

	if err := s.store.Users.Update(ctx, userID, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return sanitizeUser(user), nil
}

// AddFriend adds another user to the caller's friend list. Friendship is
// one-directional; the other user's list is untouched.
func (s *UserService) AddFriend(ctx context.Context, userID, friendID string) (*domain.User, error) {
	if userID == friendID {
		return nil, domainerrors.Validation("cannot add yourself as a friend")
	}

	if _, err := s.getUser(ctx, friendID); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.AddFriend(friendID) {
		return nil, domainerrors.AlreadyExists("already friends with this user")
	}
	user.Touch()

	if err := s.store.Users.Update(ctx, userID, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Debug("friend added", "user_id", userID, "friend_id", friendID)
	return sanitizeUser(user), nil
}

// RemoveFriend removes a user from the caller's friend list.
func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID string) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.RemoveFriend(friendID) {
		return nil, domainerrors.NotFound("user is not in your friend list")
	}
	user.Touch()

	if err := s.store.Users.Update(ctx, userID, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Debug("friend removed", "user_id", userID, "friend_id", friendID)
	return sanitizeUser(user), nil
}

// ListFriends returns the caller's friends. Friends whose accounts were
// deleted since they were added are skipped silently.
func (s *UserService) ListFriends(ctx context.Context, userID string) ([]*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	friends := make([]*domain.User, 0, len(user.FriendIDs))
	for _, friendID := range user.FriendIDs {
		friend, err := s.store.Users.Get(ctx, friendID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get friend: %w", err)
		}
		friends = append(friends, sanitizeUser(friend))
	}
	return friends, nil
}

func (s *UserService) getUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("user %s not found", userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func sanitizeUser(user *domain.User) *domain.User {
	sanitized := *user
	sanitized.PasswordHash = ""
	return &sanitized
}
