package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/habitloop/habitloop-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-current-user",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-profile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-friends",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/friends",
		Summary:     "List friends",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListFriends)

	huma.Register(s.api, huma.Operation{
		OperationID: "add-friend",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/me/friends/{friendID}",
		Summary:     "Add friend",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddFriend)

	huma.Register(s.api, huma.Operation{
		OperationID: "remove-friend",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/me/friends/{friendID}",
		Summary:     "Remove friend",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveFriend)
}

// === DTOs ===

// UserOutput wraps a single user for Huma.
type UserOutput struct {
	Body UserResponse
}

// UpdateProfileRequest is the request body for profile updates.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=100" doc:"New display name"`
	AvatarColor *string `json:"avatar_color,omitempty" validate:"omitempty,hexcolor" doc:"New avatar color"`
}

// UpdateProfileInput wraps the profile update for Huma.
type UpdateProfileInput struct {
	Body UpdateProfileRequest
}

// FriendInput identifies a friend by path parameter.
type FriendInput struct {
	FriendID string `path:"friendID" doc:"Friend user ID"`
}

// FriendsOutput wraps the friend list for Huma.
type FriendsOutput struct {
	Body struct {
		Friends []UserResponse `json:"friends" doc:"The user's friends"`
	}
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.UpdateProfile(ctx, userID, service.UpdateProfileRequest{
		DisplayName: input.Body.DisplayName,
		AvatarColor: input.Body.AvatarColor,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleListFriends(ctx context.Context, _ *struct{}) (*FriendsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	friends, err := s.services.User.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &FriendsOutput{}
	out.Body.Friends = make([]UserResponse, 0, len(friends))
	for _, friend := range friends {
		out.Body.Friends = append(out.Body.Friends, mapUserResponse(friend))
	}
	return out, nil
}

func (s *Server) handleAddFriend(ctx context.Context, input *FriendInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.AddFriend(ctx, userID, input.FriendID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleRemoveFriend(ctx context.Context, input *FriendInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.RemoveFriend(ctx, userID, input.FriendID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUserResponse(user)}, nil
}
