package domain

import (
	"slices"
	"time"
)

// Role represents the user's permission level in the system.
type Role string

const (
	// RoleAdmin grants full administrative access.
	RoleAdmin Role = "admin"
	// RoleMember grants standard user access.
	RoleMember Role = "member"
)

// User represents an authenticated user account in the system.
type User struct {
	Syncable
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	Role         Role      `json:"role"`
	DisplayName  string    `json:"display_name"`
	AvatarColor  string    `json:"avatar_color"` // Deterministic hex color derived from the user ID
	FriendIDs    []string  `json:"friend_ids,omitempty"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsFriend returns true if the given user ID is in this user's friend list.
func (u *User) IsFriend(userID string) bool {
	return slices.Contains(u.FriendIDs, userID)
}

// AddFriend adds a user ID to the friend list. Adding an existing friend
// or yourself is a no-op. Returns true if the list changed.
func (u *User) AddFriend(userID string) bool {
	if userID == u.ID || u.IsFriend(userID) {
		return false
	}
	u.FriendIDs = append(u.FriendIDs, userID)
	return true
}

// RemoveFriend removes a user ID from the friend list.
// Returns true if the list changed.
func (u *User) RemoveFriend(userID string) bool {
	before := len(u.FriendIDs)
	u.FriendIDs = slices.DeleteFunc(u.FriendIDs, func(id string) bool {
		return id == userID
	})
	return len(u.FriendIDs) != before
}

// Name returns the best available name to display for the user.
// Prefers DisplayName, falls back to email.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
