package domain

// Scope selects which users a leaderboard ranks.
type Scope string

const (
	// ScopeGlobal ranks every user on the server.
	ScopeGlobal Scope = "global"
	// ScopeFriends ranks the requesting user and their friends.
	ScopeFriends Scope = "friends"
)

// Valid returns true if the scope is a recognized value.
func (s Scope) Valid() bool {
	return s == ScopeGlobal || s == ScopeFriends
}

// LeaderboardEntry is one user's position in a ranked view.
//
// Entries are a read-time projection over points accounts and habit streaks.
// Rank is assigned by position in the sorted order, never persisted.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"user_id"`
	DisplayName   string `json:"display_name"`
	AvatarColor   string `json:"avatar_color,omitempty"`
	Points        int64  `json:"points"`
	Streak        int    `json:"streak"`
	Level         int    `json:"level"`
	IsCurrentUser bool   `json:"is_current_user"`
}

// Leaderboard is a fully ranked view for one scope and period.
type Leaderboard struct {
	Scope      Scope              `json:"scope"`
	Period     Period             `json:"period"`
	Entries    []LeaderboardEntry `json:"entries"`
	TotalUsers int                `json:"total_users"`
}

// LeaderboardRank is one user's standing without the surrounding entries.
type LeaderboardRank struct {
	Scope      Scope            `json:"scope"`
	Period     Period           `json:"period"`
	Entry      LeaderboardEntry `json:"entry"`
	TotalUsers int              `json:"total_users"`
}
