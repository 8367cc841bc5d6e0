// Package sse implements Server-Sent Events for real-time habit and progress updates.
package sse

import (
	"time"

	"github.com/habitloop/habitloop-server/internal/domain"
)

// SSE is used for server-to-client communication only.
// Client actions all go through the regular request/response API.

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventHabitCreated represents a habit creation event.
	EventHabitCreated EventType = "habit.created"
	// EventHabitUpdated represents a habit update event.
	EventHabitUpdated EventType = "habit.updated"
	// EventHabitDeleted represents a habit deletion event.
	EventHabitDeleted EventType = "habit.deleted"

	// EventCompletionToggled represents a completion toggle.
	// Carries the habit with refreshed streaks and completion dates.
	EventCompletionToggled EventType = "completion.toggled"

	// EventPointsUpdated represents a change to a user's points account.
	EventPointsUpdated EventType = "points.updated"

	// EventChallengeCompleted represents a challenge goal being reached.
	EventChallengeCompleted EventType = "challenge.completed"
	// EventChallengeClaimed represents a challenge reward being claimed.
	EventChallengeClaimed EventType = "challenge.claimed"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	// ID is written as the SSE id: line so clients can resume with
	// Last-Event-ID. Assigned by the manager when the event is queued.
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"` // Event-specific data as JSON object
	Type      EventType `json:"type"`

	// When set, the event is only delivered to clients of this user.
	// Empty string means "broadcast to all".
	UserID string `json:"-"`
}

// HabitEventData is the data payload for habit events.
type HabitEventData struct {
	Habit *domain.Habit `json:"habit"`
}

// HabitDeletedEventData is the data payload for habit delete events.
type HabitDeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	HabitID   string    `json:"habit_id"`
}

// CompletionToggledEventData is the data payload for completion toggle events.
type CompletionToggledEventData struct {
	Habit     *domain.Habit `json:"habit"`
	Date      string        `json:"date"`
	Completed bool          `json:"completed"`
}

// PointsUpdatedEventData is the data payload for points account changes.
type PointsUpdatedEventData struct {
	Account *domain.PointsAccount `json:"account"`
	Delta   int64                 `json:"delta"`
	Reason  string                `json:"reason"`
}

// ChallengeEventData is the data payload for challenge completion and claim events.
type ChallengeEventData struct {
	Challenge *domain.Challenge          `json:"challenge"`
	State     *domain.UserChallengeState `json:"state"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewHabitCreatedEvent creates a habit.created event scoped to the habit's owner.
func NewHabitCreatedEvent(habit *domain.Habit) Event {
	return Event{
		Type:      EventHabitCreated,
		Data:      HabitEventData{Habit: habit},
		Timestamp: time.Now(),
		UserID:    habit.UserID,
	}
}

// NewHabitUpdatedEvent creates a habit.updated event scoped to the habit's owner.
func NewHabitUpdatedEvent(habit *domain.Habit) Event {
	return Event{
		Type:      EventHabitUpdated,
		Data:      HabitEventData{Habit: habit},
		Timestamp: time.Now(),
		UserID:    habit.UserID,
	}
}

// NewHabitDeletedEvent creates a habit.deleted event scoped to the habit's owner.
func NewHabitDeletedEvent(userID, habitID string, deletedAt time.Time) Event {
	return Event{
		Type: EventHabitDeleted,
		Data: HabitDeletedEventData{
			HabitID:   habitID,
			DeletedAt: deletedAt,
		},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewCompletionToggledEvent creates a completion.toggled event scoped to the habit's owner.
// The habit carries refreshed streaks and completion dates.
func NewCompletionToggledEvent(habit *domain.Habit, date string, completed bool) Event {
	return Event{
		Type: EventCompletionToggled,
		Data: CompletionToggledEventData{
			Habit:     habit,
			Date:      date,
			Completed: completed,
		},
		Timestamp: time.Now(),
		UserID:    habit.UserID,
	}
}

// NewPointsUpdatedEvent creates a points.updated event scoped to the account's owner.
func NewPointsUpdatedEvent(account *domain.PointsAccount, delta int64, reason string) Event {
	return Event{
		Type: EventPointsUpdated,
		Data: PointsUpdatedEventData{
			Account: account,
			Delta:   delta,
			Reason:  reason,
		},
		Timestamp: time.Now(),
		UserID:    account.UserID,
	}
}

// NewChallengeCompletedEvent creates a challenge.completed event scoped to the state's owner.
func NewChallengeCompletedEvent(challenge *domain.Challenge, state *domain.UserChallengeState) Event {
	return Event{
		Type: EventChallengeCompleted,
		Data: ChallengeEventData{
			Challenge: challenge,
			State:     state,
		},
		Timestamp: time.Now(),
		UserID:    state.UserID,
	}
}

// NewChallengeClaimedEvent creates a challenge.claimed event scoped to the state's owner.
func NewChallengeClaimedEvent(challenge *domain.Challenge, state *domain.UserChallengeState) Event {
	return Event{
		Type: EventChallengeClaimed,
		Data: ChallengeEventData{
			Challenge: challenge,
			State:     state,
		},
		Timestamp: time.Now(),
		UserID:    state.UserID,
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: time.Now()},
		Timestamp: time.Now(),
	}
}
