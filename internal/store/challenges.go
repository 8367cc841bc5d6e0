package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/habitloop/habitloop-server/internal/domain"
)

const challengeStatePrefix = "ucstate:"

var (
	// ErrChallengeStateNotFound is returned when no progress state exists
	// for a user and challenge pair.
	ErrChallengeStateNotFound = errors.New("challenge state not found")
	// ErrChallengeNotCompleted is returned when claiming a challenge whose
	// goal has not been reached.
	ErrChallengeNotCompleted = errors.New("challenge not completed")
	// ErrChallengeAlreadyClaimed is returned when claiming a challenge whose
	// reward was already claimed.
	ErrChallengeAlreadyClaimed = errors.New("challenge already claimed")
)

func challengeStateKey(userID, challengeID string) []byte {
	return []byte(challengeStatePrefix + userID + ":" + challengeID)
}

// GetChallengeState retrieves a user's progress state for a challenge.
func (s *Store) GetChallengeState(_ context.Context, userID, challengeID string) (*domain.UserChallengeState, error) {
	var state domain.UserChallengeState
	if err := s.get(challengeStateKey(userID, challengeID), &state); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrChallengeStateNotFound
		}
		return nil, fmt.Errorf("get challenge state: %w", err)
	}

	return &state, nil
}

// PutChallengeState stores a user's progress state for a challenge.
func (s *Store) PutChallengeState(_ context.Context, state *domain.UserChallengeState) error {
	if err := s.set(challengeStateKey(state.UserID, state.ChallengeID), state); err != nil {
		return fmt.Errorf("put challenge state: %w", err)
	}
	return nil
}

// ApplyChallengeProgress moves a user's challenge counter to value inside a
// single transaction, creating the state if it doesn't exist yet. The
// read-modify-write runs under Badger's transaction so concurrent progress
// recomputations can't lose the completion latch. Returns the resulting state
// and whether this call flipped it to completed.
func (s *Store) ApplyChallengeProgress(ctx context.Context, userID, challengeID string, goal domain.Goal, value int) (*domain.UserChallengeState, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	key := challengeStateKey(userID, challengeID)

	var state domain.UserChallengeState
	var justCompleted bool

	err := s.db.Update(func(txn *badger.Txn) error {
		state = domain.UserChallengeState{
			UserID:      userID,
			ChallengeID: challengeID,
			UpdatedAt:   time.Now(),
		}

		item, err := txn.Get(key)
		switch {
		case err == nil:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &state)
			}); err != nil {
				return fmt.Errorf("unmarshal challenge state: %w", err)
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		wasCompleted := state.IsCompleted
		changed := state.ApplyProgress(goal, value)
		justCompleted = !wasCompleted && state.IsCompleted

		if !changed && !errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}

		data, err := json.Marshal(&state)
		if err != nil {
			return fmt.Errorf("marshal challenge state: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return nil, false, fmt.Errorf("apply challenge progress: %w", err)
	}

	return &state, justCompleted, nil
}

// ClaimChallengeState marks a completed challenge as claimed.
// The completed-and-unclaimed check and the claimed write happen in one
// transaction, so two concurrent claims can't both succeed.
func (s *Store) ClaimChallengeState(ctx context.Context, userID, challengeID string) (*domain.UserChallengeState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := challengeStateKey(userID, challengeID)

	var state domain.UserChallengeState
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrChallengeStateNotFound
		}
		if err != nil {
			return err
		}

		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &state)
		}); err != nil {
			return fmt.Errorf("unmarshal challenge state: %w", err)
		}

		if !state.IsCompleted {
			return ErrChallengeNotCompleted
		}
		if state.IsClaimed {
			return ErrChallengeAlreadyClaimed
		}

		now := time.Now()
		state.IsClaimed = true
		state.ClaimedAt = now
		state.UpdatedAt = now

		data, err := json.Marshal(&state)
		if err != nil {
			return fmt.Errorf("marshal challenge state: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return nil, err
	}

	return &state, nil
}

// ListChallengeStatesForUser returns all of a user's challenge states.
func (s *Store) ListChallengeStatesForUser(ctx context.Context, userID string) ([]*domain.UserChallengeState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(challengeStatePrefix + userID + ":")
	states := make([]*domain.UserChallengeState, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var state domain.UserChallengeState
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &state)
			})
			if err != nil {
				return fmt.Errorf("unmarshal challenge state: %w", err)
			}
			states = append(states, &state)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list challenge states: %w", err)
	}

	return states, nil
}
