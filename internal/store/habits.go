package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/habitloop/habitloop-server/internal/domain"
	"github.com/habitloop/habitloop-server/internal/sse"
)

const habitPrefix = "habit:"

var (
	// ErrHabitNotFound is returned when a habit cannot be found by ID.
	ErrHabitNotFound = errors.New("habit not found")
	// ErrHabitExists is returned when attempting to create a habit with an existing ID.
	ErrHabitExists = errors.New("habit already exists")
)

// habitKey builds the composite key for a habit.
// Habits are keyed by owner so listing a user's habits is a single prefix scan.
func habitKey(userID, habitID string) []byte {
	return []byte(habitPrefix + userID + ":" + habitID)
}

// CreateHabit creates a new habit.
func (s *Store) CreateHabit(_ context.Context, habit *domain.Habit) error {
	key := habitKey(habit.UserID, habit.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check habit exists: %w", err)
	}
	if exists {
		return ErrHabitExists
	}

	if err := s.set(key, habit); err != nil {
		return fmt.Errorf("create habit: %w", err)
	}

	s.indexHabitAsync(habit)
	s.eventEmitter.Emit(sse.NewHabitCreatedEvent(habit))

	return nil
}

// GetHabit retrieves a habit owned by the given user.
func (s *Store) GetHabit(_ context.Context, userID, habitID string) (*domain.Habit, error) {
	var habit domain.Habit
	if err := s.get(habitKey(userID, habitID), &habit); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("get habit: %w", err)
	}

	return &habit, nil
}

// UpdateHabit updates an existing habit.
// Returns ErrHabitNotFound if the habit does not exist.
func (s *Store) UpdateHabit(_ context.Context, habit *domain.Habit) error {
	key := habitKey(habit.UserID, habit.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check habit exists: %w", err)
	}
	if !exists {
		return ErrHabitNotFound
	}

	if err := s.set(key, habit); err != nil {
		return fmt.Errorf("update habit: %w", err)
	}

	s.indexHabitAsync(habit)
	s.eventEmitter.Emit(sse.NewHabitUpdatedEvent(habit))

	return nil
}

// DeleteHabit removes a habit and all of its completion records.
// The operation is idempotent.
func (s *Store) DeleteHabit(ctx context.Context, userID, habitID string) error {
	key := habitKey(userID, habitID)

	existed, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check habit exists: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(key); err != nil {
			return err
		}

		// Remove the habit's completion ledger entries in the same transaction.
		prefix := []byte(completionPrefix + habitID + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}

		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}

	if existed {
		if s.searchIndexer != nil {
			go func() {
				if err := s.searchIndexer.DeleteHabit(context.Background(), habitID); err != nil {
					if s.logger != nil {
						s.logger.Warn("failed to remove habit from search index", "habit_id", habitID, "error", err)
					}
				}
			}()
		}
		s.eventEmitter.Emit(sse.NewHabitDeletedEvent(userID, habitID, time.Now()))
	}

	return nil
}

// ListHabitsForUser returns all habits owned by the given user.
func (s *Store) ListHabitsForUser(ctx context.Context, userID string) ([]*domain.Habit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(habitPrefix + userID + ":")
	habits := make([]*domain.Habit, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var habit domain.Habit
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &habit)
			})
			if err != nil {
				return fmt.Errorf("unmarshal habit: %w", err)
			}
			habits = append(habits, &habit)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	return habits, nil
}

// indexHabitAsync updates the search index without blocking the store operation.
func (s *Store) indexHabitAsync(habit *domain.Habit) {
	if s.searchIndexer == nil {
		return
	}
	go func() {
		if err := s.searchIndexer.IndexHabit(context.Background(), habit); err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to index habit for search", "habit_id", habit.ID, "error", err)
			}
		}
	}()
}
