package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/habitloop/habitloop-server/internal/domain"
)

const completionPrefix = "completion:"

// completionKey builds the natural key for a completion record.
// One habit can only be completed once per calendar day, so the key is
// derived from the habit and the date rather than a generated ID.
func completionKey(habitID, date string) []byte {
	return []byte(completionPrefix + habitID + ":" + date)
}

// ToggleCompletion flips the completion state for a habit on a given date.
// If no record exists one is written; if one exists it is removed. The check
// and the write happen in a single transaction, so concurrent toggles for the
// same habit and date serialize into alternating states rather than
// duplicates. Returns the new state: true if the habit is now completed.
func (s *Store) ToggleCompletion(ctx context.Context, completion *domain.HabitCompletion) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key := completionKey(completion.HabitID, completion.Date)

	data, err := json.Marshal(completion)
	if err != nil {
		return false, fmt.Errorf("marshal completion: %w", err)
	}

	var nowCompleted bool
	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			nowCompleted = false
			return txn.Delete(key)
		case errors.Is(err, badger.ErrKeyNotFound):
			nowCompleted = true
			return txn.Set(key, data)
		default:
			return err
		}
	})
	if err != nil {
		return false, fmt.Errorf("toggle completion: %w", err)
	}

	return nowCompleted, nil
}

// IsCompleted reports whether a habit has a completion record for the date.
func (s *Store) IsCompleted(_ context.Context, habitID, date string) (bool, error) {
	return s.exists(completionKey(habitID, date))
}

// ListCompletionsForHabit returns all completion records for a habit,
// ordered by date ascending (the key encoding sorts lexicographically).
func (s *Store) ListCompletionsForHabit(ctx context.Context, habitID string) ([]*domain.HabitCompletion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(completionPrefix + habitID + ":")
	completions := make([]*domain.HabitCompletion, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var completion domain.HabitCompletion
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &completion)
			})
			if err != nil {
				return fmt.Errorf("unmarshal completion: %w", err)
			}
			completions = append(completions, &completion)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}

	return completions, nil
}

// CompletionDatesForHabit returns just the date keys of a habit's completions,
// ordered ascending. This is what the streak calculator consumes.
func (s *Store) CompletionDatesForHabit(ctx context.Context, habitID string) ([]string, error) {
	completions, err := s.ListCompletionsForHabit(ctx, habitID)
	if err != nil {
		return nil, err
	}

	dates := make([]string, 0, len(completions))
	for _, c := range completions {
		dates = append(dates, c.Date)
	}
	return dates, nil
}
