// Package search provides full-text habit search using Bleve, with fuzzy
// matching and prefix matching for find-as-you-type.
package search

import (
	"github.com/habitloop/habitloop-server/internal/domain"
)

// HabitDocument is the document structure for the Bleve index.
//
// Category is indexed both as analyzed text (so "morning routine" matches a
// "routine" query) and as an exact keyword for filtering.
type HabitDocument struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"` // Habits are only searchable by their owner
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Archived    bool   `json:"archived"`

	// Timestamps for sorting, Unix millis
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// NewHabitDocument builds a search document from a habit.
func NewHabitDocument(habit *domain.Habit) *HabitDocument {
	return &HabitDocument{
		ID:          habit.ID,
		UserID:      habit.UserID,
		Name:        habit.Name,
		Description: habit.Description,
		Category:    habit.Category,
		Archived:    habit.Archived,
		CreatedAt:   habit.CreatedAt.UnixMilli(),
		UpdatedAt:   habit.UpdatedAt.UnixMilli(),
	}
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *HabitDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"user_id":    d.UserID,
		"name":       d.Name,
		"archived":   d.Archived,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Category != "" {
		m["category"] = d.Category
	}

	return m
}
