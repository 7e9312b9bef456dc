package domain

import (
	"context"
	"time"
)

// Habit is the single active habit a user is working on. At most one row
// exists per user; starting a new challenge replaces it.
type Habit struct {
	UserID     int64     `json:"userId"`
	Name       string    `json:"name"`
	TargetTime string    `json:"targetTime"` // "HH:MM", advisory only
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HabitRepository is the port for habit persistence.
type HabitRepository interface {
	// LoadHabit returns the user's active habit, or nil when none exists.
	LoadHabit(ctx context.Context, userID int64) (*Habit, error)
	// UpsertHabit replaces the single habit row for the user.
	UpsertHabit(ctx context.Context, userID int64, name, targetTime string) error
	DeleteHabit(ctx context.Context, userID int64) error
}
