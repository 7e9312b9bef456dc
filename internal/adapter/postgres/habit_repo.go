package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"habitloop/internal/domain"
)

// LoadHabit returns the user's active habit, or nil when none exists.
func (d *DB) LoadHabit(ctx context.Context, userID int64) (*domain.Habit, error) {
	var h domain.Habit
	err := d.sql.QueryRowContext(ctx,
		"SELECT user_id, name, target_time, active, created_at FROM habits WHERE user_id = $1;",
		userID,
	).Scan(&h.UserID, &h.Name, &h.TargetTime, &h.Active, &h.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// UpsertHabit replaces the single habit row for the user.
func (d *DB) UpsertHabit(ctx context.Context, userID int64, name, targetTime string) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO habits(user_id, name, target_time, active, created_at) VALUES($1, $2, $3, TRUE, $4)
		 ON CONFLICT (user_id) DO UPDATE SET name = EXCLUDED.name, target_time = EXCLUDED.target_time, active = TRUE, created_at = EXCLUDED.created_at;`,
		userID, name, targetTime, time.Now().UTC(),
	)
	return err
}

// DeleteHabit removes the active habit. No-op when absent.
func (d *DB) DeleteHabit(ctx context.Context, userID int64) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM habits WHERE user_id = $1;", userID)
	return err
}
