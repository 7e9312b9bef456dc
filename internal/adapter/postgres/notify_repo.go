package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"habitloop/internal/domain"
)

// GetSettings returns the user's notification settings, or nil when none are
// stored.
func (d *DB) GetSettings(ctx context.Context, userID int64) (*domain.NotificationSettings, error) {
	var s domain.NotificationSettings
	err := d.sql.QueryRowContext(ctx,
		"SELECT user_id, line_user_id, enabled, updated_at FROM notification_settings WHERE user_id = $1;",
		userID,
	).Scan(&s.UserID, &s.LineUserID, &s.Enabled, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSettings upserts the user's notification settings.
func (d *DB) SaveSettings(ctx context.Context, settings domain.NotificationSettings) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO notification_settings(user_id, line_user_id, enabled, updated_at) VALUES($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET line_user_id = EXCLUDED.line_user_id, enabled = EXCLUDED.enabled, updated_at = EXCLUDED.updated_at;`,
		settings.UserID, settings.LineUserID, settings.Enabled, time.Now().UTC(),
	)
	return err
}
