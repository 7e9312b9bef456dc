package domain

import (
	"context"
	"time"
)

// Notifier delivers best-effort push messages for domain events. A failed
// delivery must never fail the state transition that triggered it; callers
// log the error and move on.
type Notifier interface {
	Notify(ctx context.Context, userID int64, message string) error
}

// NotificationSettings holds a user's push-delivery preferences.
type NotificationSettings struct {
	UserID     int64     `json:"userId"`
	LineUserID string    `json:"lineUserId"`
	Enabled    bool      `json:"enabled"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NotificationSettingsRepository is the port for notification preferences.
type NotificationSettingsRepository interface {
	// GetSettings returns the user's settings, or nil when none are stored.
	GetSettings(ctx context.Context, userID int64) (*NotificationSettings, error)
	SaveSettings(ctx context.Context, settings NotificationSettings) error
}
