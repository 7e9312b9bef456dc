package domain

import "context"

const (
	// MaxChallengeDays is the fixed length of a challenge.
	MaxChallengeDays = 30
	// MissDaysThreshold is the largest gap, in days, allowed between the
	// last recorded day and today before the streak resets.
	MissDaysThreshold = 2
	// DateFormat is the calendar-date layout used for LogDate and all
	// "today" comparisons. No time component.
	DateFormat = "2006-01-02"
)

// ProgressLog is one recorded day of the current challenge. Uniqueness on
// (UserID, LogDate) is enforced by every store implementation.
type ProgressLog struct {
	UserID         int64  `json:"userId"`
	LogDate        string `json:"logDate"`        // DateFormat
	CompletionHour int    `json:"completionHour"` // 0-23
}

// ProgressLogRepository is the port for progress-log persistence.
type ProgressLogRepository interface {
	// LoadLogs returns every log for the user, ordered by LogDate
	// descending. The ordering is part of the contract: callers read the
	// most recent day from index 0 without sorting.
	LoadLogs(ctx context.Context, userID int64) ([]ProgressLog, error)
	// UpsertLog writes the log for one calendar day. The write is atomic
	// and idempotent on (userID, logDate): re-recording the same day
	// overwrites the hour, never duplicates the row.
	UpsertLog(ctx context.Context, userID int64, logDate string, completionHour int) error
	// DeleteLog removes one day's log; it is a no-op when absent.
	DeleteLog(ctx context.Context, userID int64, logDate string) error
	DeleteAllLogs(ctx context.Context, userID int64) error
}
