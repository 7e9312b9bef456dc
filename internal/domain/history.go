package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HistoryRecord is an immutable snapshot of a finished challenge, frozen at
// archive time. It is never mutated or deleted.
type HistoryRecord struct {
	ID         uuid.UUID     `json:"id"`
	UserID     int64         `json:"userId"`
	HabitName  string        `json:"habitName"`
	TargetTime string        `json:"targetTime"`
	ArchivedAt time.Time     `json:"archivedAt"`
	TotalDays  int           `json:"totalDays"`
	LogSummary []ProgressLog `json:"logSummary"` // ascending by LogDate
}

// HistoryRepository is the port for challenge-history persistence.
type HistoryRepository interface {
	// LoadHistory returns the user's archived challenges, ordered by
	// ArchivedAt descending.
	LoadHistory(ctx context.Context, userID int64) ([]HistoryRecord, error)
	// InsertHistory appends one record. It must either persist the whole
	// record or fail without side effects.
	InsertHistory(ctx context.Context, record HistoryRecord) error
}
