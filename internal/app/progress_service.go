// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"habitloop/internal/domain"

	"github.com/google/uuid"
)

var (
	// ErrAlreadyRecorded indicates that today's habit has already been
	// recorded. Callers should check Status.CanRecord first; the engine
	// fails loudly rather than silently double-counting.
	ErrAlreadyRecorded = errors.New("already recorded today")
	// ErrChallengeNotCompleted indicates that Archive was called before the
	// challenge reached its full length.
	ErrChallengeNotCompleted = errors.New("challenge is not completed")
)

// ProgressService is the progress engine: it interprets a user's log history
// into streak state and drives the record/undo/reset/archive transitions.
// The service holds no per-user state between calls; everything lives in the
// repositories.
type ProgressService struct {
	logs     domain.ProgressLogRepository
	history  domain.HistoryRepository
	notifier domain.Notifier
}

// NewProgressService creates a ProgressService backed by the given
// repositories. notifier may be nil to disable push delivery.
func NewProgressService(logs domain.ProgressLogRepository, history domain.HistoryRepository, notifier domain.Notifier) *ProgressService {
	return &ProgressService{logs: logs, history: history, notifier: notifier}
}

// ComputeStatus reduces a log list (descending by date, per the repository
// contract) to the current count and most recent date. The count is the total
// number of recorded days, not a run of consecutive calendar days: a gap
// within the miss threshold keeps the count growing. lastDate is "" when no
// logs exist.
func ComputeStatus(logs []domain.ProgressLog) (count int, lastDate string) {
	if len(logs) == 0 {
		return 0, ""
	}
	return len(logs), logs[0].LogDate
}

// CanRecordToday reports whether a record for today is allowed: at most one
// per calendar day.
func CanRecordToday(lastDate, today string) bool {
	return lastDate == "" || lastDate != today
}

// IsCompleted reports whether the challenge has reached its full length.
func IsCompleted(count int) bool {
	return count >= domain.MaxChallengeDays
}

// ShouldReset reports whether the gap between lastDate and today exceeds the
// miss threshold. Exactly MissDaysThreshold days elapsed does not reset;
// the comparison is strict.
func ShouldReset(lastDate, today string, count int) bool {
	if lastDate == "" || count == 0 {
		return false
	}
	last, err := time.Parse(domain.DateFormat, lastDate)
	if err != nil {
		return false
	}
	now, err := time.Parse(domain.DateFormat, today)
	if err != nil {
		return false
	}
	gap := int(now.Sub(last).Hours() / 24)
	return gap > domain.MissDaysThreshold
}

// Status is the challenge state reported to callers after the reset rule has
// been applied.
type Status struct {
	Count     int    `json:"count"`
	LastDate  string `json:"lastDate,omitempty"`
	Remaining int    `json:"remaining"`
	Completed bool   `json:"completed"`
	CanRecord bool   `json:"canRecord"`
	WasReset  bool   `json:"wasReset"`
}

// Status loads the user's logs, applies the miss-day reset rule, and returns
// the resulting state. The reset check runs before anything reads the count,
// so a stale streak is never reported.
func (s *ProgressService) Status(ctx context.Context, userID int64, today string) (Status, error) {
	logs, err := s.logs.LoadLogs(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	count, lastDate := ComputeStatus(logs)

	var wasReset bool
	if ShouldReset(lastDate, today, count) {
		if err := s.logs.DeleteAllLogs(ctx, userID); err != nil {
			return Status{}, err
		}
		count, lastDate = 0, ""
		wasReset = true
		s.notify(ctx, userID, "💤 The streak was reset after too many missed days. Today is a fresh start!")
	}

	remaining := domain.MaxChallengeDays - count
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Count:     count,
		LastDate:  lastDate,
		Remaining: remaining,
		Completed: IsCompleted(count),
		CanRecord: CanRecordToday(lastDate, today) && !IsCompleted(count),
		WasReset:  wasReset,
	}, nil
}

// RecordResult is the outcome of recording one day.
type RecordResult struct {
	Count     int               `json:"count"`
	Completed bool              `json:"completed"`
	Milestone *domain.Milestone `json:"milestone,omitempty"`
}

// RecordToday writes the log for the calendar day of now and returns the new
// count without a second read. The upsert is idempotent on (userID, date), so
// a double click cannot double-increment; a second call on the same day
// returns ErrAlreadyRecorded. The miss-day reset rule runs first.
func (s *ProgressService) RecordToday(ctx context.Context, userID int64, now time.Time) (RecordResult, error) {
	today := now.Format(domain.DateFormat)

	logs, err := s.logs.LoadLogs(ctx, userID)
	if err != nil {
		return RecordResult{}, err
	}
	count, lastDate := ComputeStatus(logs)

	if ShouldReset(lastDate, today, count) {
		if err := s.logs.DeleteAllLogs(ctx, userID); err != nil {
			return RecordResult{}, err
		}
		count, lastDate = 0, ""
		s.notify(ctx, userID, "💤 The streak was reset after too many missed days. Today is a fresh start!")
	}

	if !CanRecordToday(lastDate, today) {
		return RecordResult{Count: count, Completed: IsCompleted(count)}, ErrAlreadyRecorded
	}

	if err := s.logs.UpsertLog(ctx, userID, today, now.Hour()); err != nil {
		return RecordResult{}, err
	}

	newCount := count + 1
	res := RecordResult{
		Count:     newCount,
		Completed: IsCompleted(newCount),
		Milestone: domain.MilestoneFor(newCount),
	}
	switch {
	case res.Completed:
		s.notify(ctx, userID, "🏆 30-day challenge complete! Congratulations!")
	case res.Milestone != nil:
		s.notify(ctx, userID, fmt.Sprintf("%s %s %s", res.Milestone.Icon, res.Milestone.Title, res.Milestone.Message))
	}
	return res, nil
}

// UndoToday deletes today's log. Undoing a day that was never recorded is a
// no-op, not an error.
func (s *ProgressService) UndoToday(ctx context.Context, userID int64, today string) error {
	return s.logs.DeleteLog(ctx, userID, today)
}

// Logs returns the raw log list, descending by date.
func (s *ProgressService) Logs(ctx context.Context, userID int64) ([]domain.ProgressLog, error) {
	return s.logs.LoadLogs(ctx, userID)
}

// Archive freezes the current challenge into a HistoryRecord with the logs in
// ascending date order. It fails with ErrChallengeNotCompleted when called
// before the challenge is done, and leaves logs and habit untouched when the
// insert fails, so the operation is retryable. Clearing logs and deleting the
// habit are the caller's next steps, not Archive's.
func (s *ProgressService) Archive(ctx context.Context, userID int64, habitName, targetTime string, now time.Time) (*domain.HistoryRecord, error) {
	logs, err := s.logs.LoadLogs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !IsCompleted(len(logs)) {
		return nil, ErrChallengeNotCompleted
	}

	summary := make([]domain.ProgressLog, len(logs))
	for i, l := range logs {
		summary[len(logs)-1-i] = l
	}

	record := domain.HistoryRecord{
		ID:         uuid.New(),
		UserID:     userID,
		HabitName:  habitName,
		TargetTime: targetTime,
		ArchivedAt: now,
		TotalDays:  len(summary),
		LogSummary: summary,
	}
	if err := s.history.InsertHistory(ctx, record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ResetLogs removes every log for the user.
func (s *ProgressService) ResetLogs(ctx context.Context, userID int64) error {
	return s.logs.DeleteAllLogs(ctx, userID)
}

// SeedLogs replaces the user's logs with days consecutive entries ending
// today. Development helper behind the debug endpoint.
func (s *ProgressService) SeedLogs(ctx context.Context, userID int64, days int, now time.Time) error {
	if days < 0 || days > domain.MaxChallengeDays {
		return fmt.Errorf("days must be within [0, %d]", domain.MaxChallengeDays)
	}
	if err := s.logs.DeleteAllLogs(ctx, userID); err != nil {
		return err
	}
	for i := days - 1; i >= 0; i-- {
		d := now.AddDate(0, 0, -i).Format(domain.DateFormat)
		if err := s.logs.UpsertLog(ctx, userID, d, 9); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProgressService) notify(ctx context.Context, userID int64, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, message); err != nil {
		log.Printf("notify user %d: %v", userID, err)
	}
}
