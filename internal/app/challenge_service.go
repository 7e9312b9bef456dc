package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"habitloop/internal/domain"
)

// ErrNoActiveHabit indicates that an operation requiring an active habit was
// called while none exists.
var ErrNoActiveHabit = errors.New("no active habit")

// ChallengeService drives the habit lifecycle: starting a challenge,
// finishing it (archive, log reset, habit deletion, in that order), and
// listing past challenges.
type ChallengeService struct {
	habits   domain.HabitRepository
	history  domain.HistoryRepository
	progress *ProgressService
	notifier domain.Notifier
}

// NewChallengeService creates a ChallengeService.
func NewChallengeService(habits domain.HabitRepository, history domain.HistoryRepository, progress *ProgressService, notifier domain.Notifier) *ChallengeService {
	return &ChallengeService{habits: habits, history: history, progress: progress, notifier: notifier}
}

// Get returns the user's active habit, or nil when none exists.
func (s *ChallengeService) Get(ctx context.Context, userID int64) (*domain.Habit, error) {
	return s.habits.LoadHabit(ctx, userID)
}

// Start validates and stores the habit, replacing any previous one, and sends
// a best-effort start notification.
func (s *ChallengeService) Start(ctx context.Context, userID int64, name, targetTime string) error {
	if name == "" {
		return errors.New("name must not be empty")
	}
	if _, err := time.Parse("15:04", targetTime); err != nil {
		return errors.New("targetTime must be \"HH:MM\"")
	}
	if err := s.habits.UpsertHabit(ctx, userID, name, targetTime); err != nil {
		return err
	}
	s.notify(ctx, userID, fmt.Sprintf("🎯 Challenge started: %s", name))
	return nil
}

// Finish archives the completed challenge and clears the active state. The
// three steps run in a fixed order: insert the history record, delete all
// logs, delete the habit. A failed insert leaves logs and habit untouched, so
// the whole operation can be retried.
func (s *ChallengeService) Finish(ctx context.Context, userID int64, now time.Time) (*domain.HistoryRecord, error) {
	habit, err := s.habits.LoadHabit(ctx, userID)
	if err != nil {
		return nil, err
	}
	if habit == nil {
		return nil, ErrNoActiveHabit
	}

	record, err := s.progress.Archive(ctx, userID, habit.Name, habit.TargetTime, now)
	if err != nil {
		return nil, err
	}
	if err := s.progress.ResetLogs(ctx, userID); err != nil {
		return record, err
	}
	if err := s.habits.DeleteHabit(ctx, userID); err != nil {
		return record, err
	}
	return record, nil
}

// History returns the user's archived challenges, most recent first.
func (s *ChallengeService) History(ctx context.Context, userID int64) ([]domain.HistoryRecord, error) {
	return s.history.LoadHistory(ctx, userID)
}

func (s *ChallengeService) notify(ctx context.Context, userID int64, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, message); err != nil {
		log.Printf("notify user %d: %v", userID, err)
	}
}
