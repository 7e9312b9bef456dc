// Package memory implements an in-memory store for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"habitloop/internal/domain"
)

// DB implements every domain repository in memory, guarded by one mutex.
type DB struct {
	mu       sync.Mutex
	habits   map[int64]domain.Habit
	logs     map[int64]map[string]domain.ProgressLog // userID -> logDate -> log
	history  map[int64][]domain.HistoryRecord
	settings map[int64]domain.NotificationSettings
	users    []*domain.User
	sessions map[string]*domain.Session

	userIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		habits:   make(map[int64]domain.Habit),
		logs:     make(map[int64]map[string]domain.ProgressLog),
		history:  make(map[int64][]domain.HistoryRecord),
		settings: make(map[int64]domain.NotificationSettings),
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var (
	_ domain.HabitRepository                = (*DB)(nil)
	_ domain.ProgressLogRepository          = (*DB)(nil)
	_ domain.HistoryRepository              = (*DB)(nil)
	_ domain.UserRepository                 = (*DB)(nil)
	_ domain.NotificationSettingsRepository = (*DB)(nil)
	_ domain.SessionRepository              = (*SessionRepo)(nil)
)

// --- HabitRepository ---

// LoadHabit returns the user's habit, or nil when none exists.
func (db *DB) LoadHabit(ctx context.Context, userID int64) (*domain.Habit, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if h, ok := db.habits[userID]; ok {
		ret := h
		return &ret, nil
	}
	return nil, nil
}

// UpsertHabit replaces the single habit row for the user.
func (db *DB) UpsertHabit(ctx context.Context, userID int64, name, targetTime string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.habits[userID] = domain.Habit{
		UserID:     userID,
		Name:       name,
		TargetTime: targetTime,
		Active:     true,
		CreatedAt:  time.Now().UTC(),
	}
	return nil
}

// DeleteHabit removes the habit. No-op when absent.
func (db *DB) DeleteHabit(ctx context.Context, userID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.habits, userID)
	return nil
}

// --- ProgressLogRepository ---

// LoadLogs returns the user's logs, descending by date.
func (db *DB) LoadLogs(ctx context.Context, userID int64) ([]domain.ProgressLog, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	byDate := db.logs[userID]
	out := make([]domain.ProgressLog, 0, len(byDate))
	for _, l := range byDate {
		out = append(out, l)
	}
	// LogDate is "2006-01-02", so string order is date order.
	sort.Slice(out, func(i, j int) bool {
		return out[i].LogDate > out[j].LogDate
	})
	return out, nil
}

// UpsertLog writes one day's log, idempotent on (userID, logDate).
func (db *DB) UpsertLog(ctx context.Context, userID int64, logDate string, completionHour int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.logs[userID] == nil {
		db.logs[userID] = make(map[string]domain.ProgressLog)
	}
	db.logs[userID][logDate] = domain.ProgressLog{
		UserID:         userID,
		LogDate:        logDate,
		CompletionHour: completionHour,
	}
	return nil
}

// DeleteLog removes one day's log. No-op when absent.
func (db *DB) DeleteLog(ctx context.Context, userID int64, logDate string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.logs[userID], logDate)
	return nil
}

// DeleteAllLogs removes every log for the user.
func (db *DB) DeleteAllLogs(ctx context.Context, userID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.logs, userID)
	return nil
}

// --- HistoryRepository ---

// LoadHistory returns archived challenges, descending by archive time.
func (db *DB) LoadHistory(ctx context.Context, userID int64) ([]domain.HistoryRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.HistoryRecord, len(db.history[userID]))
	copy(result, db.history[userID])

	sort.Slice(result, func(i, j int) bool {
		return result[i].ArchivedAt.After(result[j].ArchivedAt)
	})
	return result, nil
}

// InsertHistory appends one record.
func (db *DB) InsertHistory(ctx context.Context, record domain.HistoryRecord) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	// Freeze the summary so later slices held by the caller can't alias it.
	summary := make([]domain.ProgressLog, len(record.LogSummary))
	copy(summary, record.LogSummary)
	record.LogSummary = summary

	db.history[record.UserID] = append(db.history[record.UserID], record)
	return nil
}

// --- NotificationSettingsRepository ---

// GetSettings returns the user's settings, or nil when none are stored.
func (db *DB) GetSettings(ctx context.Context, userID int64) (*domain.NotificationSettings, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if s, ok := db.settings[userID]; ok {
		ret := s
		return &ret, nil
	}
	return nil, nil
}

// SaveSettings upserts the user's settings.
func (db *DB) SaveSettings(ctx context.Context, settings domain.NotificationSettings) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	settings.UpdatedAt = time.Now().UTC()
	db.settings[settings.UserID] = settings
	return nil
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, errors.New("user already exists")
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	return u, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		return s, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
