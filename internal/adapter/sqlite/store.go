package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"habitloop/internal/domain"

	"github.com/google/uuid"
)

// Timestamps are stored as RFC 3339 text; SQLite has no native time type.

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

// LoadHabit returns the user's active habit, or nil when none exists.
func (d *DB) LoadHabit(ctx context.Context, userID int64) (*domain.Habit, error) {
	var (
		h         domain.Habit
		createdAt string
	)
	err := d.sql.QueryRowContext(ctx,
		"SELECT user_id, name, target_time, active, created_at FROM habits WHERE user_id = ?;",
		userID,
	).Scan(&h.UserID, &h.Name, &h.TargetTime, &h.Active, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if h.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &h, nil
}

// UpsertHabit replaces the single habit row for the user.
func (d *DB) UpsertHabit(ctx context.Context, userID int64, name, targetTime string) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO habits(user_id, name, target_time, active, created_at) VALUES(?, ?, ?, 1, ?)
		 ON CONFLICT (user_id) DO UPDATE SET name = excluded.name, target_time = excluded.target_time, active = 1, created_at = excluded.created_at;`,
		userID, name, targetTime, formatTime(time.Now()),
	)
	return err
}

// DeleteHabit removes the active habit. No-op when absent.
func (d *DB) DeleteHabit(ctx context.Context, userID int64) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM habits WHERE user_id = ?;", userID)
	return err
}

// --- ProgressLogRepository ---

// LoadLogs returns every progress log for the user, descending by log_date.
func (d *DB) LoadLogs(ctx context.Context, userID int64) ([]domain.ProgressLog, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT log_date, completion_hour FROM progress_logs WHERE user_id = ? ORDER BY log_date DESC;", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.ProgressLog
	for rows.Next() {
		l := domain.ProgressLog{UserID: userID}
		if err := rows.Scan(&l.LogDate, &l.CompletionHour); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpsertLog writes one day's log, idempotent on (user_id, log_date).
func (d *DB) UpsertLog(ctx context.Context, userID int64, logDate string, completionHour int) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO progress_logs(user_id, log_date, completion_hour, created_at) VALUES(?, ?, ?, ?)
		 ON CONFLICT (user_id, log_date) DO UPDATE SET completion_hour = excluded.completion_hour;`,
		userID, logDate, completionHour, formatTime(time.Now()),
	)
	return err
}

// DeleteLog removes one day's log. No-op when absent.
func (d *DB) DeleteLog(ctx context.Context, userID int64, logDate string) error {
	_, err := d.sql.ExecContext(ctx,
		"DELETE FROM progress_logs WHERE user_id = ? AND log_date = ?;", userID, logDate)
	return err
}

// DeleteAllLogs removes every log for the user.
func (d *DB) DeleteAllLogs(ctx context.Context, userID int64) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM progress_logs WHERE user_id = ?;", userID)
	return err
}

// --- HistoryRepository ---

// LoadHistory returns archived challenges, descending by archived_at.
func (d *DB) LoadHistory(ctx context.Context, userID int64) ([]domain.HistoryRecord, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, habit_name, target_time, archived_at, total_days, log_summary FROM habit_history WHERE user_id = ? ORDER BY archived_at DESC;", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.HistoryRecord
	for rows.Next() {
		r := domain.HistoryRecord{UserID: userID}
		var (
			id         string
			archivedAt string
			summary    []byte
		)
		if err := rows.Scan(&id, &r.HabitName, &r.TargetTime, &archivedAt, &r.TotalDays, &summary); err != nil {
			return nil, err
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse history id: %w", err)
		}
		if r.ArchivedAt, err = parseTime(archivedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(summary, &r.LogSummary); err != nil {
			return nil, fmt.Errorf("decode log_summary: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertHistory appends one immutable record in a single insert.
func (d *DB) InsertHistory(ctx context.Context, record domain.HistoryRecord) error {
	summary, err := json.Marshal(record.LogSummary)
	if err != nil {
		return fmt.Errorf("encode log_summary: %w", err)
	}
	_, err = d.sql.ExecContext(ctx,
		"INSERT INTO habit_history(id, user_id, habit_name, target_time, archived_at, total_days, log_summary) VALUES(?, ?, ?, ?, ?, ?, ?);",
		record.ID.String(), record.UserID, record.HabitName, record.TargetTime, formatTime(record.ArchivedAt), record.TotalDays, string(summary),
	)
	return err
}

// --- UserRepository ---

// GetByUsername retrieves a user by username, or nil when absent.
func (d *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return d.scanUser(d.sql.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?;", username))
}

// GetByID retrieves a user by ID, or nil when absent.
func (d *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return d.scanUser(d.sql.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE id = ?;", id))
}

func (d *DB) scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u         domain.User
		createdAt string
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create creates a new user.
func (d *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	now := time.Now()
	res, err := d.sql.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?);",
		username, passwordHash, formatTime(now),
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: now.UTC()}, nil
}

// Count returns the total number of users.
func (d *DB) Count(ctx context.Context) (int, error) {
	var count int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM users;").Scan(&count)
	return count, err
}

// --- SessionRepository ---

// SessionRepo implements session repository operations on DB.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo wraps a DB as a SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token, expires_at, created_at) VALUES (?, ?, ?, ?);",
		userID, token, formatTime(expiresAt), formatTime(time.Now()),
	)
	return err
}

// GetByToken retrieves a session by token, or nil when absent.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var (
		s         domain.Session
		expiresAt string
		createdAt string
	)
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?;", token,
	).Scan(&s.Token, &s.UserID, &expiresAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if s.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?;", token)
	return err
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?;", formatTime(time.Now()))
	return err
}

// --- NotificationSettingsRepository ---

// GetSettings returns the user's notification settings, or nil when absent.
func (d *DB) GetSettings(ctx context.Context, userID int64) (*domain.NotificationSettings, error) {
	var (
		s         domain.NotificationSettings
		updatedAt string
	)
	err := d.sql.QueryRowContext(ctx,
		"SELECT user_id, line_user_id, enabled, updated_at FROM notification_settings WHERE user_id = ?;", userID,
	).Scan(&s.UserID, &s.LineUserID, &s.Enabled, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSettings upserts the user's notification settings.
func (d *DB) SaveSettings(ctx context.Context, settings domain.NotificationSettings) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO notification_settings(user_id, line_user_id, enabled, updated_at) VALUES(?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET line_user_id = excluded.line_user_id, enabled = excluded.enabled, updated_at = excluded.updated_at;`,
		settings.UserID, settings.LineUserID, settings.Enabled, formatTime(time.Now()),
	)
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
