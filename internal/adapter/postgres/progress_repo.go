package postgres

import (
	"context"
	"time"

	"habitloop/internal/domain"
)

// LoadLogs returns every progress log for the user, ordered by log_date
// descending per the repository contract.
func (d *DB) LoadLogs(ctx context.Context, userID int64) ([]domain.ProgressLog, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT log_date, completion_hour FROM progress_logs WHERE user_id = $1 ORDER BY log_date DESC;", userID)
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

// UpsertLog writes one day's log. The ON CONFLICT clause makes the write
// atomic and idempotent on (user_id, log_date).
func (d *DB) UpsertLog(ctx context.Context, userID int64, logDate string, completionHour int) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO progress_logs(user_id, log_date, completion_hour, created_at) VALUES($1, $2, $3, $4)
		 ON CONFLICT (user_id, log_date) DO UPDATE SET completion_hour = EXCLUDED.completion_hour;`,
		userID, logDate, completionHour, time.Now().UTC(),
	)
	return err
}

// DeleteLog removes one day's log. No-op when absent.
func (d *DB) DeleteLog(ctx context.Context, userID int64, logDate string) error {
	_, err := d.sql.ExecContext(ctx,
		"DELETE FROM progress_logs WHERE user_id = $1 AND log_date = $2;", userID, logDate)
	return err
}

// DeleteAllLogs removes every log for the user.
func (d *DB) DeleteAllLogs(ctx context.Context, userID int64) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM progress_logs WHERE user_id = $1;", userID)
	return err
}
