package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"habitloop/internal/domain"
)

// LoadHistory returns the user's archived challenges, ordered by archived_at
// descending.
func (d *DB) LoadHistory(ctx context.Context, userID int64) ([]domain.HistoryRecord, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, habit_name, target_time, archived_at, total_days, log_summary FROM habit_history WHERE user_id = $1 ORDER BY archived_at DESC;", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.HistoryRecord
	for rows.Next() {
		r := domain.HistoryRecord{UserID: userID}
		var summary []byte
		if err := rows.Scan(&r.ID, &r.HabitName, &r.TargetTime, &r.ArchivedAt, &r.TotalDays, &summary); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(summary, &r.LogSummary); err != nil {
			return nil, fmt.Errorf("decode log_summary: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertHistory appends one immutable record. The whole record is a single
// insert, so a failure leaves no partial archive behind.
func (d *DB) InsertHistory(ctx context.Context, record domain.HistoryRecord) error {
	summary, err := json.Marshal(record.LogSummary)
	if err != nil {
		return fmt.Errorf("encode log_summary: %w", err)
	}
	_, err = d.sql.ExecContext(ctx,
		"INSERT INTO habit_history(id, user_id, habit_name, target_time, archived_at, total_days, log_summary) VALUES($1, $2, $3, $4, $5, $6, $7);",
		record.ID, record.UserID, record.HabitName, record.TargetTime, record.ArchivedAt.UTC(), record.TotalDays, summary,
	)
	return err
}
