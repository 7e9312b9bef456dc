package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"habitloop/internal/app"
	"habitloop/internal/domain"
)

type mockLogRepo struct {
	loadFn      func(ctx context.Context, userID int64) ([]domain.ProgressLog, error)
	upsertFn    func(ctx context.Context, userID int64, logDate string, hour int) error
	deleteFn    func(ctx context.Context, userID int64, logDate string) error
	deleteAllFn func(ctx context.Context, userID int64) error
}

func (m *mockLogRepo) LoadLogs(ctx context.Context, userID int64) ([]domain.ProgressLog, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockLogRepo) UpsertLog(ctx context.Context, userID int64, logDate string, hour int) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, userID, logDate, hour)
	}
	return nil
}

func (m *mockLogRepo) DeleteLog(ctx context.Context, userID int64, logDate string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, logDate)
	}
	return nil
}

func (m *mockLogRepo) DeleteAllLogs(ctx context.Context, userID int64) error {
	if m.deleteAllFn != nil {
		return m.deleteAllFn(ctx, userID)
	}
	return nil
}

type mockHistoryRepo struct {
	loadFn   func(ctx context.Context, userID int64) ([]domain.HistoryRecord, error)
	insertFn func(ctx context.Context, record domain.HistoryRecord) error
}

func (m *mockHistoryRepo) LoadHistory(ctx context.Context, userID int64) ([]domain.HistoryRecord, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockHistoryRepo) InsertHistory(ctx context.Context, record domain.HistoryRecord) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, record)
	}
	return nil
}

type mockNotifier struct {
	messages []string
	err      error
}

func (m *mockNotifier) Notify(ctx context.Context, userID int64, message string) error {
	m.messages = append(m.messages, message)
	return m.err
}

// descLogs builds a log list in descending date order from dates given
// ascending, mirroring the repository contract.
func descLogs(userID int64, dates ...string) []domain.ProgressLog {
	out := make([]domain.ProgressLog, 0, len(dates))
	for i := len(dates) - 1; i >= 0; i-- {
		out = append(out, domain.ProgressLog{UserID: userID, LogDate: dates[i], CompletionHour: 9})
	}
	return out
}

func TestComputeStatus(t *testing.T) {
	tests := []struct {
		name     string
		logs     []domain.ProgressLog
		count    int
		lastDate string
	}{
		{"empty", nil, 0, ""},
		{"single", descLogs(1, "2024-01-01"), 1, "2024-01-01"},
		{"consecutive", descLogs(1, "2024-01-01", "2024-01-02", "2024-01-03"), 3, "2024-01-03"},
		// A within-threshold gap still counts every recorded day.
		{"with gap", descLogs(1, "2024-01-01", "2024-01-03", "2024-01-04"), 3, "2024-01-04"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			count, lastDate := app.ComputeStatus(tc.logs)
			if count != tc.count || lastDate != tc.lastDate {
				t.Fatalf("got (%d, %q), want (%d, %q)", count, lastDate, tc.count, tc.lastDate)
			}
		})
	}
}

func TestCanRecordToday(t *testing.T) {
	if !app.CanRecordToday("", "2024-01-01") {
		t.Fatal("fresh start should allow recording")
	}
	if app.CanRecordToday("2024-01-01", "2024-01-01") {
		t.Fatal("same-day re-record must be rejected")
	}
	if !app.CanRecordToday("2024-01-01", "2024-01-02") {
		t.Fatal("next day should allow recording")
	}
}

func TestIsCompleted(t *testing.T) {
	tests := []struct {
		count int
		want  bool
	}{
		{0, false}, {29, false}, {30, true}, {31, true},
	}
	for _, tc := range tests {
		if got := app.IsCompleted(tc.count); got != tc.want {
			t.Errorf("IsCompleted(%d) = %v, want %v", tc.count, got, tc.want)
		}
	}
}

func TestShouldReset(t *testing.T) {
	tests := []struct {
		name     string
		lastDate string
		today    string
		count    int
		want     bool
	}{
		{"no logs", "", "2024-01-05", 0, false},
		{"zero count", "2024-01-01", "2024-01-05", 0, false},
		{"same day", "2024-01-01", "2024-01-01", 3, false},
		{"one day gap", "2024-01-01", "2024-01-02", 3, false},
		// Exactly the threshold does not reset; the comparison is strict.
		{"exactly threshold", "2024-01-01", "2024-01-03", 3, false},
		{"threshold plus one", "2024-01-01", "2024-01-04", 3, true},
		{"four day gap", "2024-01-01", "2024-01-05", 5, true},
		{"across month boundary", "2024-01-30", "2024-02-03", 7, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := app.ShouldReset(tc.lastDate, tc.today, tc.count); got != tc.want {
				t.Fatalf("ShouldReset(%q, %q, %d) = %v, want %v", tc.lastDate, tc.today, tc.count, got, tc.want)
			}
		})
	}
}

func TestStatus_FreshStart(t *testing.T) {
	svc := app.NewProgressService(&mockLogRepo{}, &mockHistoryRepo{}, nil)
	st, err := svc.Status(context.Background(), 1, "2024-01-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Count != 0 || st.LastDate != "" || st.Completed || st.WasReset {
		t.Fatalf("unexpected status: %+v", st)
	}
	if !st.CanRecord {
		t.Fatal("fresh start should allow recording")
	}
	if st.Remaining != domain.MaxChallengeDays {
		t.Fatalf("expected %d remaining, got %d", domain.MaxChallengeDays, st.Remaining)
	}
}

func TestStatus_MissReset(t *testing.T) {
	deletedAll := false
	repo := &mockLogRepo{
		loadFn: func(_ context.Context, _ int64) ([]domain.ProgressLog, error) {
			return descLogs(1, "2023-12-28", "2023-12-29", "2023-12-30", "2023-12-31", "2024-01-01"), nil
		},
		deleteAllFn: func(_ context.Context, _ int64) error {
			deletedAll = true
			return nil
		},
	}
	notifier := &mockNotifier{}
	svc := app.NewProgressService(repo, &mockHistoryRepo{}, notifier)

	// count=5, lastDate=2024-01-01, today=2024-01-05: a 4-day gap resets.
	st, err := svc.Status(context.Background(), 1, "2024-01-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deletedAll {
		t.Fatal("expected DeleteAllLogs to be called")
	}
	if !st.WasReset || st.Count != 0 || st.LastDate != "" {
		t.Fatalf("expected post-reset (0, \"\"), got %+v", st)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected one reset notification, got %d", len(notifier.messages))
	}
}

func TestStatus_ThresholdGapDoesNotReset(t *testing.T) {
	repo := &mockLogRepo{
		loadFn: func(_ context.Context, _ int64) ([]domain.ProgressLog, error) {
			return descLogs(1, "2023-12-31", "2024-01-01"), nil
		},
		deleteAllFn: func(_ context.Context, _ int64) error {
			t.Fatal("DeleteAllLogs must not be called for a threshold gap")
			return nil
		},
	}
	svc := app.NewProgressService(repo, &mockHistoryRepo{}, nil)

	st, err := svc.Status(context.Background(), 1, "2024-01-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.WasReset || st.Count != 2 || st.LastDate != "2024-01-01" {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestRecordToday_FirstRecord(t *testing.T) {
	var gotDate string
	var gotHour int
	repo := &mockLogRepo{
		upsertFn: func(_ context.Context, _ int64, logDate string, hour int) error {
			gotDate, gotHour = logDate, hour
			return nil
		},
	}
	svc := app.NewProgressService(repo, &mockHistoryRepo{}, nil)

	now := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	res, err := svc.RecordToday(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Count != 1 || res.Completed || res.Milestone != nil {
		t.Fatalf("unexpected result: %+v", res)
	}
	if gotDate != "2024-01-01" || gotHour != 9 {
		t.Fatalf("expected upsert (2024-01-01, 9), got (%s, %d)", gotDate, gotHour)
	}
}

func TestRecordToday_SameDayRejected(t *testing.T) {
	upserts := 0
	repo := &mockLogRepo{
		loadFn: func(_ context.Context, _ int64) ([]domain.ProgressLog, error) {
			return descLogs(1, "2024-01-01"), nil
		},
		upsertFn: func(_ context.Context, _ int64, _ string, _ int) error {
			upserts++
			return nil
		},
	}
	svc := app.NewProgressService(repo, &mockHistoryRepo{}, nil)

	now := time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC)
	res, err := svc.RecordToday(context.Background(), 1, now)
	if !errors.Is(err, app.ErrAlreadyRecorded) {
		t.Fatalf("expected ErrAlreadyRecorded, got %v", err)
	}
	if res.Count != 1 {
		t.Fatalf("expected count to stay 1, got %d", res.Count)
	}
	if upserts != 0 {
		t.Fatalf("expected no upsert, got %d", upserts)
	}
}

func TestRecordToday_CountsAcrossSmallGap(t *testing.T) {
	repo := &mockLogRepo{
		loadFn: func(_ context.Context, _ int64) ([]domain.ProgressLog, error) {
			// Day 2 was skipped; the gap is within the threshold.
			return descLogs(1, "2024-01-01", "2024-01-03"), nil
		},
	}
	svc := app.NewProgressService(repo, &mockHistoryRepo{}, nil)

	now := time.Date(2024, 1, 4, 8, 0, 0, 0, time.UTC)
	res, err := svc.RecordToday(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Count != 3 {
		t.Fatalf("expected count 3 (total recorded days), got %d", res.Count)
	}
	if res.Milestone == nil {
		t.Fatal("expected the 3-day milestone")
	}
}

func TestRecordToday_ResetThenRecord(t *testing.T) {
	deletedAll := false
	repo := &mockLogRepo{
		loadFn: func(_ context.Context, _ int64) ([]domain.ProgressLog, error) {
			return descLogs(1, "2023-12-30", "2023-12-31", "2024-01-01"), nil
		},
		deleteAllFn: func(_ context.Context, _ int64) error {
			deletedAll = true
			return nil
		},
	}
	notifier := &mockNotifier{}
	svc := app.NewProgressService(repo, &mockHistoryRepo{}, notifier)

	now := time.Date(2024, 1, 10, 7, 0, 0, 0, time.UTC)
	res, err := svc.RecordToday(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deletedAll {
		t.Fatal("expected the stale streak to be cleared first")
	}
	if res.Count != 1 {
		t.Fatalf("expected count 1 after reset, got %d", res.Count)
	}
}

func TestRecordToday_MilestoneNotification(t *testing.T) {
	repo := &mockLogRepo{
		loadFn: func(_ context.Context, _ int64) ([]domain.ProgressLog, error) {
			return descLogs(1, "2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05", "2024-01-06"), nil
		},
	}
	notifier := &mockNotifier{}
	svc := app.NewProgressService(repo, &mockHistoryRepo{}, notifier)

	now := time.Date(2024, 1, 7, 6, 0, 0, 0, time.UTC)
	res, err := svc.RecordToday(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Count != 7 || res.Milestone == nil {
		t.Fatalf("expected the 7-day milestone, got %+v", res)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.messages))
	}
}

func TestRecordToday_Completion(t *testing.T) {
	dates := make([]string, 0, 29)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 29; i++ {
		dates = append(dates, base.AddDate(0, 0, i).Format(domain.DateFormat))
	}
	repo := &mockLogRepo{
		loadFn: func(_ context.Context, _ int64) ([]domain.ProgressLog, error) {
			return descLogs(1, dates...), nil
		},
	}
	notifier := &mockNotifier{}
	svc := app.NewProgressService(repo, &mockHistoryRepo{}, notifier)

	now := base.AddDate(0, 0, 29).Add(10 * time.Hour)
	res, err := svc.RecordToday(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Count != 30 || !res.Completed {
		t.Fatalf("expected completed at 30, got %+v", res)
	}
	if res.Milestone == nil {
		t.Fatal("day 30 is also a milestone")
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected a single completion notification, got %d", len(notifier.messages))
	}
}

func TestRecordToday_NotifierFailureIsSwallowed(t *testing.T) {
	repo := &mockLogRepo{
		loadFn: func(_ context.Context, _ int64) ([]domain.ProgressLog, error) {
			return descLogs(1, "2024-01-01", "2024-01-02"), nil
		},
	}
	notifier := &mockNotifier{err: errors.New("push gateway down")}
	svc := app.NewProgressService(repo, &mockHistoryRepo{}, notifier)

	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	res, err := svc.RecordToday(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("notifier failure must not fail the record: %v", err)
	}
	if res.Count != 3 {
		t.Fatalf("expected count 3, got %d", res.Count)
	}
}

func TestUndoToday_NoLogIsNoop(t *testing.T) {
	repo := &mockLogRepo{
		deleteFn: func(_ context.Context, _ int64, logDate string) error {
			if logDate != "2024-01-01" {
				t.Fatalf("unexpected date: %s", logDate)
			}
			return nil
		},
	}
	svc := app.NewProgressService(repo, &mockHistoryRepo{}, nil)
	if err := svc.UndoToday(context.Background(), 1, "2024-01-01"); err != nil {
		t.Fatalf("undo with no log must be a no-op, got %v", err)
	}
}

func TestArchive_NotCompleted(t *testing.T) {
	repo := &mockLogRepo{
		loadFn: func(_ context.Context, _ int64) ([]domain.ProgressLog, error) {
			return descLogs(1, "2024-01-01", "2024-01-02"), nil
		},
	}
	inserted := false
	hist := &mockHistoryRepo{
		insertFn: func(_ context.Context, _ domain.HistoryRecord) error {
			inserted = true
			return nil
		},
	}
	svc := app.NewProgressService(repo, hist, nil)

	_, err := svc.Archive(context.Background(), 1, "Morning run", "06:30", time.Now())
	if !errors.Is(err, app.ErrChallengeNotCompleted) {
		t.Fatalf("expected ErrChallengeNotCompleted, got %v", err)
	}
	if inserted {
		t.Fatal("nothing should be persisted for an unfinished challenge")
	}
}

func TestArchive_Success(t *testing.T) {
	dates := make([]string, 0, 30)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		dates = append(dates, base.AddDate(0, 0, i).Format(domain.DateFormat))
	}
	repo := &mockLogRepo{
		loadFn: func(_ context.Context, _ int64) ([]domain.ProgressLog, error) {
			return descLogs(1, dates...), nil
		},
	}
	var got domain.HistoryRecord
	hist := &mockHistoryRepo{
		insertFn: func(_ context.Context, record domain.HistoryRecord) error {
			got = record
			return nil
		},
	}
	svc := app.NewProgressService(repo, hist, nil)

	archivedAt := time.Date(2024, 1, 30, 22, 0, 0, 0, time.UTC)
	record, err := svc.Archive(context.Background(), 1, "Morning run", "06:30", archivedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.TotalDays != 30 {
		t.Fatalf("expected totalDays 30, got %d", record.TotalDays)
	}
	if record.HabitName != "Morning run" || record.TargetTime != "06:30" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if !record.ArchivedAt.Equal(archivedAt) {
		t.Fatalf("unexpected archivedAt: %v", record.ArchivedAt)
	}
	// The summary is the ascending reverse of the stored descending list.
	for i, l := range got.LogSummary {
		if l.LogDate != dates[i] {
			t.Fatalf("logSummary[%d] = %s, want %s", i, l.LogDate, dates[i])
		}
	}
}

func TestArchive_InsertFailureLeavesLogs(t *testing.T) {
	dates := make([]string, 0, 30)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		dates = append(dates, base.AddDate(0, 0, i).Format(domain.DateFormat))
	}
	repo := &mockLogRepo{
		loadFn: func(_ context.Context, _ int64) ([]domain.ProgressLog, error) {
			return descLogs(1, dates...), nil
		},
		deleteAllFn: func(_ context.Context, _ int64) error {
			t.Fatal("archive must not clear logs")
			return nil
		},
	}
	hist := &mockHistoryRepo{
		insertFn: func(_ context.Context, _ domain.HistoryRecord) error {
			return errors.New("store unavailable")
		},
	}
	svc := app.NewProgressService(repo, hist, nil)

	if _, err := svc.Archive(context.Background(), 1, "Morning run", "06:30", time.Now()); err == nil {
		t.Fatal("expected the store error to propagate")
	}
}
