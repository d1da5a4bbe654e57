package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/attendance"
	"github.com/Zimbwa03/Global-Intercessors-sub006/tests"
)

func rec(id int64, day int, status string, createdAt time.Time) attendance.Record {
	return attendance.Record{
		ID:        id,
		UserID:    "alice",
		SlotID:    13,
		Date:      core.NewDate(2025, 3, day),
		Status:    status,
		CreatedAt: createdAt,
	}
}

func TestLatest(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	records := []attendance.Record{
		rec(1, 2, attendance.StatusMissed, t0),
		rec(2, 1, attendance.StatusAttended, t0),
		rec(3, 2, attendance.StatusAttended, t0.Add(time.Minute)), // correction of 1
		rec(4, 3, attendance.StatusMissed, t0),
		rec(5, 3, attendance.StatusAttended, t0), // same instant, higher id wins
	}

	got := attendance.Latest(records)
	require.Len(t, got, 3)
	wantIDs := []int64{2, 3, 5}
	for i, r := range got {
		assert.Equal(t, wantIDs[i], r.ID, "Latest()[%d]", i)
	}
}

func TestSummarize(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		statuses []string
		want     attendance.Summary
	}{
		{name: "empty", want: attendance.Summary{}},
		{
			name:     "all attended",
			statuses: []string{"attended", "attended", "attended"},
			want:     attendance.Summary{Attended: 3, Rate: 1, CurrentStreak: 3, LongestStreak: 3},
		},
		{
			name:     "miss breaks the streak",
			statuses: []string{"attended", "attended", "missed", "attended"},
			want:     attendance.Summary{Attended: 3, Missed: 1, Rate: 0.75, CurrentStreak: 1, LongestStreak: 2},
		},
		{
			name:     "skipped is neutral",
			statuses: []string{"attended", "skipped", "skipped", "attended"},
			want:     attendance.Summary{Attended: 2, Skipped: 2, Rate: 1, CurrentStreak: 2, LongestStreak: 2},
		},
		{
			name:     "only skipped",
			statuses: []string{"skipped"},
			want:     attendance.Summary{Skipped: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]attendance.Record, 0, len(tt.statuses))
			for i, s := range tt.statuses {
				records = append(records, rec(int64(i+1), i+1, s, t0))
			}
			assert.Equal(t, tt.want, attendance.Summarize(records))
		})
	}
}

func TestService_Summary(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	clock := testutil.FreezeTime(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

	record := func(day int, status string) {
		_, err := env.Attendance.Record(ctx, attendance.NewRecord{
			UserID: "alice",
			SlotID: 13,
			Date:   core.NewDate(2025, 3, day),
			Status: status,
		})
		require.NoError(t, err)
		clock.Advance(time.Second)
	}
	record(1, attendance.StatusAttended)
	record(2, attendance.StatusMissed)
	record(2, attendance.StatusAttended) // correction
	record(3, attendance.StatusAttended)
	record(9, attendance.StatusMissed) // out of range

	sum, err := env.Attendance.Summary(ctx, "alice", core.NewDate(2025, 3, 1), core.NewDate(2025, 3, 8))
	require.NoError(t, err)
	assert.Equal(t, "alice", sum.UserID)
	assert.Equal(t, 3, sum.Attended)
	assert.Equal(t, 0, sum.Missed)
	assert.Equal(t, 3, sum.CurrentStreak)

	all, err := env.Attendance.Query(ctx, attendance.QueryFilter{UserID: "alice"})
	require.NoError(t, err)
	assert.Len(t, all, 5, "the log keeps every row")

	exists, err := env.Attendance.Exists(ctx, "alice", 13, core.NewDate(2025, 3, 9))
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = env.Attendance.Exists(ctx, "alice", 13, core.NewDate(2025, 3, 4))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMeeting_Duration(t *testing.T) {
	join := time.Date(2025, 3, 1, 6, 1, 0, 0, time.UTC)
	tests := []struct {
		name string
		m    attendance.Meeting
		want time.Duration
	}{
		{name: "unknown", want: 0},
		{name: "joined only", m: attendance.Meeting{JoinTime: null.TimeFrom(join)}, want: 0},
		{name: "full", m: attendance.Meeting{JoinTime: null.TimeFrom(join), LeaveTime: null.TimeFrom(join.Add(27 * time.Minute))}, want: 27 * time.Minute},
		{name: "inverted", m: attendance.Meeting{JoinTime: null.TimeFrom(join), LeaveTime: null.TimeFrom(join.Add(-time.Minute))}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Duration(); got != tt.want {
				t.Errorf("Duration() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestNewRecord_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()
	day := core.NewDate(2025, 3, 1)
	tests := []struct {
		name    string
		nr      attendance.NewRecord
		wantErr bool
	}{
		{name: "valid", nr: attendance.NewRecord{UserID: "alice", SlotID: 1, Date: day, Status: "ATTENDED"}},
		{name: "missing user", nr: attendance.NewRecord{SlotID: 1, Date: day, Status: "missed"}, wantErr: true},
		{name: "missing slot", nr: attendance.NewRecord{UserID: "alice", Date: day, Status: "missed"}, wantErr: true},
		{name: "missing date", nr: attendance.NewRecord{UserID: "alice", SlotID: 1, Status: "missed"}, wantErr: true},
		{name: "unknown status", nr: attendance.NewRecord{UserID: "alice", SlotID: 1, Date: day, Status: "late"}, wantErr: true},
		{name: "skipped is not reported", nr: attendance.NewRecord{UserID: "alice", SlotID: 1, Date: day, Status: "skipped"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.nr.Validate(validate); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v; wantErr %v", err, tt.wantErr)
			}
		})
	}
}
