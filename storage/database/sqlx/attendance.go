package sqlxrepos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/attendance"
)

const attendanceColumns = "id, user_id, slot_id, date, status, zoom_join_time, zoom_leave_time, zoom_meeting_id, created_at"

// attendanceRepository never updates or deletes rows.
type attendanceRepository struct {
	store
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{store{db: db}}
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	var created attendance.Record
	err := sqlx.GetContext(
		ctx, repo.exec(ctx), &created,
		`INSERT INTO attendance_log (user_id, slot_id, date, status, zoom_join_time, zoom_leave_time, zoom_meeting_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+attendanceColumns,
		r.UserID, r.SlotID, r.Date, r.Status, r.JoinTime, r.LeaveTime, r.MeetingID, r.CreatedAt,
	)
	return created, err
}

func (repo *attendanceRepository) FilterRecords(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	var conds []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.UserID != "" {
		add("user_id = $%d", filter.UserID)
	}
	if filter.SlotID != 0 {
		add("slot_id = $%d", filter.SlotID)
	}
	if !filter.From.IsZero() {
		add("date >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("date <= $%d", filter.To)
	}
	if len(filter.Statuses) > 0 {
		add("status = ANY($%d)", pq.Array(filter.Statuses))
	}

	items := make([]attendance.Record, 0)
	err := sqlx.SelectContext(
		ctx, repo.exec(ctx), &items,
		"SELECT "+attendanceColumns+" FROM attendance_log"+where(conds)+" ORDER BY date, created_at, id",
		args...,
	)
	return items, err
}

func (repo *attendanceRepository) RecordExists(ctx context.Context, userID string, slotID int, date core.Date) (bool, error) {
	var found bool
	err := sqlx.GetContext(
		ctx, repo.exec(ctx), &found,
		"SELECT EXISTS (SELECT 1 FROM attendance_log WHERE user_id = $1 AND slot_id = $2 AND date = $3)",
		userID, slotID, date,
	)
	return found, err
}
