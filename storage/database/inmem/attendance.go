package inmemdb

import (
	"context"
	"sort"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	defer repo.db.lock(ctx)()

	repo.db.t.attendanceSeq++
	r.ID = repo.db.t.attendanceSeq
	repo.db.t.attendance = append(repo.db.t.attendance, r)
	return r, nil
}

func (repo *attendanceRepository) FilterRecords(_ context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	records := make([]attendance.Record, 0)
	for _, r := range repo.db.t.attendance {
		if filter.Match(r) {
			records = append(records, r)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date.Time)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

func (repo *attendanceRepository) RecordExists(_ context.Context, userID string, slotID int, date core.Date) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, r := range repo.db.t.attendance {
		if r.UserID == userID && r.SlotID == slotID && r.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}
