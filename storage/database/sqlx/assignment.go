package sqlxrepos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/assignment"
)

const assignmentColumns = `id, user_id, user_email, slot_time, status, missed_count, skip_start_date, skip_end_date,
	released_at, created_at, updated_at`

type assignmentRepository struct {
	store
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) assignment.Repository {
	return &assignmentRepository{store{db: db}}
}

var (
	assignmentConstraints = map[string]error{
		"prayer_slots_holding_slot_key": assignment.ErrSlotUnavailable,
		"prayer_slots_holding_user_key": assignment.ErrUserHasSlot,
		"prayer_slots_slot_time_fkey":   assignment.ErrSlotUnavailable,
	}

	assignmentOrderings = map[string]string{
		"created_at":   "created_at",
		"updated_at":   "updated_at",
		"missed_count": "missed_count",
		"slot_time":    "slot_time",
		"status":       "status",
		"user_email":   "user_email",
	}
)

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	a.ID = uuid.New().String()
	var created assignment.Assignment
	err := sqlx.GetContext(
		ctx, repo.exec(ctx), &created,
		`INSERT INTO prayer_slots (id, user_id, user_email, slot_time, status, missed_count, skip_start_date,
			skip_end_date, released_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING `+assignmentColumns,
		a.ID, a.UserID, a.UserEmail, a.SlotTime, a.Status, a.MissedCount, a.SkipStartDate, a.SkipEndDate,
		a.ReleasedAt, a.CreatedAt, a.UpdatedAt,
	)
	return created, translate(err, nil, assignmentConstraints)
}

func (repo *assignmentRepository) get(ctx context.Context, cond string, arg interface{}) (assignment.Assignment, error) {
	var a assignment.Assignment
	err := sqlx.GetContext(ctx, repo.exec(ctx), &a, "SELECT "+assignmentColumns+" FROM prayer_slots WHERE "+cond, arg)
	return a, translate(err, assignment.ErrNotFound, nil)
}

func (repo *assignmentRepository) GetAssignmentByID(ctx context.Context, id string) (assignment.Assignment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return repo.get(ctx, "id = $1", id)
}

func (repo *assignmentRepository) GetHoldingBySlot(ctx context.Context, slotTime string) (assignment.Assignment, error) {
	return repo.get(ctx, "slot_time = $1 AND status <> 'released'", slotTime)
}

func (repo *assignmentRepository) GetHoldingByUser(ctx context.Context, userID string) (assignment.Assignment, error) {
	return repo.get(ctx, "user_id = $1 AND status <> 'released'", userID)
}

func (repo *assignmentRepository) FilterAssignments(
	ctx context.Context,
	filter assignment.QueryFilter,
	ordering []core.DBOrdering,
) ([]assignment.Assignment, error) {
	var conds []string
	var args []interface{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.SlotTime != "" {
		args = append(args, filter.SlotTime)
		conds = append(conds, fmt.Sprintf("slot_time = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, pq.Array(filter.Statuses))
		conds = append(conds, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	q := "SELECT " + assignmentColumns + " FROM prayer_slots" + where(conds) +
		" ORDER BY " + core.OrderingClause(ordering, assignmentOrderings, "slot_time ASC") + ", created_at ASC"
	items := make([]assignment.Assignment, 0)
	err := sqlx.SelectContext(ctx, repo.exec(ctx), &items, q, args...)
	return items, err
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	var updated assignment.Assignment
	err := sqlx.GetContext(
		ctx, repo.exec(ctx), &updated,
		`UPDATE prayer_slots SET status = $2, missed_count = $3, skip_start_date = $4, skip_end_date = $5,
			released_at = $6, updated_at = $7
		WHERE id = $1 RETURNING `+assignmentColumns,
		a.ID, a.Status, a.MissedCount, a.SkipStartDate, a.SkipEndDate, a.ReleasedAt, a.UpdatedAt,
	)
	return updated, translate(err, assignment.ErrNotFound, assignmentConstraints)
}
