package sqlxrepos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core/assignment"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/skiprequest"
)

const skipRequestColumns = `id, assignment_id, user_id, user_email, skip_days, reason, status, admin_comment, processed_by,
	created_at, processed_at`

type skipRequestRepository struct {
	store
}

var _ skiprequest.Repository = (*skipRequestRepository)(nil) // interface compliance check

func NewSkipRequestRepository(db *sqlx.DB) skiprequest.Repository {
	return &skipRequestRepository{store{db: db}}
}

var skipRequestConstraints = map[string]error{
	"skip_requests_pending_key":        skiprequest.ErrPendingExists,
	"skip_requests_assignment_id_fkey": assignment.ErrNotFound,
}

func (repo *skipRequestRepository) CreateSkipRequest(ctx context.Context, sr skiprequest.SkipRequest) (skiprequest.SkipRequest, error) {
	sr.ID = uuid.New().String()
	var created skiprequest.SkipRequest
	err := sqlx.GetContext(
		ctx, repo.exec(ctx), &created,
		`INSERT INTO skip_requests (id, assignment_id, user_id, user_email, skip_days, reason, status, admin_comment,
			processed_by, created_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING `+skipRequestColumns,
		sr.ID, sr.AssignmentID, sr.UserID, sr.UserEmail, sr.SkipDays, sr.Reason, sr.Status, sr.AdminComment,
		sr.ProcessedBy, sr.CreatedAt, sr.ProcessedAt,
	)
	return created, translate(err, nil, skipRequestConstraints)
}

func (repo *skipRequestRepository) GetSkipRequestByID(ctx context.Context, id string) (skiprequest.SkipRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return skiprequest.SkipRequest{}, skiprequest.ErrNotFound
	}
	var sr skiprequest.SkipRequest
	err := sqlx.GetContext(ctx, repo.exec(ctx), &sr, "SELECT "+skipRequestColumns+" FROM skip_requests WHERE id = $1", id)
	return sr, translate(err, skiprequest.ErrNotFound, nil)
}

func (repo *skipRequestRepository) FilterSkipRequests(ctx context.Context, filter skiprequest.QueryFilter) ([]skiprequest.SkipRequest, error) {
	var conds []string
	var args []interface{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.AssignmentID != "" {
		if _, err := uuid.Parse(filter.AssignmentID); err != nil {
			return []skiprequest.SkipRequest{}, nil
		}
		args = append(args, filter.AssignmentID)
		conds = append(conds, fmt.Sprintf("assignment_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, pq.Array(filter.Statuses))
		conds = append(conds, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	items := make([]skiprequest.SkipRequest, 0)
	err := sqlx.SelectContext(
		ctx, repo.exec(ctx), &items,
		"SELECT "+skipRequestColumns+" FROM skip_requests"+where(conds)+" ORDER BY created_at DESC, id DESC",
		args...,
	)
	return items, err
}

func (repo *skipRequestRepository) UpdateSkipRequest(ctx context.Context, sr skiprequest.SkipRequest) (skiprequest.SkipRequest, error) {
	var updated skiprequest.SkipRequest
	err := sqlx.GetContext(
		ctx, repo.exec(ctx), &updated,
		`UPDATE skip_requests SET status = $2, admin_comment = $3, processed_by = $4, processed_at = $5
		WHERE id = $1 RETURNING `+skipRequestColumns,
		sr.ID, sr.Status, sr.AdminComment, sr.ProcessedBy, sr.ProcessedAt,
	)
	return updated, translate(err, skiprequest.ErrNotFound, nil)
}
