package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type (
	txKey struct{}

	txManager struct {
		db *sqlx.DB
	}

	// store hands repositories the transaction carried by ctx, or the pool when there is none.
	store struct {
		db *sqlx.DB
	}
)

var _ core.TxManager = (*txManager)(nil) // interface compliance check

func NewTxManager(db *sqlx.DB) core.TxManager {
	return &txManager{db: db}
}

// RunInTx begins a transaction, commits it if fn succeeds and rolls it back otherwise.
// Nested calls join the outer transaction.
func (m *txManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (s store) exec(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return s.db
}

// sqlError returns the postgres error code and constraint behind err, if any.
func sqlError(err error) (code, constraint string) {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return string(pqErr.Code), pqErr.Constraint
	}
	return "", ""
}

// translate maps driver errors to domain errors: no rows to notFound, unique violations by constraint name.
func translate(err error, notFound error, byConstraint map[string]error) error {
	if err == nil {
		return nil
	}
	if errors.Cause(err) == sql.ErrNoRows && notFound != nil {
		return notFound
	}
	if code, constraint := sqlError(err); code == uniqueViolation || code == foreignKeyViolation {
		if mapped, ok := byConstraint[constraint]; ok {
			return mapped
		}
	}
	return err
}

// where joins conditions with AND, or returns nothing when there are none.
func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	clause := " WHERE " + conds[0]
	for _, c := range conds[1:] {
		clause += " AND " + c
	}
	return clause
}
