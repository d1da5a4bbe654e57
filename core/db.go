package core

import (
	"context"
	"strings"
)

// TxManager runs fn inside a single unit of work.
// The transaction travels in the context passed to fn; repositories called with that context join it.
// If fn returns an error every write made through the context is rolled back.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// OrderingClause renders orderings as an SQL ORDER BY list, keeping only the fields present in allowed
// (api name -> column). fallback is used when nothing survives the filter.
func OrderingClause(orderings []DBOrdering, allowed map[string]string, fallback string) string {
	parts := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		col, ok := allowed[ord.Field]
		if !ok {
			continue
		}
		parts = append(parts, DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, ", ")
}
