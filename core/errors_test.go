package core

import (
	"testing"

	"github.com/pkg/errors"
)

func TestErrorKinds(t *testing.T) {
	conflict := NewConflictError("taken")
	notFound := NewNotFoundError("missing")
	state := NewStateError("too late")
	validation := NewValidationError(errors.New("bad"), FieldError{Field: "f", Error: "bad"})

	tests := []struct {
		name                                   string
		err                                    error
		isConflict, isNotFound, isState, isVal bool
	}{
		{name: "conflict", err: conflict, isConflict: true},
		{name: "wrapped conflict", err: errors.Wrap(conflict, "claiming"), isConflict: true},
		{name: "not found", err: errors.Wrap(notFound, "getting"), isNotFound: true},
		{name: "state", err: errors.Wrap(errors.Wrap(state, "a"), "b"), isState: true},
		{name: "validation", err: validation, isVal: true},
		{name: "plain", err: errors.New("boom")},
		{name: "nil", err: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConflict(tt.err); got != tt.isConflict {
				t.Errorf("IsConflict() = %v; want %v", got, tt.isConflict)
			}
			if got := IsNotFound(tt.err); got != tt.isNotFound {
				t.Errorf("IsNotFound() = %v; want %v", got, tt.isNotFound)
			}
			if got := IsState(tt.err); got != tt.isState {
				t.Errorf("IsState() = %v; want %v", got, tt.isState)
			}
			if got := IsValidation(tt.err); got != tt.isVal {
				t.Errorf("IsValidation() = %v; want %v", got, tt.isVal)
			}
		})
	}
}

func TestOrderingClause(t *testing.T) {
	allowed := map[string]string{"created_at": "created_at", "email": "user_email"}
	tests := []struct {
		name      string
		orderings []DBOrdering
		want      string
	}{
		{name: "none", want: "slot_time ASC"},
		{name: "mapped", orderings: []DBOrdering{{Field: "email", Ascending: true}, {Field: "created_at"}}, want: "user_email ASC, created_at DESC"},
		{name: "unknown fields dropped", orderings: []DBOrdering{{Field: "id; DROP TABLE x"}}, want: "slot_time ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OrderingClause(tt.orderings, allowed, "slot_time ASC"); got != tt.want {
				t.Errorf("OrderingClause() = %q; want %q", got, tt.want)
			}
		})
	}
}
