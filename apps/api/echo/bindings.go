package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
)

const orderingParam = "ordering"

var (
	errInvalidDate  = errors.New("must be a date formatted as YYYY-MM-DD")
	errInvalidTime  = errors.New("must be a time formatted as RFC 3339")
	errInvalidLimit = errors.New("must be a positive integer")
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

func fieldError(field string, err error) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

// queryDate parses the YYYY-MM-DD query param, the zero Date when absent.
func queryDate(ctx echo.Context, param string) (core.Date, error) {
	val := core.CleanString(ctx.QueryParam(param))
	if val == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(val)
	if err != nil {
		return core.Date{}, fieldError(param, errInvalidDate)
	}
	return d, nil
}

// queryTime parses the RFC 3339 query param, the zero time when absent.
func queryTime(ctx echo.Context, param string) (time.Time, error) {
	val := core.CleanString(ctx.QueryParam(param))
	if val == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, fieldError(param, errInvalidTime)
	}
	return t, nil
}

// queryLimit parses the limit query param, capped at upper.
func queryLimit(ctx echo.Context, def, upper int) (int, error) {
	val := core.CleanString(ctx.QueryParam("limit"))
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return 0, fieldError("limit", errInvalidLimit)
	}
	if n > upper {
		n = upper
	}
	return n, nil
}
