package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/assignment"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/attendance"
)

var errInvalidSlotID = errors.New("must be a slot id")

type attendanceApi struct {
	svc         *attendance.Service
	assignments *assignment.Service
	validate    *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, svc *attendance.Service, assignments *assignment.Service, validate *validator.Validate) {
	api := attendanceApi{
		svc:         svc,
		assignments: assignments,
		validate:    validate,
	}

	ag := g.Group("/attendance")
	ag.POST("", api.create, roleMiddleware(core.RoleAttendanceService))
	ag.GET("", api.query)
	ag.GET("/summary", api.summary)
}

// Handlers

func (api *attendanceApi) create(ctx echo.Context) error {
	var data attendance.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.assignments.Ingest(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusCreated, r)
}

// bindRange reads the from/to query params shared by the listing and the summary.
func bindRange(ctx echo.Context) (from, to core.Date, err error) {
	if from, err = queryDate(ctx, "from"); err != nil {
		return
	}
	to, err = queryDate(ctx, "to")
	return
}

func (api *attendanceApi) query(ctx echo.Context) error {
	userID, err := selfOrAdmin(ctx, core.CleanString(ctx.QueryParam("user_id")))
	if err != nil {
		return err
	}
	filter := attendance.QueryFilter{UserID: userID, Statuses: ctx.QueryParams()["status"]}
	if filter.From, filter.To, err = bindRange(ctx); err != nil {
		return err
	}
	if val := core.CleanString(ctx.QueryParam("slot_id")); val != "" {
		if filter.SlotID, err = strconv.Atoi(val); err != nil {
			return fieldError("slot_id", errInvalidSlotID)
		}
	}
	filter.Clean()

	records, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) summary(ctx echo.Context) error {
	userID, err := selfOrAdmin(ctx, core.CleanString(ctx.QueryParam("user_id")))
	if err != nil {
		return err
	}
	from, to, err := bindRange(ctx)
	if err != nil {
		return err
	}

	sum, err := api.svc.Summary(ctx.Request().Context(), userID, from, to)
	if err != nil {
		return errors.Wrap(err, "summarizing attendance")
	}
	return ctx.JSON(http.StatusOK, sum)
}
