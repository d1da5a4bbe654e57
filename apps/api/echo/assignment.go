package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/assignment"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/skiprequest"
)

type assignmentApi struct {
	svc          *assignment.Service
	skipRequests *skiprequest.Service
	validate     *validator.Validate
}

func registerAssignmentAPI(
	g *echo.Group,
	svc *assignment.Service,
	skipRequests *skiprequest.Service,
	validate *validator.Validate,
) {
	api := assignmentApi{
		svc:          svc,
		skipRequests: skipRequests,
		validate:     validate,
	}

	ag := g.Group("/assignments")
	ag.POST("", api.claim)
	ag.GET("", api.query, adminMiddleware())
	ag.GET("/me", api.queryMine)

	// detail endpoints
	dg := ag.Group("/:id")
	dg.GET("", api.retrieve)
	dg.POST("/outcomes", api.recordOutcome, roleMiddleware(core.RoleAttendanceService))
	dg.POST("/release", api.release)
	dg.POST("/reset-missed", api.resetMissed, adminMiddleware())
	dg.POST("/skip-requests", api.submitSkipRequest)
}

// Handlers

func (api *assignmentApi) claim(ctx echo.Context) error {
	var data assignment.ClaimRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClaimRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}

	a, err := api.svc.Claim(ctx.Request().Context(), caller, data.SlotTime)
	if err != nil {
		return errors.Wrap(err, "claiming slot")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) query(ctx echo.Context) error {
	filter := new(assignment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []assignment.Assignment{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	items, err := api.svc.Query(ctx.Request().Context(), *filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if items == nil {
		items = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *assignmentApi) queryMine(ctx echo.Context) error {
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	items, err := api.svc.ForUser(ctx.Request().Context(), caller.UserID)
	if err != nil {
		return errors.Wrap(err, "querying user assignments")
	}
	if items == nil {
		items = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	a, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting assignment")
	}
	if a.UserID != caller.UserID && !caller.IsAdmin() {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) recordOutcome(ctx echo.Context) error {
	var data assignment.Outcome
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Outcome")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.RecordOutcome(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "recording outcome")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) release(ctx echo.Context) error {
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	a, err := api.svc.Release(ctx.Request().Context(), caller, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "releasing assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) resetMissed(ctx echo.Context) error {
	a, err := api.svc.ResetMissed(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "resetting missed count")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) submitSkipRequest(ctx echo.Context) error {
	var data skiprequest.NewSkipRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSkipRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}

	sr, err := api.skipRequests.Submit(ctx.Request().Context(), caller, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "submitting skip request")
	}
	return ctx.JSON(http.StatusCreated, sr)
}
