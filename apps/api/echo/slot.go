package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core/assignment"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/slot"
)

type slotApi struct {
	svc         *slot.Service
	assignments *assignment.Service
	validate    *validator.Validate
}

func registerSlotAPI(g *echo.Group, svc *slot.Service, assignments *assignment.Service, validate *validator.Validate) {
	api := slotApi{
		svc:         svc,
		assignments: assignments,
		validate:    validate,
	}

	sg := g.Group("/slots")
	sg.GET("", api.query)
	sg.GET("/available", api.queryAvailable)
	sg.GET("/coverage", api.coverage, adminMiddleware())
	sg.PUT("/availability", api.updateAvailability, adminMiddleware())
	sg.POST("", api.create, adminMiddleware())
}

// Handlers

func (api *slotApi) query(ctx echo.Context) error {
	slots, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying slots")
	}
	return ctx.JSON(http.StatusOK, slots)
}

func (api *slotApi) queryAvailable(ctx echo.Context) error {
	slots, err := api.svc.ListAvailable(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying available slots")
	}
	return ctx.JSON(http.StatusOK, slots)
}

func (api *slotApi) coverage(ctx echo.Context) error {
	report, err := api.assignments.Coverage(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing coverage")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *slotApi) updateAvailability(ctx echo.Context) error {
	var data slot.UpdateAvailability
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAvailability")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.MarkAvailability(ctx.Request().Context(), data.SlotTime, *data.IsAvailable)
	if err != nil {
		return errors.Wrap(err, "updating slot availability")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *slotApi) create(ctx echo.Context) error {
	var data slot.NewSlot
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSlot")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating slot")
	}
	return ctx.JSON(http.StatusCreated, s)
}
