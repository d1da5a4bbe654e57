package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/skiprequest"
)

type decideFunc func(ctx context.Context, admin core.Identity, id string, d skiprequest.Decision) (skiprequest.SkipRequest, error)

type skipRequestApi struct {
	svc      *skiprequest.Service
	validate *validator.Validate
}

func registerSkipRequestAPI(g *echo.Group, svc *skiprequest.Service, validate *validator.Validate) {
	api := skipRequestApi{
		svc:      svc,
		validate: validate,
	}

	sg := g.Group("/skip-requests")
	sg.GET("", api.query, adminMiddleware())
	sg.GET("/me", api.queryMine)
	sg.POST("/:id/approve", api.approve, adminMiddleware())
	sg.POST("/:id/reject", api.reject, adminMiddleware())
}

// Handlers

func (api *skipRequestApi) query(ctx echo.Context) error {
	filter := new(skiprequest.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []skiprequest.SkipRequest{})
	}
	filter.Clean()

	items, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying skip requests")
	}
	if items == nil {
		items = []skiprequest.SkipRequest{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *skipRequestApi) queryMine(ctx echo.Context) error {
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	items, err := api.svc.Query(ctx.Request().Context(), skiprequest.QueryFilter{UserID: caller.UserID})
	if err != nil {
		return errors.Wrap(err, "querying user skip requests")
	}
	if items == nil {
		items = []skiprequest.SkipRequest{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *skipRequestApi) approve(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Approve)
}

func (api *skipRequestApi) reject(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Reject)
}

func (api *skipRequestApi) decide(ctx echo.Context, decide decideFunc) error {
	var data skiprequest.Decision
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Decision")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	admin, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}

	sr, err := decide(ctx.Request().Context(), admin, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "processing skip request")
	}
	return ctx.JSON(http.StatusOK, sr)
}
