package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core/campaign"
)

type campaignApi struct {
	svc      *campaign.Service
	validate *validator.Validate
}

func registerCampaignAPI(g *echo.Group, svc *campaign.Service, validate *validator.Validate) {
	api := campaignApi{
		svc:      svc,
		validate: validate,
	}

	cg := g.Group("/campaigns")
	cg.GET("/active", api.retrieveActive)
	cg.POST("", api.create, adminMiddleware())
	cg.GET("/templates", api.queryTemplates, adminMiddleware())
	cg.POST("/templates", api.createTemplate, adminMiddleware())

	// detail endpoints
	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.POST("/register", api.register)
	dg.GET("/registrations", api.queryRegistrations, adminMiddleware())
	dg.POST("/cancel", api.cancel, adminMiddleware())
}

// Handlers

func (api *campaignApi) retrieveActive(ctx echo.Context) error {
	p, err := api.svc.GetActive(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting active program")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *campaignApi) retrieve(ctx echo.Context) error {
	p, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting program")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *campaignApi) create(ctx echo.Context) error {
	var data campaign.NewProgram
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProgram")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	admin, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}

	start, err := api.svc.StartAt(data.StartDate, data.StartTime)
	if err != nil {
		return err
	}
	p, err := api.svc.CreateFromTemplate(ctx.Request().Context(), admin.Email, data.TemplateName, start)
	if err != nil {
		return errors.Wrap(err, "creating program")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *campaignApi) register(ctx echo.Context) error {
	caller, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	r, err := api.svc.Register(ctx.Request().Context(), caller, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "registering for program")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *campaignApi) queryRegistrations(ctx echo.Context) error {
	items, err := api.svc.Registrations(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying registrations")
	}
	if items == nil {
		items = []campaign.Registration{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *campaignApi) cancel(ctx echo.Context) error {
	p, err := api.svc.Cancel(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "cancelling program")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *campaignApi) queryTemplates(ctx echo.Context) error {
	items, err := api.svc.Templates(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying templates")
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *campaignApi) createTemplate(ctx echo.Context) error {
	var data campaign.NewTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTemplate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.CreateTemplate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating template")
	}
	return ctx.JSON(http.StatusCreated, t)
}
