package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core/update"
)

type updateApi struct {
	svc *update.Service
}

func registerUpdateAPI(g *echo.Group, svc *update.Service) {
	api := updateApi{svc: svc}
	g.GET("/updates", api.query)
}

// query returns the feed entries posted after since, newest first.
func (api *updateApi) query(ctx echo.Context) error {
	since, err := queryTime(ctx, "since")
	if err != nil {
		return err
	}
	limit, err := queryLimit(ctx, update.DefaultLimit, update.MaxLimit)
	if err != nil {
		return err
	}

	items, err := api.svc.List(ctx.Request().Context(), since, limit)
	if err != nil {
		return errors.Wrap(err, "querying updates")
	}
	if items == nil {
		items = []update.Update{}
	}
	return ctx.JSON(http.StatusOK, items)
}
