package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
)

func adminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware()
}

// roleMiddleware lets admins and callers holding any of roles through.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := getContextIdentity(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context identity")
			}
			if id.IsAdmin() || (len(roles) > 0 && id.HasRole(roles...)) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// selfOrAdmin returns the user id the request is about: the caller's own, or any for admins.
func selfOrAdmin(ctx echo.Context, requested string) (string, error) {
	id, err := getContextIdentity(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context identity")
	}
	if requested == "" || requested == id.UserID {
		return id.UserID, nil
	}
	if id.HasRole(core.RoleAdmin) {
		return requested, nil
	}
	return "", errHttpForbidden
}
