package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freshcart/marketplace/internal/core/domain"
)

// Authorize rejects callers whose role is not granted act by the policy.
// Services repeat the check; this keeps forbidden requests off the handlers.
func Authorize(act domain.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if !actor.Can(act) {
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error())
			}
			return next(c)
		}
	}
}

// AuthorizeAny passes when the caller holds at least one of acts.
func AuthorizeAny(acts ...domain.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			for _, act := range acts {
				if actor.Can(act) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error())
		}
	}
}
