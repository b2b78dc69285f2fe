package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freshcart/marketplace/internal/api/middleware"
	"github.com/freshcart/marketplace/internal/core/domain"
)

// ctxActor extracts the caller injected by the Auth middleware. A missing
// actor means the route was registered without Auth and is rejected with 401.
func ctxActor(c echo.Context) (domain.Actor, error) {
	actor, ok := middleware.ActorFrom(c)
	if !ok || actor.ID == "" {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return actor, nil
}
