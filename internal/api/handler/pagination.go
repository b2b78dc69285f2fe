package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freshcart/marketplace/internal/pkg/pagination"
)

// pageParams reads ?page and ?limit with the defaults every listing shares.
func pageParams(c echo.Context) (page, limit int, err error) {
	if err := echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("limit", &limit).
		BindError(); err != nil {
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "page and limit must be integers")
	}
	page, limit = pagination.Normalize(page, limit)
	return page, limit, nil
}
