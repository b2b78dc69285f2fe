package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/infrastructure/queue"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusByError maps domain sentinels onto HTTP statuses. Lookup goes through
// errors.Is so wrapped errors resolve to the sentinel they carry.
var statusByError = []struct {
	err    error
	status int
}{
	{domain.ErrUnknownAccount, http.StatusNotFound},
	{domain.ErrProductNotFound, http.StatusNotFound},
	{domain.ErrOrderNotFound, http.StatusNotFound},

	{domain.ErrInvalidRating, http.StatusBadRequest},
	{domain.ErrInvalidAdjustment, http.StatusBadRequest},
	{domain.ErrInvalidTrustScore, http.StatusBadRequest},
	{domain.ErrWeakPassword, http.StatusBadRequest},
	{domain.ErrInvalidRole, http.StatusBadRequest},
	{domain.ErrInvalidStatus, http.StatusBadRequest},
	{domain.ErrInvalidProfile, http.StatusBadRequest},
	{domain.ErrInvalidProduct, http.StatusBadRequest},
	{domain.ErrInvalidQuantity, http.StatusBadRequest},
	{domain.ErrEmptyCart, http.StatusBadRequest},
	{domain.ErrInvalidCheckout, http.StatusBadRequest},
	{domain.ErrInvalidOrderStatus, http.StatusBadRequest},
	{domain.ErrEmptyReviewText, http.StatusBadRequest},

	{domain.ErrInvalidCredentials, http.StatusUnauthorized},

	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrAccountLocked, http.StatusForbidden},

	{domain.ErrAccountExists, http.StatusConflict},
	{domain.ErrAlreadyReviewed, http.StatusConflict},
	{domain.ErrPersistenceConflict, http.StatusConflict},
	{domain.ErrDuplicateCheckout, http.StatusConflict},

	{domain.ErrInvalidTransition, http.StatusUnprocessableEntity},
	{domain.ErrOrderNotReviewable, http.StatusUnprocessableEntity},
	{domain.ErrOutOfStock, http.StatusUnprocessableEntity},

	{queue.ErrStopped, http.StatusServiceUnavailable},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that renders every
// error as {"error": "..."}. Unknown errors are logged and hidden behind a 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, msg := resolveError(err)
		if status == http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("unhandled error")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, errorResponse{Error: msg})
		}
		if writeErr != nil {
			log.Error().Err(writeErr).Msg("failed to write error response")
		}
	}
}

func resolveError(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			return he.Code, m
		}
		return he.Code, http.StatusText(he.Code)
	}

	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return m.status, m.err.Error()
		}
	}

	return http.StatusInternalServerError, "internal server error"
}
