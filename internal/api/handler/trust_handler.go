package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/freshcart/marketplace/internal/api/metrics"
	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/core/ports"
	"github.com/freshcart/marketplace/internal/pkg/pagination"
)

// TrustHandler exposes reviews, trust summaries and admin adjustments.
type TrustHandler struct {
	service ports.TrustService
}

func NewTrustHandler(service ports.TrustService) *TrustHandler {
	return &TrustHandler{service: service}
}

// SubmitReview handles POST /v1/orders/:id/review.
//
// @Summary      Review a delivered order
// @Description  Rates the vendor of a delivered order and updates the vendor's trust score.
// @Tags         trust
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Order ID"
// @Param        body  body      submitReviewRequest  true  "Rating and text"
// @Success      201   {object}  reviewResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/orders/{id}/review [post]
func (h *TrustHandler) SubmitReview(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req submitReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.ReviewsRejectedTotal.WithLabelValues("invalid_request").Inc()
		return err
	}

	res, err := h.service.SubmitReview(c.Request().Context(), actor, ports.SubmitReviewInput{
		OrderID: c.Param("id"),
		Rating:  req.Rating,
		Text:    req.Text,
	})
	if err != nil {
		metrics.ReviewsRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
		return err
	}

	metrics.ReviewsSubmittedTotal.WithLabelValues(strconv.Itoa(res.Review.Rating)).Inc()
	metrics.VendorTrustScores.WithLabelValues(string(res.Tier)).Observe(res.VendorScore)

	return c.JSON(http.StatusCreated, reviewResponse{
		Review:      res.Review,
		VendorScore: res.VendorScore,
		ReviewCount: res.ReviewCount,
		Tier:        res.Tier,
	})
}

// AccountTrust handles GET /v1/accounts/:id/trust.
//
// @Summary      Trust summary of an account
// @Tags         trust
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  trustResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/accounts/{id}/trust [get]
func (h *TrustHandler) AccountTrust(c echo.Context) error {
	summary, err := h.service.Summary(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTrustResponse(summary))
}

// VendorReviews handles GET /v1/vendors/:id/reviews.
//
// @Summary      Reviews received by a vendor
// @Tags         trust
// @Produce      json
// @Param        id     path      string  true   "Vendor ID"
// @Param        page   query     int     false  "Page (default 1)"
// @Param        limit  query     int     false  "Page size (default 20, max 100)"
// @Success      200    {object}  reviewListResponse
// @Failure      400    {object}  errorResponse
// @Router       /v1/vendors/{id}/reviews [get]
func (h *TrustHandler) VendorReviews(c echo.Context) error {
	page, limit, err := pageParams(c)
	if err != nil {
		return err
	}

	reviews, total, err := h.service.VendorReviews(c.Request().Context(), c.Param("id"), page, limit)
	if err != nil {
		return err
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}

	return c.JSON(http.StatusOK, reviewListResponse{
		Items:      reviews,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: pagination.TotalPages(total, limit),
	})
}

// AdjustVendorTrust handles POST /v1/admin/vendors/:id/trust.
//
// @Summary      Adjust a vendor's trust score
// @Description  Moves the score one step up or down, clamped to [1, 5].
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Vendor ID"
// @Param        body  body      adjustTrustRequest  true  "Delta (-1 or 1)"
// @Success      200   {object}  trustResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/admin/vendors/{id}/trust [post]
func (h *TrustHandler) AdjustVendorTrust(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req adjustTrustRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	summary, err := h.service.AdjustVendorTrust(c.Request().Context(), actor, c.Param("id"), req.Delta)
	if err != nil {
		return err
	}

	direction := "up"
	if req.Delta < 0 {
		direction = "down"
	}
	metrics.TrustAdjustmentsTotal.WithLabelValues(direction).Inc()
	metrics.VendorTrustScores.WithLabelValues(string(summary.Tier)).Observe(summary.Score)

	return c.JSON(http.StatusOK, toTrustResponse(summary))
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidRating):
		return "invalid_rating"
	case errors.Is(err, domain.ErrEmptyReviewText):
		return "invalid_request"
	case errors.Is(err, domain.ErrOrderNotReviewable), errors.Is(err, domain.ErrOrderNotFound):
		return "not_reviewable"
	case errors.Is(err, domain.ErrAlreadyReviewed):
		return "already_reviewed"
	case errors.Is(err, domain.ErrPersistenceConflict):
		return "conflict"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
