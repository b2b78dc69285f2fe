package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freshcart/marketplace/internal/core/ports"
)

// AdminHandler backs the admin dashboard.
type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// ListVendors handles GET /v1/admin/vendors.
//
// @Summary      Vendors with trust tiers
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        min_trust  query     number  false  "Minimum trust score"
// @Success      200        {array}   vendorResponse
// @Failure      403        {object}  errorResponse
// @Router       /v1/admin/vendors [get]
func (h *AdminHandler) ListVendors(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var minTrust float64
	if err := echo.QueryParamsBinder(c).Float64("min_trust", &minTrust).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "min_trust must be a number")
	}

	vendors, err := h.service.ListVendors(c.Request().Context(), actor, minTrust)
	if err != nil {
		return err
	}

	out := make([]vendorResponse, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, vendorResponse{
			ID:          v.ID,
			Name:        v.Name,
			Email:       v.Email,
			Status:      v.Status,
			TrustScore:  v.TrustScore,
			ReviewCount: v.ReviewCount,
			Tier:        v.Tier,
			TierLabel:   v.Tier.Label(),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Stats handles GET /v1/admin/stats.
//
// @Summary      Dashboard statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statsResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	stats, err := h.service.Stats(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statsResponse{
		AccountsByRole: stats.AccountsByRole,
		OrdersByStatus: stats.OrdersByStatus,
		Revenue:        stats.Revenue,
	})
}

// SetAccountStatus handles PATCH /v1/admin/accounts/:id/status.
//
// @Summary      Lock, suspend or reactivate an account
// @Tags         admin
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string                   true  "Account ID"
// @Param        body  body  setAccountStatusRequest  true  "New status"
// @Success      204
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/admin/accounts/{id}/status [patch]
func (h *AdminHandler) SetAccountStatus(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req setAccountStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.service.SetAccountStatus(c.Request().Context(), actor, c.Param("id"), req.Status); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
