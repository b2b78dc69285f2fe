package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/freshcart/marketplace/internal/api/metrics"
	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry a checkout without duplicating orders.
const HeaderIdempotencyKey = "Idempotency-Key"

// OrderHandler handles checkout and the order lifecycle.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// Preview handles GET /v1/checkout/preview.
//
// @Summary      Preview checkout
// @Description  Groups the cart by vendor and flags vendors below the low-trust threshold.
// @Tags         checkout
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  checkoutPreviewResponse
// @Failure      400  {object}  errorResponse
// @Router       /v1/checkout/preview [get]
func (h *OrderHandler) Preview(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	preview, err := h.service.PreviewCheckout(c.Request().Context(), actor)
	if err != nil {
		return err
	}

	for _, v := range preview.Vendors {
		if v.LowTrustWarning {
			metrics.LowTrustWarningsTotal.Inc()
		}
	}
	return c.JSON(http.StatusOK, toCheckoutPreviewResponse(preview))
}

// Checkout handles POST /v1/checkout.
//
// @Summary      Place orders
// @Description  Creates one order per vendor. Replaying the same Idempotency-Key returns the original orders with 200.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string           false  "Client-generated key"
// @Param        body             body      checkoutRequest  true   "Shipping and payment"
// @Success      200              {object}  checkoutResponse
// @Success      201              {object}  checkoutResponse
// @Failure      400              {object}  errorResponse
// @Router       /v1/checkout [post]
func (h *OrderHandler) Checkout(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req checkoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.Checkout(c.Request().Context(), actor, ports.CheckoutInput{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		IdempotencyKey:  strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey)),
	})
	if err != nil {
		return err
	}

	if res.AlreadyExisted {
		return c.JSON(http.StatusOK, checkoutResponse{Orders: res.Orders, Replay: true})
	}
	metrics.OrdersPlacedTotal.Add(float64(len(res.Orders)))
	return c.JSON(http.StatusCreated, checkoutResponse{Orders: res.Orders})
}

// List handles GET /v1/orders, /v1/vendor/orders and /v1/admin/orders.
// Scope follows the caller's role.
//
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter"
// @Param        page    query     int     false  "Page (default 1)"
// @Param        limit   query     int     false  "Page size (default 20, max 100)"
// @Success      200     {object}  orderListResponse
// @Failure      400     {object}  errorResponse
// @Router       /v1/orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	page, limit, err := pageParams(c)
	if err != nil {
		return err
	}

	res, err := h.service.ListOrders(c.Request().Context(), actor, ports.ListOrdersInput{
		Status: c.QueryParam("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	items := res.Items
	if items == nil {
		items = []*domain.Order{}
	}
	return c.JSON(http.StatusOK, orderListResponse{
		Items:      items,
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	})
}

// Get handles GET /v1/orders/:id.
//
// @Summary      Order detail
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  domain.Order
// @Failure      404  {object}  errorResponse
// @Router       /v1/orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	order, err := h.service.GetOrder(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateStatus handles PATCH /v1/orders/:id/status.
//
// @Summary      Advance an order
// @Description  pending -> processing -> shipped -> delivered; pending and processing may be cancelled.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Order ID"
// @Param        body  body      updateOrderStatusRequest  true  "New status"
// @Success      200   {object}  domain.Order
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateOrderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.service.UpdateStatus(c.Request().Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		return err
	}

	metrics.OrderTransitionsTotal.WithLabelValues(string(order.Status)).Inc()
	return c.JSON(http.StatusOK, order)
}
