package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/core/ports"
	"github.com/freshcart/marketplace/internal/core/trust"
	"github.com/freshcart/marketplace/internal/pkg/pagination"
)

type OrderService struct {
	orders   ports.OrderRepository
	accounts ports.AccountRepository
	carts    ports.CartStore
	log      zerolog.Logger
}

func NewOrderService(orders ports.OrderRepository, accounts ports.AccountRepository, carts ports.CartStore, log zerolog.Logger) *OrderService {
	return &OrderService{orders: orders, accounts: accounts, carts: carts, log: log}
}

// PreviewCheckout groups the cart by vendor and attaches each vendor's live
// trust signals.
func (s *OrderService) PreviewCheckout(ctx context.Context, actor domain.Actor) (*ports.CheckoutPreview, error) {
	if !actor.Can(domain.ActionPlaceOrders) {
		return nil, domain.ErrForbidden
	}
	cart, err := s.carts.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.preview(ctx, cart)
}

func (s *OrderService) preview(ctx context.Context, cart *domain.Cart) (*ports.CheckoutPreview, error) {
	if len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	out := &ports.CheckoutPreview{}
	for _, g := range cart.GroupByVendor() {
		vendor, err := s.accounts.FindByID(ctx, g.VendorID)
		if err != nil {
			return nil, fmt.Errorf("resolve vendor %s: %w", g.VendorID, err)
		}
		out.Vendors = append(out.Vendors, ports.VendorCheckout{
			VendorID:        g.VendorID,
			VendorName:      g.VendorName,
			Items:           g.Items,
			Total:           g.Total,
			TrustScore:      vendor.TrustScore,
			Tier:            trust.Classify(vendor.TrustScore),
			LowTrustWarning: trust.NeedsLowTrustWarning(vendor.TrustScore),
		})
		out.Total += g.Total
	}
	return out, nil
}

// Checkout places one pending order per vendor in the cart. A repeated
// idempotency key returns the orders created the first time.
func (s *OrderService) Checkout(ctx context.Context, actor domain.Actor, in ports.CheckoutInput) (*ports.CheckoutResult, error) {
	if !actor.Can(domain.ActionPlaceOrders) {
		return nil, domain.ErrForbidden
	}
	address := strings.TrimSpace(in.ShippingAddress)
	if address == "" || strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, domain.ErrInvalidCheckout
	}

	if in.IdempotencyKey != "" {
		replay, err := s.replay(ctx, actor.ID, in.IdempotencyKey)
		if err != nil || replay != nil {
			return replay, err
		}
	}

	customer, err := s.accounts.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	preview, err := s.preview(ctx, cart)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	orders := make([]*domain.Order, 0, len(preview.Vendors))
	for _, v := range preview.Vendors {
		items := make([]domain.OrderItem, 0, len(v.Items))
		for _, it := range v.Items {
			items = append(items, domain.OrderItem{
				ProductID: it.ProductID,
				Name:      it.Name,
				Price:     it.Price,
				Quantity:  it.Quantity,
				ImageURL:  it.ImageURL,
			})
		}
		orders = append(orders, &domain.Order{
			ID:               uuid.New().String(),
			CustomerID:       customer.ID,
			CustomerName:     customer.Name,
			CustomerEmail:    customer.Email,
			VendorID:         v.VendorID,
			VendorName:       v.VendorName,
			Items:            items,
			TotalAmount:      v.Total,
			ShippingAddress:  address,
			PaymentMethod:    in.PaymentMethod,
			Status:           domain.OrderPending,
			VendorTrustScore: v.TrustScore,
			IdempotencyKey:   in.IdempotencyKey,
			StatusHistory: []domain.StatusHistoryEntry{
				{Status: domain.OrderPending, Timestamp: now, Notes: "Order placed"},
			},
			CreatedAt: now,
		})
	}

	if err := s.orders.CreateMany(ctx, orders); err != nil {
		if errors.Is(err, domain.ErrDuplicateCheckout) && in.IdempotencyKey != "" {
			// a concurrent checkout with the same key committed first
			replay, rerr := s.replay(ctx, actor.ID, in.IdempotencyKey)
			if rerr != nil {
				return nil, rerr
			}
			if replay != nil {
				return replay, nil
			}
		}
		return nil, fmt.Errorf("create orders: %w", err)
	}

	if err := s.carts.Delete(ctx, actor.ID); err != nil {
		s.log.Warn().Err(err).Str("customer_id", actor.ID).Msg("failed to clear cart after checkout")
	}

	s.log.Info().Str("customer_id", actor.ID).Int("orders", len(orders)).Float64("total", preview.Total).Msg("checkout completed")
	return &ports.CheckoutResult{Orders: orders}, nil
}

// replay returns the orders already placed under key, or nil when there are none.
func (s *OrderService) replay(ctx context.Context, customerID, key string) (*ports.CheckoutResult, error) {
	existing, err := s.orders.FindByIdempotencyKey(ctx, customerID, key)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, nil
	}
	return &ports.CheckoutResult{Orders: existing, AlreadyExisted: true}, nil
}

// ListOrders scopes the listing to the actor: customers and vendors see their
// own orders, admins see everything.
func (s *OrderService) ListOrders(ctx context.Context, actor domain.Actor, in ports.ListOrdersInput) (*ports.OrderPage, error) {
	filter := ports.ListOrdersFilter{Status: in.Status}
	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleVendor:
		filter.VendorID = actor.ID
	case domain.RoleCustomer:
		filter.CustomerID = actor.ID
	default:
		return nil, domain.ErrForbidden
	}
	if in.Status != "" && !domain.OrderStatus(in.Status).Valid() {
		return nil, domain.ErrInvalidOrderStatus
	}
	filter.Page, filter.Limit = pagination.Normalize(in.Page, in.Limit)

	items, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return &ports.OrderPage{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: pagination.TotalPages(total, filter.Limit),
	}, nil
}

func (s *OrderService) GetOrder(ctx context.Context, actor domain.Actor, id string) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.VisibleTo(actor) {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// UpdateStatus moves an order along its lifecycle. Vendors may update their
// own orders, admins any order.
func (s *OrderService) UpdateStatus(ctx context.Context, actor domain.Actor, id string, status string) (*domain.Order, error) {
	next := domain.OrderStatus(status)
	if !next.Valid() {
		return nil, domain.ErrInvalidOrderStatus
	}
	if !actor.Can(domain.ActionManageOrders) && !(actor.Role == domain.RoleVendor && actor.Can(domain.ActionViewOwnOrders)) {
		return nil, domain.ErrForbidden
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.VisibleTo(actor) {
		return nil, domain.ErrOrderNotFound
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, order.Status, next)
	}

	entry := domain.StatusHistoryEntry{
		Status:    next,
		Timestamp: time.Now().UTC(),
		Notes:     "Updated by " + string(actor.Role),
	}
	if err := s.orders.UpdateStatus(ctx, id, order.Status, next, entry); err != nil {
		return nil, err
	}

	s.log.Info().Str("order_id", id).Str("from", string(order.Status)).Str("to", string(next)).Str("actor_id", actor.ID).Msg("order status updated")

	order.Status = next
	order.StatusHistory = append(order.StatusHistory, entry)
	return order, nil
}
