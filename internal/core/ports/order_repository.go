package ports

import (
	"context"

	"github.com/freshcart/marketplace/internal/core/domain"
)

// ListOrdersFilter carries all query parameters for listing orders.
// An empty CustomerID/VendorID means no filter on that field.
type ListOrdersFilter struct {
	CustomerID string
	VendorID   string
	Status     string
	Page       int // 1-based
	Limit      int
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	// CreateMany stores all orders of one checkout or none of them. It returns
	// domain.ErrDuplicateCheckout when the idempotency key is already taken.
	CreateMany(ctx context.Context, orders []*domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByIdempotencyKey(ctx context.Context, customerID, key string) ([]*domain.Order, error)
	List(ctx context.Context, filter ListOrdersFilter) ([]*domain.Order, int64, error)
	// UpdateStatus sets the status only if the order is still in from.
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, entry domain.StatusHistoryEntry) error
	Stats(ctx context.Context) (*OrderStats, error)
}

// OrderStats aggregates orders for the admin dashboard.
type OrderStats struct {
	ByStatus map[domain.OrderStatus]int64
	Revenue  float64
}
