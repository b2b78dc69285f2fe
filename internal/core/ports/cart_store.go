package ports

import (
	"context"

	"github.com/freshcart/marketplace/internal/core/domain"
)

// CartStore keeps carts in the cache. Get returns an empty cart, not an
// error, when none is stored.
type CartStore interface {
	Get(ctx context.Context, customerID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, customerID string) error
}
