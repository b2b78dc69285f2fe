package ports

import (
	"context"

	"github.com/freshcart/marketplace/internal/core/domain"
)

// ProductFilter carries all query parameters for the catalog listing.
type ProductFilter struct {
	Category    string
	VendorID    string
	InStockOnly bool
	OnSaleOnly  bool
	MinPrice    float64
	MaxPrice    float64 // 0 = unbounded
	MinTrust    float64 // 0 = no filter
	Search      string
	Sort        string
	Page        int
	Limit       int
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int64, error)
	// SetVendorTrust copies score onto every product of vendorID whose
	// TrustVersion is lower than version. Older copies never overwrite newer ones.
	SetVendorTrust(ctx context.Context, vendorID string, score float64, version int64) error
}
