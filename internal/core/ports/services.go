package ports

import (
	"context"

	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/core/trust"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	// AdminCode must match the configured signup code when Role is admin.
	AdminCode string
}

// AuthService handles registration, login and the caller's own profile.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
	Me(ctx context.Context, actor domain.Actor) (*domain.Account, error)
	// AccountStatus is consulted on every authenticated request.
	AccountStatus(ctx context.Context, id string) (domain.AccountStatus, error)
}

// SubmitReviewInput carries a customer's review of a delivered order.
type SubmitReviewInput struct {
	OrderID string
	Rating  int
	Text    string
}

// ReviewResult is returned after a review has been committed.
type ReviewResult struct {
	Review      *domain.Review
	VendorScore float64
	ReviewCount int
	Tier        trust.Tier
}

// TrustSummary is the read view of an account's reputation.
type TrustSummary struct {
	AccountID       string
	Role            domain.Role
	Score           float64
	Tier            trust.Tier
	Description     string
	ReviewCount     int
	LowTrustWarning bool
	History         []domain.TrustHistoryEntry
}

// TrustService mutates and reads trust scores.
type TrustService interface {
	SubmitReview(ctx context.Context, actor domain.Actor, input SubmitReviewInput) (*ReviewResult, error)
	AdjustVendorTrust(ctx context.Context, actor domain.Actor, vendorID string, delta int) (*TrustSummary, error)
	Summary(ctx context.Context, accountID string) (*TrustSummary, error)
	VendorReviews(ctx context.Context, vendorID string, page, limit int) ([]*domain.Review, int64, error)
}

// CreateProductInput carries a vendor's new listing.
type CreateProductInput struct {
	Name          string
	Description   string
	Price         float64
	OriginalPrice float64
	Category      string
	ImageURL      string
	InStock       bool
}

// ProductView is a product together with its vendor's trust tier.
type ProductView struct {
	*domain.Product
	Tier trust.Tier
}

// ProductPage is one page of the catalog.
type ProductPage struct {
	Items      []ProductView
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ProductService manages the catalog.
type ProductService interface {
	CreateProduct(ctx context.Context, actor domain.Actor, input CreateProductInput) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) (*ProductPage, error)
	GetProduct(ctx context.Context, slug string) (*ProductView, error)
	ListVendorProducts(ctx context.Context, actor domain.Actor) ([]ProductView, error)
}

// CartService manages the caller's cart.
type CartService interface {
	Get(ctx context.Context, actor domain.Actor) (*domain.Cart, error)
	AddItem(ctx context.Context, actor domain.Actor, productID string, quantity int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, actor domain.Actor, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, actor domain.Actor, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, actor domain.Actor) error
}

// VendorCheckout is one vendor's share of a checkout, with its trust signals.
type VendorCheckout struct {
	VendorID        string
	VendorName      string
	Items           []domain.CartItem
	Total           float64
	TrustScore      float64
	Tier            trust.Tier
	LowTrustWarning bool
}

// CheckoutPreview is shown before the customer confirms.
type CheckoutPreview struct {
	Vendors []VendorCheckout
	Total   float64
}

// CheckoutInput carries the customer's confirmation.
type CheckoutInput struct {
	ShippingAddress string
	PaymentMethod   string
	IdempotencyKey  string
}

// CheckoutResult lists the orders placed, one per vendor.
type CheckoutResult struct {
	Orders []*domain.Order
	// AlreadyExisted is true when the Idempotency-Key matched earlier orders.
	AlreadyExisted bool
}

// ListOrdersInput carries paging and an optional status filter. Scope is
// derived from the actor: customers see their orders, vendors theirs, admins all.
type ListOrdersInput struct {
	Status string
	Page   int
	Limit  int
}

// OrderPage is one page of orders.
type OrderPage struct {
	Items      []*domain.Order
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// OrderService handles checkout and order lifecycle.
type OrderService interface {
	PreviewCheckout(ctx context.Context, actor domain.Actor) (*CheckoutPreview, error)
	Checkout(ctx context.Context, actor domain.Actor, input CheckoutInput) (*CheckoutResult, error)
	ListOrders(ctx context.Context, actor domain.Actor, input ListOrdersInput) (*OrderPage, error)
	GetOrder(ctx context.Context, actor domain.Actor, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, id string, status string) (*domain.Order, error)
}

// VendorView is a vendor row on the admin dashboard.
type VendorView struct {
	ID          string
	Name        string
	Email       string
	Status      domain.AccountStatus
	TrustScore  float64
	ReviewCount int
	Tier        trust.Tier
}

// DashboardStats aggregates the marketplace for admins.
type DashboardStats struct {
	AccountsByRole map[domain.Role]int64
	OrdersByStatus map[domain.OrderStatus]int64
	Revenue        float64
}

// AdminService backs the admin dashboard.
type AdminService interface {
	ListVendors(ctx context.Context, actor domain.Actor, minTrust float64) ([]VendorView, error)
	Stats(ctx context.Context, actor domain.Actor) (*DashboardStats, error)
	SetAccountStatus(ctx context.Context, actor domain.Actor, accountID string, status string) error
}
