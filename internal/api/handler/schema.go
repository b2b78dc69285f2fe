package handler

import (
	"time"

	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/core/ports"
	"github.com/freshcart/marketplace/internal/core/trust"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	Name      string `json:"name"       validate:"required,min=2"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=8"`
	Role      string `json:"role"       validate:"required,oneof=customer vendor admin"`
	AdminCode string `json:"admin_code,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string          `json:"token,omitempty"`
	User  *domain.Account `json:"user,omitempty"`
}

type meResponse struct {
	User  *domain.Account `json:"user"`
	Trust trustResponse   `json:"trust"`
}

// --- Trust ---

type trustResponse struct {
	AccountID       string                     `json:"account_id"`
	Role            domain.Role                `json:"role"`
	Score           float64                    `json:"trust_score"`
	Tier            trust.Tier                 `json:"tier"`
	TierLabel       string                     `json:"tier_label"`
	Description     string                     `json:"description"`
	ReviewCount     int                        `json:"review_count"`
	LowTrustWarning bool                       `json:"low_trust_warning"`
	History         []domain.TrustHistoryEntry `json:"history"`
}

func toTrustResponse(s *ports.TrustSummary) trustResponse {
	return trustResponse{
		AccountID:       s.AccountID,
		Role:            s.Role,
		Score:           s.Score,
		Tier:            s.Tier,
		TierLabel:       s.Tier.Label(),
		Description:     s.Description,
		ReviewCount:     s.ReviewCount,
		LowTrustWarning: s.LowTrustWarning,
		History:         s.History,
	}
}

type submitReviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Text   string `json:"text"   validate:"required,max=2000"`
}

type reviewResponse struct {
	Review      *domain.Review `json:"review"`
	VendorScore float64        `json:"vendor_trust_score"`
	ReviewCount int            `json:"vendor_review_count"`
	Tier        trust.Tier     `json:"vendor_tier"`
}

type adjustTrustRequest struct {
	Delta int `json:"delta" validate:"required,oneof=-1 1"`
}

type reviewListResponse struct {
	Items      []*domain.Review `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

// --- Catalog ---

type createProductRequest struct {
	Name          string  `json:"name"           validate:"required,max=200"`
	Description   string  `json:"description"    validate:"max=5000"`
	Price         float64 `json:"price"          validate:"required,gt=0"`
	OriginalPrice float64 `json:"original_price" validate:"gte=0"`
	Category      string  `json:"category"       validate:"required"`
	ImageURL      string  `json:"image_url"      validate:"omitempty,url"`
	InStock       *bool   `json:"in_stock"`
}

type productResponse struct {
	*domain.Product
	Tier      trust.Tier `json:"trust_tier"`
	TierLabel string     `json:"trust_tier_label"`
}

func toProductResponse(v ports.ProductView) productResponse {
	return productResponse{Product: v.Product, Tier: v.Tier, TierLabel: v.Tier.Label()}
}

func toProductResponses(views []ports.ProductView) []productResponse {
	out := make([]productResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toProductResponse(v))
	}
	return out
}

type productListResponse struct {
	Items      []productResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// --- Cart ---

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"   validate:"required,gt=0"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

type cartResponse struct {
	CustomerID string            `json:"customer_id"`
	Items      []domain.CartItem `json:"items"`
	Total      float64           `json:"total"`
	ItemCount  int               `json:"item_count"`
	UpdatedAt  *time.Time        `json:"updated_at,omitempty"`
}

func toCartResponse(cart *domain.Cart) cartResponse {
	resp := cartResponse{
		CustomerID: cart.CustomerID,
		Items:      cart.Items,
		Total:      cart.Total(),
		ItemCount:  cart.ItemCount(),
	}
	if resp.Items == nil {
		resp.Items = []domain.CartItem{}
	}
	if !cart.UpdatedAt.IsZero() {
		ts := cart.UpdatedAt
		resp.UpdatedAt = &ts
	}
	return resp
}

// --- Checkout & orders ---

type checkoutRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required,min=5"`
	PaymentMethod   string `json:"payment_method"   validate:"required"`
}

type vendorCheckoutResponse struct {
	VendorID        string            `json:"vendor_id"`
	VendorName      string            `json:"vendor_name"`
	Items           []domain.CartItem `json:"items"`
	Total           float64           `json:"total"`
	TrustScore      float64           `json:"trust_score"`
	Tier            trust.Tier        `json:"tier"`
	TierLabel       string            `json:"tier_label"`
	LowTrustWarning bool              `json:"low_trust_warning"`
}

type checkoutPreviewResponse struct {
	Vendors []vendorCheckoutResponse `json:"vendors"`
	Total   float64                  `json:"total"`
}

func toCheckoutPreviewResponse(p *ports.CheckoutPreview) checkoutPreviewResponse {
	resp := checkoutPreviewResponse{Total: p.Total, Vendors: make([]vendorCheckoutResponse, 0, len(p.Vendors))}
	for _, v := range p.Vendors {
		resp.Vendors = append(resp.Vendors, vendorCheckoutResponse{
			VendorID:        v.VendorID,
			VendorName:      v.VendorName,
			Items:           v.Items,
			Total:           v.Total,
			TrustScore:      v.TrustScore,
			Tier:            v.Tier,
			TierLabel:       v.Tier.Label(),
			LowTrustWarning: v.LowTrustWarning,
		})
	}
	return resp
}

type checkoutResponse struct {
	Orders []*domain.Order `json:"orders"`
	Replay bool            `json:"replay"`
}

type orderListResponse struct {
	Items      []*domain.Order `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

// --- Admin ---

type vendorResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Email       string               `json:"email"`
	Status      domain.AccountStatus `json:"account_status"`
	TrustScore  float64              `json:"trust_score"`
	ReviewCount int                  `json:"review_count"`
	Tier        trust.Tier           `json:"tier"`
	TierLabel   string               `json:"tier_label"`
}

type statsResponse struct {
	AccountsByRole map[domain.Role]int64        `json:"accounts_by_role"`
	OrdersByStatus map[domain.OrderStatus]int64 `json:"orders_by_status"`
	Revenue        float64                      `json:"revenue"`
}

type setAccountStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active locked suspended"`
}
