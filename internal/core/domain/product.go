package domain

import "time"

// Product is a catalog listing. TrustScore mirrors the owning vendor's live
// score so listings can be filtered and sorted without a join. TrustVersion is
// the vendor account version that score was copied from; a copy only ever
// moves forward.
type Product struct {
	ID            string    `json:"id" bson:"_id"`
	Slug          string    `json:"slug" bson:"slug"`
	Name          string    `json:"name" bson:"name"`
	Description   string    `json:"description" bson:"description"`
	Price         float64   `json:"price" bson:"price"`
	OriginalPrice float64   `json:"original_price,omitempty" bson:"original_price,omitempty"`
	Category      string    `json:"category" bson:"category"`
	ImageURL      string    `json:"image_url" bson:"image_url"`
	VendorID      string    `json:"vendor_id" bson:"vendor_id"`
	VendorName    string    `json:"vendor_name" bson:"vendor_name"`
	InStock       bool      `json:"in_stock" bson:"in_stock"`
	OnSale        bool      `json:"on_sale" bson:"on_sale"`
	TrustScore    float64   `json:"trust_score" bson:"trust_score"`
	TrustVersion  int64     `json:"-" bson:"trust_version"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// GetTrustScore lets products flow through trust filters.
func (p Product) GetTrustScore() float64 { return p.TrustScore }

// Product sort keys.
const (
	SortNewest    = "newest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortName      = "name"
	SortTrustHigh = "trust-high"
)
