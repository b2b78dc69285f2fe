package domain

import "time"

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// OrderItem is a product line frozen at checkout.
type OrderItem struct {
	ProductID string  `json:"product_id" bson:"product_id"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	ImageURL  string  `json:"image_url,omitempty" bson:"image_url,omitempty"`
}

// StatusHistoryEntry records a single status transition on an order.
type StatusHistoryEntry struct {
	Status    OrderStatus `json:"status" bson:"status"`
	Timestamp time.Time   `json:"timestamp" bson:"timestamp"`
	Notes     string      `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Order is placed per vendor at checkout.
//
// VendorTrustScore is a snapshot of the vendor's score at placement time. It is
// written once on insert and never updated when the vendor's live score moves.
type Order struct {
	ID               string               `json:"id" bson:"_id"`
	CustomerID       string               `json:"customer_id" bson:"customer_id"`
	CustomerName     string               `json:"customer_name" bson:"customer_name"`
	CustomerEmail    string               `json:"customer_email" bson:"customer_email"`
	VendorID         string               `json:"vendor_id" bson:"vendor_id"`
	VendorName       string               `json:"vendor_name" bson:"vendor_name"`
	Items            []OrderItem          `json:"items" bson:"items"`
	TotalAmount      float64              `json:"total_amount" bson:"total_amount"`
	ShippingAddress  string               `json:"shipping_address" bson:"shipping_address"`
	PaymentMethod    string               `json:"payment_method" bson:"payment_method"`
	Status           OrderStatus          `json:"status" bson:"status"`
	VendorTrustScore float64              `json:"vendor_trust_score" bson:"vendor_trust_score"`
	Reviewed         bool                 `json:"reviewed" bson:"reviewed"`
	IdempotencyKey   string               `json:"-" bson:"idempotency_key,omitempty"`
	StatusHistory    []StatusHistoryEntry `json:"status_history" bson:"status_history"`
	CreatedAt        time.Time            `json:"created_at" bson:"created_at"`
}

// Reviewable reports whether a review may be submitted for the order.
func (o *Order) Reviewable() bool {
	return o.Status == OrderDelivered && !o.Reviewed
}

// VisibleTo reports whether the actor may read the order.
func (o *Order) VisibleTo(a Actor) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleVendor:
		return o.VendorID == a.ID
	default:
		return o.CustomerID == a.ID
	}
}
