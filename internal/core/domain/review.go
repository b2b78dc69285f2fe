package domain

import "time"

// Review is a customer's rating of a vendor for one delivered order. Immutable.
type Review struct {
	ID         string    `json:"id" bson:"_id"`
	OrderID    string    `json:"order_id" bson:"order_id"`
	VendorID   string    `json:"vendor_id" bson:"vendor_id"`
	CustomerID string    `json:"customer_id" bson:"customer_id"`
	Rating     int       `json:"rating" bson:"rating"`
	Text       string    `json:"text" bson:"text"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
