package ports

import (
	"context"
	"time"
)

// Trust event types.
const (
	EventTrustReviewRecorded = "trust.review_recorded"
	EventTrustAdjusted       = "trust.adjusted"
)

// TrustEvent announces a change to a vendor's trust score.
type TrustEvent struct {
	Type        string    `json:"type"`
	VendorID    string    `json:"vendor_id"`
	Score       float64   `json:"score"`
	ReviewCount int       `json:"review_count"`
	Reason      string    `json:"reason"`
	OrderID     string    `json:"order_id,omitempty"`
	ActorID     string    `json:"actor_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// EventPublisher publishes trust events to downstream consumers.
type EventPublisher interface {
	PublishTrustEvent(ctx context.Context, event TrustEvent) error
}

// Serializer runs fn so that calls sharing a key never overlap.
type Serializer interface {
	Do(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
