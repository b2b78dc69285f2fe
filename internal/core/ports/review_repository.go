package ports

import (
	"context"

	"github.com/freshcart/marketplace/internal/core/domain"
)

// ReviewCommit is the unit written when a review is accepted: the review
// itself, the vendor's new trust values and the order's reviewed flag.
type ReviewCommit struct {
	Review *domain.Review
	Trust  TrustUpdate
}

// ReviewRepository persists reviews.
type ReviewRepository interface {
	// Commit applies the whole ReviewCommit atomically or not at all.
	//   - domain.ErrAlreadyReviewed if the order was reviewed meanwhile.
	//   - domain.ErrPersistenceConflict if the vendor's version moved.
	Commit(ctx context.Context, commit ReviewCommit) error
	ListByVendor(ctx context.Context, vendorID string, page, limit int) ([]*domain.Review, int64, error)
}
