package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/core/ports"
)

// ReviewRepository implements ports.ReviewRepository using MongoDB. Commit
// spans the reviews, orders and accounts collections in one transaction.
type ReviewRepository struct {
	client   *mongo.Client
	reviews  *mongo.Collection
	orders   *mongo.Collection
	accounts *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{
		client:   db.Client(),
		reviews:  db.Collection(collectionReviews),
		orders:   db.Collection(collectionOrders),
		accounts: db.Collection(collectionAccounts),
	}
}

// Commit flips the order's reviewed flag, applies the vendor's trust update
// and inserts the review. Either all three writes land or none do.
func (r *ReviewRepository) Commit(ctx context.Context, c ports.ReviewCommit) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, applyReview(sc, r.orders, r.accounts, r.reviews, c)
	})
	return err
}

// applyReview performs the three writes of a review commit. It runs inside the
// session transaction; any error aborts all three.
func applyReview(ctx context.Context, orders, accounts, reviews *mongo.Collection, c ports.ReviewCommit) error {
	if err := markReviewed(ctx, orders, c.Review.OrderID); err != nil {
		return err
	}
	if err := updateTrust(ctx, accounts, c.Trust); err != nil {
		return err
	}
	if _, err := reviews.InsertOne(ctx, c.Review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyReviewed
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func markReviewed(ctx context.Context, orders *mongo.Collection, orderID string) error {
	filter := bson.M{"_id": orderID, "status": domain.OrderDelivered, "reviewed": false}
	res, err := orders.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"reviewed": true}})
	if err != nil {
		return fmt.Errorf("mark order reviewed: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	var o domain.Order
	if err := orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrOrderNotFound
		}
		return fmt.Errorf("find order: %w", err)
	}
	if o.Reviewed {
		return domain.ErrAlreadyReviewed
	}
	return domain.ErrOrderNotReviewable
}

func (r *ReviewRepository) ListByVendor(ctx context.Context, vendorID string, page, limit int) ([]*domain.Review, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"vendor_id": vendorID}
	total, err := r.reviews.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	opts := pageOptions(page, limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.reviews.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	var out []*domain.Review
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode reviews: %w", err)
	}
	return out, total, nil
}

// EnsureIndexes creates necessary indexes on the reviews collection.
// The unique order_id index backs the one-review-per-order rule.
func (r *ReviewRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "vendor_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, err := r.reviews.Indexes().CreateMany(ctx, indexes)
	return err
}
