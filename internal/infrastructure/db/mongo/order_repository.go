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

// OrderRepository implements ports.OrderRepository using MongoDB.
type OrderRepository struct {
	client *mongo.Client
	col    *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{client: db.Client(), col: db.Collection(collectionOrders)}
}

// CreateMany inserts the orders of one checkout in a single transaction, so a
// checkout is stored whole or not at all.
func (r *OrderRepository) CreateMany(ctx context.Context, orders []*domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, insertOrders(sc, r.col, orders)
	})
	return err
}

// insertOrders maps a unique-index violation to domain.ErrDuplicateCheckout.
// The only unique key besides _id is (customer_id, idempotency_key, vendor_id).
func insertOrders(ctx context.Context, col *mongo.Collection, orders []*domain.Order) error {
	docs := make([]interface{}, 0, len(orders))
	for _, o := range orders {
		docs = append(docs, o)
	}
	if _, err := col.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateCheckout
		}
		return fmt.Errorf("insert orders: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var o domain.Order
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &o, nil
}

// FindByIdempotencyKey returns the orders a customer created with key, if any.
func (r *OrderRepository) FindByIdempotencyKey(ctx context.Context, customerID, key string) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"customer_id": customerID, "idempotency_key": key})
	if err != nil {
		return nil, fmt.Errorf("find orders by key: %w", err)
	}
	var out []*domain.Order
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return out, nil
}

func (r *OrderRepository) List(ctx context.Context, f ports.ListOrdersFilter) ([]*domain.Order, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := orderQuery(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	opts := pageOptions(f.Page, f.Limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	var out []*domain.Order
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode orders: %w", err)
	}
	return out, total, nil
}

func orderQuery(f ports.ListOrdersFilter) bson.M {
	filter := bson.M{}
	if f.CustomerID != "" {
		filter["customer_id"] = f.CustomerID
	}
	if f.VendorID != "" {
		filter["vendor_id"] = f.VendorID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

// UpdateStatus atomically sets the status and appends a history entry, but
// only while the order is still in from.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, entry domain.StatusHistoryEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": from}
	update := bson.M{
		"$set":  bson.M{"status": to},
		"$push": bson.M{"status_history": entry},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if n == 0 {
		return domain.ErrOrderNotFound
	}
	return fmt.Errorf("%w: order %s is no longer %s", domain.ErrInvalidTransition, id, from)
}

// Stats counts orders per status and sums revenue over non-cancelled orders.
func (r *OrderRepository) Stats(ctx context.Context) (*ports.OrderStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$total_amount"}}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	var rows []struct {
		Status  domain.OrderStatus `bson:"_id"`
		Count   int64              `bson:"count"`
		Revenue float64            `bson:"revenue"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode order stats: %w", err)
	}

	stats := &ports.OrderStats{ByStatus: make(map[domain.OrderStatus]int64, len(rows))}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
		if row.Status != domain.OrderCancelled {
			stats.Revenue += row.Revenue
		}
	}
	return stats, nil
}

// EnsureIndexes creates necessary indexes on the orders collection.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "vendor_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "idempotency_key", Value: 1}, {Key: "vendor_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$exists": true}}),
		},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
