package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/freshcart/marketplace/internal/core/domain"
)

const securityLogRetentionDays = 90

// SecurityLogRepository persists audit events to the security_logs collection.
type SecurityLogRepository struct {
	col *mongo.Collection
}

func NewSecurityLogRepository(db *mongo.Database) *SecurityLogRepository {
	return &SecurityLogRepository{col: db.Collection(collectionSecurityLogs)}
}

func (r *SecurityLogRepository) Record(ctx context.Context, e *domain.SecurityEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert security event: %w", err)
	}
	return nil
}

// ListByUser returns the newest events for userID first.
func (r *SecurityLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.SecurityEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list security events: %w", err)
	}
	var out []*domain.SecurityEvent
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode security events: %w", err)
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the security_logs collection.
func (r *SecurityLogRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(securityLogRetentionDays * 24 * 60 * 60),
		},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
