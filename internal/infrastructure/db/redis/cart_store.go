package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/freshcart/marketplace/internal/core/domain"
)

const (
	cartKeyPrefix  = "cart:"
	defaultCartTTL = 7 * 24 * time.Hour
)

// CartStore implements ports.CartStore. Carts are JSON blobs under
// cart:<customer_id> that expire after ttl of inactivity.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	if ttl <= 0 {
		ttl = defaultCartTTL
	}
	return &CartStore{client: client, ttl: ttl}
}

// Get returns the stored cart, or an empty one when none exists.
func (s *CartStore) Get(ctx context.Context, customerID string) (*domain.Cart, error) {
	data, err := s.client.Get(ctx, cartKeyPrefix+customerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &domain.Cart{CustomerID: customerID, Items: []domain.CartItem{}}, nil
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}

// Save persists the cart and refreshes its TTL.
func (s *CartStore) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKeyPrefix+cart.CustomerID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (s *CartStore) Delete(ctx context.Context, customerID string) error {
	if err := s.client.Del(ctx, cartKeyPrefix+customerID).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}
