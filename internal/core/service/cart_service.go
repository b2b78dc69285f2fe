package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/core/ports"
)

type CartService struct {
	carts    ports.CartStore
	products ports.ProductRepository
	log      zerolog.Logger
}

func NewCartService(carts ports.CartStore, products ports.ProductRepository, log zerolog.Logger) *CartService {
	return &CartService{carts: carts, products: products, log: log}
}

func (s *CartService) Get(ctx context.Context, actor domain.Actor) (*domain.Cart, error) {
	if !actor.Can(domain.ActionPlaceOrders) {
		return nil, domain.ErrForbidden
	}
	return s.carts.Get(ctx, actor.ID)
}

// AddItem adds quantity units of a product, merging with an existing line.
func (s *CartService) AddItem(ctx context.Context, actor domain.Actor, productID string, quantity int) (*domain.Cart, error) {
	if !actor.Can(domain.ActionPlaceOrders) {
		return nil, domain.ErrForbidden
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.InStock {
		return nil, domain.ErrOutOfStock
	}

	cart, err := s.carts.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if i := cart.FindItem(productID); i >= 0 {
		cart.Items[i].Quantity += quantity
		cart.Items[i].Price = product.Price
	} else {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:  product.ID,
			Name:       product.Name,
			Price:      product.Price,
			Quantity:   quantity,
			ImageURL:   product.ImageURL,
			VendorID:   product.VendorID,
			VendorName: product.VendorName,
		})
	}

	return s.save(ctx, cart)
}

// UpdateItem sets the quantity of a line. Zero removes it.
func (s *CartService) UpdateItem(ctx context.Context, actor domain.Actor, productID string, quantity int) (*domain.Cart, error) {
	if !actor.Can(domain.ActionPlaceOrders) {
		return nil, domain.ErrForbidden
	}
	if quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	cart, err := s.carts.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	i := cart.FindItem(productID)
	if i < 0 {
		return nil, domain.ErrProductNotFound
	}

	if quantity == 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	} else {
		cart.Items[i].Quantity = quantity
	}
	return s.save(ctx, cart)
}

func (s *CartService) RemoveItem(ctx context.Context, actor domain.Actor, productID string) (*domain.Cart, error) {
	return s.UpdateItem(ctx, actor, productID, 0)
}

func (s *CartService) Clear(ctx context.Context, actor domain.Actor) error {
	if !actor.Can(domain.ActionPlaceOrders) {
		return domain.ErrForbidden
	}
	return s.carts.Delete(ctx, actor.ID)
}

func (s *CartService) save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	cart.UpdatedAt = time.Now().UTC()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
