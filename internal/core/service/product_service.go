package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/core/ports"
	"github.com/freshcart/marketplace/internal/core/trust"
	"github.com/freshcart/marketplace/internal/pkg/pagination"
	"github.com/freshcart/marketplace/internal/pkg/slug"
)

var validSorts = []string{
	domain.SortNewest,
	domain.SortPriceLow,
	domain.SortPriceHigh,
	domain.SortName,
	domain.SortTrustHigh,
}

type ProductService struct {
	products ports.ProductRepository
	accounts ports.AccountRepository
	log      zerolog.Logger
}

func NewProductService(products ports.ProductRepository, accounts ports.AccountRepository, log zerolog.Logger) *ProductService {
	return &ProductService{products: products, accounts: accounts, log: log}
}

func (s *ProductService) CreateProduct(ctx context.Context, actor domain.Actor, in ports.CreateProductInput) (*domain.Product, error) {
	if !actor.Can(domain.ActionManageOwnProducts) {
		return nil, domain.ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price <= 0 || in.OriginalPrice < 0 {
		return nil, domain.ErrInvalidProduct
	}

	vendor, err := s.accounts.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	product := &domain.Product{
		ID:            id,
		Slug:          slug.WithSuffix(name, id),
		Name:          name,
		Description:   strings.TrimSpace(in.Description),
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		Category:      strings.ToLower(strings.TrimSpace(in.Category)),
		ImageURL:      in.ImageURL,
		VendorID:      vendor.ID,
		VendorName:    vendor.Name,
		InStock:       in.InStock,
		OnSale:        in.OriginalPrice > in.Price,
		TrustScore:    vendor.TrustScore,
		TrustVersion:  vendor.Version,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.syncVendorTrust(ctx, product)

	s.log.Info().Str("product_id", product.ID).Str("slug", product.Slug).Str("vendor_id", vendor.ID).Msg("product created")
	return product, nil
}

// syncVendorTrust re-reads the vendor after the insert and pushes the live
// score to every listing stamped with an older version, the new one included.
// A trust change committed between the first read and the insert is not lost.
func (s *ProductService) syncVendorTrust(ctx context.Context, p *domain.Product) {
	vendor, err := s.accounts.FindByID(ctx, p.VendorID)
	if err != nil {
		s.log.Warn().Err(err).Str("vendor_id", p.VendorID).Msg("failed to re-read vendor trust")
		return
	}
	if err := s.products.SetVendorTrust(ctx, vendor.ID, vendor.TrustScore, vendor.Version); err != nil {
		s.log.Warn().Err(err).Str("vendor_id", vendor.ID).Msg("failed to sync vendor trust to products")
		return
	}
	if vendor.Version > p.TrustVersion {
		p.TrustScore = vendor.TrustScore
		p.TrustVersion = vendor.Version
	}
}

func (s *ProductService) ListProducts(ctx context.Context, filter ports.ProductFilter) (*ports.ProductPage, error) {
	filter.Page, filter.Limit = pagination.Normalize(filter.Page, filter.Limit)
	if !slices.Contains(validSorts, filter.Sort) {
		filter.Sort = domain.SortNewest
	}
	if filter.MinTrust < 0 {
		filter.MinTrust = 0
	}

	items, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	views := make([]ports.ProductView, 0, len(items))
	for p := range trust.FilterByTrust(items, filter.MinTrust) {
		views = append(views, viewOf(p))
	}

	return &ports.ProductPage{
		Items:      views,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: pagination.TotalPages(total, filter.Limit),
	}, nil
}

func (s *ProductService) GetProduct(ctx context.Context, slug string) (*ports.ProductView, error) {
	p, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	v := viewOf(p)
	return &v, nil
}

func (s *ProductService) ListVendorProducts(ctx context.Context, actor domain.Actor) ([]ports.ProductView, error) {
	if !actor.Can(domain.ActionManageOwnProducts) {
		return nil, domain.ErrForbidden
	}
	// Limit 0 returns every listing.
	items, _, err := s.products.List(ctx, ports.ProductFilter{VendorID: actor.ID, Sort: domain.SortNewest})
	if err != nil {
		return nil, fmt.Errorf("list vendor products: %w", err)
	}
	views := make([]ports.ProductView, 0, len(items))
	for _, p := range items {
		views = append(views, viewOf(p))
	}
	return views, nil
}

func viewOf(p *domain.Product) ports.ProductView {
	return ports.ProductView{Product: p, Tier: trust.Classify(p.TrustScore)}
}
