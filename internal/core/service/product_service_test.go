package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/core/ports"
	"github.com/freshcart/marketplace/internal/core/trust"
	"github.com/freshcart/marketplace/internal/pkg/pagination"
)

func newProductFixture() (*stubStore, *ProductService) {
	st := newStubStore()
	seedMarketplace(st)
	return st, NewProductService(stubProductRepo{stubStore: st}, stubAccountRepo{st}, discardLogger)
}

func TestProductService_CreateProduct(t *testing.T) {
	st, svc := newProductFixture()

	p, err := svc.CreateProduct(context.Background(), vendorActor, ports.CreateProductInput{
		Name:          "Organic Bananas",
		Price:         2.5,
		OriginalPrice: 3,
		Category:      " Fruits ",
		InStock:       true,
	})
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}
	if !strings.HasPrefix(p.Slug, "organic-bananas-") {
		t.Fatalf("unexpected slug: %q", p.Slug)
	}
	if p.VendorName != "Green Farm" || p.TrustScore != 3 {
		t.Fatalf("vendor fields not copied: %+v", p)
	}
	if !p.OnSale || p.Category != "fruits" {
		t.Fatalf("unexpected product: %+v", p)
	}
	if _, ok := st.products[p.ID]; !ok {
		t.Fatalf("product not stored")
	}
}

func TestProductService_CreateProduct_PicksUpConcurrentTrustChange(t *testing.T) {
	st := newStubStore()
	seedMarketplace(st)
	repo := stubProductRepo{stubStore: st}
	// A review lands between the vendor read and the insert; its listing
	// update has already run and did not see the new product.
	repo.afterCreate = func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		v := st.accounts[vendorActor.ID]
		v.TrustScore = 4.4
		v.Version++
	}
	svc := NewProductService(repo, stubAccountRepo{st}, discardLogger)

	p, err := svc.CreateProduct(context.Background(), vendorActor, ports.CreateProductInput{Name: "Kale", Price: 2, Category: "greens", InStock: true})
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}
	if p.TrustScore != 4.4 {
		t.Fatalf("returned score = %v, want 4.4", p.TrustScore)
	}
	stored := st.product(p.ID)
	if stored.TrustScore != 4.4 || stored.TrustVersion != 2 {
		t.Fatalf("stored listing = %v (v%d), want 4.4 (v2)", stored.TrustScore, stored.TrustVersion)
	}
}

func TestProductService_CreateProduct_RepairsStaleListings(t *testing.T) {
	st, svc := newProductFixture()
	st.mu.Lock()
	st.accounts[vendorActor.ID].TrustScore = 4.1
	st.accounts[vendorActor.ID].Version = 5
	st.mu.Unlock()
	// left behind by a failed propagation
	st.products["old"] = &domain.Product{ID: "old", VendorID: vendorActor.ID, TrustScore: 3, TrustVersion: 3}

	if _, err := svc.CreateProduct(context.Background(), vendorActor, ports.CreateProductInput{Name: "Leeks", Price: 1, Category: "greens"}); err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}
	if old := st.product("old"); old.TrustScore != 4.1 || old.TrustVersion != 5 {
		t.Fatalf("stale listing not repaired: %v (v%d)", old.TrustScore, old.TrustVersion)
	}
}

func TestProductService_CreateProduct_Rejections(t *testing.T) {
	_, svc := newProductFixture()
	ctx := context.Background()

	if _, err := svc.CreateProduct(ctx, customerActor, ports.CreateProductInput{Name: "x", Price: 1}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.CreateProduct(ctx, vendorActor, ports.CreateProductInput{Name: "  ", Price: 1}); !errors.Is(err, domain.ErrInvalidProduct) {
		t.Fatalf("expected ErrInvalidProduct, got %v", err)
	}
	if _, err := svc.CreateProduct(ctx, vendorActor, ports.CreateProductInput{Name: "Milk", Price: 0}); !errors.Is(err, domain.ErrInvalidProduct) {
		t.Fatalf("expected ErrInvalidProduct, got %v", err)
	}
}

func TestProductService_ListProducts_FiltersByTrust(t *testing.T) {
	st, svc := newProductFixture()
	st.products["a"] = &domain.Product{ID: "a", TrustScore: 4.2}
	st.products["b"] = &domain.Product{ID: "b", TrustScore: 2.0}
	st.products["c"] = &domain.Product{ID: "c", TrustScore: 4.0}
	st.products["d"] = &domain.Product{ID: "d", TrustScore: 3.9}

	page, err := svc.ListProducts(context.Background(), ports.ProductFilter{MinTrust: 4})
	if err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	var ids []string
	for _, v := range page.Items {
		ids = append(ids, v.ID)
	}
	if strings.Join(ids, ",") != "a,c" {
		t.Fatalf("unexpected items: %v", ids)
	}
	if page.Items[0].Tier != trust.Trusted {
		t.Fatalf("unexpected tier: %s", page.Items[0].Tier)
	}
	if page.Page != 1 || page.Limit != pagination.DefaultLimit {
		t.Fatalf("unexpected paging: %d/%d", page.Page, page.Limit)
	}
}

func TestProductService_ListProducts_NoThresholdReturnsAll(t *testing.T) {
	st, svc := newProductFixture()
	st.products["a"] = &domain.Product{ID: "a", TrustScore: 1.0}
	st.products["b"] = &domain.Product{ID: "b", TrustScore: 5.0}

	page, err := svc.ListProducts(context.Background(), ports.ProductFilter{MinTrust: -3, Sort: "bogus", Limit: 500})
	if err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	if len(page.Items) != 2 || page.Limit != pagination.MaxLimit || page.TotalPages != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestProductService_GetProduct(t *testing.T) {
	st, svc := newProductFixture()
	st.products["a"] = &domain.Product{ID: "a", Slug: "milk-abc", TrustScore: 4.6}

	v, err := svc.GetProduct(context.Background(), "milk-abc")
	if err != nil {
		t.Fatalf("GetProduct returned error: %v", err)
	}
	if v.Tier != trust.HighlyTrusted {
		t.Fatalf("unexpected tier: %s", v.Tier)
	}
	if _, err := svc.GetProduct(context.Background(), "nope"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductService_ListVendorProducts(t *testing.T) {
	st, svc := newProductFixture()
	st.products["a"] = &domain.Product{ID: "a", VendorID: vendorActor.ID}
	st.products["b"] = &domain.Product{ID: "b", VendorID: "other"}

	views, err := svc.ListVendorProducts(context.Background(), vendorActor)
	if err != nil {
		t.Fatalf("ListVendorProducts returned error: %v", err)
	}
	if len(views) != 1 || views[0].ID != "a" {
		t.Fatalf("unexpected views: %+v", views)
	}
	if _, err := svc.ListVendorProducts(context.Background(), customerActor); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
