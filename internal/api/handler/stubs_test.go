package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/freshcart/marketplace/internal/api/middleware"
	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/core/ports"
)

var (
	customer = domain.Actor{ID: "cust-1", Role: domain.RoleCustomer, Email: "ana@example.com"}
	vendor   = domain.Actor{ID: "vend-1", Role: domain.RoleVendor, Email: "farm@example.com"}
	admin    = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin, Email: "ops@example.com"}
)

// newContext builds an echo context with the validator wired and, when actor
// is non-nil, the caller already authenticated.
func newContext(method, target, body string, actor *domain.Actor) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actor != nil {
		c.Set(middleware.ActorKey, *actor)
	}
	return c, rec
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

// --- service stubs ---

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.Account, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.Account, error)
	meFn       func(ctx context.Context, actor domain.Actor) (*domain.Account, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Me(ctx context.Context, actor domain.Actor) (*domain.Account, error) {
	return s.meFn(ctx, actor)
}

func (s *stubAuthService) AccountStatus(context.Context, string) (domain.AccountStatus, error) {
	return domain.StatusActive, nil
}

type stubTrustService struct {
	submitFn  func(ctx context.Context, actor domain.Actor, in ports.SubmitReviewInput) (*ports.ReviewResult, error)
	adjustFn  func(ctx context.Context, actor domain.Actor, vendorID string, delta int) (*ports.TrustSummary, error)
	summaryFn func(ctx context.Context, accountID string) (*ports.TrustSummary, error)
	reviewsFn func(ctx context.Context, vendorID string, page, limit int) ([]*domain.Review, int64, error)
}

func (s *stubTrustService) SubmitReview(ctx context.Context, actor domain.Actor, in ports.SubmitReviewInput) (*ports.ReviewResult, error) {
	return s.submitFn(ctx, actor, in)
}

func (s *stubTrustService) AdjustVendorTrust(ctx context.Context, actor domain.Actor, vendorID string, delta int) (*ports.TrustSummary, error) {
	return s.adjustFn(ctx, actor, vendorID, delta)
}

func (s *stubTrustService) Summary(ctx context.Context, accountID string) (*ports.TrustSummary, error) {
	return s.summaryFn(ctx, accountID)
}

func (s *stubTrustService) VendorReviews(ctx context.Context, vendorID string, page, limit int) ([]*domain.Review, int64, error) {
	return s.reviewsFn(ctx, vendorID, page, limit)
}

type stubProductService struct {
	createFn     func(ctx context.Context, actor domain.Actor, in ports.CreateProductInput) (*domain.Product, error)
	listFn       func(ctx context.Context, f ports.ProductFilter) (*ports.ProductPage, error)
	getFn        func(ctx context.Context, slug string) (*ports.ProductView, error)
	vendorListFn func(ctx context.Context, actor domain.Actor) ([]ports.ProductView, error)
}

func (s *stubProductService) CreateProduct(ctx context.Context, actor domain.Actor, in ports.CreateProductInput) (*domain.Product, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubProductService) ListProducts(ctx context.Context, f ports.ProductFilter) (*ports.ProductPage, error) {
	return s.listFn(ctx, f)
}

func (s *stubProductService) GetProduct(ctx context.Context, slug string) (*ports.ProductView, error) {
	return s.getFn(ctx, slug)
}

func (s *stubProductService) ListVendorProducts(ctx context.Context, actor domain.Actor) ([]ports.ProductView, error) {
	return s.vendorListFn(ctx, actor)
}

// stubCartService keeps a single in-memory cart.
type stubCartService struct {
	cart *domain.Cart
	err  error
}

func (s *stubCartService) Get(_ context.Context, _ domain.Actor) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) AddItem(_ context.Context, _ domain.Actor, productID string, qty int) (*domain.Cart, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.cart.Items = append(s.cart.Items, domain.CartItem{ProductID: productID, Quantity: qty, Price: 2})
	return s.cart, nil
}

func (s *stubCartService) UpdateItem(_ context.Context, _ domain.Actor, productID string, qty int) (*domain.Cart, error) {
	if s.err != nil {
		return nil, s.err
	}
	i := s.cart.FindItem(productID)
	if i < 0 {
		return nil, domain.ErrProductNotFound
	}
	if qty == 0 {
		s.cart.Items = append(s.cart.Items[:i], s.cart.Items[i+1:]...)
	} else {
		s.cart.Items[i].Quantity = qty
	}
	return s.cart, nil
}

func (s *stubCartService) RemoveItem(_ context.Context, _ domain.Actor, productID string) (*domain.Cart, error) {
	return s.UpdateItem(context.Background(), domain.Actor{}, productID, 0)
}

func (s *stubCartService) Clear(_ context.Context, _ domain.Actor) error {
	if s.err != nil {
		return s.err
	}
	s.cart.Items = nil
	return nil
}

type stubOrderService struct {
	previewFn  func(ctx context.Context, actor domain.Actor) (*ports.CheckoutPreview, error)
	checkoutFn func(ctx context.Context, actor domain.Actor, in ports.CheckoutInput) (*ports.CheckoutResult, error)
	listFn     func(ctx context.Context, actor domain.Actor, in ports.ListOrdersInput) (*ports.OrderPage, error)
	getFn      func(ctx context.Context, actor domain.Actor, id string) (*domain.Order, error)
	statusFn   func(ctx context.Context, actor domain.Actor, id, status string) (*domain.Order, error)
}

func (s *stubOrderService) PreviewCheckout(ctx context.Context, actor domain.Actor) (*ports.CheckoutPreview, error) {
	return s.previewFn(ctx, actor)
}

func (s *stubOrderService) Checkout(ctx context.Context, actor domain.Actor, in ports.CheckoutInput) (*ports.CheckoutResult, error) {
	return s.checkoutFn(ctx, actor, in)
}

func (s *stubOrderService) ListOrders(ctx context.Context, actor domain.Actor, in ports.ListOrdersInput) (*ports.OrderPage, error) {
	return s.listFn(ctx, actor, in)
}

func (s *stubOrderService) GetOrder(ctx context.Context, actor domain.Actor, id string) (*domain.Order, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, actor domain.Actor, id, status string) (*domain.Order, error) {
	return s.statusFn(ctx, actor, id, status)
}

type stubAdminService struct {
	vendorsFn func(ctx context.Context, actor domain.Actor, minTrust float64) ([]ports.VendorView, error)
	statsFn   func(ctx context.Context, actor domain.Actor) (*ports.DashboardStats, error)
	statusFn  func(ctx context.Context, actor domain.Actor, accountID, status string) error
}

func (s *stubAdminService) ListVendors(ctx context.Context, actor domain.Actor, minTrust float64) ([]ports.VendorView, error) {
	return s.vendorsFn(ctx, actor, minTrust)
}

func (s *stubAdminService) Stats(ctx context.Context, actor domain.Actor) (*ports.DashboardStats, error) {
	return s.statsFn(ctx, actor)
}

func (s *stubAdminService) SetAccountStatus(ctx context.Context, actor domain.Actor, accountID, status string) error {
	return s.statusFn(ctx, actor, accountID, status)
}
