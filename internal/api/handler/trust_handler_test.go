package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/core/ports"
	"github.com/freshcart/marketplace/internal/core/trust"
)

func TestTrustHandler_SubmitReview_Success(t *testing.T) {
	stub := &stubTrustService{
		submitFn: func(ctx context.Context, actor domain.Actor, in ports.SubmitReviewInput) (*ports.ReviewResult, error) {
			if actor.ID != "cust-1" || in.OrderID != "ord-1" || in.Rating != 5 {
				t.Fatalf("unexpected call: %+v %+v", actor, in)
			}
			return &ports.ReviewResult{
				Review:      &domain.Review{ID: "rev-1", OrderID: in.OrderID, VendorID: "vend-1", Rating: in.Rating, Text: in.Text},
				VendorScore: 5,
				ReviewCount: 1,
				Tier:        trust.HighlyTrusted,
			}, nil
		},
	}
	h := NewTrustHandler(stub)

	c, rec := newContext(http.MethodPost, "/v1/orders/ord-1/review", `{"rating":5,"text":"Crisp lettuce"}`, &customer)
	c.SetParamNames("id")
	c.SetParamValues("ord-1")

	if err := h.SubmitReview(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp reviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.VendorScore != 5 || resp.ReviewCount != 1 || resp.Tier != trust.HighlyTrusted {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTrustHandler_SubmitReview_RejectsRatingOutOfRange(t *testing.T) {
	h := NewTrustHandler(&stubTrustService{})

	for _, body := range []string{`{"rating":0,"text":"x"}`, `{"rating":6,"text":"x"}`, `{"rating":3}`} {
		c, _ := newContext(http.MethodPost, "/v1/orders/ord-1/review", body, &customer)
		c.SetParamNames("id")
		c.SetParamValues("ord-1")
		if code := httpCode(t, h.SubmitReview(c)); code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, code)
		}
	}
}

func TestTrustHandler_SubmitReview_PropagatesDomainError(t *testing.T) {
	for _, want := range []error{domain.ErrAlreadyReviewed, domain.ErrOrderNotReviewable, domain.ErrPersistenceConflict} {
		stub := &stubTrustService{
			submitFn: func(ctx context.Context, actor domain.Actor, in ports.SubmitReviewInput) (*ports.ReviewResult, error) {
				return nil, want
			},
		}
		h := NewTrustHandler(stub)

		c, _ := newContext(http.MethodPost, "/v1/orders/ord-1/review", `{"rating":4,"text":"ok"}`, &customer)
		if err := h.SubmitReview(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestTrustHandler_AdjustVendorTrust(t *testing.T) {
	stub := &stubTrustService{
		adjustFn: func(ctx context.Context, actor domain.Actor, vendorID string, delta int) (*ports.TrustSummary, error) {
			if actor.Role != domain.RoleAdmin || vendorID != "vend-1" || delta != -1 {
				t.Fatalf("unexpected call: %v %s %d", actor, vendorID, delta)
			}
			return &ports.TrustSummary{AccountID: vendorID, Score: 2.0, Tier: trust.LowTrust, LowTrustWarning: true}, nil
		},
	}
	h := NewTrustHandler(stub)

	c, rec := newContext(http.MethodPost, "/v1/admin/vendors/vend-1/trust", `{"delta":-1}`, &admin)
	c.SetParamNames("id")
	c.SetParamValues("vend-1")
	if err := h.AdjustVendorTrust(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp trustResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Score != 2.0 || !resp.LowTrustWarning || resp.TierLabel != "Low Trust" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTrustHandler_AdjustVendorTrust_RejectsBigDelta(t *testing.T) {
	h := NewTrustHandler(&stubTrustService{})

	c, _ := newContext(http.MethodPost, "/v1/admin/vendors/vend-1/trust", `{"delta":2}`, &admin)
	if code := httpCode(t, h.AdjustVendorTrust(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestTrustHandler_VendorReviews_Paging(t *testing.T) {
	stub := &stubTrustService{
		reviewsFn: func(ctx context.Context, vendorID string, page, limit int) ([]*domain.Review, int64, error) {
			if vendorID != "vend-1" || page != 2 || limit != 100 {
				t.Fatalf("unexpected paging: %s %d %d", vendorID, page, limit)
			}
			return nil, 150, nil
		},
	}
	h := NewTrustHandler(stub)

	c, rec := newContext(http.MethodGet, "/v1/vendors/vend-1/reviews?page=2&limit=500", "", nil)
	c.SetParamNames("id")
	c.SetParamValues("vend-1")
	if err := h.VendorReviews(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp reviewListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Items == nil || resp.TotalPages != 2 || resp.Limit != 100 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTrustHandler_AccountTrust_NotFound(t *testing.T) {
	stub := &stubTrustService{
		summaryFn: func(ctx context.Context, accountID string) (*ports.TrustSummary, error) {
			return nil, domain.ErrUnknownAccount
		},
	}
	h := NewTrustHandler(stub)

	c, _ := newContext(http.MethodGet, "/v1/accounts/ghost/trust", "", &customer)
	if err := h.AccountTrust(c); !errors.Is(err, domain.ErrUnknownAccount) {
		t.Fatalf("expected ErrUnknownAccount, got %v", err)
	}
}
