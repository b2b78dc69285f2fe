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

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
			if in.Name != "Green Farm" || in.Role != "vendor" || in.Email != "farm@example.com" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Account{ID: "vend-1", Name: in.Name, Email: in.Email, Role: domain.RoleVendor, TrustScore: 3}, nil
		},
	}
	h := NewAuthHandler(stub, &stubTrustService{})

	c, rec := newContext(http.MethodPost, "/auth/register",
		`{"name":"Green Farm","email":"farm@example.com","password":"Sup3r$ecret","role":"vendor"}`, nil)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["role"] != "vendor" || user["trust_score"] != 3.0 {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
}

func TestAuthHandler_Register_ValidationError(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubTrustService{})

	c, _ := newContext(http.MethodPost, "/auth/register", `{"name":"A","email":"nope","password":"x","role":"guest"}`, nil)
	err := h.Register(c)
	if code := httpCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAuthHandler_Register_AccountExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
			return nil, domain.ErrAccountExists
		},
	}
	h := NewAuthHandler(stub, &stubTrustService{})

	c, _ := newContext(http.MethodPost, "/auth/register",
		`{"name":"Ana","email":"ana@example.com","password":"Sup3r$ecret","role":"customer"}`, nil)
	if err := h.Register(c); !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.Account, error) {
			return "signed.jwt.token", &domain.Account{ID: "cust-1", Email: email, Role: domain.RoleCustomer}, nil
		},
	}
	h := NewAuthHandler(stub, &stubTrustService{})

	c, rec := newContext(http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"Sup3r$ecret"}`, nil)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "signed.jwt.token" || resp.User.ID != "cust-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Login_Failure(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidCredentials, domain.ErrAccountLocked} {
		stub := &stubAuthService{
			loginFn: func(ctx context.Context, email, password string) (string, *domain.Account, error) {
				return "", nil, want
			},
		}
		h := NewAuthHandler(stub, &stubTrustService{})

		c, _ := newContext(http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"wrong"}`, nil)
		if err := h.Login(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestAuthHandler_Me(t *testing.T) {
	auth := &stubAuthService{
		meFn: func(ctx context.Context, actor domain.Actor) (*domain.Account, error) {
			return &domain.Account{ID: actor.ID, Role: actor.Role, TrustScore: 4.6}, nil
		},
	}
	tr := &stubTrustService{
		summaryFn: func(ctx context.Context, accountID string) (*ports.TrustSummary, error) {
			return &ports.TrustSummary{AccountID: accountID, Score: 4.6, Tier: trust.HighlyTrusted}, nil
		},
	}
	h := NewAuthHandler(auth, tr)

	c, rec := newContext(http.MethodGet, "/v1/me", "", &vendor)
	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp meResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.User.ID != "vend-1" || resp.Trust.Tier != trust.HighlyTrusted || resp.Trust.TierLabel != "Highly Trusted" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Me_RequiresActor(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubTrustService{})

	c, _ := newContext(http.MethodGet, "/v1/me", "", nil)
	if code := httpCode(t, h.Me(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}
