package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/freshcart/marketplace/internal/core/domain"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// statusMap answers AccountStatus from a fixed table; unlisted ids are active.
type statusMap map[string]domain.AccountStatus

func (m statusMap) AccountStatus(_ context.Context, id string) (domain.AccountStatus, error) {
	if id == "gone" {
		return "", domain.ErrUnknownAccount
	}
	if id == "broken" {
		return "", errors.New("mongo down")
	}
	if st, ok := m[id]; ok {
		return st, nil
	}
	return domain.StatusActive, nil
}

func runAuth(t *testing.T, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	return runAuthWith(t, statusMap{}, header, next)
}

func runAuthWith(t *testing.T, accounts StatusChecker, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth("secret", accounts)(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func mustNotReach(t *testing.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	signed := signToken(t, "secret", jwt.MapClaims{
		"sub":   "vend-1",
		"role":  "vendor",
		"email": "farm@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	called := false
	rec := runAuth(t, "Bearer "+signed, func(c echo.Context) error {
		called = true
		actor, ok := ActorFrom(c)
		if !ok {
			t.Fatalf("actor not set")
		}
		want := domain.Actor{ID: "vend-1", Role: domain.RoleVendor, Email: "farm@example.com"}
		if actor != want {
			t.Fatalf("unexpected actor: %+v", actor)
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	rec := runAuth(t, "", mustNotReach(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	rec := runAuth(t, "Token abc", mustNotReach(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	rec := runAuth(t, "Bearer not-a-token", mustNotReach(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	signed := signToken(t, "other", jwt.MapClaims{"sub": "u1", "role": "customer"})
	rec := runAuth(t, "Bearer "+signed, mustNotReach(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	signed := signToken(t, "secret", jwt.MapClaims{
		"sub":  "u1",
		"role": "customer",
		"exp":  time.Now().Add(-time.Minute).Unix(),
	})
	rec := runAuth(t, "Bearer "+signed, mustNotReach(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_UnknownRole(t *testing.T) {
	signed := signToken(t, "secret", jwt.MapClaims{"sub": "u1", "role": "guest"})
	rec := runAuth(t, "Bearer "+signed, mustNotReach(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingSubject(t *testing.T) {
	signed := signToken(t, "secret", jwt.MapClaims{"role": "admin"})
	rec := runAuth(t, "Bearer "+signed, mustNotReach(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RejectsInactiveAccounts(t *testing.T) {
	accounts := statusMap{
		"cust-locked":    domain.StatusLocked,
		"vend-suspended": domain.StatusSuspended,
	}
	cases := []struct {
		id   string
		role string
		want int
	}{
		{"cust-locked", "customer", http.StatusForbidden},
		{"vend-suspended", "vendor", http.StatusForbidden},
		{"gone", "customer", http.StatusUnauthorized},
		{"broken", "customer", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			signed := signToken(t, "secret", jwt.MapClaims{
				"sub":  tc.id,
				"role": tc.role,
				"exp":  time.Now().Add(time.Hour).Unix(),
			})
			rec := runAuthWith(t, accounts, "Bearer "+signed, mustNotReach(t))
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}
