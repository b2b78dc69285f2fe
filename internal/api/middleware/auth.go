package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/freshcart/marketplace/internal/core/domain"
)

// ActorKey is the echo context key holding the authenticated domain.Actor.
const ActorKey = "actor"

// StatusChecker reports an account's current status.
type StatusChecker interface {
	AccountStatus(ctx context.Context, id string) (domain.AccountStatus, error)
}

// Auth validates the bearer JWT, checks that the account behind it is still
// active, and injects the caller as a domain.Actor. A token issued before a
// lock or suspension stops working on the next request.
func Auth(jwtSecret string, accounts StatusChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			actor, ok := actorFromClaims(claims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing identity claims")
			}

			status, err := accounts.AccountStatus(c.Request().Context(), actor.ID)
			switch {
			case errors.Is(err, domain.ErrUnknownAccount):
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			case err != nil:
				return err
			case !status.CanAuthenticate():
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrAccountLocked.Error())
			}
			c.Set(ActorKey, actor)

			return next(c)
		}
	}
}

func actorFromClaims(claims jwt.MapClaims) (domain.Actor, bool) {
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	email, _ := claims["email"].(string)

	r := domain.Role(role)
	if sub == "" || !r.Valid() {
		return domain.Actor{}, false
	}
	return domain.Actor{ID: sub, Role: r, Email: email}, true
}

// ActorFrom returns the actor set by Auth.
func ActorFrom(c echo.Context) (domain.Actor, bool) {
	actor, ok := c.Get(ActorKey).(domain.Actor)
	return actor, ok
}
