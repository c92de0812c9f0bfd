// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/danielhkuo/usulan-gedung/auth"
	"github.com/danielhkuo/usulan-gedung/models"
)

// Error messages relayed to API clients on authentication failure.
const (
	MsgNoToken      = "Unauthorized - No token found"
	MsgInvalidToken = "Unauthorized - Invalid token"
	MsgForbidden    = "Forbidden"
)

type ctxKey int

const (
	claimsKey ctxKey = iota
	tokenKey
)

// Claims returns the verified claims stored by RequireAuth.
func Claims(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey).(*auth.Claims)
	return c
}

// Token returns the raw bearer token stored by RequireAuth.
func Token(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

// WithSession returns ctx carrying claims and token, as RequireAuth does.
func WithSession(ctx context.Context, claims *auth.Claims, token string) context.Context {
	ctx = context.WithValue(ctx, claimsKey, claims)
	return context.WithValue(ctx, tokenKey, token)
}

// RequireAuth rejects requests without a valid bearer token and stores
// the verified claims in the request context.
func RequireAuth(verifier *auth.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r)
			if err != nil {
				ErrorResponse(w, http.StatusUnauthorized, MsgNoToken)
				return
			}
			claims, err := verifier.Verify(token)
			if err != nil {
				slog.Warn("bearer token rejected", "path", r.URL.Path, "error", err)
				ErrorResponse(w, http.StatusUnauthorized, MsgInvalidToken)
				return
			}
			next(w, r.WithContext(WithSession(r.Context(), claims, token)))
		}
	}
}

// RequireRoles allows only the listed roles. It must run after RequireAuth.
func RequireRoles(roles ...models.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims := Claims(r.Context())
			if claims == nil {
				ErrorResponse(w, http.StatusUnauthorized, MsgNoToken)
				return
			}
			if !slices.Contains(roles, claims.Role()) {
				slog.Warn("role not permitted",
					"path", r.URL.Path,
					"role", claims.Role(),
					"user_id", claims.AccountID(),
				)
				ErrorResponse(w, http.StatusForbidden, MsgForbidden)
				return
			}
			next(w, r)
		}
	}
}
