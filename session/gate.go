// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/usulan-gedung/auth"
)

// Cookie names shared with the login handler.
const (
	AuthCookie = "authToken"
	UserCookie = "userData"
	CSRFCookie = "csrfToken"
)

// Gate guards page requests with the authToken cookie.
type Gate struct {
	rules    *Rules
	verifier *auth.TokenVerifier
}

func NewGate(rules *Rules, verifier *auth.TokenVerifier) *Gate {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Gate{rules: rules, verifier: verifier}
}

// Wrap serves next only to sessions whose verified role the page admits.
// Everything else is redirected with 302.
func (g *Gate) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(AuthCookie)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, g.rules.SignIn, http.StatusFound)
			return
		}

		claims, err := g.verifier.Verify(cookie.Value)
		if err != nil {
			slog.Info("page session rejected", "path", r.URL.Path, "error", err)
			http.Redirect(w, r, g.rules.SignIn, http.StatusFound)
			return
		}

		role := claims.Role()
		allowed, target := g.rules.Decide(r.URL.Path, role, claims.VerifierKind())
		if !allowed {
			slog.Info("page access redirected",
				"path", r.URL.Path,
				"role", role,
				"target", target,
			)
			http.Redirect(w, r, target, http.StatusFound)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
