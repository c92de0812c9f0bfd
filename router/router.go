// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/usulan-gedung/auth"
	"github.com/danielhkuo/usulan-gedung/cliparse"
	"github.com/danielhkuo/usulan-gedung/db"
	"github.com/danielhkuo/usulan-gedung/handlers"
	"github.com/danielhkuo/usulan-gedung/middleware"
	"github.com/danielhkuo/usulan-gedung/models"
	"github.com/danielhkuo/usulan-gedung/ratelimit"
	"github.com/danielhkuo/usulan-gedung/session"
	"github.com/danielhkuo/usulan-gedung/ttlstore"
	"github.com/danielhkuo/usulan-gedung/upstream"
)

// Banner is served at "/" when no static directory is configured.
const Banner = "usulan-gedung API v1"

// Router is the full HTTP surface: API routes, pages, health and metrics.
type Router struct {
	mux       *http.ServeMux
	handler   http.Handler
	rateLimit *middleware.RateLimiter
	Metrics   *middleware.Metrics
}

func NewRouter(conn *sql.DB, cfg cliparse.Config, store ttlstore.Store) (*Router, error) {
	rules := session.DefaultRules()
	if cfg.PageRulesFile != "" {
		loaded, err := session.LoadRules(cfg.PageRulesFile)
		if err != nil {
			return nil, fmt.Errorf("page rules: %w", err)
		}
		rules = loaded
		slog.Info("page rules loaded", "file", cfg.PageRulesFile, "pages", len(rules.Pages))
	}

	ips, err := middleware.NewIPResolver(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}

	metrics := middleware.NewMetrics()
	api := upstream.New(cfg.APIURL, cfg.APITimeout, upstream.WithObserver(metrics.ObserveUpstream))
	verifier := auth.NewTokenVerifier(cfg.JWTSecret)

	rt := &Router{
		mux:       http.NewServeMux(),
		rateLimit: middleware.NewRateLimiter(cfg.RateLimitPerMinute, ips),
		Metrics:   metrics,
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, api, verifier, ratelimit.NewLoginLimiter(store), ips, metrics)
	proxyHandler := handlers.NewProxyHandler(api)
	verificationHandler := handlers.NewVerificationHandler(api, store, db.NewHistory(conn), metrics, cfg.APITimeout)
	letterHandler := handlers.NewLetterHandler(cfg, db.NewLetters(conn))

	requireAuth := middleware.RequireAuth(verifier)
	adminOnly := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)

	// wrap applies logging, metrics and the per-IP limit to an API route.
	wrap := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(metrics.Instrument(rt.rateLimit.Wrap(h).ServeHTTP))
	}
	mux := rt.mux

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Sessions
	for _, path := range []string{"/api/auth/login", "/api/auth/signin"} {
		mux.HandleFunc("POST "+path, wrap(authHandler.Login))
		mux.HandleFunc("DELETE "+path, wrap(authHandler.Logout))
	}

	// Profiles and user management
	mux.HandleFunc("GET /api/profile/{id}", wrap(requireAuth(proxyHandler.GetProfile)))
	mux.HandleFunc("PUT /api/profile/{id}", wrap(requireAuth(proxyHandler.UpdateProfile)))
	mux.HandleFunc("GET /api/users", wrap(requireAuth(adminOnly(proxyHandler.ListUsers))))
	mux.HandleFunc("POST /api/users", wrap(requireAuth(adminOnly(proxyHandler.CreateUser))))
	mux.HandleFunc("PUT /api/users/{id}", wrap(requireAuth(adminOnly(proxyHandler.UpdateUser))))

	// Building proposals (pass-through)
	for _, method := range []string{"GET", "POST", "PUT", "DELETE"} {
		mux.HandleFunc(method+" /api/usulan/bangunan-gedung/{rest...}", wrap(requireAuth(proxyHandler.Forward)))
	}

	// Verification workflow
	mux.HandleFunc("POST /api/usulan/bangunan-gedung/asb/{id}/verifikasi/{action}", wrap(requireAuth(verificationHandler.Act)))
	mux.HandleFunc("GET /api/usulan/bangunan-gedung/asb/{id}/verifikasi", wrap(requireAuth(verificationHandler.State)))
	mux.HandleFunc("GET /api/usulan/bangunan-gedung/asb/{id}/riwayat", wrap(requireAuth(verificationHandler.History)))

	// Letters
	mux.HandleFunc("POST /api/surat-permohonan", wrap(requireAuth(letterHandler.Generate)))
	mux.HandleFunc("GET /api/surat-permohonan/{id}", wrap(requireAuth(letterHandler.Archived)))

	// Pages
	if cfg.StaticDir != "" {
		files := http.FileServer(http.Dir(cfg.StaticDir))
		gate := session.NewGate(rules, verifier)
		mux.Handle("GET /dashboard/", gate.Wrap(files))
		mux.Handle("GET /", files)
	} else {
		// Root endpoint
		mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(Banner))
		})
	}

	rt.handler = middleware.CORS(mux)
	return rt, nil
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.handler.ServeHTTP(w, r)
}

// Close stops background work started by NewRouter.
func (rt *Router) Close() {
	rt.rateLimit.Stop()
}
