// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/usulan-gedung/auth"
	"github.com/danielhkuo/usulan-gedung/cliparse"
	"github.com/danielhkuo/usulan-gedung/db"
	"github.com/danielhkuo/usulan-gedung/middleware"
	"github.com/danielhkuo/usulan-gedung/models"
	"github.com/danielhkuo/usulan-gedung/ratelimit"
	"github.com/danielhkuo/usulan-gedung/testutil"
	"github.com/danielhkuo/usulan-gedung/ttlstore"
	"github.com/danielhkuo/usulan-gedung/upstream"
)

// testEnv wires every handler against a fake upstream and in-memory stores.
type testEnv struct {
	cfg      cliparse.Config
	fake     *testutil.FakeUpstream
	api      *upstream.Client
	verifier *auth.TokenVerifier
	store    *ttlstore.Memory
	db       *sql.DB
	metrics  *middleware.Metrics
	mux      *http.ServeMux
}

func newTestEnv(t *testing.T, mutate ...func(*cliparse.Config)) *testEnv {
	t.Helper()

	fake := testutil.NewFakeUpstream(t)
	cfg := testutil.GetTestConfig(fake.URL)
	for _, m := range mutate {
		m(&cfg)
	}

	env := &testEnv{
		cfg:      cfg,
		fake:     fake,
		verifier: auth.NewTokenVerifier(cfg.JWTSecret),
		store:    ttlstore.NewMemory(),
		db:       testutil.SetupTestDB(t),
		metrics:  middleware.NewMetrics(),
		mux:      http.NewServeMux(),
	}
	env.api = upstream.New(cfg.APIURL, cfg.APITimeout, upstream.WithObserver(env.metrics.ObserveUpstream))

	ips, err := middleware.NewIPResolver(cfg.TrustedProxies)
	if err != nil {
		t.Fatalf("NewIPResolver failed: %v", err)
	}
	authH := NewAuthHandler(cfg, env.api, env.verifier, ratelimit.NewLoginLimiter(env.store), ips, env.metrics)
	proxyH := NewProxyHandler(env.api)
	verifyH := NewVerificationHandler(env.api, env.store, db.NewHistory(env.db), env.metrics, cfg.APITimeout)
	letterH := NewLetterHandler(cfg, db.NewLetters(env.db))

	requireAuth := middleware.RequireAuth(env.verifier)
	adminOnly := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)

	m := env.mux
	m.HandleFunc("POST /api/auth/login", authH.Login)
	m.HandleFunc("DELETE /api/auth/login", authH.Logout)
	m.HandleFunc("GET /api/profile/{id}", requireAuth(proxyH.GetProfile))
	m.HandleFunc("PUT /api/profile/{id}", requireAuth(proxyH.UpdateProfile))
	m.HandleFunc("GET /api/users", requireAuth(adminOnly(proxyH.ListUsers)))
	m.HandleFunc("POST /api/users", requireAuth(adminOnly(proxyH.CreateUser)))
	m.HandleFunc("PUT /api/users/{id}", requireAuth(adminOnly(proxyH.UpdateUser)))
	for _, method := range []string{"GET", "POST", "PUT", "DELETE"} {
		m.HandleFunc(method+" /api/usulan/bangunan-gedung/{rest...}", requireAuth(proxyH.Forward))
	}
	m.HandleFunc("POST /api/usulan/bangunan-gedung/asb/{id}/verifikasi/{action}", requireAuth(verifyH.Act))
	m.HandleFunc("GET /api/usulan/bangunan-gedung/asb/{id}/verifikasi", requireAuth(verifyH.State))
	m.HandleFunc("GET /api/usulan/bangunan-gedung/asb/{id}/riwayat", requireAuth(verifyH.History))
	m.HandleFunc("POST /api/surat-permohonan", requireAuth(letterH.Generate))
	m.HandleFunc("GET /api/surat-permohonan/{id}", requireAuth(letterH.Archived))

	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

// sessionToken mints a session for a user of the given role and verifier kind.
func sessionToken(t *testing.T, id string, role models.Role, kind models.VerifierKind) string {
	t.Helper()
	return testutil.IssueToken(t, testutil.TestUser{ID: id, Role: role, Kind: kind})
}
