// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the usulan-gedung API.

# Route Registration

NewRouter builds the handlers and their shared collaborators (upstream
client, token verifier, metrics, per-IP limiter) and returns a Router:

	rt, err := router.NewRouter(db, cfg, store)
	defer rt.Close()

The Router is an http.Handler with CORS applied to every route.

# Endpoints

Ops:

	GET /health  - Liveness
	GET /metrics - Prometheus exposition

Sessions (public):

	POST   /api/auth/login  - Log in against the upstream API
	DELETE /api/auth/login  - Clear session cookies
	POST   /api/auth/signin - Alias of login
	DELETE /api/auth/signin - Alias of logout

Profiles and users (bearer token):

	GET /api/profile/{id}
	PUT /api/profile/{id} - Own profile, or any for admin roles
	GET  /api/users       - Admin roles
	POST /api/users       - Admin roles
	PUT  /api/users/{id}  - Admin roles

Proposals (bearer token):

	GET|POST|PUT|DELETE /api/usulan/bangunan-gedung/{rest...}   - Pass-through
	POST /api/usulan/bangunan-gedung/asb/{id}/verifikasi/{action}
	GET  /api/usulan/bangunan-gedung/asb/{id}/verifikasi
	GET  /api/usulan/bangunan-gedung/asb/{id}/riwayat
	POST /api/surat-permohonan      - Letter PDF
	GET  /api/surat-permohonan/{id} - Archived letter, requester or admin roles

Non-GET pass-through calls to an ASB's verifikasi-bps, verifikasi-bpns or
status endpoint are refused with 403; those transitions go through
/verifikasi/{action}.

Pages, when a static directory is configured:

	GET /dashboard/... - Behind the session gate
	GET /...           - Public files

Every /api/ route is logged, counted in usulan_http_requests_total and
subject to the per-IP request limit.
*/
package router
