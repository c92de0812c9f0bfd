// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the usulan-gedung API.

# Handler Types

Each handler is a struct holding its collaborators:

  - AuthHandler: Login and logout against the upstream API, with the login rate limiter
  - ProxyHandler: Authenticated pass-through to the upstream REST API, plus profile and user validation
  - VerificationHandler: The proposal verification workflow and its history
  - LetterHandler: The "Surat Permohonan" PDF download

Handlers are created via constructor functions:

	proxyHandler := handlers.NewProxyHandler(api)

# Sessions

POST /api/auth/login forwards the credentials upstream. On success the
upstream token is verified locally and three cookies are set: authToken
(httpOnly), userData (display data) and csrfToken. API calls themselves
are authorized only by the Authorization: Bearer header; see
middleware.RequireAuth.

Five failed logins per IP and username within fifteen minutes lock that
pair out with 429 and a Retry-After header.

# Verification Workflow

	POST /api/usulan/bangunan-gedung/asb/{id}/verifikasi/{action} → Act
	GET  /api/usulan/bangunan-gedung/asb/{id}/verifikasi          → State
	GET  /api/usulan/bangunan-gedung/asb/{id}/riwayat             → History

Act re-reads the proposal from upstream, checks the caller against the
workflow rules and, for BPS/BPNS verification, that the component weights
sum to 100. Only one request per proposal and action runs at a time; a
duplicate gets 409. Successful transitions are recorded in the local
history table.

# Errors

Every error uses the envelope {"success": false, "error": "..."}. Upstream
errors keep their status code and message; timeouts become 504 and
unreachable upstreams 502.
*/
package handlers
