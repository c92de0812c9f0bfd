// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the usulan-gedung API server.

usulan-gedung is the backend of the building proposal ("usulan bangunan
gedung") dashboard. It fronts an upstream REST API that owns the proposal
records, adding verified sessions, a role-gated page server, the
multi-stage verification workflow, login rate limiting and the
"Surat Permohonan" letter PDF.

# Starting the Server

The server reads flags, then the environment, then a .env file:

	NEXT_PUBLIC_API_URL=https://api.example.go.id JWT_SECRET=... go run .

Or with flags:

	go run . -p 3318 -api https://api.example.go.id -jwt-secret ... -redis redis://localhost:6379/0

# Configuration

Required settings:

  - NEXT_PUBLIC_API_URL / API_URL (-api): Upstream REST API base URL
  - JWT_SECRET (-jwt-secret): Shared HS256 secret for upstream tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_URL (-d), DATABASE_TYPE (-t): History and letter store (default: sqlite file:usulan.db)
  - REDIS_URL (-redis): Shared login counters and verification locks (default: in-process)
  - STATIC_DIR (-static), PAGE_RULES_FILE (-pages): Dashboard pages and their access rules
  - LETTER_DIR (-letters): Archive generated letters
  - RATE_LIMIT_PER_MINUTE (-rpm), NEXT_PUBLIC_API_TIMEOUT in ms (-api-timeout), NODE_ENV (-env)
  - TRUSTED_PROXIES (-trusted-proxies): Proxies whose X-Forwarded-For is honored

# Architecture

  - handlers: HTTP request handlers (auth, proxy, verification, letters)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, bearer auth, metrics, per-IP limit
  - session: Page access rules and the cookie gate
  - workflow: Verification statuses, actions and transition rules
  - upstream: Client for the upstream REST API
  - ratelimit, ttlstore: Login attempt counting on Redis or memory
  - letter: PDF letter builder
  - auth: Token verification and credential validators
  - db: Schema and the history and letter stores
  - models: Request/response and domain types
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
