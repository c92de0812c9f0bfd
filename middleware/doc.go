// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote, request_id) and completion
(status, duration_ms). The X-Request-ID header is generated when the
client does not send one and is echoed on the response.

# Authentication

RequireAuth verifies the Authorization bearer token and stores the claims
in the request context; RequireRoles narrows a route to a set of roles:

	admin := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
	mux.HandleFunc("GET /api/users", requireAuth(admin(h.ListUsers)))

Missing tokens get 401 "Unauthorized - No token found", bad ones
401 "Unauthorized - Invalid token".

# Rate Limiting

RateLimiter keeps a token bucket per client IP and answers 429 with
Retry-After when a bucket is empty. Call Stop on shutdown.

# Metrics

Metrics owns a private Prometheus registry. Instrument counts requests by
matched route pattern; Handler serves /metrics.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

	middleware.SuccessResponse(w, http.StatusOK, data)   // {"success":true,"data":...}
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

# Client IP Extraction

Forwarding headers are honored only from trusted proxies:

	ips, err := middleware.NewIPResolver(cfg.TrustedProxies)
	ip := ips.ClientIP(r)

Used to key login attempts and the per-IP rate limiter. With no trusted
proxies the socket peer address is used.
*/
package middleware
