// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ratelimit limits failed login attempts.

Counters live in a ttlstore.Store, so every server instance sharing a
Redis store enforces one limit:

	limiter := ratelimit.NewLoginLimiter(store)
	key := ratelimit.LoginKey(ip, username)

	d, err := limiter.Reserve(ctx, key)
	if !d.Allowed {
		// 429, Retry-After: d.RetryAfter
	}
	// on rejected credentials: keep the reservation
	// on upstream error:       limiter.Release(ctx, key)
	// on success:              limiter.Reset(ctx, key)

An attempt is counted before the credentials are checked, so a burst of
concurrent requests cannot get more than five checks per 15-minute
window. The window starts at the first attempt and is not extended by
later ones; when it expires the counter is gone.
*/
package ratelimit
