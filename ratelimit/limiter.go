// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/usulan-gedung/ttlstore"
)

// Login limits
const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 15 * time.Minute
)

// Limiter counts failed attempts per key inside a fixed window.
type Limiter struct {
	store       ttlstore.Store
	prefix      string
	maxAttempts int64
	window      time.Duration
}

func NewLimiter(store ttlstore.Store, prefix string, maxAttempts int, window time.Duration) *Limiter {
	return &Limiter{
		store:       store,
		prefix:      prefix,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

// NewLoginLimiter allows 5 failures per ip:username per 15 minutes.
func NewLoginLimiter(store ttlstore.Store) *Limiter {
	return NewLimiter(store, "login:", DefaultMaxAttempts, DefaultWindow)
}

// LoginKey builds the limiter key for a login attempt.
func LoginKey(ip, username string) string {
	return ip + ":" + username
}

// Decision is the outcome of Reserve.
type Decision struct {
	Allowed    bool
	Attempts   int64
	RetryAfter time.Duration
}

// Reserve counts an attempt for key before it is made. The increment is
// atomic, so of any burst at most maxAttempts are allowed per window.
// An allowed attempt stays counted unless Release or Reset is called.
func (l *Limiter) Reserve(ctx context.Context, key string) (Decision, error) {
	k := l.prefix + key
	n, err := l.store.Incr(ctx, k, l.window)
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit reserve: %w", err)
	}
	if n <= l.maxAttempts {
		return Decision{Allowed: true, Attempts: n}, nil
	}

	// Refused attempts do not count.
	if _, err := l.store.Decr(ctx, k); err != nil {
		return Decision{}, fmt.Errorf("rate limit undo: %w", err)
	}
	retry, err := l.store.TTL(ctx, k)
	if errors.Is(err, ttlstore.ErrNotFound) {
		// Window closed between the two calls
		retry = time.Second
	} else if err != nil {
		return Decision{}, fmt.Errorf("rate limit ttl: %w", err)
	}
	return Decision{Allowed: false, Attempts: l.maxAttempts, RetryAfter: retry}, nil
}

// Release returns a reserved attempt that should not count, such as one
// the upstream never judged.
func (l *Limiter) Release(ctx context.Context, key string) error {
	if _, err := l.store.Decr(ctx, l.prefix+key); err != nil {
		return fmt.Errorf("rate limit release: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful attempt.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if err := l.store.Delete(ctx, l.prefix+key); err != nil {
		return fmt.Errorf("rate limit reset: %w", err)
	}
	return nil
}
