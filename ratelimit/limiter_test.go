// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/usulan-gedung/ttlstore"
)

func TestLimiter_BlocksSixthAttempt(t *testing.T) {
	ctx := context.Background()
	l := NewLoginLimiter(ttlstore.NewMemory())
	key := LoginKey("10.0.0.1", "budi")

	for i := 1; i <= 5; i++ {
		d, err := l.Reserve(ctx, key)
		if err != nil {
			t.Fatalf("Reserve failed: %v", err)
		}
		if !d.Allowed || d.Attempts != int64(i) {
			t.Fatalf("attempt %d: Decision = %+v, want allowed", i, d)
		}
	}

	d, err := l.Reserve(ctx, key)
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if d.Allowed {
		t.Fatal("sixth attempt should be blocked")
	}
	if d.RetryAfter <= 0 || d.RetryAfter > DefaultWindow {
		t.Errorf("RetryAfter = %v, want within (0, 15m]", d.RetryAfter)
	}
}

func TestLimiter_RefusedAttemptsDoNotAccumulate(t *testing.T) {
	ctx := context.Background()
	store := ttlstore.NewMemory()
	l := NewLoginLimiter(store)
	key := LoginKey("10.0.0.1", "budi")

	for i := 0; i < 12; i++ {
		l.Reserve(ctx, key)
	}
	if n, _ := store.Count(ctx, "login:"+key); n != DefaultMaxAttempts {
		t.Errorf("Count = %d, want %d", n, DefaultMaxAttempts)
	}
}

func TestLimiter_ReleaseReturnsAttempt(t *testing.T) {
	ctx := context.Background()
	l := NewLoginLimiter(ttlstore.NewMemory())
	key := LoginKey("10.0.0.1", "budi")

	// Attempts the upstream never judged give the slot back.
	for i := 0; i < 20; i++ {
		d, _ := l.Reserve(ctx, key)
		if !d.Allowed {
			t.Fatalf("attempt %d blocked although every attempt was released", i+1)
		}
		if err := l.Release(ctx, key); err != nil {
			t.Fatalf("Release failed: %v", err)
		}
	}
}

func TestLimiter_ResetOnSuccess(t *testing.T) {
	ctx := context.Background()
	l := NewLoginLimiter(ttlstore.NewMemory())
	key := LoginKey("10.0.0.1", "budi")

	for i := 0; i < 4; i++ {
		l.Reserve(ctx, key)
	}
	if err := l.Reset(ctx, key); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	d, _ := l.Reserve(ctx, key)
	if !d.Allowed || d.Attempts != 1 {
		t.Errorf("after reset Decision = %+v, want allowed as the first attempt", d)
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	l := NewLoginLimiter(ttlstore.NewMemory())

	for i := 0; i < 5; i++ {
		l.Reserve(ctx, LoginKey("10.0.0.1", "budi"))
	}

	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"same pair", LoginKey("10.0.0.1", "budi"), false},
		{"other user", LoginKey("10.0.0.1", "siti"), true},
		{"other ip", LoginKey("10.0.0.2", "budi"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := l.Reserve(ctx, tt.key)
			if d.Allowed != tt.want {
				t.Errorf("Allowed = %v, want %v", d.Allowed, tt.want)
			}
		})
	}
}

func TestLimiter_ConcurrentBurst(t *testing.T) {
	ctx := context.Background()
	l := NewLoginLimiter(ttlstore.NewMemory())
	key := LoginKey("10.0.0.1", "budi")

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d, err := l.Reserve(ctx, key); err == nil && d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if allowed.Load() != DefaultMaxAttempts {
		t.Errorf("allowed %d of a concurrent burst, want %d", allowed.Load(), DefaultMaxAttempts)
	}
}

func TestLimiter_SharedAcrossInstances(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	newInstance := func() *Limiter {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })
		return NewLoginLimiter(ttlstore.NewRedisWithClient(client, "usulan:"))
	}
	a, b := newInstance(), newInstance()
	key := LoginKey("10.0.0.1", "budi")

	for i := 0; i < 3; i++ {
		a.Reserve(ctx, key)
	}
	for i := 0; i < 2; i++ {
		b.Reserve(ctx, key)
	}

	d, err := a.Reserve(ctx, key)
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if d.Allowed {
		t.Error("attempts from both instances should count toward one limit")
	}

	mr.FastForward(DefaultWindow + time.Second)
	d, _ = b.Reserve(ctx, key)
	if !d.Allowed {
		t.Error("limit should lift after the window")
	}
}
