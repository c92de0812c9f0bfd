// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ttlstore provides a small key-value store with expiring entries,
used for login attempt counters and in-flight verification locks.

# Implementations

Memory keeps entries in a mutex-guarded map with lazy expiry:

	store := ttlstore.NewMemory()
	go store.RunSweeper(ctx, time.Minute)

Redis shares state between server instances:

	store, err := ttlstore.NewRedis(ctx, "redis://localhost:6379/0", "usulan:")

# Operations

	n, err := store.Incr(ctx, key, 15*time.Minute) // window starts on first Incr
	n, err := store.Count(ctx, key)                // 0 when absent
	d, err := store.TTL(ctx, key)                  // ErrNotFound when absent
	n, err := store.Decr(ctx, key)                 // undo one Incr, keeps the window
	ok, err := store.SetNX(ctx, key, owner, 30*time.Second)
	ok, err := store.DeleteIfValue(ctx, key, owner) // release only your own lock
	err := store.Delete(ctx, key)

On Redis, Incr runs INCR and EXPIRE NX inside one MULTI/EXEC; Decr and
DeleteIfValue are Lua scripts so the check and the write are atomic.
*/
package ttlstore
