// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db holds the little state this server owns. Proposals themselves
live in the upstream API; this package only keeps an audit trail of
workflow transitions and an index of archived letters.

# Connecting

Open accepts the configured database type ("sqlite" or "postgres"):

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

CreateSchema is safe to call multiple times - uses IF NOT EXISTS.

# Tables

  - verification_history: one row per accepted workflow action
  - letter: request letters written to the archive directory

# Stores

History and Letters wrap the tables. Both fill in a UUID and a UTC
timestamp when the caller leaves them empty.
*/
package db
