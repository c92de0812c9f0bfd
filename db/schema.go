// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// DriverName maps a configured database type to its database/sql driver.
func DriverName(dbType string) (string, error) {
	switch dbType {
	case "", "sqlite":
		return "sqlite", nil
	case "postgres", "postgresql":
		return "postgres", nil
	}
	return "", fmt.Errorf("unsupported database type %q", dbType)
}

// Open connects to the configured database and verifies the connection.
func Open(dbType, url string) (*sql.DB, error) {
	driver, err := DriverName(dbType)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite" {
		// One writer at a time; also keeps ":memory:" databases on a single connection.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Timestamps are stored as fixed-width UTC text so they sort lexically
// and read back the same way on both drivers.
const schema = `
-- Workflow transitions accepted by the upstream API
CREATE TABLE IF NOT EXISTS verification_history (
    id TEXT PRIMARY KEY,
    asb_id BIGINT NOT NULL,
    action TEXT NOT NULL,
    from_status INTEGER NOT NULL,
    to_status INTEGER NOT NULL,
    actor_id TEXT NOT NULL,
    actor_role TEXT NOT NULL,
    actor_kind TEXT NOT NULL DEFAULT '',
    catatan TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_verification_history_asb ON verification_history(asb_id, created_at);

-- Archived request letters
CREATE TABLE IF NOT EXISTS letter (
    id TEXT PRIMARY KEY,
    file_name TEXT NOT NULL UNIQUE,
    opd TEXT NOT NULL,
    nama_kegiatan TEXT NOT NULL,
    jenis_kegiatan TEXT NOT NULL CHECK (jenis_kegiatan IN ('Pembangunan', 'Pemeliharaan')),
    lokasi TEXT NOT NULL,
    requested_by TEXT NOT NULL,
    size_bytes INTEGER NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_letter_requested_by ON letter(requested_by);
`
