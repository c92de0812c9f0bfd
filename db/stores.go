// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/usulan-gedung/models"
)

var ErrNotFound = errors.New("record not found")

const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad stored timestamp %q: %w", s, err)
	}
	return t, nil
}

// History records accepted workflow transitions.
type History struct {
	db  *sql.DB
	now func() time.Time
}

func NewHistory(db *sql.DB) *History {
	return &History{db: db, now: time.Now}
}

// Record inserts an event, filling ID and CreatedAt when empty.
func (h *History) Record(ctx context.Context, ev *models.HistoryEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = h.now().UTC()
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO verification_history
			(id, asb_id, action, from_status, to_status, actor_id, actor_role, actor_kind, catatan, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, ev.ID, ev.AsbID, ev.Action, ev.FromStatus, ev.ToStatus,
		ev.ActorID, string(ev.ActorRole), ev.ActorKind, ev.Catatan, formatTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}

// List returns the events for one proposal, oldest first.
func (h *History) List(ctx context.Context, asbID int64) ([]models.HistoryEvent, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, asb_id, action, from_status, to_status, actor_id, actor_role, actor_kind, catatan, created_at
		FROM verification_history
		WHERE asb_id = $1
		ORDER BY created_at, id
	`, asbID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	events := []models.HistoryEvent{}
	for rows.Next() {
		var ev models.HistoryEvent
		var role, created string
		if err := rows.Scan(&ev.ID, &ev.AsbID, &ev.Action, &ev.FromStatus, &ev.ToStatus,
			&ev.ActorID, &role, &ev.ActorKind, &ev.Catatan, &created); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		ev.ActorRole = models.Role(role)
		if ev.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return events, nil
}

// Letter is an archived request letter.
type Letter struct {
	ID          string
	FileName    string
	Request     models.LetterRequest
	RequestedBy string
	SizeBytes   int
	CreatedAt   time.Time
}

// Letters records letters written to the archive directory.
type Letters struct {
	db  *sql.DB
	now func() time.Time
}

func NewLetters(db *sql.DB) *Letters {
	return &Letters{db: db, now: time.Now}
}

// Record inserts a letter, filling ID and CreatedAt when empty.
func (l *Letters) Record(ctx context.Context, letter *Letter) error {
	if letter.ID == "" {
		letter.ID = uuid.NewString()
	}
	if letter.CreatedAt.IsZero() {
		letter.CreatedAt = l.now().UTC()
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO letter
			(id, file_name, opd, nama_kegiatan, jenis_kegiatan, lokasi, requested_by, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, letter.ID, letter.FileName, letter.Request.OPD, letter.Request.NamaKegiatan,
		letter.Request.JenisKegiatan, letter.Request.Lokasi, letter.RequestedBy,
		letter.SizeBytes, formatTime(letter.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to record letter: %w", err)
	}
	return nil
}

// Get loads a letter by id.
func (l *Letters) Get(ctx context.Context, id string) (*Letter, error) {
	var letter Letter
	var created string
	err := l.db.QueryRowContext(ctx, `
		SELECT id, file_name, opd, nama_kegiatan, jenis_kegiatan, lokasi, requested_by, size_bytes, created_at
		FROM letter WHERE id = $1
	`, id).Scan(&letter.ID, &letter.FileName, &letter.Request.OPD, &letter.Request.NamaKegiatan,
		&letter.Request.JenisKegiatan, &letter.Request.Lokasi, &letter.RequestedBy,
		&letter.SizeBytes, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load letter: %w", err)
	}
	if letter.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &letter, nil
}
