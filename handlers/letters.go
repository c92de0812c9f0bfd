// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/usulan-gedung/cliparse"
	"github.com/danielhkuo/usulan-gedung/db"
	"github.com/danielhkuo/usulan-gedung/letter"
	"github.com/danielhkuo/usulan-gedung/middleware"
	"github.com/danielhkuo/usulan-gedung/models"
)

type LetterHandler struct {
	cfg     cliparse.Config
	letters *db.Letters
}

func NewLetterHandler(cfg cliparse.Config, letters *db.Letters) *LetterHandler {
	return &LetterHandler{cfg: cfg, letters: letters}
}

// LetterIDHeader names the archive id of a generated letter.
const LetterIDHeader = "X-Letter-ID"

const MsgLetterNotFound = "Letter not found"

// Generate renders the request letter and returns it as a PDF attachment.
// When an archive directory is configured the file is also kept there and
// its id returned in LetterIDHeader.
func (h *LetterHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.LetterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, MsgInvalidJSON)
		return
	}
	for _, f := range []*string{&req.OPD, &req.NamaKegiatan, &req.JenisKegiatan, &req.Lokasi} {
		*f = strings.TrimSpace(*f)
	}
	if err := letter.Validate(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	pdf, err := letter.Build(req)
	if err != nil {
		slog.Error("failed to build letter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, MsgInternal)
		return
	}

	fileName := "surat-permohonan-" + uuid.NewString() + ".pdf"
	if h.cfg.LetterDir != "" {
		id, err := h.archive(r, fileName, req, pdf)
		if err != nil {
			slog.Error("failed to archive letter", "file", fileName, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, MsgInternal)
			return
		}
		w.Header().Set(LetterIDHeader, id)
	}

	slog.Info("letter generated", "file", fileName, "opd", req.OPD, "size", len(pdf))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		slog.Error("failed to write letter", "error", err)
	}
}

func (h *LetterHandler) archive(r *http.Request, fileName string, req models.LetterRequest, pdf []byte) (string, error) {
	if err := os.MkdirAll(h.cfg.LetterDir, 0o750); err != nil {
		return "", err
	}
	path := filepath.Join(h.cfg.LetterDir, fileName)
	// O_EXCL: never overwrite an existing letter.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(pdf); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	rec := &db.Letter{
		FileName:    fileName,
		Request:     req,
		RequestedBy: middleware.Claims(r.Context()).AccountID(),
		SizeBytes:   len(pdf),
	}
	if err := h.letters.Record(r.Context(), rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// Archived serves a previously generated letter to the account that
// requested it, or to an admin.
func (h *LetterHandler) Archived(w http.ResponseWriter, r *http.Request) {
	if h.cfg.LetterDir == "" {
		middleware.ErrorResponse(w, http.StatusNotFound, MsgLetterNotFound)
		return
	}

	stored, err := h.letters.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, MsgLetterNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to load letter", "id", r.PathValue("id"), "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, MsgInternal)
		return
	}

	claims := middleware.Claims(r.Context())
	if stored.RequestedBy != claims.AccountID() && !claims.Role().IsAdmin() {
		slog.Warn("archived letter refused", "id", stored.ID, "user_id", claims.AccountID())
		middleware.ErrorResponse(w, http.StatusForbidden, middleware.MsgForbidden)
		return
	}

	f, err := os.Open(filepath.Join(h.cfg.LetterDir, filepath.Base(stored.FileName)))
	if err != nil {
		slog.Error("archived letter missing", "id", stored.ID, "file", stored.FileName, "error", err)
		middleware.ErrorResponse(w, http.StatusNotFound, MsgLetterNotFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, stored.FileName))
	http.ServeContent(w, r, stored.FileName, stored.CreatedAt, f)
}
