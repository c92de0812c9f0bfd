// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/usulan-gedung/middleware"
	"github.com/danielhkuo/usulan-gedung/upstream"
)

// Messages for failures that never reached a usable upstream response.
const (
	MsgTimeout        = "Request timeout"
	MsgUnexpected     = "An unexpected error occurred"
	MsgInvalidJSON    = "Invalid JSON"
	MsgInternal       = "Internal server error"
	MsgBadUpstreamRes = "Invalid response from upstream API"
)

// writeUpstreamFailure maps a transport error to 504 or 502.
func writeUpstreamFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, upstream.ErrTimeout) {
		slog.Warn("upstream timeout", "path", r.URL.Path, "error", err)
		middleware.ErrorResponse(w, http.StatusGatewayTimeout, MsgTimeout)
		return
	}
	slog.Warn("upstream unreachable", "path", r.URL.Path, "error", err)
	middleware.ErrorResponse(w, http.StatusBadGateway, MsgUnexpected)
}

// writeUpstreamError wraps a non-2xx upstream response in the error envelope.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, resp *upstream.Response) {
	msg := resp.ErrorMessage()
	slog.Warn("upstream rejected request",
		"path", r.URL.Path,
		"status", resp.StatusCode,
		"message", msg,
	)
	middleware.ErrorResponse(w, resp.StatusCode, msg)
}

// relay writes an upstream response back to the client: 2xx verbatim,
// anything else as an error envelope.
func relay(w http.ResponseWriter, r *http.Request, resp *upstream.Response) {
	if !resp.OK() {
		writeUpstreamError(w, r, resp)
		return
	}
	for _, h := range []string{"Content-Type", "Content-Disposition"} {
		if v := resp.Header.Get(h); v != "" {
			w.Header().Set(h, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if resp.StatusCode == http.StatusNoContent || len(resp.Body) == 0 {
		return
	}
	if _, err := w.Write(resp.Body); err != nil {
		slog.Error("failed to relay upstream body", "path", r.URL.Path, "error", err)
	}
}
