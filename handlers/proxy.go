// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/usulan-gedung/auth"
	"github.com/danielhkuo/usulan-gedung/middleware"
	"github.com/danielhkuo/usulan-gedung/models"
	"github.com/danielhkuo/usulan-gedung/upstream"
)

// maxRequestBody bounds bodies forwarded upstream (document uploads included).
const maxRequestBody = 32 << 20

// MsgUseWorkflow refuses pass-through calls that would change a proposal's
// verification state.
const MsgUseWorkflow = "Verification changes must use /verifikasi/{action}"

// workflowEndpoints are the upstream transitions only VerificationHandler
// may call.
var workflowEndpoints = map[string]bool{
	"verifikasi-bps":  true,
	"verifikasi-bpns": true,
	"status":          true,
}

// isWorkflowResource reports whether resource is an upstream transition
// endpoint such as "usulan/bangunan-gedung/asb/7/status".
func isWorkflowResource(resource string) bool {
	rest, ok := strings.CutPrefix(strings.ToLower(resource), asbResource)
	if !ok {
		return false
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	return len(parts) == 2 && workflowEndpoints[parts[1]]
}

// ProxyHandler forwards authenticated API calls to the upstream REST API.
type ProxyHandler struct {
	api *upstream.Client
}

func NewProxyHandler(api *upstream.Client) *ProxyHandler {
	return &ProxyHandler{api: api}
}

// upstreamResource maps "/api/<resource>" to "<resource>".
func upstreamResource(r *http.Request) string {
	return strings.TrimPrefix(r.URL.Path, "/api/")
}

// Forward relays the request as-is. RequireAuth must run first.
func (h *ProxyHandler) Forward(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && isWorkflowResource(upstreamResource(r)) {
		slog.Warn("pass-through workflow call refused",
			"method", r.Method,
			"path", r.URL.Path,
			"user_id", middleware.Claims(r.Context()).AccountID(),
		)
		middleware.ErrorResponse(w, http.StatusForbidden, MsgUseWorkflow)
		return
	}

	var body io.Reader
	if r.Body != nil && r.Method != http.MethodGet && r.Method != http.MethodHead {
		b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
		if err != nil {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		if len(b) > 0 {
			body = bytes.NewReader(b)
		}
	}
	h.forward(w, r, body)
}

func (h *ProxyHandler) forward(w http.ResponseWriter, r *http.Request, body io.Reader) {
	req := upstream.Request{
		Method:   r.Method,
		Resource: upstreamResource(r),
		Query:    r.URL.Query(),
		Token:    middleware.Token(r.Context()),
		Body:     body,
	}
	if body != nil {
		req.ContentType = r.Header.Get("Content-Type")
		if req.ContentType == "" {
			req.ContentType = "application/json"
		}
	}

	resp, err := h.api.Do(r.Context(), req)
	if err != nil {
		writeUpstreamFailure(w, r, err)
		return
	}
	relay(w, r, resp)
}

// readJSON reads a JSON body into v and returns the raw bytes for forwarding.
func readJSON(w http.ResponseWriter, r *http.Request, v any) ([]byte, bool) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return nil, false
	}
	if err := json.Unmarshal(b, v); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, MsgInvalidJSON)
		return nil, false
	}
	return b, true
}

// GetProfile returns a user profile
func (h *ProxyHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, nil)
}

// UpdateProfile updates a profile. Accounts may only edit their own
// unless they hold an admin role.
func (h *ProxyHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r.Context())
	id := r.PathValue("id")
	if id != claims.AccountID() && !claims.Role().IsAdmin() {
		slog.Warn("profile update for another account refused",
			"user_id", claims.AccountID(),
			"target_id", id,
		)
		middleware.ErrorResponse(w, http.StatusForbidden, middleware.MsgForbidden)
		return
	}

	var req models.UpdateProfileRequest
	raw, ok := readJSON(w, r, &req)
	if !ok {
		return
	}
	if msg := validateOptionalCredentials(req.Username, req.Password); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	h.forward(w, r, bytes.NewReader(raw))
}

// ListUsers lists accounts (admin roles only)
func (h *ProxyHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, nil)
}

// CreateUser validates the new credentials before forwarding (admin roles only)
func (h *ProxyHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	raw, ok := readJSON(w, r, &req)
	if !ok {
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Name is required")
		return
	}
	if err := auth.ValidateUsername(req.Username); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Role.Valid() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid role")
		return
	}
	if req.Role == models.RoleOPD && req.IDOpd == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "OPD accounts require idOpd")
		return
	}

	h.forward(w, r, bytes.NewReader(raw))
}

// UpdateUser validates any changed credentials before forwarding (admin roles only)
func (h *ProxyHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	raw, ok := readJSON(w, r, &req)
	if !ok {
		return
	}
	if msg := validateOptionalCredentials(req.Username, req.Password); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	h.forward(w, r, bytes.NewReader(raw))
}

func validateOptionalCredentials(username, password string) string {
	if username != "" {
		if err := auth.ValidateUsername(username); err != nil {
			return err.Error()
		}
	}
	if password != "" {
		if err := auth.ValidatePassword(password); err != nil {
			return err.Error()
		}
	}
	return ""
}
