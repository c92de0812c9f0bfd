// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/usulan-gedung/auth"
	"github.com/danielhkuo/usulan-gedung/cliparse"
	"github.com/danielhkuo/usulan-gedung/middleware"
	"github.com/danielhkuo/usulan-gedung/models"
	"github.com/danielhkuo/usulan-gedung/ratelimit"
	"github.com/danielhkuo/usulan-gedung/session"
	"github.com/danielhkuo/usulan-gedung/upstream"
)

// Cookie lifetimes
const (
	SessionTTL    = 24 * time.Hour
	RememberMeTTL = 7 * 24 * time.Hour
)

// Login metric results
const (
	loginSuccess     = "success"
	loginFailure     = "failure"
	loginRateLimited = "rate_limited"
	loginError       = "error"
)

const MsgTooManyAttempts = "Too many login attempts. Please try again later."

type AuthHandler struct {
	cfg      cliparse.Config
	api      *upstream.Client
	verifier *auth.TokenVerifier
	limiter  *ratelimit.Limiter
	ips      *middleware.IPResolver
	metrics  *middleware.Metrics
}

func NewAuthHandler(cfg cliparse.Config, api *upstream.Client, verifier *auth.TokenVerifier,
	limiter *ratelimit.Limiter, ips *middleware.IPResolver, metrics *middleware.Metrics) *AuthHandler {
	return &AuthHandler{
		cfg:      cfg,
		api:      api,
		verifier: verifier,
		limiter:  limiter,
		ips:      ips,
		metrics:  metrics,
	}
}

// loginTokens covers the token field names the upstream API has used.
type loginTokens struct {
	AccessToken string `json:"accessToken"`
	Token       string `json:"token"`
	Snake       string `json:"access_token"`
}

func (t loginTokens) token() string {
	for _, s := range []string{t.AccessToken, t.Token, t.Snake} {
		if s != "" {
			return s
		}
	}
	return ""
}

// Login authenticates against the upstream API and starts a session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, MsgInvalidJSON)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	if err := auth.ValidateUsername(req.Username); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ip := h.ips.ClientIP(r)
	key := ratelimit.LoginKey(ip, req.Username)

	decision, err := h.limiter.Reserve(r.Context(), key)
	if err != nil {
		slog.Error("login limiter unavailable", "error", err)
		h.metrics.ObserveLogin(loginError)
		middleware.ErrorResponse(w, http.StatusInternalServerError, MsgInternal)
		return
	}
	if !decision.Allowed {
		slog.Warn("login rate limited", "ip", ip, "username", req.Username, "attempts", decision.Attempts)
		h.metrics.ObserveLogin(loginRateLimited)
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
		middleware.ErrorResponse(w, http.StatusTooManyRequests, MsgTooManyAttempts)
		return
	}

	// Only rejected credentials keep the reserved attempt.
	release := func() {
		if err := h.limiter.Release(context.WithoutCancel(r.Context()), key); err != nil {
			slog.Error("failed to release login attempt", "error", err)
		}
	}

	resp, err := h.api.DoJSON(r.Context(), http.MethodPost, "auth/login", "", map[string]string{
		"username": req.Username,
		"password": req.Password,
	})
	if err != nil {
		release()
		h.metrics.ObserveLogin(loginError)
		writeUpstreamFailure(w, r, err)
		return
	}

	if !resp.OK() {
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			slog.Warn("login failed", "ip", ip, "username", req.Username, "status", resp.StatusCode, "attempts", decision.Attempts)
			h.metrics.ObserveLogin(loginFailure)
		} else {
			release()
			h.metrics.ObserveLogin(loginError)
		}
		writeUpstreamError(w, r, resp)
		return
	}

	var tokens loginTokens
	if err := resp.DecodeData(&tokens); err != nil || tokens.token() == "" {
		slog.Error("login response without token", "error", err)
		release()
		h.metrics.ObserveLogin(loginError)
		middleware.ErrorResponse(w, http.StatusBadGateway, MsgBadUpstreamRes)
		return
	}

	token := tokens.token()
	claims, err := h.verifier.Verify(token)
	if err != nil {
		slog.Error("upstream issued an unverifiable token", "username", req.Username, "error", err)
		release()
		h.metrics.ObserveLogin(loginError)
		middleware.ErrorResponse(w, http.StatusBadGateway, MsgBadUpstreamRes)
		return
	}

	if err := h.limiter.Reset(r.Context(), key); err != nil {
		slog.Error("failed to reset login limiter", "error", err)
	}

	user := claims.SessionUser()
	if err := h.setSessionCookies(w, token, user, req.RememberMe); err != nil {
		slog.Error("failed to set session cookies", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, MsgInternal)
		return
	}

	slog.Info("login succeeded", "user_id", user.ID, "role", user.Role)
	h.metrics.ObserveLogin(loginSuccess)
	middleware.SuccessResponse(w, http.StatusOK, models.LoginResponse{
		User:        user,
		AccessToken: token,
	})
}

// Logout clears the session cookies
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{session.AuthCookie, session.UserCookie, session.CSRFCookie} {
		http.SetCookie(w, h.cookie(name, "", -1, name == session.AuthCookie))
	}
	middleware.SuccessResponse(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, token string, user models.SessionUser, remember bool) error {
	csrf, err := auth.GenerateCSRFToken()
	if err != nil {
		return err
	}
	userJSON, err := json.Marshal(user)
	if err != nil {
		return err
	}

	userTTL := SessionTTL
	if remember {
		userTTL = RememberMeTTL
	}

	http.SetCookie(w, h.cookie(session.AuthCookie, token, SessionTTL, true))
	http.SetCookie(w, h.cookie(session.UserCookie, encodeCookieValue(string(userJSON)), userTTL, false))
	http.SetCookie(w, h.cookie(session.CSRFCookie, csrf, SessionTTL, false))
	return nil
}

// cookie builds a site-wide Lax cookie. A negative ttl deletes it.
func (h *AuthHandler) cookie(name, value string, ttl time.Duration, httpOnly bool) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   h.cfg.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	} else {
		c.MaxAge = int(ttl.Seconds())
	}
	return c
}

// encodeCookieValue percent-encodes like encodeURIComponent so the
// browser can decode the JSON with decodeURIComponent.
func encodeCookieValue(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
