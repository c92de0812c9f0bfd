// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danielhkuo/usulan-gedung/models"
)

// FlexibleID decodes a JSON string or number into a string.
// The upstream API emits numeric user ids.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = FlexibleID(n.String())
	return nil
}

// Claims is the payload of a session token issued by the upstream API.
type Claims struct {
	UserID           FlexibleID `json:"id,omitempty"`
	Username         string     `json:"username"`
	Name             string     `json:"name,omitempty"`
	RoleName         string     `json:"role"`
	JenisVerifikator string     `json:"jenisVerifikator,omitempty"`
	jwt.RegisteredClaims
}

// Role returns the parsed role; Verify guarantees it is valid.
func (c *Claims) Role() models.Role {
	role, _ := models.ParseRole(c.RoleName)
	return role
}

// AccountID returns the user id, falling back to the "sub" claim.
func (c *Claims) AccountID() string {
	if c.UserID != "" {
		return string(c.UserID)
	}
	return c.RegisteredClaims.Subject
}

// VerifierKind derives the verifying authority from the role, or from the
// jenisVerifikator claim for verifikator accounts.
func (c *Claims) VerifierKind() models.VerifierKind {
	switch c.Role() {
	case models.RoleBappeda:
		return models.VerifierBAPPEDA
	case models.RoleBPKAD:
		return models.VerifierBPKAD
	case models.RoleVerifikator:
		kind, err := models.ParseVerifierKind(c.JenisVerifikator)
		if err != nil {
			return models.VerifierNone
		}
		if kind == models.VerifierADBANG || kind == models.VerifierADPEM {
			return kind
		}
		return models.VerifierNone
	case models.RoleSuperAdmin, models.RoleAdmin, models.RoleOPD:
		return models.VerifierNone
	}
	return models.VerifierNone
}

// SessionUser returns the display payload for the userData cookie.
func (c *Claims) SessionUser() models.SessionUser {
	name := c.Name
	if name == "" {
		name = c.Username
	}
	return models.SessionUser{
		ID:       c.AccountID(),
		Name:     name,
		Username: c.Username,
		Role:     c.Role(),
	}
}

// TokenVerifier checks HS256 session tokens against a shared secret.
type TokenVerifier struct {
	secret []byte
	now    func() time.Time
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), now: time.Now}
}

// Verify checks signature, algorithm and expiry, then the role claim.
func (v *TokenVerifier) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := models.ParseRole(claims.RoleName); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.AccountID() == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}
	return claims, nil
}

// Sign issues an HS256 token for the given claims, expiring after ttl.
// Upstream normally issues tokens; this is used by tooling and tests.
func (v *TokenVerifier) Sign(claims Claims, ttl time.Duration) (string, error) {
	now := v.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if claims.RegisteredClaims.Subject == "" && claims.UserID != "" {
		claims.RegisteredClaims.Subject = string(claims.UserID)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
