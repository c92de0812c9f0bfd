// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danielhkuo/usulan-gedung/models"
)

func TestGenerateCSRFToken(t *testing.T) {
	token, err := GenerateCSRFToken()
	if err != nil {
		t.Fatalf("GenerateCSRFToken() error = %v", err)
	}
	if strings.Contains(token, "=") {
		t.Error("GenerateCSRFToken() contains padding characters")
	}
	if len(token) < 30 {
		t.Errorf("GenerateCSRFToken() too short: %d chars", len(token))
	}

	tokens := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateCSRFToken()
		if err != nil {
			t.Fatalf("GenerateCSRFToken() error on iteration %d: %v", i, err)
		}
		if tokens[token] {
			t.Errorf("GenerateCSRFToken() produced duplicate token: %s", token)
		}
		tokens[token] = true
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"lower-case scheme", "bearer abc", "abc", false},
		{"missing", "", "", true},
		{"basic scheme", "Basic dXNlcjpwYXNz", "", true},
		{"no token", "Bearer ", "", true},
		{"no separator", "Bearerabc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/profile/1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, err := BearerToken(req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BearerToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrNoToken) {
				t.Errorf("BearerToken() error = %v, want ErrNoToken", err)
			}
			if got != tt.want {
				t.Errorf("BearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		username string
		wantErr  error
	}{
		{"john.doe-1", nil},
		{"admin_opd", nil},
		{"ABC", nil},
		{"john doe!", ErrUsernameFormat},
		{"budi@dinas", ErrUsernameFormat},
		{"ab", ErrUsernameLength},
		{strings.Repeat("a", 51), ErrUsernameLength},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if err != tt.wantErr {
				t.Errorf("ValidateUsername(%q) = %v, want %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  error
	}{
		{"Abcdefg1", nil},
		{"Rahasia2025", nil},
		{"abcdefgh", ErrPasswordClasses},
		{"ABCDEFG1", ErrPasswordClasses},
		{"Abcdefgh", ErrPasswordClasses},
		{"Abc1", ErrPasswordLength},
		{"", ErrPasswordLength},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if err != tt.wantErr {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestTokenVerifier_RoundTrip(t *testing.T) {
	v := NewTokenVerifier("test-secret")

	token, err := v.Sign(Claims{
		UserID:           "42",
		Username:         "adbang.1",
		Name:             "Verifikator Satu",
		RoleName:         "verifikator",
		JenisVerifikator: "ADBANG",
	}, time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.AccountID() != "42" {
		t.Errorf("AccountID() = %q, want 42", claims.AccountID())
	}
	if claims.Role() != models.RoleVerifikator {
		t.Errorf("Role() = %q, want verifikator", claims.Role())
	}
	if claims.VerifierKind() != models.VerifierADBANG {
		t.Errorf("VerifierKind() = %q, want ADBANG", claims.VerifierKind())
	}

	user := claims.SessionUser()
	if user.ID != "42" || user.Username != "adbang.1" || user.Name != "Verifikator Satu" {
		t.Errorf("SessionUser() = %+v", user)
	}
}

func TestTokenVerifier_Rejects(t *testing.T) {
	v := NewTokenVerifier("test-secret")
	base := Claims{UserID: "7", Username: "opd.user", RoleName: "opd"}

	expired, _ := v.Sign(base, -time.Minute)
	otherSecret, _ := NewTokenVerifier("other-secret").Sign(base, time.Hour)

	badRole := base
	badRole.RoleName = "root"
	unknownRole, _ := v.Sign(badRole, time.Hour)

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": "7", "username": "opd.user", "role": "opd",
	}).SignedString([]byte("test-secret"))

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"id": "7", "username": "opd.user", "role": "opd",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))

	// Payload readable by a naive base64 split, but unsigned
	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id": "7", "username": "opd.user", "role": "superadmin",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", otherSecret},
		{"unknown role", unknownRole},
		{"missing exp", noExp},
		{"wrong algorithm", hs512},
		{"unsigned", unsigned},
		{"garbage", "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestClaims_VerifierKind(t *testing.T) {
	tests := []struct {
		role  string
		jenis string
		want  models.VerifierKind
	}{
		{"verifikator", "ADBANG", models.VerifierADBANG},
		{"verifikator", "adpem", models.VerifierADPEM},
		{"verifikator", "BPKAD", models.VerifierNone},
		{"verifikator", "", models.VerifierNone},
		{"bappeda", "", models.VerifierBAPPEDA},
		{"bpkad", "ADBANG", models.VerifierBPKAD},
		{"opd", "ADBANG", models.VerifierNone},
		{"superadmin", "", models.VerifierNone},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.jenis, func(t *testing.T) {
			c := &Claims{RoleName: tt.role, JenisVerifikator: tt.jenis}
			if got := c.VerifierKind(); got != tt.want {
				t.Errorf("VerifierKind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFlexibleID(t *testing.T) {
	var c Claims
	if err := json.Unmarshal([]byte(`{"id": 17, "role": "admin"}`), &c); err != nil {
		t.Fatalf("Unmarshal numeric id: %v", err)
	}
	if c.UserID != "17" {
		t.Errorf("UserID = %q, want 17", c.UserID)
	}

	if err := json.Unmarshal([]byte(`{"id": "u-17"}`), &c); err != nil {
		t.Fatalf("Unmarshal string id: %v", err)
	}
	if c.UserID != "u-17" {
		t.Errorf("UserID = %q, want u-17", c.UserID)
	}
}

func BenchmarkVerify(b *testing.B) {
	v := NewTokenVerifier("bench-secret")
	token, _ := v.Sign(Claims{UserID: "1", Username: "bench", RoleName: "admin"}, time.Hour)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.Verify(token)
	}
}
