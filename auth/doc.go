// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session token verification, credential validation
and random token generation.

# Session Tokens

The upstream API issues HS256 JWTs signed with a secret shared with this
server. Every claim used for authorization comes from a verified token:

	verifier := auth.NewTokenVerifier(cfg.JWTSecret)
	claims, err := verifier.Verify(tokenString)

Verify rejects tokens with a different algorithm, a bad signature, a
missing or past "exp", an unknown role, or no user id. Errors wrap
ErrInvalidToken.

Claims expose the derived values handlers need:

	claims.Role()          // models.Role
	claims.VerifierKind()  // ADBANG/ADPEM from jenisVerifikator, or BAPPEDA/BPKAD by role
	claims.SessionUser()   // userData cookie payload

# Bearer Extraction

	token, err := auth.BearerToken(r) // ErrNoToken when absent

# Credential Validation

	auth.ValidateUsername("john.doe-1") // nil
	auth.ValidatePassword("Abcdefg1")   // nil

Usernames use only a-z, A-Z, 0-9, '.', '_' and '-'. Passwords need at
least 8 characters including an upper-case letter, a lower-case letter
and a digit.

# Random Tokens

	csrf, err := auth.GenerateCSRFToken() // URL-safe base64, 192 bits
*/
package auth
