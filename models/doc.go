// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Roles

Six account roles, carried in the verified session token:

	RoleSuperAdmin  = "superadmin"
	RoleAdmin       = "admin"
	RoleOPD         = "opd"
	RoleVerifikator = "verifikator"
	RoleBappeda     = "bappeda"
	RoleBPKAD       = "bpkad"

Verifier kinds ("jenisVerifikator"): ADBANG, ADPEM, BAPPEDA, BPKAD.

# Request Types

  - LoginRequest: username, password, rememberMe
  - CreateUserRequest: username, password, name, role
  - VerificationRequest: catatan (optional note)
  - LetterRequest: opd, namaKegiatan, jenisKegiatan, lokasi

# Response Types

  - LoginResponse: user, accessToken
  - VerificationStateResponse: current status and per-action states
  - SuccessResponse: {"success": true, "data": ...}
  - ErrorResponse: {"success": false, "error": "..."}

# Domain Types

  - Asb: building proposal ("ASB") as served by the upstream API
  - AsbBipek: one weighted component row (standard or non-standard)
  - ComponentWeights, StatusUpdate: upstream write payloads
  - HistoryEvent: a recorded workflow transition
  - SessionUser: the display-only userData cookie payload
*/
package models
