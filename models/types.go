package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is the account role carried in the session token.
type Role string

// Account roles
const (
	RoleSuperAdmin  Role = "superadmin"
	RoleAdmin       Role = "admin"
	RoleOPD         Role = "opd"
	RoleVerifikator Role = "verifikator"
	RoleBappeda     Role = "bappeda"
	RoleBPKAD       Role = "bpkad"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleOPD,
	RoleVerifikator,
	RoleBappeda,
	RoleBPKAD,
}

// ParseRole accepts a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	for _, r := range AllRoles {
		if strings.EqualFold(string(r), s) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r is one of the six known roles.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the role manages users.
func (r Role) IsAdmin() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin:
		return true
	case RoleOPD, RoleVerifikator, RoleBappeda, RoleBPKAD:
		return false
	}
	return false
}

// VerifierKind is the verifying authority ("jenisVerifikator").
type VerifierKind string

// Verifier kinds
const (
	VerifierNone    VerifierKind = ""
	VerifierADBANG  VerifierKind = "ADBANG"
	VerifierADPEM   VerifierKind = "ADPEM"
	VerifierBAPPEDA VerifierKind = "BAPPEDA"
	VerifierBPKAD   VerifierKind = "BPKAD"
)

// ParseVerifierKind accepts a verifier kind case-insensitively. An empty
// string yields VerifierNone.
func ParseVerifierKind(s string) (VerifierKind, error) {
	if s == "" {
		return VerifierNone, nil
	}
	for _, k := range []VerifierKind{VerifierADBANG, VerifierADPEM, VerifierBAPPEDA, VerifierBPKAD} {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return VerifierNone, fmt.Errorf("unknown verifier kind %q", s)
}

// Letter activity types
const (
	JenisPembangunan  = "Pembangunan"
	JenisPemeliharaan = "Pemeliharaan"
)

// Session types

// SessionUser is the client-readable userData cookie payload.
// It is display data only; the server never authorizes from it.
type SessionUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Request types

type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	IDOpd    *int64 `json:"idOpd,omitempty"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

type VerificationRequest struct {
	Catatan string `json:"catatan"`
}

type LetterRequest struct {
	OPD           string `json:"opd"`
	NamaKegiatan  string `json:"namaKegiatan"`
	JenisKegiatan string `json:"jenisKegiatan"`
	Lokasi        string `json:"lokasi"`
}

// Response types

type LoginResponse struct {
	User        SessionUser `json:"user"`
	AccessToken string      `json:"accessToken"`
}

type ActionState struct {
	Action  string `json:"action"`
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason,omitempty"`
}

type VerificationStateResponse struct {
	AsbID       int64         `json:"asbId"`
	IDAsbStatus int           `json:"idAsbStatus"`
	Status      string        `json:"status"`
	Final       bool          `json:"final"`
	Actions     []ActionState `json:"actions"`
}

// Domain types

// Asb is a building proposal record as served by the upstream API.
type Asb struct {
	ID               int64              `json:"id"`
	Nama             string             `json:"nama"`
	Alamat           string             `json:"alamat"`
	IDAsbKlasifikasi *int64             `json:"idAsbKlasifikasi,omitempty"`
	Shst             float64            `json:"shst"`
	NominalBps       float64            `json:"nominalBps"`
	NominalBpns      float64            `json:"nominalBpns"`
	IDAsbStatus      int                `json:"idAsbStatus"`
	AsbStatus        *AsbStatusRef      `json:"asbStatus,omitempty"`
	AsbKlasifikasi   *AsbKlasifikasiRef `json:"asbKlasifikasi,omitempty"`
	BipekStandards   []AsbBipek         `json:"asbBipekStandards"`
	BipekNonStds     []AsbBipek         `json:"asbBipekNonStds"`
}

type AsbStatusRef struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

type AsbKlasifikasiRef struct {
	ID          int64  `json:"id"`
	Klasifikasi string `json:"klasifikasi"`
}

// AsbBipek is one weighted building component row (standard or non-standard).
type AsbBipek struct {
	ID                    int64             `json:"id"`
	IDAsbKomponenBangunan int64             `json:"idAsbKomponenBangunan"`
	BobotInput            float64           `json:"bobotInput"`
	CalculationMethod     string            `json:"calculationMethod"`
	JumlahBobot           float64           `json:"jumlahBobot"`
	JumlahHarga           float64           `json:"jumlahHarga"`
	KomponenBangunan      *KomponenBangunan `json:"asbKomponenBangunan,omitempty"`
}

type KomponenBangunan struct {
	ID       int64  `json:"id"`
	Komponen string `json:"komponen"`
}

// ComponentWeights is the upstream payload for BPS/BPNS verification.
type ComponentWeights struct {
	ComponentIDs []int64   `json:"idAsbKomponenBangunans"`
	Weights      []float64 `json:"bobotInputs"`
}

// StatusUpdate is the upstream payload for status-changing actions.
type StatusUpdate struct {
	IDAsbStatus int    `json:"idAsbStatus"`
	Catatan     string `json:"catatan,omitempty"`
}

// HistoryEvent is a recorded workflow transition.
type HistoryEvent struct {
	ID         string    `json:"id"`
	AsbID      int64     `json:"asbId"`
	Action     string    `json:"action"`
	FromStatus int       `json:"fromStatus"`
	ToStatus   int       `json:"toStatus"`
	ActorID    string    `json:"actorId"`
	ActorRole  Role      `json:"actorRole"`
	ActorKind  string    `json:"actorKind,omitempty"`
	Catatan    string    `json:"catatan,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Envelopes

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
