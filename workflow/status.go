// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package workflow

import "fmt"

// Status is a proposal's idAsbStatus code.
type Status int

// Known status codes. Codes not listed here parse to StatusUnknown.
const (
	StatusUnknown         Status = 0
	StatusDraft           Status = 1
	StatusReturned        Status = 5
	StatusRejected        Status = 6
	StatusAwaitingBPS     Status = 9
	StatusAwaitingBPNS    Status = 10
	StatusAwaitingADPEM   Status = 11
	StatusAwaitingBappeda Status = 12
	StatusAwaitingBPKAD   Status = 13
	StatusApproved        Status = 14
)

// AllStatuses lists every known status in workflow order.
var AllStatuses = []Status{
	StatusDraft,
	StatusReturned,
	StatusRejected,
	StatusAwaitingBPS,
	StatusAwaitingBPNS,
	StatusAwaitingADPEM,
	StatusAwaitingBappeda,
	StatusAwaitingBPKAD,
	StatusApproved,
}

// ParseStatus maps an upstream code onto a known status.
func ParseStatus(code int) Status {
	for _, s := range AllStatuses {
		if int(s) == code {
			return s
		}
	}
	return StatusUnknown
}

// Label returns the Indonesian display label.
func (s Status) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusReturned:
		return "Dikembalikan"
	case StatusRejected:
		return "Ditolak"
	case StatusAwaitingBPS:
		return "Menunggu Verifikasi BPS"
	case StatusAwaitingBPNS:
		return "Menunggu Verifikasi BPNS"
	case StatusAwaitingADPEM:
		return "Menunggu Persetujuan ADPEM"
	case StatusAwaitingBappeda:
		return "Menunggu Persetujuan BAPPEDA"
	case StatusAwaitingBPKAD:
		return "Menunggu Persetujuan BPKAD"
	case StatusApproved:
		return "Disetujui"
	case StatusUnknown:
		return "Tidak Dikenal"
	}
	panic(fmt.Sprintf("workflow: unhandled status %d", int(s)))
}

// Terminal reports whether no further action can follow.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusApproved:
		return true
	case StatusUnknown, StatusDraft, StatusReturned, StatusAwaitingBPS, StatusAwaitingBPNS,
		StatusAwaitingADPEM, StatusAwaitingBappeda, StatusAwaitingBPKAD:
		return false
	}
	panic(fmt.Sprintf("workflow: unhandled status %d", int(s)))
}

// Action is a workflow operation a user may request.
type Action string

// Actions
const (
	ActionSubmit     Action = "submit"
	ActionVerifyBPS  Action = "verify-bps"
	ActionVerifyBPNS Action = "verify-bpns"
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionReturn     Action = "return"
)

// AllActions lists every action in display order.
var AllActions = []Action{
	ActionSubmit,
	ActionVerifyBPS,
	ActionVerifyBPNS,
	ActionApprove,
	ActionReject,
	ActionReturn,
}

func ParseAction(s string) (Action, error) {
	for _, a := range AllActions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// VerifiesComponents reports whether the action submits component weights.
func (a Action) VerifiesComponents() bool {
	switch a {
	case ActionVerifyBPS, ActionVerifyBPNS:
		return true
	case ActionSubmit, ActionApprove, ActionReject, ActionReturn:
		return false
	}
	panic(fmt.Sprintf("workflow: unhandled action %q", string(a)))
}
