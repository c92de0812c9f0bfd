// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package workflow

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/danielhkuo/usulan-gedung/models"
)

var (
	ErrUnknownAction    = errors.New("unknown action")
	ErrActionNotAllowed = errors.New("action not allowed at current status")
	ErrForbidden        = errors.New("actor may not perform this action")
	ErrNoComponents     = errors.New("no components to verify")
	ErrWeightSum        = errors.New("component weights must sum to 100")
)

// WeightTolerance is the accepted deviation from 100 for a weight sum.
const WeightTolerance = 0.01

// Actor is who requests an action, as derived from a verified token.
type Actor struct {
	ID   string
	Role models.Role
	Kind models.VerifierKind
}

// rule grants one action at one status. Exactly one of role or kind is set.
type rule struct {
	from   Status
	action Action
	role   models.Role
	kind   models.VerifierKind
	to     Status
}

func (r rule) permits(a Actor) bool {
	if r.kind != models.VerifierNone {
		return a.Kind == r.kind
	}
	return a.Role == r.role
}

func (r rule) who() string {
	if r.kind != models.VerifierNone {
		return "verifikator " + string(r.kind)
	}
	return "role " + string(r.role)
}

var rules = []rule{
	{StatusDraft, ActionSubmit, models.RoleOPD, models.VerifierNone, StatusAwaitingBPS},
	{StatusReturned, ActionSubmit, models.RoleOPD, models.VerifierNone, StatusAwaitingBPS},

	{StatusAwaitingBPS, ActionVerifyBPS, "", models.VerifierADBANG, StatusAwaitingBPNS},
	{StatusAwaitingBPS, ActionReturn, "", models.VerifierADBANG, StatusReturned},

	{StatusAwaitingBPNS, ActionVerifyBPNS, "", models.VerifierADBANG, StatusAwaitingADPEM},
	{StatusAwaitingBPNS, ActionReturn, "", models.VerifierADBANG, StatusReturned},

	{StatusAwaitingADPEM, ActionApprove, "", models.VerifierADPEM, StatusAwaitingBappeda},
	{StatusAwaitingADPEM, ActionReject, "", models.VerifierADPEM, StatusRejected},
	{StatusAwaitingADPEM, ActionReturn, "", models.VerifierADPEM, StatusReturned},

	{StatusAwaitingBappeda, ActionApprove, "", models.VerifierBAPPEDA, StatusAwaitingBPKAD},
	{StatusAwaitingBappeda, ActionReject, "", models.VerifierBAPPEDA, StatusRejected},
	{StatusAwaitingBappeda, ActionReturn, "", models.VerifierBAPPEDA, StatusReturned},

	{StatusAwaitingBPKAD, ActionApprove, "", models.VerifierBPKAD, StatusApproved},
	{StatusAwaitingBPKAD, ActionReject, "", models.VerifierBPKAD, StatusRejected},
	{StatusAwaitingBPKAD, ActionReturn, "", models.VerifierBPKAD, StatusReturned},
}

func lookup(status Status, action Action) (rule, bool) {
	for _, r := range rules {
		if r.from == status && r.action == action {
			return r, true
		}
	}
	return rule{}, false
}

// Transition is an authorized status change.
type Transition struct {
	Action Action
	From   Status
	To     Status
}

// Authorize checks that actor may perform action on a proposal at status
// and returns the resulting transition.
func Authorize(status Status, actor Actor, action Action) (Transition, error) {
	r, ok := lookup(status, action)
	if !ok {
		return Transition{}, fmt.Errorf("%w: %s at status %d (%s)", ErrActionNotAllowed, action, int(status), status.Label())
	}
	if !r.permits(actor) {
		return Transition{}, fmt.Errorf("%w: %s requires %s", ErrForbidden, action, r.who())
	}
	return Transition{Action: action, From: status, To: r.to}, nil
}

// Available reports every action with whether actor may perform it now.
// Disabled actions carry the reason shown to the user.
func Available(status Status, actor Actor) []models.ActionState {
	states := make([]models.ActionState, 0, len(AllActions))
	for _, action := range AllActions {
		state := models.ActionState{Action: string(action)}
		r, ok := lookup(status, action)
		switch {
		case !ok:
			state.Reason = unavailableReason(action)
		case !r.permits(actor):
			state.Reason = "Hanya " + r.who() + " yang dapat melakukan aksi ini"
		default:
			state.Enabled = true
		}
		states = append(states, state)
	}
	return states
}

// unavailableReason names the statuses at which action is possible.
func unavailableReason(action Action) string {
	var at []string
	for _, s := range AllStatuses {
		if _, ok := lookup(s, action); ok {
			at = append(at, fmt.Sprintf("%d (%s)", int(s), s.Label()))
		}
	}
	if len(at) == 0 {
		return "Aksi tidak tersedia"
	}
	return "Aksi hanya tersedia pada status " + strings.Join(at, ", ")
}

// Components returns the component group an action verifies.
func Components(action Action, asb *models.Asb) []models.AsbBipek {
	switch action {
	case ActionVerifyBPS:
		return asb.BipekStandards
	case ActionVerifyBPNS:
		return asb.BipekNonStds
	case ActionSubmit, ActionApprove, ActionReject, ActionReturn:
		return nil
	}
	panic(fmt.Sprintf("workflow: unhandled action %q", string(action)))
}

// CheckWeights requires a non-empty group whose bobotInput sums to 100.
func CheckWeights(rows []models.AsbBipek) error {
	if len(rows) == 0 {
		return ErrNoComponents
	}
	var sum float64
	for _, row := range rows {
		sum += row.BobotInput
	}
	if math.Abs(sum-100) > WeightTolerance {
		return fmt.Errorf("%w: got %.2f", ErrWeightSum, sum)
	}
	return nil
}

// WeightsPayload builds the upstream verification body from component rows.
func WeightsPayload(rows []models.AsbBipek) models.ComponentWeights {
	p := models.ComponentWeights{
		ComponentIDs: make([]int64, 0, len(rows)),
		Weights:      make([]float64, 0, len(rows)),
	}
	for _, row := range rows {
		p.ComponentIDs = append(p.ComponentIDs, row.IDAsbKomponenBangunan)
		p.Weights = append(p.Weights, row.BobotInput)
	}
	return p
}
