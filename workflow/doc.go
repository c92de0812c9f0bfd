// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package workflow decides which verification action a user may take on a
building proposal at its current status.

# Statuses

	1  Draft
	5  Dikembalikan (returned for revision)
	6  Ditolak (rejected, terminal)
	9  Menunggu Verifikasi BPS
	10 Menunggu Verifikasi BPNS
	11 Menunggu Persetujuan ADPEM
	12 Menunggu Persetujuan BAPPEDA
	13 Menunggu Persetujuan BPKAD
	14 Disetujui (approved, terminal)

Any other code is StatusUnknown and permits nothing.

# Transitions

	Draft, Dikembalikan  --submit (opd)-------------> 9
	9                    --verify-bps (ADBANG)-------> 10
	10                   --verify-bpns (ADBANG)------> 11
	11                   --approve (ADPEM)-----------> 12
	12                   --approve (BAPPEDA)---------> 13
	13                   --approve (BPKAD)-----------> 14
	11, 12, 13           --reject (stage actor)------> 6
	9 .. 13              --return (stage actor)------> 5

Status 9 is the only status at which BPS verification is possible.

# Usage

	actor := workflow.Actor{ID: claims.AccountID(), Role: claims.Role(), Kind: claims.VerifierKind()}
	tr, err := workflow.Authorize(workflow.ParseStatus(asb.IDAsbStatus), actor, workflow.ActionVerifyBPS)

Authorize returns ErrActionNotAllowed when the status does not offer the
action and ErrForbidden when the actor is not the stage's verifier.
Available lists every action with an enabled flag and a reason.

Verification actions also require the verified component group's
bobotInput values to sum to 100 (CheckWeights).
*/
package workflow
