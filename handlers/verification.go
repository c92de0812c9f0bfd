// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/usulan-gedung/auth"
	"github.com/danielhkuo/usulan-gedung/db"
	"github.com/danielhkuo/usulan-gedung/middleware"
	"github.com/danielhkuo/usulan-gedung/models"
	"github.com/danielhkuo/usulan-gedung/ttlstore"
	"github.com/danielhkuo/usulan-gedung/upstream"
	"github.com/danielhkuo/usulan-gedung/workflow"
)

// lockMargin is added to the upstream budget of a verification when sizing
// its lock, which must outlive the fetch and the transition calls.
const lockMargin = 10 * time.Second

// LockTTL is how long a verification lock lives when upstream calls are
// bounded by apiTimeout.
func LockTTL(apiTimeout time.Duration) time.Duration {
	return 2*apiTimeout + lockMargin
}

const MsgInProgress = "Verification already in progress"

// Workflow metric results
const (
	resultSuccess       = "success"
	resultForbidden     = "forbidden"
	resultNotAllowed    = "not_allowed"
	resultInvalid       = "invalid"
	resultConflict      = "conflict"
	resultUpstreamError = "upstream_error"
)

const asbResource = "usulan/bangunan-gedung/asb/"

type VerificationHandler struct {
	api     *upstream.Client
	store   ttlstore.Store
	history *db.History
	metrics *middleware.Metrics
	lockTTL time.Duration
}

func NewVerificationHandler(api *upstream.Client, store ttlstore.Store, history *db.History,
	metrics *middleware.Metrics, apiTimeout time.Duration) *VerificationHandler {
	return &VerificationHandler{
		api:     api,
		store:   store,
		history: history,
		metrics: metrics,
		lockTTL: LockTTL(apiTimeout),
	}
}

func actorFrom(claims *auth.Claims) workflow.Actor {
	return workflow.Actor{
		ID:   claims.AccountID(),
		Role: claims.Role(),
		Kind: claims.VerifierKind(),
	}
}

func parseAsbID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// fetchAsb loads the current record from upstream. On failure it has
// already written the response.
func (h *VerificationHandler) fetchAsb(w http.ResponseWriter, r *http.Request, id int64) (*models.Asb, bool) {
	resp, err := h.api.DoJSON(r.Context(), http.MethodGet, asbResource+strconv.FormatInt(id, 10),
		middleware.Token(r.Context()), nil)
	if err != nil {
		writeUpstreamFailure(w, r, err)
		return nil, false
	}
	if !resp.OK() {
		writeUpstreamError(w, r, resp)
		return nil, false
	}
	var asb models.Asb
	if err := resp.DecodeData(&asb); err != nil {
		slog.Error("failed to decode ASB record", "asb_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, MsgBadUpstreamRes)
		return nil, false
	}
	return &asb, true
}

// actionCall is the upstream request that carries out a transition.
type actionCall struct {
	method   string
	resource string
	body     any
}

func callFor(asbID int64, tr workflow.Transition, asb *models.Asb, catatan string) actionCall {
	base := asbResource + strconv.FormatInt(asbID, 10)
	switch tr.Action {
	case workflow.ActionVerifyBPS:
		return actionCall{http.MethodPost, base + "/verifikasi-bps", workflow.WeightsPayload(asb.BipekStandards)}
	case workflow.ActionVerifyBPNS:
		return actionCall{http.MethodPost, base + "/verifikasi-bpns", workflow.WeightsPayload(asb.BipekNonStds)}
	case workflow.ActionSubmit, workflow.ActionApprove, workflow.ActionReject, workflow.ActionReturn:
		return actionCall{http.MethodPut, base + "/status", models.StatusUpdate{IDAsbStatus: int(tr.To), Catatan: catatan}}
	}
	panic(fmt.Sprintf("handlers: unhandled action %q", string(tr.Action)))
}

// Act performs a workflow action on a proposal
func (h *VerificationHandler) Act(w http.ResponseWriter, r *http.Request) {
	asbID, ok := parseAsbID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid ASB id")
		return
	}
	action, err := workflow.ParseAction(r.PathValue("action"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown action")
		return
	}

	var req models.VerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, MsgInvalidJSON)
		return
	}

	claims := middleware.Claims(r.Context())
	actor := actorFrom(claims)

	lockKey := fmt.Sprintf("verify:%d:%s", asbID, action)
	owner := uuid.NewString()
	acquired, err := h.store.SetNX(r.Context(), lockKey, owner, h.lockTTL)
	if err != nil {
		slog.Error("failed to take verification lock", "asb_id", asbID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, MsgInternal)
		return
	}
	if !acquired {
		slog.Warn("duplicate verification refused", "asb_id", asbID, "action", action, "user_id", actor.ID)
		h.metrics.ObserveWorkflow(string(action), resultConflict)
		middleware.ErrorResponse(w, http.StatusConflict, MsgInProgress)
		return
	}
	defer func() {
		released, err := h.store.DeleteIfValue(context.WithoutCancel(r.Context()), lockKey, owner)
		if err != nil {
			slog.Error("failed to release verification lock", "key", lockKey, "error", err)
		} else if !released {
			slog.Warn("verification lock expired before release", "key", lockKey, "ttl", h.lockTTL)
		}
	}()

	asb, ok := h.fetchAsb(w, r, asbID)
	if !ok {
		h.metrics.ObserveWorkflow(string(action), resultUpstreamError)
		return
	}

	status := workflow.ParseStatus(asb.IDAsbStatus)
	tr, err := workflow.Authorize(status, actor, action)
	if err != nil {
		slog.Warn("workflow action rejected",
			"asb_id", asbID,
			"action", action,
			"status", asb.IDAsbStatus,
			"user_id", actor.ID,
			"role", actor.Role,
			"kind", actor.Kind,
			"error", err,
		)
		if errors.Is(err, workflow.ErrForbidden) {
			h.metrics.ObserveWorkflow(string(action), resultForbidden)
			middleware.ErrorResponse(w, http.StatusForbidden, err.Error())
			return
		}
		h.metrics.ObserveWorkflow(string(action), resultNotAllowed)
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if action.VerifiesComponents() {
		if err := workflow.CheckWeights(workflow.Components(action, asb)); err != nil {
			slog.Warn("component weights rejected", "asb_id", asbID, "action", action, "error", err)
			h.metrics.ObserveWorkflow(string(action), resultInvalid)
			middleware.ErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	call := callFor(asbID, tr, asb, req.Catatan)
	resp, err := h.api.DoJSON(r.Context(), call.method, call.resource, middleware.Token(r.Context()), call.body)
	if err != nil {
		h.metrics.ObserveWorkflow(string(action), resultUpstreamError)
		writeUpstreamFailure(w, r, err)
		return
	}
	if !resp.OK() {
		h.metrics.ObserveWorkflow(string(action), resultUpstreamError)
		writeUpstreamError(w, r, resp)
		return
	}

	event := models.HistoryEvent{
		AsbID:      asbID,
		Action:     string(action),
		FromStatus: int(tr.From),
		ToStatus:   int(tr.To),
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		ActorKind:  string(actor.Kind),
		Catatan:    req.Catatan,
	}
	if err := h.history.Record(context.WithoutCancel(r.Context()), &event); err != nil {
		// Upstream already applied the transition; report success regardless.
		slog.Error("failed to record workflow history", "asb_id", asbID, "action", action, "error", err)
	}

	slog.Info("workflow action applied",
		"asb_id", asbID,
		"action", action,
		"from", int(tr.From),
		"to", int(tr.To),
		"user_id", actor.ID,
	)
	h.metrics.ObserveWorkflow(string(action), resultSuccess)
	relay(w, r, resp)
}

// State reports the proposal status and which actions the caller may take
func (h *VerificationHandler) State(w http.ResponseWriter, r *http.Request) {
	asbID, ok := parseAsbID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid ASB id")
		return
	}

	asb, ok := h.fetchAsb(w, r, asbID)
	if !ok {
		return
	}

	status := workflow.ParseStatus(asb.IDAsbStatus)
	actor := actorFrom(middleware.Claims(r.Context()))
	middleware.SuccessResponse(w, http.StatusOK, models.VerificationStateResponse{
		AsbID:       asbID,
		IDAsbStatus: asb.IDAsbStatus,
		Status:      status.Label(),
		Final:       status.Terminal(),
		Actions:     workflow.Available(status, actor),
	})
}

// History lists the recorded workflow transitions of a proposal
func (h *VerificationHandler) History(w http.ResponseWriter, r *http.Request) {
	asbID, ok := parseAsbID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid ASB id")
		return
	}

	events, err := h.history.List(r.Context(), asbID)
	if err != nil {
		slog.Error("failed to list workflow history", "asb_id", asbID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, MsgInternal)
		return
	}
	middleware.SuccessResponse(w, http.StatusOK, events)
}
