// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/accent-vote/auth"
	"github.com/danielhkuo/accent-vote/cliparse"
	"github.com/danielhkuo/accent-vote/ledger"
	"github.com/danielhkuo/accent-vote/metrics"
	"github.com/danielhkuo/accent-vote/middleware"
	"github.com/danielhkuo/accent-vote/models"
	"github.com/danielhkuo/accent-vote/settings"
)

type VotingHandler struct {
	ledger   *ledger.Ledger
	guard    *auth.Guard
	settings *settings.Store
	metrics  *metrics.Metrics
	cfg      cliparse.Config
}

func NewVotingHandler(l *ledger.Ledger, guard *auth.Guard, st *settings.Store, m *metrics.Metrics, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{ledger: l, guard: guard, settings: st, metrics: m, cfg: cfg}
}

// CastVote handles POST /subjects/{id}/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	subjectID, err := subjectIDParam(r)
	if err != nil {
		h.reject(w, err)
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		h.metrics.VoteRejected(kindInvalidRequest)
		middleware.ErrorKindResponse(w, http.StatusBadRequest, kindInvalidRequest, "Invalid JSON")
		return
	}

	id, err := requestIdentity(r, h.guard, req.Fingerprint)
	if err != nil {
		h.reject(w, err)
		return
	}

	// One settings snapshot for the whole request
	snap := h.settings.Current()
	if !snap.Settings.VotingEnabled {
		h.reject(w, models.ErrVotingDisabled)
		return
	}
	if snap.Blocked(id) {
		h.reject(w, models.ErrIdentityBlocked)
		return
	}

	ballot := ledger.Ballot{
		Identity:    id,
		SubjectID:   subjectID,
		OptionRef:   req.OptionRef,
		SemanticKey: req.SemanticKey,
		OptionID:    req.OptionID,
		IPHash:      auth.HashIP(middleware.GetClientIP(r), h.cfg.IPHashSalt),
	}
	if req.Demographics != nil {
		ballot.Demographics = *req.Demographics
	}

	v, err := h.ledger.RecordVote(r.Context(), ballot)
	if err != nil {
		h.reject(w, err)
		return
	}
	h.metrics.VoteAccepted()

	// Non-fatal: the vote is stored, the client just keeps its old cookie
	if err := setSession(w, r, h.guard, h.cfg, id); err != nil {
		slog.Warn("failed to refresh session", "error", err)
	}

	slog.Info("vote recorded",
		"subject_id", v.SubjectID,
		"option_id", v.OptionID,
		"vote_id", v.ID,
		"settings_version", snap.Version,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		VoteID:      v.ID,
		SubjectID:   v.SubjectID,
		OptionID:    v.OptionID,
		SemanticKey: v.SemanticKey,
	})
}

// GetMyVote handles GET /subjects/{id}/my-vote
// Returns the vote the caller cast on the subject, if any
func (h *VotingHandler) GetMyVote(w http.ResponseWriter, r *http.Request) {
	subjectID, err := subjectIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := requestIdentity(r, h.guard, nil)
	if err != nil {
		if isInvalidToken(err) {
			clearSession(w)
		}
		writeError(w, err)
		return
	}

	v, found, err := h.ledger.Find(r.Context(), id, subjectID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "No vote recorded for this subject")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, v)
}

func (h *VotingHandler) reject(w http.ResponseWriter, err error) {
	h.metrics.VoteRejected(models.ErrorKind(err))
	if isInvalidToken(err) {
		clearSession(w)
	}
	writeError(w, err)
}

// subjectIDParam reads the {id} path value. Anything that is not a
// positive integer cannot name a subject.
func subjectIDParam(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("subject %q: %w", raw, models.ErrSubjectNotFound)
	}
	return id, nil
}
