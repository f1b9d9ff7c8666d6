// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/pollboard/metrics"
	"github.com/danielhkuo/pollboard/middleware"
	"github.com/danielhkuo/pollboard/models"
	"github.com/danielhkuo/pollboard/revalidate"
)

type VotingHandler struct {
	deps Deps
}

func NewVotingHandler(deps Deps) *VotingHandler {
	return &VotingHandler{deps: deps}
}

// SubmitVote handles POST /api/polls/{id}/votes
// Signed-in callers vote as themselves; others only on anonymous polls.
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")

	var req models.SubmitVoteRequest
	if err := middleware.DecodeBody(r, &req); err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	voter := middleware.VoterFromRequest(r, h.deps.Config.IPHashSalt, h.deps.Config.TrustedProxies)
	vote, err := h.deps.Services.Votes.Submit(r.Context(), pollID, req.OptionID, voter)
	h.deps.Metrics.Votes.WithLabelValues(metrics.VoteOutcome(err)).Inc()
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"poll_id":   pollID,
		"vote_id":   vote.ID,
		"anonymous": voter.Anonymous(),
	}).Info("vote submitted")
	h.deps.Revalidator.Revalidate(r.Context(),
		revalidate.PollPath(pollID),
		revalidate.SharePath(h.deps.Services.Polls.ShareToken(pollID)),
	)

	results, err := h.deps.Services.Votes.Results(r.Context(), pollID)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	middleware.JSONResponse(w, r, http.StatusCreated, models.SubmitVoteResponse{
		Vote:    vote,
		Results: results,
	})
}
