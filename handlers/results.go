// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/danielhkuo/pollboard/middleware"
	"github.com/danielhkuo/pollboard/models"
)

type ResultsHandler struct {
	deps Deps
}

func NewResultsHandler(deps Deps) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// GetResults handles GET /api/polls/{id}/results
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")

	if _, err := h.deps.Services.Polls.FindByID(r.Context(), pollID); err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	results, err := h.deps.Services.Votes.Results(r.Context(), pollID)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	middleware.JSONResponse(w, r, http.StatusOK, results)
}

// GetSharedPoll handles GET /api/share/{token}
// Results are shown whatever the poll's status, so an expired poll
// still renders its final counts.
func (h *ResultsHandler) GetSharedPoll(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	poll, options, err := h.deps.Services.Polls.FindByShareToken(r.Context(), token)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	results, err := h.deps.Services.Votes.Results(r.Context(), poll.ID)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	voter := middleware.VoterFromRequest(r, h.deps.Config.IPHashSalt, h.deps.Config.TrustedProxies)
	hasVoted, err := h.deps.Services.Votes.HasVoted(r.Context(), poll.ID, voter)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	now := h.deps.Services.Now()
	view := models.SharedPoll{
		Poll:     poll,
		Options:  options,
		Results:  results,
		Status:   poll.Status(now),
		HasVoted: hasVoted,
	}
	if poll.ExpiresAt != nil {
		view.ExpiresIn = humanize.RelTime(*poll.ExpiresAt, now, "ago", "from now")
	}

	middleware.JSONResponse(w, r, http.StatusOK, view)
}
