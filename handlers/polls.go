// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/pollboard/apperr"
	"github.com/danielhkuo/pollboard/auth"
	"github.com/danielhkuo/pollboard/middleware"
	"github.com/danielhkuo/pollboard/models"
	"github.com/danielhkuo/pollboard/revalidate"
)

type PollHandler struct {
	deps Deps
}

func NewPollHandler(deps Deps) *PollHandler {
	return &PollHandler{deps: deps}
}

// ListPolls handles GET /api/polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	summaries, err := h.deps.Services.Polls.ListByCreator(r.Context(), userID)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	for i := range summaries {
		summaries[i].ShareURL = shareURL(h.deps.Config, summaries[i].Poll.ShareToken)
	}

	middleware.JSONResponse(w, r, http.StatusOK, summaries)
}

// CreatePoll handles POST /api/polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.DecodeBody(r, &req); err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	poll, options, err := h.deps.Services.Polls.Create(r.Context(), userID, req)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"poll_id":    poll.ID,
		"creator_id": userID,
		"options":    len(options),
	}).Info("poll created")
	h.deps.Metrics.PollsCreated.Inc()
	h.deps.Revalidator.Revalidate(r.Context(), revalidate.DashboardPath(), revalidate.PollPath(poll.ID))

	middleware.JSONResponse(w, r, http.StatusCreated, models.CreatePollResponse{
		Poll:     poll,
		Options:  options,
		ShareURL: shareURL(h.deps.Config, poll.ShareToken),
	})
}

// GetPoll handles GET /api/polls/{id}
// Only the creator sees this view; voters use the share link.
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")
	userID, _ := auth.UserIDFromContext(r.Context())

	poll, err := h.deps.Services.Polls.FindByID(r.Context(), pollID)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}
	if poll.CreatorID != userID {
		middleware.ErrorResponse(w, r, apperr.AuthorizationDenied("only the poll creator can view this page"))
		return
	}

	options, err := h.deps.Services.Options.ListByPoll(r.Context(), poll.ID)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	results, err := h.deps.Services.Votes.Results(r.Context(), poll.ID)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	middleware.JSONResponse(w, r, http.StatusOK, models.PollDetail{
		Poll:     poll,
		Options:  options,
		Results:  results,
		Status:   poll.Status(h.deps.Services.Now()),
		ShareURL: shareURL(h.deps.Config, poll.ShareToken),
	})
}

// UpdatePoll handles PUT /api/polls/{id}
func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")

	var req models.UpdatePollRequest
	if err := middleware.DecodeBody(r, &req); err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	poll, options, err := h.deps.Services.Polls.Update(r.Context(), userID, pollID, req)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	logrus.WithField("poll_id", poll.ID).Info("poll updated")
	h.deps.Revalidator.Revalidate(r.Context(),
		revalidate.DashboardPath(),
		revalidate.PollPath(poll.ID),
		revalidate.SharePath(poll.ShareToken),
	)

	middleware.JSONResponse(w, r, http.StatusOK, models.CreatePollResponse{
		Poll:     poll,
		Options:  options,
		ShareURL: shareURL(h.deps.Config, poll.ShareToken),
	})
}

// DeletePoll handles DELETE /api/polls/{id}
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")
	userID, _ := auth.UserIDFromContext(r.Context())

	poll, err := h.deps.Services.Polls.Delete(r.Context(), userID, pollID)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"poll_id":    poll.ID,
		"creator_id": userID,
	}).Info("poll deleted")
	h.deps.Revalidator.Revalidate(r.Context(),
		revalidate.DashboardPath(),
		revalidate.PollPath(poll.ID),
		revalidate.SharePath(poll.ShareToken),
	)

	middleware.JSONResponse(w, r, http.StatusOK, map[string]string{"id": poll.ID})
}
