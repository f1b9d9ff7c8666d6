// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/pollboard/auth"
	"github.com/danielhkuo/pollboard/middleware"
	"github.com/danielhkuo/pollboard/models"
	"github.com/danielhkuo/pollboard/revalidate"
)

type ThreadHandler struct {
	deps Deps
}

func NewThreadHandler(deps Deps) *ThreadHandler {
	return &ThreadHandler{deps: deps}
}

// ListThreads handles GET /api/polls/{id}/threads
func (h *ThreadHandler) ListThreads(w http.ResponseWriter, r *http.Request) {
	tree, err := h.deps.Services.Threads.ListTree(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	middleware.JSONResponse(w, r, http.StatusOK, tree)
}

// CreateThread handles POST /api/polls/{id}/threads
func (h *ThreadHandler) CreateThread(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")

	var req models.CreateThreadRequest
	if err := middleware.DecodeBody(r, &req); err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	thread, err := h.deps.Services.Threads.Create(r.Context(), userID, pollID, req)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"poll_id":   pollID,
		"thread_id": thread.ID,
		"reply":     thread.ParentID != nil,
	}).Info("thread posted")
	h.deps.Metrics.ThreadsPosted.Inc()
	h.revalidate(r, pollID)

	middleware.JSONResponse(w, r, http.StatusCreated, thread)
}

// UpdateThread handles PUT /api/threads/{id}
func (h *ThreadHandler) UpdateThread(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateThreadRequest
	if err := middleware.DecodeBody(r, &req); err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	thread, err := h.deps.Services.Threads.Update(r.Context(), userID, chi.URLParam(r, "id"), req)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	h.revalidate(r, thread.PollID)
	middleware.JSONResponse(w, r, http.StatusOK, thread)
}

// DeleteThread handles DELETE /api/threads/{id}
func (h *ThreadHandler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	thread, err := h.deps.Services.Threads.Delete(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	logrus.WithField("thread_id", thread.ID).Info("thread deleted")
	h.revalidate(r, thread.PollID)
	middleware.JSONResponse(w, r, http.StatusOK, map[string]string{"id": thread.ID})
}

func (h *ThreadHandler) revalidate(r *http.Request, pollID string) {
	h.deps.Revalidator.Revalidate(r.Context(),
		revalidate.PollPath(pollID),
		revalidate.SharePath(h.deps.Services.Polls.ShareToken(pollID)),
	)
}
