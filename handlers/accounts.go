// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/pollboard/apperr"
	"github.com/danielhkuo/pollboard/auth"
	"github.com/danielhkuo/pollboard/middleware"
	"github.com/danielhkuo/pollboard/models"
)

type AccountHandler struct {
	deps Deps
}

func NewAccountHandler(deps Deps) *AccountHandler {
	return &AccountHandler{deps: deps}
}

// Register handles POST /api/auth/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.DecodeBody(r, &req); err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	user, err := h.deps.Services.Users.Register(r.Context(), req)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	logrus.WithField("user_id", user.ID).Info("account registered")
	h.respondWithToken(w, r, http.StatusCreated, user)
}

// Login handles POST /api/auth/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.DecodeBody(r, &req); err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	user, err := h.deps.Services.Users.Authenticate(r.Context(), req)
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user)
}

// Me handles GET /api/auth/me
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.deps.Services.Users.FindByID(r.Context(), userID)
	if apperr.Is(err, apperr.KindNotFound) {
		// token outlived its account
		middleware.ErrorResponse(w, r, apperr.AuthenticationRequired())
		return
	}
	if err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

	middleware.JSONResponse(w, r, http.StatusOK, user)
}

func (h *AccountHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user models.User) {
	token, expiresAt, err := auth.IssueToken(h.deps.TokenAuth, user.ID, h.deps.Config.TokenTTL)
	if err != nil {
		middleware.ErrorResponse(w, r, apperr.Internal("failed to issue token", err))
		return
	}

	middleware.JSONResponse(w, r, status, models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}
