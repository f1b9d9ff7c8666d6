// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

WithLogging logs one logrus record per request with the matched chi
route, status and duration, and observes the request latency:

	r.Use(middleware.WithLogging(metrics))

# Identity

IdentifyUser runs after jwtauth.Verifier and stores the token subject in
the context. RequireUser rejects requests without one:

	r.Use(jwtauth.Verifier(ja))
	r.Use(middleware.IdentifyUser)
	r.With(middleware.RequireUser).Get("/auth/me", h.Me)

# Envelopes

	middleware.JSONResponse(w, r, http.StatusOK, data)
	middleware.ErrorResponse(w, r, err)

ErrorResponse maps the apperr kind to a status and error type.

# Request Bodies

DecodeBody accepts JSON, urlencoded and multipart form bodies:

	var req models.CreatePollRequest
	if err := middleware.DecodeBody(r, &req); err != nil {
		middleware.ErrorResponse(w, r, err)
		return
	}

# Client IP

GetClientIP honours X-Forwarded-For and X-Real-IP only when the peer is
a configured trusted proxy. VoterFromRequest combines the address,
hashed with a salt, with the signed-in user.
*/
package middleware
