// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth"
	"github.com/lestrrat-go/jwx/jwt"

	"github.com/danielhkuo/pollboard/apperr"
	"github.com/danielhkuo/pollboard/auth"
)

// IdentifyUser reads the token verified by jwtauth.Verifier and puts
// its subject in the request context. Requests without a token pass
// through anonymously; a bad or expired token is rejected.
func IdentifyUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		switch {
		case errors.Is(err, jwtauth.ErrNoTokenFound):
			next.ServeHTTP(w, r)
			return
		case err != nil:
			ErrorResponse(w, r, &apperr.Error{
				Kind:    apperr.KindAuthenticationRequired,
				Message: "invalid or expired token",
				Err:     err,
			})
			return
		}

		userID := subject(token)
		if userID == "" {
			ErrorResponse(w, r, apperr.AuthenticationRequired())
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
	})
}

// RequireUser rejects requests that IdentifyUser left anonymous.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFromContext(r.Context()); !ok {
			ErrorResponse(w, r, apperr.AuthenticationRequired())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func subject(token jwt.Token) string {
	if token == nil {
		return ""
	}
	return token.Subject()
}
