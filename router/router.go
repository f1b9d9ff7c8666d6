// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/pollboard/apperr"
	"github.com/danielhkuo/pollboard/handlers"
	"github.com/danielhkuo/pollboard/middleware"
)

func NewRouter(deps handlers.Deps, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithLogging(deps.Metrics))
	r.Use(middleware.CORS(deps.Config.CORSOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.ErrorResponse(w, r, apperr.NotFound("route"))
	})

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(deps)
	pollHandler := handlers.NewPollHandler(deps)
	votingHandler := handlers.NewVotingHandler(deps)
	resultsHandler := handlers.NewResultsHandler(deps)
	threadHandler := handlers.NewThreadHandler(deps)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.LimitConcurrency(deps.Config.MaxConcurrentRequests))
		r.Use(jwtauth.Verifier(deps.TokenAuth))
		r.Use(middleware.IdentifyUser)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("pollboard API v1"))
		})

		// Accounts
		r.Post("/auth/register", accountHandler.Register)
		r.Post("/auth/login", accountHandler.Login)
		r.With(middleware.RequireUser).Get("/auth/me", accountHandler.Me)

		// Public: share view, results, voting, reading discussions
		r.Get("/share/{token}", resultsHandler.GetSharedPoll)
		r.Get("/polls/{id}/results", resultsHandler.GetResults)
		r.Post("/polls/{id}/votes", votingHandler.SubmitVote)
		r.Get("/polls/{id}/threads", threadHandler.ListThreads)

		// Signed in
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Get("/polls", pollHandler.ListPolls)
			r.Post("/polls", pollHandler.CreatePoll)
			r.Get("/polls/{id}", pollHandler.GetPoll)
			r.Put("/polls/{id}", pollHandler.UpdatePoll)
			r.Delete("/polls/{id}", pollHandler.DeletePoll)

			r.Post("/polls/{id}/threads", threadHandler.CreateThread)
			r.Put("/threads/{id}", threadHandler.UpdateThread)
			r.Delete("/threads/{id}", threadHandler.DeleteThread)
		})
	})

	return r
}
