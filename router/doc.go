// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the pollboard API.

NewRouter builds a chi router from the handler dependencies and the
Prometheus gatherer served on /metrics:

	handler := router.NewRouter(deps, registry)

# Endpoints

Operational:

	GET /health
	GET /metrics

Accounts:

	POST /api/auth/register
	POST /api/auth/login
	GET  /api/auth/me        (signed in)

Polls (signed in; only the creator may read the detail or change a poll):

	GET    /api/polls
	POST   /api/polls
	GET    /api/polls/{id}
	PUT    /api/polls/{id}
	DELETE /api/polls/{id}

Public:

	GET  /api/share/{token}
	GET  /api/polls/{id}/results
	POST /api/polls/{id}/votes
	GET  /api/polls/{id}/threads

Discussion (signed in):

	POST   /api/polls/{id}/threads
	PUT    /api/threads/{id}
	DELETE /api/threads/{id}

Every /api route reads an optional bearer token. A token that is present
but invalid is rejected even on public routes. Requests beyond the
concurrency limit are answered with 429.
*/
package router
