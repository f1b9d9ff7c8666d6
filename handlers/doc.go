// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the pollboard API.

# Handler Types

Each handler is a struct built from a shared Deps value:

  - AccountHandler: registration, login and the current account
  - PollHandler: the creator's dashboard and poll lifecycle
  - VotingHandler: vote submission
  - ResultsHandler: aggregated results and the public share view
  - ThreadHandler: threaded discussion under a poll

	pollHandler := handlers.NewPollHandler(deps)

Handlers decode the request with middleware.DecodeBody, call one
service, and answer through middleware.JSONResponse or
middleware.ErrorResponse. Services return classified errors, so
handlers never choose a status code for a failure themselves.

# Side Effects

Writes that change what a page shows ask the Revalidator to refresh the
affected frontend paths, and bump the matching Prometheus counter.
*/
package handlers
