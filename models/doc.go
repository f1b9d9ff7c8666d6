// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON or form bodies. Field constraints are
declared with validator tags and enforced by package services:

  - RegisterRequest: email, display_name, password
  - LoginRequest: email, password
  - CreatePollRequest: title, description, options, flags, expires_at
  - UpdatePollRequest: same fields as pointers, nil means unchanged
  - SubmitVoteRequest: option_id
  - CreateThreadRequest: content, parent_id
  - UpdateThreadRequest: content

# Response Types

  - AuthResponse: token, expires_at, user
  - CreatePollResponse: poll, options, share_url
  - PollDetail: the creator's view with results
  - SharedPoll: the public view, with has_voted and expires_in
  - PollSummary: one dashboard row
  - SubmitVoteResponse: vote, results

Every response is wrapped in an Envelope:

	{"success": true, "data": {...}}
	{"success": false, "error": {"type": "validation", "message": "...", "field": "title"}}

# Domain Types

  - User: an account, without its password hash
  - Poll: poll metadata and flags
  - PollOption: one choice, ordered by OrderIndex
  - Vote: one cast vote
  - Voter: the identity casting a vote
  - DiscussionThread: one comment, joined with its author's name
  - ThreadNode: a comment with nested replies
  - OptionResult, PollResults: aggregated counts

# Status

Status is derived, never stored:

	poll.Status(time.Now()) // "active", "inactive" or "expired"

Expiry wins over the active flag.
*/
package models
