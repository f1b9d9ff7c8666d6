// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package services implements the poll, vote, discussion and account
rules on top of package db.

	svc := services.New(store, cfg)
	poll, options, err := svc.Polls.Create(ctx, userID, req)

Every error returned is classified through package apperr, so handlers
can map it to a status without inspecting messages.

# Polls

Create writes the poll and its options in one transaction. Update and
Delete filter on the creator; anyone else gets AuthorizationDenied,
whether or not the poll exists. Options can be replaced until the
first vote is cast.

# Votes

Submit checks, inside the same transaction as the insert:

  - the poll exists and is active
  - the poll has not expired (evaluated against the service clock)
  - the option belongs to the poll
  - the voter is signed in, unless the poll is anonymous
  - the voter has not voted before (single-vote polls) or has not
    picked this option before (multi-vote polls)

A signed-in voter is identified by user ID, anyone else by a salted
hash of their address.

# Discussion

ListTree returns visible threads nested with BuildThreadTree. Soft
deleted threads are hidden with their whole reply subtree.
*/
package services
