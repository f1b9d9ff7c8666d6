// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db owns the database connection, schema migrations and
transactions.

# Connecting

Open picks the driver from the configured database type:

	store, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

SQLite (modernc.org/sqlite) connections enforce foreign keys and take
the write lock when a transaction begins. Postgres uses lib/pq. Queries
are built with goqu in prepared mode.

# Migrations

Migrations are embedded and applied with golang-migrate:

	if err := store.Migrate(); err != nil {
		log.Fatal(err)
	}

Safe to call on every start; an up-to-date schema is not an error.

# Tables

  - users: accounts
  - polls: poll metadata, unique share_token
  - poll_options: choices, unique (poll_id, order_index)
  - votes: one row per cast vote, voter_id or hashed voter_ip
  - discussion_threads: comments, soft deleted through is_deleted
  - discussion_threads_with_author: read view joining display_name

# Relationships

	users 1──* polls
	polls 1──* poll_options
	polls 1──* votes
	poll_options 1──* votes
	polls 1──* discussion_threads
	discussion_threads 1──* discussion_threads (parent_id)

All foreign keys use ON DELETE CASCADE.

# Transactions

	err := store.WithTx(ctx, func(tx *goqu.TxDatabase) error {
		...
	})

On postgres the transaction is SERIALIZABLE and serialization failures
are retried up to three times before a conflict is returned.

# Errors

TranslateError maps constraint violations from either driver onto
package apperr: unique violations are conflicts, foreign key and check
violations are validation failures.
*/
package db
