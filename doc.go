// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the pollboard API server.

pollboard lets signed-in users create polls, share them through an
unguessable link, collect votes (signed in or, on anonymous polls, by
hashed client address) and discuss them in threaded comments.

# Starting the Server

	DATABASE_URL=pollboard.db JWT_SECRET=... SHARE_TOKEN_SALT=... IP_HASH_SALT=... go run .

Or against PostgreSQL:

	go run . -t postgres -d "postgres://..."

Apply migrations without serving:

	go run . migrate -d pollboard.db

A .env file in the working directory is loaded first; variables already
set in the environment win.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file path or PostgreSQL URL
  - JWT_SECRET (--jwt-secret): HS256 signing secret for access tokens
  - SHARE_TOKEN_SALT (--share-salt): secret for share token derivation
  - IP_HASH_SALT (--ip-salt): secret for hashing voter addresses

Optional settings:

  - PORT (-p): server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - TOKEN_TTL: access token lifetime (default: 24h)
  - PUBLIC_URL: base of share links
  - CORS_ORIGINS: allowed origins
  - REVALIDATE_URL, REVALIDATE_SECRET: frontend cache webhook
  - LOG_LEVEL, LOG_FORMAT: logrus level and text or json output
  - MAX_CONCURRENT_REQUESTS: API requests in flight before 429
  - TRUSTED_PROXIES: proxy IPs or CIDRs whose forwarding headers are believed

# Architecture

  - handlers: HTTP request handlers
  - router: chi route definitions
  - middleware: logging, identity, envelopes, body decoding
  - services: poll, vote, option, user and thread operations
  - models: request, response and domain types
  - schema: table definitions and row types
  - db: connections, transactions, migrations, error translation
  - apperr: the error taxonomy
  - auth: IDs, share tokens, hashing and access tokens
  - metrics, revalidate: Prometheus collectors and the frontend webhook
  - cliparse: configuration parsing
*/
package main
