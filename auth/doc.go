// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication, identity and token utilities.

# Share Tokens

Share tokens are the public lookup key of a poll:

	token := auth.GenerateShareToken(pollID, salt)

Tokens are base62 encoded (alphanumeric only) for easy sharing. They're
deterministic from the poll ID and salt, so a poll's share link never
changes.

# Passwords

Account passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, candidate) // ErrInvalidCredentials on mismatch

# Access Tokens

Access tokens are HS256 JWTs issued through go-chi/jwtauth. The subject
claim carries the user ID:

	ja := auth.NewTokenAuth(cfg.JWTSecret)
	token, expiresAt, err := auth.IssueToken(ja, userID, cfg.TokenTTL)

The same JWTAuth verifies incoming requests (see package middleware),
which then store the caller with WithUserID:

	userID, ok := auth.UserIDFromContext(r.Context())

# ID Generation

Random hex IDs:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

Anonymous voters are identified by a salted hash of their IP:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
