// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

The pollboard command is built on urfave/cli. Flags returns the shared
flag set and FromCommand turns a parsed command into a validated Config:

	cmd := &cli.Command{
		Flags: cliparse.Flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := cliparse.FromCommand(cmd)
			// ...
		},
	}

ParseFlags does the same for a plain argument list:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL connection string or SQLite path (required)
  - DatabaseType: sqlite (default) or postgres
  - JWTSecret: HS256 signing key for access tokens (required)
  - TokenTTL: Access token lifetime (default: 24h)
  - ShareTokenSalt: Secret for share token generation (required)
  - IPHashSalt: Secret for hashing anonymous voter IPs (required)
  - PublicURL: Base URL for share links (default: http://localhost:<port>)
  - RevalidateURL, RevalidateSecret: Optional frontend cache webhook
  - CORSOrigins: Allowed browser origins
  - LogLevel, LogFormat: logrus level and text/json output
  - MaxConcurrentRequests: requests served at once before 429 (default: 100)
  - TrustedProxies: proxy IPs or CIDRs whose forwarding headers are believed

# Environment Variables

Every flag falls back to an environment variable:

	PORT                    → -p, --port
	DATABASE_URL            → -d, --database-url
	DATABASE_TYPE           → -t, --database-type
	JWT_SECRET              → --jwt-secret
	TOKEN_TTL               → --token-ttl
	SHARE_TOKEN_SALT        → --share-salt
	IP_HASH_SALT            → --ip-salt
	PUBLIC_URL              → --public-url
	REVALIDATE_URL          → --revalidate-url
	REVALIDATE_SECRET       → --revalidate-secret
	CORS_ORIGINS            → --cors-origin
	LOG_LEVEL               → --log-level
	LOG_FORMAT              → --log-format
	MAX_CONCURRENT_REQUESTS → --max-concurrent

CLI flags take precedence over environment variables. LoadDotEnv reads a
.env file into the environment first, without overriding variables that
are already set.
*/
package cliparse
