package cliparse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"

	defaultPort = 3318
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	JWTSecret      string
	TokenTTL       time.Duration
	ShareTokenSalt string
	IPHashSalt     string

	PublicURL        string
	RevalidateURL    string
	RevalidateSecret string
	CORSOrigins      []string

	// TrustedProxies are the peers whose X-Forwarded-For and X-Real-IP
	// headers are believed. Empty means client addresses come from the
	// connection only.
	TrustedProxies []*net.IPNet

	LogLevel              string
	LogFormat             string
	MaxConcurrentRequests int
}

// Flags returns the flag set shared by every pollboard command.
// Each flag falls back to the environment variable named next to it.
func Flags() []cli.Flag {
	return []cli.Flag{
		// Network
		&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: defaultPort, Usage: "server port", Sources: cli.EnvVars("PORT")},
		&cli.StringFlag{Name: "public-url", Usage: "base URL used in share links", Sources: cli.EnvVars("PUBLIC_URL")},
		&cli.StringSliceFlag{Name: "cors-origin", Usage: "allowed CORS origin (repeatable)", Sources: cli.EnvVars("CORS_ORIGINS")},
		&cli.StringSliceFlag{Name: "trusted-proxy", Usage: "proxy IP or CIDR whose forwarding headers are trusted (repeatable)", Sources: cli.EnvVars("TRUSTED_PROXIES")},
		&cli.IntFlag{Name: "max-concurrent", Value: 100, Usage: "requests processed at once before answering 429", Sources: cli.EnvVars("MAX_CONCURRENT_REQUESTS")},

		// Database
		&cli.StringFlag{Name: "database-url", Aliases: []string{"d"}, Usage: "database URL or SQLite file path", Sources: cli.EnvVars("DATABASE_URL")},
		&cli.StringFlag{Name: "database-type", Aliases: []string{"t"}, Value: DatabaseSQLite, Usage: "database type (sqlite or postgres)", Sources: cli.EnvVars("DATABASE_TYPE")},

		// Secrets (prefer env variables, but allow CLI for dev)
		&cli.StringFlag{Name: "jwt-secret", Usage: "HS256 signing secret (prefer env)", Sources: cli.EnvVars("JWT_SECRET")},
		&cli.DurationFlag{Name: "token-ttl", Value: 24 * time.Hour, Usage: "access token lifetime", Sources: cli.EnvVars("TOKEN_TTL")},
		&cli.StringFlag{Name: "share-salt", Usage: "share token salt (prefer env)", Sources: cli.EnvVars("SHARE_TOKEN_SALT")},
		&cli.StringFlag{Name: "ip-salt", Usage: "voter IP hash salt (prefer env)", Sources: cli.EnvVars("IP_HASH_SALT")},

		// Frontend cache revalidation
		&cli.StringFlag{Name: "revalidate-url", Usage: "frontend revalidation webhook", Sources: cli.EnvVars("REVALIDATE_URL")},
		&cli.StringFlag{Name: "revalidate-secret", Usage: "shared secret for the revalidation webhook", Sources: cli.EnvVars("REVALIDATE_SECRET")},

		// Logging
		&cli.StringFlag{Name: "log-level", Value: "info", Usage: "log level (trace, debug, info, warn, error)", Sources: cli.EnvVars("LOG_LEVEL")},
		&cli.StringFlag{Name: "log-format", Value: "text", Usage: "log format (text or json)", Sources: cli.EnvVars("LOG_FORMAT")},
	}
}

// FromCommand builds and validates a Config from a parsed command.
func FromCommand(cmd *cli.Command) (Config, error) {
	cfg := Config{
		Port:                  int(cmd.Int("port")),
		DatabaseURL:           cmd.String("database-url"),
		DatabaseType:          strings.ToLower(cmd.String("database-type")),
		JWTSecret:             cmd.String("jwt-secret"),
		TokenTTL:              cmd.Duration("token-ttl"),
		ShareTokenSalt:        cmd.String("share-salt"),
		IPHashSalt:            cmd.String("ip-salt"),
		PublicURL:             strings.TrimRight(cmd.String("public-url"), "/"),
		RevalidateURL:         cmd.String("revalidate-url"),
		RevalidateSecret:      cmd.String("revalidate-secret"),
		CORSOrigins:           cmd.StringSlice("cors-origin"),
		LogLevel:              cmd.String("log-level"),
		LogFormat:             strings.ToLower(cmd.String("log-format")),
		MaxConcurrentRequests: int(cmd.Int("max-concurrent")),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	proxies, err := ParseTrustedProxies(cmd.StringSlice("trusted-proxy"))
	if err != nil {
		return Config{}, err
	}
	cfg.TrustedProxies = proxies

	if cfg.PublicURL == "" {
		cfg.PublicURL = "http://localhost:" + strconv.Itoa(cfg.Port)
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("unsupported database type %q (sqlite or postgres)", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}
	if cfg.ShareTokenSalt == "" {
		return Config{}, errors.New("SHARE_TOKEN_SALT required")
	}
	if cfg.IPHashSalt == "" {
		return Config{}, errors.New("IP_HASH_SALT required")
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, errors.New("token TTL must be positive")
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("unsupported log format %q", cfg.LogFormat)
	}
	if cfg.MaxConcurrentRequests <= 0 {
		cfg.MaxConcurrentRequests = 100
	}

	return cfg, nil
}

// ParseTrustedProxies reads IP addresses and CIDR ranges. A bare
// address is a single-host range.
func ParseTrustedProxies(entries []string) ([]*net.IPNet, error) {
	var nets []*net.IPNet
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", entry)
			}
			bits := 8 * net.IPv6len
			if ip4 := ip.To4(); ip4 != nil {
				ip, bits = ip4, 8*net.IPv4len
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q", entry)
		}
		nets = append(nets, ipNet)
	}
	return nets, nil
}

// ParseFlags parses args (without the program name) into a Config.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	cmd := &cli.Command{
		Name:      "pollboard",
		Flags:     Flags(),
		Writer:    io.Discard,
		ErrWriter: io.Discard,
		Action: func(_ context.Context, cmd *cli.Command) error {
			var err error
			cfg, err = FromCommand(cmd)
			return err
		},
	}

	if err := cmd.Run(context.Background(), append([]string{"pollboard"}, args...)); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadDotEnv loads variables from an env file without overriding ones
// already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
