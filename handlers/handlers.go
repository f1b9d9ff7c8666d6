// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"strings"

	"github.com/go-chi/jwtauth"

	"github.com/danielhkuo/pollboard/cliparse"
	"github.com/danielhkuo/pollboard/metrics"
	"github.com/danielhkuo/pollboard/revalidate"
	"github.com/danielhkuo/pollboard/services"
)

// Deps is what every handler is built from.
type Deps struct {
	Services    *services.Services
	Config      cliparse.Config
	TokenAuth   *jwtauth.JWTAuth
	Revalidator revalidate.Revalidator
	Metrics     *metrics.Metrics
}

func shareURL(cfg cliparse.Config, token string) string {
	return strings.TrimRight(cfg.PublicURL, "/") + revalidate.SharePath(token)
}
