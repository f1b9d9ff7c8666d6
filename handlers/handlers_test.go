// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/pollboard/auth"
	"github.com/danielhkuo/pollboard/db"
	"github.com/danielhkuo/pollboard/metrics"
	"github.com/danielhkuo/pollboard/services"
	"github.com/danielhkuo/pollboard/testutil"
)

// recordingRevalidator remembers every path it was asked to refresh.
type recordingRevalidator struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingRevalidator) Revalidate(_ context.Context, paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, paths...)
}

func (r *recordingRevalidator) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

type testEnv struct {
	store       *db.DB
	deps        Deps
	revalidator *recordingRevalidator
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	store := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	rv := &recordingRevalidator{}

	return testEnv{
		store: store,
		deps: Deps{
			Services:    services.New(store, cfg),
			Config:      cfg,
			TokenAuth:   auth.NewTokenAuth(cfg.JWTSecret),
			Revalidator: rv,
			Metrics:     metrics.New(prometheus.NewRegistry()),
		},
		revalidator: rv,
	}
}

// withParams attaches chi URL parameters as key, value pairs.
func withParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// asUser marks the request as signed in, as IdentifyUser would.
func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(auth.WithUserID(req.Context(), userID))
}
