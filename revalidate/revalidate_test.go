// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package revalidate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPicksNoopWithoutURL(t *testing.T) {
	assert.IsType(t, Noop{}, New("", "secret"))
	assert.IsType(t, &Webhook{}, New("http://localhost/revalidate", "secret"))
}

func TestWebhookPostsPaths(t *testing.T) {
	type received struct {
		paths  []string
		secret string
	}
	got := make(chan received, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body payload
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		got <- received{paths: body.Paths, secret: r.Header.Get(SecretHeader)}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	hook := NewWebhook(srv.URL, "s3cret", time.Second)
	hook.Revalidate(context.Background(), DashboardPath(), PollPath("abc"), SharePath("tok"))

	select {
	case r := <-got:
		assert.Equal(t, []string{"/dashboard", "/polls/abc", "/p/tok"}, r.paths)
		assert.Equal(t, "s3cret", r.secret)
	case <-time.After(2 * time.Second):
		require.Fail(t, "webhook was not called")
	}
}

func TestWebhookDoesNotBlockCaller(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
	}))
	defer srv.Close()

	hook := NewWebhook(srv.URL, "", 5*time.Second)
	returned := make(chan struct{})
	go func() {
		hook.Revalidate(context.Background(), "/dashboard")
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		require.Fail(t, "Revalidate waited for the webhook")
	}
	close(release)
	hook.wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestWebhookOutlivesRequestContext(t *testing.T) {
	tests := []struct {
		name    string
		ctx     func() context.Context
		timeout time.Duration
		delay   time.Duration
		wantHit bool
	}{
		{
			name: "Cancelled request context",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			timeout: time.Second,
			wantHit: true,
		},
		{
			name: "Expired request deadline",
			ctx: func() context.Context {
				ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
				defer cancel()
				<-ctx.Done()
				return ctx
			},
			timeout: time.Second,
			wantHit: true,
		},
		{
			name:    "Own timeout still applies",
			ctx:     context.Background,
			timeout: 20 * time.Millisecond,
			delay:   300 * time.Millisecond,
			wantHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var completed atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(tt.delay):
					completed.Add(1)
				case <-r.Context().Done():
				}
			}))
			defer srv.Close()

			hook := NewWebhook(srv.URL, "", tt.timeout)
			hook.Revalidate(tt.ctx(), "/dashboard")
			hook.wait()

			assert.Equal(t, tt.wantHit, completed.Load() == 1)
		})
	}
}

func TestWebhookSkipsEmptyPathList(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	NewWebhook(srv.URL, "", time.Second).Revalidate(context.Background())
	assert.Zero(t, calls.Load())
}

func TestWebhookErrors(t *testing.T) {
	t.Run("Error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		hook := NewWebhook(srv.URL, "wrong", time.Second)
		assert.Error(t, hook.post(context.Background(), []string{"/dashboard"}))
		// never panics or blocks the caller
		hook.Revalidate(context.Background(), "/dashboard")
		hook.wait()
	})

	t.Run("Timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		hook := NewWebhook(srv.URL, "", 20*time.Millisecond)
		assert.Error(t, hook.post(context.Background(), []string{"/dashboard"}))
	})
}
