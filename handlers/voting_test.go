// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pollboard/models"
	"github.com/danielhkuo/pollboard/revalidate"
	"github.com/danielhkuo/pollboard/testutil"
)

func TestSubmitVote(t *testing.T) {
	env := newTestEnv(t)
	handler := NewVotingHandler(env.deps)
	cfg := env.deps.Config
	alice := testutil.CreateTestUser(t, env.store, "Alice")
	bob := testutil.CreateTestUser(t, env.store, "Bob")

	past := time.Now().Add(-time.Hour)
	named, namedOpts := testutil.CreateTestPoll(t, env.store, cfg, alice.ID, testutil.PollFixture{})
	anon, anonOpts := testutil.CreateTestPoll(t, env.store, cfg, alice.ID, testutil.PollFixture{IsAnonymous: true})
	expired, expiredOpts := testutil.CreateTestPoll(t, env.store, cfg, alice.ID, testutil.PollFixture{ExpiresAt: &past})

	tests := []struct {
		name       string
		pollID     string
		optionID   string
		userID     string
		remoteAddr string
		wantStatus int
		wantType   string
	}{
		{"Signed-in vote", named.ID, namedOpts[0].ID, bob.ID, "198.51.100.1:1234", http.StatusCreated, ""},
		{"Signed-in repeat", named.ID, namedOpts[1].ID, bob.ID, "198.51.100.1:1234", http.StatusConflict, "conflict"},
		{"Anonymous caller on named poll", named.ID, namedOpts[0].ID, "", "198.51.100.2:1234", http.StatusUnauthorized, "authentication"},
		{"Anonymous vote", anon.ID, anonOpts[0].ID, "", "198.51.100.3:1234", http.StatusCreated, ""},
		{"Anonymous repeat from same address", anon.ID, anonOpts[1].ID, "", "198.51.100.3:4321", http.StatusConflict, "conflict"},
		{"Anonymous vote from another address", anon.ID, anonOpts[1].ID, "", "198.51.100.4:1234", http.StatusCreated, ""},
		{"Expired poll", expired.ID, expiredOpts[0].ID, bob.ID, "198.51.100.1:1234", http.StatusConflict, "conflict"},
		{"Missing poll", "missing", namedOpts[0].ID, bob.ID, "198.51.100.1:1234", http.StatusNotFound, "not_found"},
		{"Missing option", anon.ID, "", bob.ID, "198.51.100.1:1234", http.StatusBadRequest, "validation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			body := models.SubmitVoteRequest{OptionID: tt.optionID}
			req := testutil.MakeRequest(http.MethodPost, "/api/polls/"+tt.pollID+"/votes", body, nil)
			req.RemoteAddr = tt.remoteAddr
			req = withParams(req, "id", tt.pollID)
			if tt.userID != "" {
				req = asUser(req, tt.userID)
			}

			handler.SubmitVote(w, req)
			testutil.AssertStatus(t, w, tt.wantStatus)

			if tt.wantStatus != http.StatusCreated {
				env := testutil.DecodeEnvelope(t, w, nil)
				require.NotNil(t, env.Error)
				assert.Equal(t, tt.wantType, env.Error.Type)
				return
			}

			var resp models.SubmitVoteResponse
			testutil.DecodeEnvelope(t, w, &resp)
			assert.Equal(t, tt.pollID, resp.Vote.PollID)
			assert.Equal(t, tt.optionID, resp.Vote.OptionID)
			assert.Equal(t, tt.pollID, resp.Results.PollID)
			assert.Positive(t, resp.Results.TotalVotes)
		})
	}

	assert.Equal(t, float64(3), promtest.ToFloat64(env.deps.Metrics.Votes.WithLabelValues("accepted")))
	assert.Equal(t, float64(3), promtest.ToFloat64(env.deps.Metrics.Votes.WithLabelValues("conflict")))
	assert.Contains(t, env.revalidator.Paths(), revalidate.SharePath(anon.ShareToken))
}

func TestVoteResponseHidesVoterAddress(t *testing.T) {
	env := newTestEnv(t)
	handler := NewVotingHandler(env.deps)
	alice := testutil.CreateTestUser(t, env.store, "Alice")
	poll, opts := testutil.CreateTestPoll(t, env.store, env.deps.Config, alice.ID, testutil.PollFixture{IsAnonymous: true})

	w := httptest.NewRecorder()
	req := testutil.MakeRequest(http.MethodPost, "/api/polls/"+poll.ID+"/votes", models.SubmitVoteRequest{OptionID: opts[0].ID}, nil)
	handler.SubmitVote(w, withParams(req, "id", poll.ID))
	testutil.AssertStatus(t, w, http.StatusCreated)

	assert.NotContains(t, w.Body.String(), "voter_ip")
	assert.NotContains(t, w.Body.String(), "192.0.2.1")
}

func TestSubmitVoteForwardedFor(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateTestUser(t, env.store, "Alice")
	poll, opts := testutil.CreateTestPoll(t, env.store, env.deps.Config, alice.ID, testutil.PollFixture{IsAnonymous: true})

	vote := func(t *testing.T, handler *VotingHandler, remoteAddr, forwardedFor string) int {
		t.Helper()
		w := httptest.NewRecorder()
		req := testutil.MakeRequest(http.MethodPost, "/api/polls/"+poll.ID+"/votes", models.SubmitVoteRequest{OptionID: opts[0].ID},
			map[string]string{"X-Forwarded-For": forwardedFor})
		req.RemoteAddr = remoteAddr
		handler.SubmitVote(w, withParams(req, "id", poll.ID))
		return w.Code
	}

	t.Run("Header ignored from untrusted peer", func(t *testing.T) {
		handler := NewVotingHandler(env.deps)
		assert.Equal(t, http.StatusCreated, vote(t, handler, "9.9.9.9:1234", "1.1.1.1"))
		assert.Equal(t, http.StatusConflict, vote(t, handler, "9.9.9.9:1234", "2.2.2.2"))
		assert.Equal(t, http.StatusConflict, vote(t, handler, "9.9.9.9:1234", "3.3.3.3"))
	})

	t.Run("Header honoured from trusted proxy", func(t *testing.T) {
		deps := env.deps
		proxy := &net.IPNet{IP: net.IPv4(10, 0, 0, 1).To4(), Mask: net.CIDRMask(32, 32)}
		deps.Config.TrustedProxies = []*net.IPNet{proxy}
		handler := NewVotingHandler(deps)

		assert.Equal(t, http.StatusCreated, vote(t, handler, "10.0.0.1:1234", "4.4.4.4"))
		assert.Equal(t, http.StatusCreated, vote(t, handler, "10.0.0.1:1234", "5.5.5.5"))
		assert.Equal(t, http.StatusConflict, vote(t, handler, "10.0.0.1:1234", "4.4.4.4"))
	})
}
