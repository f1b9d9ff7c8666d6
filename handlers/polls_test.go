// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/doug-martin/goqu/v9"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pollboard/models"
	"github.com/danielhkuo/pollboard/revalidate"
	"github.com/danielhkuo/pollboard/schema"
	"github.com/danielhkuo/pollboard/testutil"
)

func TestCreatePoll(t *testing.T) {
	env := newTestEnv(t)
	handler := NewPollHandler(env.deps)
	alice := testutil.CreateTestUser(t, env.store, "Alice")

	tests := []struct {
		name       string
		body       models.CreatePollRequest
		wantStatus int
		wantField  string
	}{
		{
			name:       "Valid poll",
			body:       models.CreatePollRequest{Title: "Lunch?", Options: []string{"Pizza", "Sushi", "Tacos"}},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "Missing title",
			body:       models.CreatePollRequest{Options: []string{"Pizza", "Sushi"}},
			wantStatus: http.StatusBadRequest,
			wantField:  "title",
		},
		{
			name:       "Too few options",
			body:       models.CreatePollRequest{Title: "Lunch?", Options: []string{"Pizza"}},
			wantStatus: http.StatusBadRequest,
			wantField:  "options",
		},
		{
			name:       "Expiry in the past",
			body:       models.CreatePollRequest{Title: "Lunch?", Options: []string{"Pizza", "Sushi"}, ExpiresAt: "2001-01-01T00:00:00Z"},
			wantStatus: http.StatusBadRequest,
			wantField:  "expires_at",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := asUser(testutil.MakeRequest(http.MethodPost, "/api/polls", tt.body, nil), alice.ID)
			handler.CreatePoll(w, req)
			testutil.AssertStatus(t, w, tt.wantStatus)

			if tt.wantStatus != http.StatusCreated {
				env := testutil.DecodeEnvelope(t, w, nil)
				require.NotNil(t, env.Error)
				assert.Equal(t, "validation", env.Error.Type)
				assert.Equal(t, tt.wantField, env.Error.Field)
				return
			}

			var resp models.CreatePollResponse
			testutil.DecodeEnvelope(t, w, &resp)
			assert.Equal(t, alice.ID, resp.Poll.CreatorID)
			assert.True(t, resp.Poll.IsActive)
			require.Len(t, resp.Options, len(tt.body.Options))
			for i, opt := range resp.Options {
				assert.Equal(t, tt.body.Options[i], opt.Text)
				assert.Equal(t, i, opt.OrderIndex)
			}
			assert.Equal(t, "http://localhost:3318/p/"+resp.Poll.ShareToken, resp.ShareURL)
			assert.Contains(t, env.revalidator.Paths(), revalidate.DashboardPath())
		})
	}

	assert.Equal(t, float64(1), promtest.ToFloat64(env.deps.Metrics.PollsCreated))
}

func TestCreatePollFromForm(t *testing.T) {
	env := newTestEnv(t)
	handler := NewPollHandler(env.deps)
	alice := testutil.CreateTestUser(t, env.store, "Alice")

	form := url.Values{}
	form.Set("title", "Movie night")
	form.Add("options", "Alien")
	form.Add("options", "")
	form.Add("options", "Heat")
	form.Set("is_anonymous", "true")
	form.Set("expires_at", "2999-12-31T20:00")

	w := httptest.NewRecorder()
	req := asUser(testutil.MakeFormRequest(http.MethodPost, "/api/polls", form, nil), alice.ID)
	handler.CreatePoll(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CreatePollResponse
	testutil.DecodeEnvelope(t, w, &resp)
	assert.True(t, resp.Poll.IsAnonymous)
	require.NotNil(t, resp.Poll.ExpiresAt)
	assert.Equal(t, 2999, resp.Poll.ExpiresAt.Year())
	require.Len(t, resp.Options, 2)
	assert.Equal(t, "Heat", resp.Options[1].Text)
}

func TestGetPoll(t *testing.T) {
	env := newTestEnv(t)
	handler := NewPollHandler(env.deps)
	cfg := env.deps.Config
	alice := testutil.CreateTestUser(t, env.store, "Alice")
	bob := testutil.CreateTestUser(t, env.store, "Bob")
	poll, _ := testutil.CreateTestPoll(t, env.store, cfg, alice.ID, testutil.PollFixture{})

	tests := []struct {
		name       string
		userID     string
		pollID     string
		wantStatus int
	}{
		{"Creator", alice.ID, poll.ID, http.StatusOK},
		{"Other user", bob.ID, poll.ID, http.StatusForbidden},
		{"Missing poll", alice.ID, "missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := testutil.MakeRequest(http.MethodGet, "/api/polls/"+tt.pollID, nil, nil)
			req = asUser(withParams(req, "id", tt.pollID), tt.userID)
			handler.GetPoll(w, req)
			testutil.AssertStatus(t, w, tt.wantStatus)

			if tt.wantStatus != http.StatusOK {
				return
			}
			var detail models.PollDetail
			testutil.DecodeEnvelope(t, w, &detail)
			assert.Equal(t, poll.ID, detail.Poll.ID)
			assert.Equal(t, models.StatusActive, detail.Status)
			assert.Len(t, detail.Options, 2)
			assert.Len(t, detail.Results.Options, 2)
			assert.True(t, strings.HasSuffix(detail.ShareURL, poll.ShareToken))
		})
	}
}

func TestListPolls(t *testing.T) {
	env := newTestEnv(t)
	handler := NewPollHandler(env.deps)
	cfg := env.deps.Config
	alice := testutil.CreateTestUser(t, env.store, "Alice")
	bob := testutil.CreateTestUser(t, env.store, "Bob")

	testutil.CreateTestPoll(t, env.store, cfg, alice.ID, testutil.PollFixture{Title: "First"})
	testutil.CreateTestPoll(t, env.store, cfg, alice.ID, testutil.PollFixture{Title: "Second"})
	testutil.CreateTestPoll(t, env.store, cfg, bob.ID, testutil.PollFixture{Title: "Bob's"})

	w := httptest.NewRecorder()
	req := asUser(testutil.MakeRequest(http.MethodGet, "/api/polls", nil, nil), alice.ID)
	handler.ListPolls(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var summaries []models.PollSummary
	testutil.DecodeEnvelope(t, w, &summaries)
	require.Len(t, summaries, 2)
	for _, s := range summaries {
		assert.Equal(t, alice.ID, s.Poll.CreatorID)
		assert.NotEmpty(t, s.ShareURL)
		assert.Zero(t, s.TotalVotes)
	}
}

func TestUpdatePoll(t *testing.T) {
	env := newTestEnv(t)
	handler := NewPollHandler(env.deps)
	cfg := env.deps.Config
	alice := testutil.CreateTestUser(t, env.store, "Alice")
	bob := testutil.CreateTestUser(t, env.store, "Bob")
	poll, _ := testutil.CreateTestPoll(t, env.store, cfg, alice.ID, testutil.PollFixture{})

	title := "Renamed"
	inactive := false
	body := models.UpdatePollRequest{Title: &title, IsActive: &inactive}

	t.Run("Other user denied", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := testutil.MakeRequest(http.MethodPut, "/api/polls/"+poll.ID, body, nil)
		handler.UpdatePoll(w, asUser(withParams(req, "id", poll.ID), bob.ID))
		testutil.AssertStatus(t, w, http.StatusForbidden)
	})

	t.Run("Creator updates", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := testutil.MakeRequest(http.MethodPut, "/api/polls/"+poll.ID, body, nil)
		handler.UpdatePoll(w, asUser(withParams(req, "id", poll.ID), alice.ID))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.CreatePollResponse
		testutil.DecodeEnvelope(t, w, &resp)
		assert.Equal(t, "Renamed", resp.Poll.Title)
		assert.False(t, resp.Poll.IsActive)
		assert.Contains(t, env.revalidator.Paths(), revalidate.SharePath(poll.ShareToken))
	})
}

func TestDeletePoll(t *testing.T) {
	env := newTestEnv(t)
	handler := NewPollHandler(env.deps)
	cfg := env.deps.Config
	alice := testutil.CreateTestUser(t, env.store, "Alice")
	bob := testutil.CreateTestUser(t, env.store, "Bob")
	poll, _ := testutil.CreateTestPoll(t, env.store, cfg, alice.ID, testutil.PollFixture{})
	byID := goqu.Ex{schema.PollTableIDColName: poll.ID}

	t.Run("Other user denied", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := testutil.MakeRequest(http.MethodDelete, "/api/polls/"+poll.ID, nil, nil)
		handler.DeletePoll(w, asUser(withParams(req, "id", poll.ID), bob.ID))
		testutil.AssertStatus(t, w, http.StatusForbidden)

		env := testutil.DecodeEnvelope(t, w, nil)
		require.NotNil(t, env.Error)
		assert.Equal(t, "authorization", env.Error.Type)
	})
	assert.Equal(t, int64(1), testutil.CountRows(t, env.store, schema.PollTableName, byID))

	t.Run("Creator deletes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := testutil.MakeRequest(http.MethodDelete, "/api/polls/"+poll.ID, nil, nil)
		handler.DeletePoll(w, asUser(withParams(req, "id", poll.ID), alice.ID))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp map[string]string
		testutil.DecodeEnvelope(t, w, &resp)
		assert.Equal(t, poll.ID, resp["id"])
	})
	assert.Zero(t, testutil.CountRows(t, env.store, schema.PollTableName, byID))
	assert.Zero(t, testutil.CountRows(t, env.store, schema.PollOptionTableName, goqu.Ex{schema.PollOptionTablePollIDColName: poll.ID}))
}
