// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pollboard/models"
	"github.com/danielhkuo/pollboard/testutil"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAccountHandler(env.deps)

	body := models.RegisterRequest{
		Email:       "Alice@Example.com",
		DisplayName: "Alice",
		Password:    "long-enough-password",
	}

	w := httptest.NewRecorder()
	handler.Register(w, testutil.MakeRequest(http.MethodPost, "/api/auth/register", body, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.AuthResponse
	env1 := testutil.DecodeEnvelope(t, w, &resp)
	assert.True(t, env1.Success)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, "Alice", resp.User.DisplayName)

	t.Run("Duplicate email", func(t *testing.T) {
		w := httptest.NewRecorder()
		body.Email = "alice@example.com"
		handler.Register(w, testutil.MakeRequest(http.MethodPost, "/api/auth/register", body, nil))
		testutil.AssertStatus(t, w, http.StatusConflict)

		env := testutil.DecodeEnvelope(t, w, nil)
		assert.False(t, env.Success)
		require.NotNil(t, env.Error)
		assert.Equal(t, "conflict", env.Error.Type)
		assert.Equal(t, "email already registered", env.Error.Message)
	})

	t.Run("Invalid email", func(t *testing.T) {
		w := httptest.NewRecorder()
		bad := body
		bad.Email = "not-an-email"
		handler.Register(w, testutil.MakeRequest(http.MethodPost, "/api/auth/register", bad, nil))
		testutil.AssertStatus(t, w, http.StatusBadRequest)

		env := testutil.DecodeEnvelope(t, w, nil)
		require.NotNil(t, env.Error)
		assert.Equal(t, "validation", env.Error.Type)
		assert.Equal(t, "email", env.Error.Field)
	})

	t.Run("Missing body", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Register(w, testutil.MakeRequest(http.MethodPost, "/api/auth/register", nil, nil))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAccountHandler(env.deps)
	user := testutil.CreateTestUser(t, env.store, "Bob")

	tests := []struct {
		name       string
		email      string
		password   string
		wantStatus int
	}{
		{"Correct password", user.Email, testutil.TestPassword, http.StatusOK},
		{"Email case ignored", "  " + user.Email + " ", testutil.TestPassword, http.StatusOK},
		{"Wrong password", user.Email, "wrong-password", http.StatusUnauthorized},
		{"Unknown email", "nobody@example.com", testutil.TestPassword, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			body := models.LoginRequest{Email: tt.email, Password: tt.password}
			handler.Login(w, testutil.MakeRequest(http.MethodPost, "/api/auth/login", body, nil))
			testutil.AssertStatus(t, w, tt.wantStatus)

			if tt.wantStatus == http.StatusOK {
				var resp models.AuthResponse
				testutil.DecodeEnvelope(t, w, &resp)
				assert.Equal(t, user.ID, resp.User.ID)
				assert.NotEmpty(t, resp.Token)
				return
			}

			env := testutil.DecodeEnvelope(t, w, nil)
			require.NotNil(t, env.Error)
			assert.Equal(t, "invalid email or password", env.Error.Message)
		})
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAccountHandler(env.deps)
	user := testutil.CreateTestUser(t, env.store, "Carol")

	t.Run("Signed in", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := asUser(testutil.MakeRequest(http.MethodGet, "/api/auth/me", nil, nil), user.ID)
		handler.Me(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var got models.User
		testutil.DecodeEnvelope(t, w, &got)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("Account gone", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := asUser(testutil.MakeRequest(http.MethodGet, "/api/auth/me", nil, nil), "deleted-user")
		handler.Me(w, req)
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}
