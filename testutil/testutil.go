// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/pollboard/auth"
	"github.com/danielhkuo/pollboard/cliparse"
	"github.com/danielhkuo/pollboard/db"
	"github.com/danielhkuo/pollboard/models"
	"github.com/danielhkuo/pollboard/schema"
)

// TestPassword is the password of every user made by CreateTestUser.
const TestPassword = "correct-horse-battery"

// SetupTestDB creates a fresh SQLite database in a temporary directory
// and applies the real migrations.
func SetupTestDB(t *testing.T) *db.DB {
	t.Helper()

	cfg := GetTestConfig()
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "pollboard.db")

	store, err := db.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return store
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                  3318,
		DatabaseType:          cliparse.DatabaseSQLite,
		DatabaseURL:           ":memory:",
		JWTSecret:             "test-jwt-secret",
		TokenTTL:              time.Hour,
		ShareTokenSalt:        "test-share-salt",
		IPHashSalt:            "test-ip-salt",
		PublicURL:             "http://localhost:3318",
		LogLevel:              "error",
		LogFormat:             "text",
		MaxConcurrentRequests: 100,
	}
}

// CreateTestUser inserts an account with TestPassword.
func CreateTestUser(t *testing.T, store *db.DB, displayName string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := models.User{
		ID:          uuid.NewString(),
		Email:       strings.ToLower(strings.ReplaceAll(displayName, " ", ".")) + "-" + uuid.NewString()[:8] + "@example.com",
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}

	_, err = store.Insert(schema.UserTable).Rows(goqu.Record{
		schema.UserTableIDColName:           user.ID,
		schema.UserTableEmailColName:        user.Email,
		schema.UserTableDisplayNameColName:  user.DisplayName,
		schema.UserTablePasswordHashColName: string(hash),
		schema.UserTableCreatedAtColName:    user.CreatedAt,
	}).Executor().ExecContext(context.Background())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// PollFixture describes a poll for CreateTestPoll. Zero value is an
// active single-vote poll with options "Red" and "Blue".
type PollFixture struct {
	Title              string
	Options            []string
	AllowMultipleVotes bool
	IsAnonymous        bool
	Inactive           bool
	ExpiresAt          *time.Time
}

// CreateTestPoll inserts a poll and its options directly, so fixtures
// may hold states the API refuses to create, such as a past expiry.
func CreateTestPoll(t *testing.T, store *db.DB, cfg cliparse.Config, creatorID string, fx PollFixture) (models.Poll, []models.PollOption) {
	t.Helper()

	if fx.Title == "" {
		fx.Title = "Test Poll"
	}
	if fx.Options == nil {
		fx.Options = []string{"Red", "Blue"}
	}

	pollID, err := auth.GenerateID(16)
	if err != nil {
		t.Fatalf("Failed to generate poll ID: %v", err)
	}

	now := time.Now().UTC()
	createdAt := now
	if fx.ExpiresAt != nil && !fx.ExpiresAt.After(createdAt) {
		createdAt = fx.ExpiresAt.Add(-time.Hour).UTC()
	}

	poll := models.Poll{
		ID:                 pollID,
		Title:              fx.Title,
		Description:        "A test poll",
		CreatorID:          creatorID,
		ShareToken:         auth.GenerateShareToken(pollID, cfg.ShareTokenSalt),
		IsActive:           !fx.Inactive,
		AllowMultipleVotes: fx.AllowMultipleVotes,
		IsAnonymous:        fx.IsAnonymous,
		CreatedAt:          createdAt,
		UpdatedAt:          createdAt,
	}

	var expiresAt interface{}
	if fx.ExpiresAt != nil {
		e := fx.ExpiresAt.UTC()
		poll.ExpiresAt = &e
		expiresAt = e
	}

	ctx := context.Background()
	_, err = store.Insert(schema.PollTable).Rows(goqu.Record{
		schema.PollTableIDColName:                 poll.ID,
		schema.PollTableTitleColName:              poll.Title,
		schema.PollTableDescriptionColName:        poll.Description,
		schema.PollTableCreatorIDColName:          poll.CreatorID,
		schema.PollTableShareTokenColName:         poll.ShareToken,
		schema.PollTableIsActiveColName:           poll.IsActive,
		schema.PollTableAllowMultipleVotesColName: poll.AllowMultipleVotes,
		schema.PollTableIsAnonymousColName:        poll.IsAnonymous,
		schema.PollTableExpiresAtColName:          expiresAt,
		schema.PollTableCreatedAtColName:          poll.CreatedAt,
		schema.PollTableUpdatedAtColName:          poll.UpdatedAt,
	}).Executor().ExecContext(ctx)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	options := make([]models.PollOption, 0, len(fx.Options))
	for i, text := range fx.Options {
		opt := models.PollOption{ID: uuid.NewString(), PollID: poll.ID, Text: text, OrderIndex: i}
		_, err := store.Insert(schema.PollOptionTable).Rows(goqu.Record{
			schema.PollOptionTableIDColName:         opt.ID,
			schema.PollOptionTablePollIDColName:     opt.PollID,
			schema.PollOptionTableTextColName:       opt.Text,
			schema.PollOptionTableOrderIndexColName: opt.OrderIndex,
		}).Executor().ExecContext(ctx)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
		options = append(options, opt)
	}

	return poll, options
}

// CreateTestThread inserts a discussion thread. parentID may be empty.
func CreateTestThread(t *testing.T, store *db.DB, pollID, authorID, parentID, content string) string {
	t.Helper()

	threadID := uuid.NewString()
	var parent interface{}
	if parentID != "" {
		parent = parentID
	}

	now := time.Now().UTC()
	_, err := store.Insert(schema.ThreadTable).Rows(goqu.Record{
		schema.ThreadTableIDColName:        threadID,
		schema.ThreadTablePollIDColName:    pollID,
		schema.ThreadTableParentIDColName:  parent,
		schema.ThreadTableAuthorIDColName:  authorID,
		schema.ThreadTableContentColName:   content,
		schema.ThreadTableIsDeletedColName: false,
		schema.ThreadTableCreatedAtColName: now,
		schema.ThreadTableUpdatedAtColName: now,
	}).Executor().ExecContext(context.Background())
	if err != nil {
		t.Fatalf("Failed to create test thread: %v", err)
	}

	return threadID
}

// CountRows counts the rows of table matching where. An empty where
// counts every row.
func CountRows(t *testing.T, store *db.DB, table string, where goqu.Ex) int64 {
	t.Helper()

	query := store.From(table)
	if len(where) > 0 {
		query = query.Where(where)
	}
	n, err := query.CountContext(context.Background())
	if err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// AuthHeader returns an Authorization header carrying a valid token for
// userID.
func AuthHeader(t *testing.T, cfg cliparse.Config, userID string) map[string]string {
	t.Helper()

	token, _, err := auth.IssueToken(auth.NewTokenAuth(cfg.JWTSecret), userID, cfg.TokenTTL)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFormRequest creates a form-encoded HTTP test request
func MakeFormRequest(method, path string, form url.Values, headers map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// Envelope is the decoded form of a response envelope.
type Envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   *models.ErrorBody `json:"error"`
}

// DecodeEnvelope decodes the response envelope and, when data is not
// nil, its data payload.
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data interface{}) Envelope {
	t.Helper()

	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode envelope: %v. Body: %s", err, w.Body.String())
	}

	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("Failed to decode envelope data: %v", err)
		}
	}

	return env
}
