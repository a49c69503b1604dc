// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/solmarita/filmopine/internal/auth"
	"github.com/solmarita/filmopine/internal/catalog"
	"github.com/solmarita/filmopine/internal/config"
	"github.com/solmarita/filmopine/internal/database"
	"github.com/solmarita/filmopine/internal/models"
	"github.com/solmarita/filmopine/internal/omdb"
)

// testDBSemaphore serializes in-memory database creation. Parallel
// DuckDB CGO connections can hang under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

// fakeSearcher returns canned upstream results or errors.
type fakeSearcher struct {
	result *omdb.SearchResult
	err    error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, page int) (*omdb.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// testServer bundles everything a handler test needs.
type testServer struct {
	handler http.Handler
	db      *database.DB
	jwt     *auth.JWTManager
	cfg     *config.Config
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:        "127.0.0.1",
			Port:        8000,
			Timeout:     5 * time.Second,
			Environment: "development",
		},
		Database: config.DatabaseConfig{Path: ":memory:", MaxMemory: "1GB"},
		API: config.APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
			ReviewPageSize:  10,
		},
		Security: config.SecurityConfig{
			JWTSecret:  "test-secret-test-secret-test-secret!",
			TokenTTL:   time.Hour,
			BcryptCost: 10,
		},
		Logging: config.LoggingConfig{Level: "error", Format: "json"},
	}
}

// newTestServer builds the full stack against an in-memory database and
// a fake upstream searcher.
func newTestServer(t *testing.T, searcher catalog.Searcher) *testServer {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := testConfig()

	db, err := database.New(&cfg.Database)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("failed to create JWT manager: %v", err)
	}

	if searcher == nil {
		searcher = &fakeSearcher{err: omdb.ErrUnavailable}
	}

	handler := NewHandler(db, catalog.New(db, searcher), cfg, jwtManager)
	router := NewRouter(handler, auth.NewMiddleware(jwtManager), cfg)

	return &testServer{
		handler: router.Setup(),
		db:      db,
		jwt:     jwtManager,
		cfg:     cfg,
	}
}

// mustCreateUser inserts a user fixture with the password "password123"
// and returns it.
func (ts *testServer) mustCreateUser(t *testing.T, username string, staff bool) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("password123", ts.cfg.Security.BcryptCost)
	if err != nil {
		t.Fatalf("failed to hash fixture password: %v", err)
	}

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		IsStaff:      staff,
	}
	if err := ts.db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %q: %v", username, err)
	}
	return user
}

// tokenFor issues an access token for a fixture user.
func (ts *testServer) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := ts.jwt.GenerateToken(user.ID, user.Username, user.Role())
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

// do performs a request against the test server. A non-empty token is
// sent as a bearer credential; a non-nil body is JSON-encoded.
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors the response wrapper with raw data for per-test
// decoding.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

// decodeEnvelope parses the standard response envelope.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return env
}

// decodeData parses the data portion of a successful response.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	env := decodeEnvelope(t, rec)
	if env.Status != "success" {
		t.Fatalf("expected success envelope, got %q\nbody: %s", env.Status, rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("failed to decode response data: %v", err)
	}
}

// wantError asserts an error response with the given status and code.
func wantError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) envelope {
	t.Helper()

	if rec.Code != status {
		t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, status, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil {
		t.Fatalf("expected error payload\nbody: %s", rec.Body.String())
	}
	if env.Error.Code != code {
		t.Errorf("error code = %q, want %q", env.Error.Code, code)
	}
	return env
}
