// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/solmarita/filmopine/internal/models"
)

func TestRegisterIssuesToken(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username":   "alice",
		"email":      "alice@example.com",
		"password":   "correcthorse",
		"first_name": "Alice",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp tokenResponse
	decodeData(t, rec, &resp)
	if resp.Token == "" {
		t.Error("expected a token in the register response")
	}
	if resp.User == nil || resp.User.Username != "alice" {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
	if resp.User.IsStaff {
		t.Error("newly registered users must not be staff")
	}

	claims, err := ts.jwt.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("issued token failed validation: %v", err)
	}
	if claims.Username != "alice" || claims.Role != "user" {
		t.Errorf("claims = %+v, want alice/user", claims)
	}
}

func TestRegisterPasswordNeverEchoed(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "correcthorse",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	body := rec.Body.String()
	for _, forbidden := range []string{"correcthorse", "password_hash", "$2a$"} {
		if strings.Contains(body, forbidden) {
			t.Errorf("response body leaks %q", forbidden)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.mustCreateUser(t, "carol", false)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": "carol2",
		"email":    "carol@example.com",
		"password": "correcthorse",
	})
	env := wantError(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")
	if field, _ := env.Error.Details["field"].(string); field != "email" {
		t.Errorf("details.field = %q, want email", field)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.mustCreateUser(t, "dave", false)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": "dave",
		"email":    "other@example.com",
		"password": "correcthorse",
	})
	env := wantError(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")
	if field, _ := env.Error.Details["field"].(string); field != "username" {
		t.Errorf("details.field = %q, want username", field)
	}
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	ts := newTestServer(t, nil)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"short password", map[string]interface{}{"username": "eve", "email": "eve@example.com", "password": "short"}},
		{"bad email", map[string]interface{}{"username": "eve", "email": "not-an-email", "password": "correcthorse"}},
		{"missing username", map[string]interface{}{"email": "eve@example.com", "password": "correcthorse"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", tc.body)
			wantError(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")
		})
	}
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.mustCreateUser(t, "frank", false)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "frank",
		"password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	var resp tokenResponse
	decodeData(t, rec, &resp)
	if resp.Token == "" {
		t.Error("expected a token in the login response")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.mustCreateUser(t, "grace", false)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "grace",
		"password": "wrong-password",
	})
	wantError(t, rec, http.StatusUnauthorized, "AUTHENTICATION_ERROR")
}

func TestLoginUnknownUserSameError(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "nobody",
		"password": "password123",
	})
	env := wantError(t, rec, http.StatusUnauthorized, "AUTHENTICATION_ERROR")
	if env.Error.Message != "invalid username or password" {
		t.Errorf("message = %q, accounts must not be enumerable", env.Error.Message)
	}
}

func TestMe(t *testing.T) {
	ts := newTestServer(t, nil)
	user := ts.mustCreateUser(t, "henry", false)

	rec := ts.do(t, http.MethodGet, "/api/v1/auth/me", ts.tokenFor(t, user), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	var got models.User
	decodeData(t, rec, &got)
	if got.ID != user.ID || got.Username != "henry" {
		t.Errorf("me = %+v, want user %d", got, user.ID)
	}
}

func TestMeRequiresAuth(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	wantError(t, rec, http.StatusUnauthorized, "AUTHENTICATION_ERROR")
}

func TestInvalidTokenRejected(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/auth/me", "not-a-token", nil)
	wantError(t, rec, http.StatusUnauthorized, "AUTHENTICATION_ERROR")
	if got := rec.Header().Get("WWW-Authenticate"); got == "" {
		t.Error("expected WWW-Authenticate challenge header")
	}
}
