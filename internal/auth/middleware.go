// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/solmarita/filmopine/internal/authz"
	"github.com/solmarita/filmopine/internal/logging"
	"github.com/solmarita/filmopine/internal/models"
)

// Middleware authenticates requests from bearer tokens.
type Middleware struct {
	jwt *JWTManager
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(jwt *JWTManager) *Middleware {
	return &Middleware{jwt: jwt}
}

// Authenticate resolves an Authorization bearer token into an actor and
// stores it in the request context. Requests without a token proceed as
// anonymous; presenting an invalid or expired token is a hard 401 so
// clients learn their session is gone instead of silently degrading.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			next.ServeHTTP(w, r.WithContext(authz.ContextWithActor(r.Context(), authz.Anonymous)))
			return
		}

		claims, err := m.jwt.ValidateToken(tokenString)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("token validation failed")
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		actor := authz.Actor{
			ID:            claims.UserID,
			Username:      claims.Username,
			IsStaff:       claims.Role == "admin",
			Authenticated: true,
		}
		next.ServeHTTP(w, r.WithContext(authz.ContextWithActor(r.Context(), actor)))
	})
}

// RequireAuth rejects anonymous requests. Mount after Authenticate on
// routes that need a logged-in user.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authz.ActorFromContext(r.Context()).Authenticated {
			writeUnauthorized(w, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the token from the Authorization header.
// Returns empty string when no bearer credentials are present.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// writeUnauthorized emits a standardized 401 response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="filmopine"`)
	w.WriteHeader(http.StatusUnauthorized)

	resp := models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    "AUTHENTICATION_ERROR",
			Message: message,
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("failed to encode unauthorized response")
	}
}
