// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

package api

import (
	"net/http"
	"time"

	"github.com/solmarita/filmopine/internal/auth"
	"github.com/solmarita/filmopine/internal/authz"
	"github.com/solmarita/filmopine/internal/logging"
	"github.com/solmarita/filmopine/internal/metrics"
	"github.com/solmarita/filmopine/internal/models"
)

// tokenResponse is the payload returned by login and register.
type tokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Register handles POST /api/v1/auth/register. New accounts are always
// regular users; staff status is granted out of band.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	hash, err := auth.HashPassword(req.Password, h.config.Security.BcryptCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to process password", err)
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	if err := h.db.CreateUser(r.Context(), user); err != nil {
		respondStoreError(w, err)
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Username, user.Role())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to issue token", err)
		return
	}

	metrics.UsersRegistered.Inc()
	logging.Ctx(r.Context()).Info().
		Str("username", sanitizeLogValue(user.Username)).
		Int64("user_id", user.ID).
		Msg("user registered")

	respondSuccess(w, http.StatusCreated, started, tokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.config.Security.TokenTTL),
		User:      user,
	})
}

// Login handles POST /api/v1/auth/login. Unknown usernames and wrong
// passwords return the same error so accounts cannot be enumerated.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	user, err := h.db.GetUserByUsername(r.Context(), req.Username)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		logging.Ctx(r.Context()).Debug().
			Str("username", sanitizeLogValue(req.Username)).
			Msg("login failed")
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "invalid username or password", nil)
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Username, user.Role())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to issue token", err)
		return
	}

	respondSuccess(w, http.StatusOK, started, tokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.config.Security.TokenTTL),
		User:      user,
	})
}

// Me handles GET /api/v1/auth/me, returning the authenticated caller's
// account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	actor := authz.ActorFromContext(r.Context())
	user, err := h.db.GetUserByID(r.Context(), actor.ID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, started, user)
}
