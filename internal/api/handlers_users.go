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
)

// requireSelfOrAdmin enforces the self-or-admin policy for account
// access. Returns false after writing the error response.
func requireSelfOrAdmin(w http.ResponseWriter, r *http.Request, subjectID int64) bool {
	actor := authz.ActorFromContext(r.Context())
	if authz.SelfOrAdmin(actor, subjectID) {
		return true
	}
	if !actor.Authenticated {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "authentication required", nil)
		return false
	}
	respondError(w, http.StatusForbidden, "AUTHORIZATION_ERROR", "you do not have permission to access this account", nil)
	return false
}

// ListUsers handles GET /api/v1/users. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if !authz.AdminOnly(authz.ActorFromContext(r.Context())) {
		respondError(w, http.StatusForbidden, "AUTHORIZATION_ERROR", "administrator access required", nil)
		return
	}

	page, pageSize := h.pagination(r, 0)
	users, total, err := h.db.ListUsers(r.Context(), page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, started, pagedResult(users, total, page, pageSize))
}

// GetUser handles GET /api/v1/users/{id}. Self or admin.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	id, err := urlParamID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if !requireSelfOrAdmin(w, r, id) {
		return
	}

	user, err := h.db.GetUserByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, started, user)
}

// UpdateUser handles PUT /api/v1/users/{id}. Self or admin. Username
// and staff status are immutable through this endpoint.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	id, err := urlParamID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if !requireSelfOrAdmin(w, r, id) {
		return
	}

	var req UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	user, err := h.db.GetUserByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if req.Email != "" {
		user.Email = req.Email
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	user.PasswordHash = ""
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password, h.config.Security.BcryptCost)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to process password", err)
			return
		}
		user.PasswordHash = hash
	}

	if err := h.db.UpdateUser(r.Context(), user); err != nil {
		respondStoreError(w, err)
		return
	}

	updated, err := h.db.GetUserByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, started, updated)
}

// DeleteUser handles DELETE /api/v1/users/{id}. Self or admin. The
// user's reviews are removed in the same transaction.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if !requireSelfOrAdmin(w, r, id) {
		return
	}

	if err := h.db.DeleteUser(r.Context(), id); err != nil {
		respondStoreError(w, err)
		return
	}

	logging.Ctx(r.Context()).Info().Int64("user_id", id).Msg("user deleted")
	w.WriteHeader(http.StatusNoContent)
}
