// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

// Package api provides the HTTP surface: chi routing, request
// validation, and handlers for auth, movies, reviews, and users.
//
// Handler methods are split across files by resource:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response envelope and parameter helpers
//   - handlers_auth.go: register, login, current user
//   - handlers_movies.go: catalog search plus movie CRUD
//   - handlers_reviews.go: review CRUD, search, and per-target listings
//   - handlers_users.go: user administration
//   - handlers_health.go: liveness, readiness, API info
package api

import (
	"time"

	"github.com/solmarita/filmopine/internal/auth"
	"github.com/solmarita/filmopine/internal/catalog"
	"github.com/solmarita/filmopine/internal/config"
	"github.com/solmarita/filmopine/internal/database"
)

// Handler holds the dependencies shared by all API handlers.
type Handler struct {
	db         *database.DB
	catalog    *catalog.Service
	config     *config.Config
	jwtManager *auth.JWTManager
	startTime  time.Time
}

// NewHandler creates an API handler.
func NewHandler(db *database.DB, catalogSvc *catalog.Service, cfg *config.Config, jwtManager *auth.JWTManager) *Handler {
	return &Handler{
		db:         db,
		catalog:    catalogSvc,
		config:     cfg,
		jwtManager: jwtManager,
		startTime:  time.Now(),
	}
}
