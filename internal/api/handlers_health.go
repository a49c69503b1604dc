// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

package api

import (
	"net/http"
	"time"
)

// Version is the server version reported by the info endpoint.
const Version = "1.0.0"

// Info handles GET /api/v1, describing the API for discovery.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	respondSuccess(w, http.StatusOK, started, map[string]interface{}{
		"name":    "filmopine",
		"version": Version,
		"resources": map[string]string{
			"auth":    "/api/v1/auth",
			"movies":  "/api/v1/movies",
			"reviews": "/api/v1/reviews",
			"users":   "/api/v1/users",
			"health":  "/api/v1/health",
		},
	})
}

// HealthLive handles GET /api/v1/health/live. Always 200 while the
// process is serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	respondSuccess(w, http.StatusOK, started, map[string]interface{}{
		"status":         "alive",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}

// HealthReady handles GET /api/v1/health/ready. Ready means the
// database answers a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if err := h.db.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "DATABASE_ERROR", "database not reachable", err)
		return
	}

	respondSuccess(w, http.StatusOK, started, map[string]interface{}{
		"status":   "ready",
		"database": "connected",
	})
}
