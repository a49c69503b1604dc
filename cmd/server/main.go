// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

// Package main is the entry point for the Filmopine server.
//
// Filmopine is a movie review and rating API. Users register, search a
// movie catalog backed by the OMDb API, and publish star ratings and
// written reviews. Searching syncs upstream results into a local DuckDB
// catalog, so reviews always reference a locally owned movie row.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered Koanf v2 sources (defaults, YAML file, env vars)
//  2. Logging: zerolog, JSON or console format
//  3. Database: DuckDB with schema creation and target type seeding
//  4. OMDb client: retries plus a circuit breaker around the upstream API
//  5. Catalog service: search-and-sync between OMDb and the local store
//  6. Authentication: JWT manager and bearer token middleware
//  7. HTTP server: chi router under /api/v1, Prometheus on /metrics
//
// # Configuration
//
// Key environment variables (see internal/config for the full list):
//   - OMDB_API_KEY: OMDb API key, required for catalog search
//   - JWT_SECRET: 32+ character signing secret, required in production
//   - DUCKDB_PATH: database file path (default: data/filmopine.db)
//   - HTTP_PORT: listen port (default: 8000)
//   - LOG_LEVEL, LOG_FORMAT: logging controls
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the listener stops
// accepting connections, in-flight requests get 10 seconds to finish,
// then the database closes.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/solmarita/filmopine/internal/api"
	"github.com/solmarita/filmopine/internal/auth"
	"github.com/solmarita/filmopine/internal/catalog"
	"github.com/solmarita/filmopine/internal/config"
	"github.com/solmarita/filmopine/internal/database"
	"github.com/solmarita/filmopine/internal/logging"
	"github.com/solmarita/filmopine/internal/omdb"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Msg("Starting Filmopine")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	if cfg.OMDb.APIKey == "" {
		logging.Warn().Msg("OMDB_API_KEY not set, catalog search will serve the local catalog only")
	}
	omdbClient := omdb.New(&cfg.OMDb)
	catalogSvc := catalog.New(db, omdbClient)

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}

	handler := api.NewHandler(db, catalogSvc, cfg, jwtManager)
	router := api.NewRouter(handler, auth.NewMiddleware(jwtManager), cfg)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server error")
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logging.Info().Msg("Server stopped")
}
