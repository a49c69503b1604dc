// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

// Package catalog implements movie catalog sync against the upstream
// provider. Searching is also ingestion: every upstream result is
// upserted into the local catalog keyed on IMDb ID, so the same search
// run twice leaves the catalog unchanged apart from refreshed fields.
package catalog

import (
	"context"
	"fmt"

	"github.com/solmarita/filmopine/internal/database"
	"github.com/solmarita/filmopine/internal/logging"
	"github.com/solmarita/filmopine/internal/models"
	"github.com/solmarita/filmopine/internal/omdb"
)

// Searcher is the upstream lookup the service depends on. *omdb.Client
// satisfies it; tests substitute a fake.
type Searcher interface {
	Search(ctx context.Context, query string, page int) (*omdb.SearchResult, error)
}

// Service coordinates upstream search and local persistence.
type Service struct {
	db     *database.DB
	client Searcher
}

// New creates a catalog service.
func New(db *database.DB, client Searcher) *Service {
	return &Service{db: db, client: client}
}

// SearchOrList returns movies for a catalog query.
//
// With an empty query it pages through the local catalog. With a
// non-empty query it fetches matches from the upstream provider, upserts
// each into the local catalog, and returns the requested page of the
// freshly synced rows in upstream order.
//
// Upstream failure modes pass through unchanged: *omdb.NotFoundError for
// a clean no-match answer, an error wrapping omdb.ErrUnavailable when
// the provider is down. Local rows are never silently substituted for a
// failed upstream call.
func (s *Service) SearchOrList(ctx context.Context, query string, page, pageSize int) ([]*models.Movie, int64, error) {
	if query == "" {
		return s.db.ListMovies(ctx, page, pageSize)
	}

	result, err := s.client.Search(ctx, query, 1)
	if err != nil {
		return nil, 0, err
	}

	upserts := make([]models.MovieUpsert, 0, len(result.Items))
	for _, item := range result.Items {
		if item.IMDbID == "" {
			continue
		}
		upserts = append(upserts, models.MovieUpsert{
			IMDbID: item.IMDbID,
			Title:  item.Title,
			Year:   item.Year,
			Type:   item.Type,
			Poster: item.Poster,
		})
	}

	movies, err := s.db.UpsertMovies(ctx, upserts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to sync catalog results: %w", err)
	}

	logging.Ctx(ctx).Debug().
		Str("query", query).
		Int("synced", len(movies)).
		Msg("catalog search synced")

	total := int64(len(movies))
	start := (page - 1) * pageSize
	if start >= len(movies) {
		return []*models.Movie{}, total, nil
	}
	end := start + pageSize
	if end > len(movies) {
		end = len(movies)
	}
	return movies[start:end], total, nil
}
