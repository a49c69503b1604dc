// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/solmarita/filmopine/internal/authz"
	"github.com/solmarita/filmopine/internal/logging"
	"github.com/solmarita/filmopine/internal/metrics"
	"github.com/solmarita/filmopine/internal/models"
	"github.com/solmarita/filmopine/internal/omdb"
)

// requireCatalogWrite enforces the admin-or-read-only policy for movie
// mutations. Returns false after writing the error response.
func requireCatalogWrite(w http.ResponseWriter, r *http.Request, action authz.Action) bool {
	actor := authz.ActorFromContext(r.Context())
	if authz.AdminOrReadOnly(actor, action) {
		return true
	}
	if !actor.Authenticated {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "authentication required", nil)
		return false
	}
	respondError(w, http.StatusForbidden, "AUTHORIZATION_ERROR", "only administrators may modify the catalog", nil)
	return false
}

// movieDetail enriches a movie with its review aggregates.
func (h *Handler) movieDetail(r *http.Request, movie *models.Movie) (*models.MovieDetail, error) {
	agg, err := h.db.AggregateForTarget(r.Context(), models.TargetRef{Type: models.TargetMovie, ID: movie.ID})
	if err != nil {
		return nil, err
	}
	return &models.MovieDetail{
		Movie:         *movie,
		ReviewsCount:  agg.Count,
		AverageRating: agg.AverageOrZero(),
	}, nil
}

// movieDetails enriches a page of movies with review aggregates.
func (h *Handler) movieDetails(r *http.Request, movies []*models.Movie) ([]*models.MovieDetail, error) {
	details := make([]*models.MovieDetail, 0, len(movies))
	for _, movie := range movies {
		detail, err := h.movieDetail(r, movie)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// SearchMovies handles GET /api/v1/movies/search. A non-empty query
// syncs page 1 of upstream results into the local catalog and serves
// the synced rows; an empty query lists the local catalog.
func (h *Handler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	page, pageSize := h.pagination(r, 0)
	req := MovieSearchRequest{
		Query:    r.URL.Query().Get("query"),
		Page:     page,
		PageSize: pageSize,
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	movies, total, err := h.catalog.SearchOrList(r.Context(), req.Query, req.Page, req.PageSize)
	if err != nil {
		outcome := "error"
		var notFound *omdb.NotFoundError
		switch {
		case errors.As(err, &notFound):
			outcome = "miss"
		case errors.Is(err, omdb.ErrUnavailable):
			outcome = "unavailable"
		}
		metrics.RecordCatalogSearch(outcome, time.Since(started), 0)
		respondStoreError(w, err)
		return
	}

	metrics.RecordCatalogSearch("hit", time.Since(started), len(movies))

	details, err := h.movieDetails(r, movies)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, started, pagedResult(details, total, req.Page, req.PageSize))
}

// ListMovies handles GET /api/v1/movies.
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	page, pageSize := h.pagination(r, 0)
	movies, total, err := h.db.ListMovies(r.Context(), page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	details, err := h.movieDetails(r, movies)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, started, pagedResult(details, total, page, pageSize))
}

// CreateMovie handles POST /api/v1/movies, the admin path for adding a
// catalog entry directly. Reuses the upsert so re-posting a known IMDb
// ID updates rather than duplicates.
func (h *Handler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if !requireCatalogWrite(w, r, authz.ActionCreate) {
		return
	}

	var req CreateMovieRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	movie, err := h.db.UpsertMovie(r.Context(), models.MovieUpsert{
		IMDbID: req.IMDbID,
		Title:  req.Title,
		Year:   req.Year,
		Type:   req.Type,
		Poster: req.Poster,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("imdb_id", sanitizeLogValue(movie.IMDbID)).
		Int64("movie_id", movie.ID).
		Msg("movie created")

	detail, err := h.movieDetail(r, movie)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, started, detail)
}

// GetMovie handles GET /api/v1/movies/{id}.
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	id, err := urlParamID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	movie, err := h.db.GetMovieByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	detail, err := h.movieDetail(r, movie)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, started, detail)
}

// UpdateMovie handles PUT and PATCH /api/v1/movies/{id}. Absent fields
// keep their stored values; the IMDb ID never changes.
func (h *Handler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if !requireCatalogWrite(w, r, authz.ActionUpdate) {
		return
	}

	id, err := urlParamID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	var req UpdateMovieRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	movie, err := h.db.GetMovieByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if req.Title != "" {
		movie.Title = req.Title
	}
	if req.Year != "" {
		movie.Year = req.Year
	}
	if req.Type != "" {
		movie.Type = req.Type
	}
	if req.Poster != "" {
		movie.Poster = req.Poster
	}

	if err := h.db.UpdateMovie(r.Context(), movie); err != nil {
		respondStoreError(w, err)
		return
	}

	detail, err := h.movieDetail(r, movie)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, started, detail)
}

// DeleteMovie handles DELETE /api/v1/movies/{id}. Reviews attached to
// the movie are kept; their resolved title goes empty.
func (h *Handler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	if !requireCatalogWrite(w, r, authz.ActionDelete) {
		return
	}

	id, err := urlParamID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	if err := h.db.DeleteMovie(r.Context(), id); err != nil {
		respondStoreError(w, err)
		return
	}

	logging.Ctx(r.Context()).Info().Int64("movie_id", id).Msg("movie deleted")
	w.WriteHeader(http.StatusNoContent)
}
