// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/solmarita/filmopine/internal/models"
	"github.com/solmarita/filmopine/internal/omdb"
)

// movieDetailPayload mirrors the movie detail JSON for decoding.
type movieDetailPayload struct {
	models.Movie
	ReviewsCount  int64   `json:"reviews_count"`
	AverageRating float64 `json:"average_rating"`
}

type moviePage struct {
	Count   int64                `json:"count"`
	Results []movieDetailPayload `json:"results"`
	Page    models.PageInfo      `json:"page_info"`
}

func inceptionResults() *omdb.SearchResult {
	return &omdb.SearchResult{
		Items: []omdb.SearchItem{
			{Title: "Inception", Year: "2010", IMDbID: "tt1375666", Type: "movie", Poster: "https://example.com/inception.jpg"},
			{Title: "Inception: The Cobol Job", Year: "2010", IMDbID: "tt5295894", Type: "movie", Poster: "N/A"},
		},
		TotalResults: 2,
	}
}

func (ts *testServer) mustUpsertMovie(t *testing.T, imdbID, title string) *models.Movie {
	t.Helper()

	movie, err := ts.db.UpsertMovie(context.Background(), models.MovieUpsert{
		IMDbID: imdbID,
		Title:  title,
		Year:   "2010",
		Type:   "movie",
	})
	if err != nil {
		t.Fatalf("failed to upsert movie %q: %v", imdbID, err)
	}
	return movie
}

func TestSearchMoviesSyncsCatalog(t *testing.T) {
	ts := newTestServer(t, &fakeSearcher{result: inceptionResults()})

	rec := ts.do(t, http.MethodGet, "/api/v1/movies/search?query=inception", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	var page moviePage
	decodeData(t, rec, &page)
	if len(page.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(page.Results))
	}
	if page.Results[0].Title != "Inception" || page.Results[0].IMDbID != "tt1375666" {
		t.Errorf("first result = %+v, upstream order must be preserved", page.Results[0])
	}

	// The search must have synced rows into the local catalog.
	movie, err := ts.db.GetMovieByIMDbID(context.Background(), "tt1375666")
	if err != nil {
		t.Fatalf("synced movie not found locally: %v", err)
	}
	if movie.Title != "Inception" {
		t.Errorf("local title = %q, want Inception", movie.Title)
	}
}

func TestSearchMoviesIdempotent(t *testing.T) {
	ts := newTestServer(t, &fakeSearcher{result: inceptionResults()})

	for i := 0; i < 3; i++ {
		rec := ts.do(t, http.MethodGet, "/api/v1/movies/search?query=inception", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("search %d: status = %d", i, rec.Code)
		}
	}

	movies, total, err := ts.db.ListMovies(context.Background(), 1, 50)
	if err != nil {
		t.Fatalf("list movies: %v", err)
	}
	if total != 2 || len(movies) != 2 {
		t.Errorf("catalog has %d movies after repeated searches, want 2", total)
	}
}

func TestSearchMoviesUpstreamMiss(t *testing.T) {
	ts := newTestServer(t, &fakeSearcher{err: &omdb.NotFoundError{Message: "Movie not found!"}})

	rec := ts.do(t, http.MethodGet, "/api/v1/movies/search?query=zzzzz", "", nil)
	env := wantError(t, rec, http.StatusNotFound, "NOT_FOUND")
	if env.Error.Message != "Movie not found!" {
		t.Errorf("message = %q, want the upstream wording", env.Error.Message)
	}
}

func TestSearchMoviesUpstreamUnavailable(t *testing.T) {
	ts := newTestServer(t, &fakeSearcher{err: omdb.ErrUnavailable})

	rec := ts.do(t, http.MethodGet, "/api/v1/movies/search?query=inception", "", nil)
	wantError(t, rec, http.StatusBadGateway, "UPSTREAM_ERROR")
}

func TestSearchMoviesEmptyQueryListsLocal(t *testing.T) {
	ts := newTestServer(t, &fakeSearcher{err: omdb.ErrUnavailable})
	ts.mustUpsertMovie(t, "tt1375666", "Inception")

	// Empty query never touches the upstream, so the broken searcher
	// must not matter.
	rec := ts.do(t, http.MethodGet, "/api/v1/movies/search", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	var page moviePage
	decodeData(t, rec, &page)
	if len(page.Results) != 1 || page.Results[0].Title != "Inception" {
		t.Errorf("results = %+v, want the local catalog", page.Results)
	}
}

func TestGetMovieIncludesAggregates(t *testing.T) {
	ts := newTestServer(t, nil)
	movie := ts.mustUpsertMovie(t, "tt1375666", "Inception")
	alice := ts.mustCreateUser(t, "alice", false)
	bob := ts.mustCreateUser(t, "bob", false)

	for i, fixture := range []struct {
		user   *models.User
		rating float64
	}{{alice, 4.0}, {bob, 5.0}} {
		review := &models.Review{
			UserID:  fixture.user.ID,
			Target:  models.TargetRef{Type: models.TargetMovie, ID: movie.ID},
			Title:   fmt.Sprintf("review %d", i),
			Content: "solid",
			Rating:  fixture.rating,
		}
		if err := ts.db.CreateReview(context.Background(), review); err != nil {
			t.Fatalf("create review: %v", err)
		}
	}

	rec := ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/movies/%d", movie.ID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	var detail movieDetailPayload
	decodeData(t, rec, &detail)
	if detail.ReviewsCount != 2 {
		t.Errorf("reviews_count = %d, want 2", detail.ReviewsCount)
	}
	if detail.AverageRating != 4.5 {
		t.Errorf("average_rating = %v, want 4.5", detail.AverageRating)
	}
}

func TestGetMovieNoReviewsAverageZero(t *testing.T) {
	ts := newTestServer(t, nil)
	movie := ts.mustUpsertMovie(t, "tt1375666", "Inception")

	rec := ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/movies/%d", movie.ID), "", nil)

	var detail movieDetailPayload
	decodeData(t, rec, &detail)
	if detail.ReviewsCount != 0 || detail.AverageRating != 0 {
		t.Errorf("aggregates = (%d, %v), want (0, 0)", detail.ReviewsCount, detail.AverageRating)
	}
}

func TestGetMovieNotFound(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/movies/9999", "", nil)
	wantError(t, rec, http.StatusNotFound, "NOT_FOUND")
}

func TestCreateMovieRequiresAdmin(t *testing.T) {
	ts := newTestServer(t, nil)
	user := ts.mustCreateUser(t, "plain", false)
	admin := ts.mustCreateUser(t, "boss", true)

	body := map[string]interface{}{
		"imdb_id": "tt0133093",
		"title":   "The Matrix",
		"year":    "1999",
		"type":    "movie",
	}

	rec := ts.do(t, http.MethodPost, "/api/v1/movies", "", body)
	wantError(t, rec, http.StatusUnauthorized, "AUTHENTICATION_ERROR")

	rec = ts.do(t, http.MethodPost, "/api/v1/movies", ts.tokenFor(t, user), body)
	wantError(t, rec, http.StatusForbidden, "AUTHORIZATION_ERROR")

	rec = ts.do(t, http.MethodPost, "/api/v1/movies", ts.tokenFor(t, admin), body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin create: status = %d, want 201\nbody: %s", rec.Code, rec.Body.String())
	}

	var detail movieDetailPayload
	decodeData(t, rec, &detail)
	if detail.IMDbID != "tt0133093" || detail.Title != "The Matrix" {
		t.Errorf("created movie = %+v", detail.Movie)
	}
}

func TestUpdateMoviePartial(t *testing.T) {
	ts := newTestServer(t, nil)
	admin := ts.mustCreateUser(t, "boss", true)
	movie := ts.mustUpsertMovie(t, "tt1375666", "Inception")

	rec := ts.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/movies/%d", movie.ID), ts.tokenFor(t, admin), map[string]interface{}{
		"year": "2011",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	var detail movieDetailPayload
	decodeData(t, rec, &detail)
	if detail.Year != "2011" {
		t.Errorf("year = %q, want 2011", detail.Year)
	}
	if detail.Title != "Inception" {
		t.Errorf("title = %q, absent fields must keep stored values", detail.Title)
	}
}

func TestDeleteMovie(t *testing.T) {
	ts := newTestServer(t, nil)
	admin := ts.mustCreateUser(t, "boss", true)
	user := ts.mustCreateUser(t, "plain", false)
	movie := ts.mustUpsertMovie(t, "tt1375666", "Inception")

	rec := ts.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/movies/%d", movie.ID), ts.tokenFor(t, user), nil)
	wantError(t, rec, http.StatusForbidden, "AUTHORIZATION_ERROR")

	rec = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/movies/%d", movie.ID), ts.tokenFor(t, admin), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204\nbody: %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/movies/%d", movie.ID), "", nil)
	wantError(t, rec, http.StatusNotFound, "NOT_FOUND")
}
