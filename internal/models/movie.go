// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

package models

import "time"

// Movie is a catalog entry mirrored from the upstream provider.
// IMDbID is the natural key; repeated searches update the same row.
type Movie struct {
	ID        int64     `json:"id"`
	IMDbID    string    `json:"imdb_id"`
	Title     string    `json:"title"`
	Year      string    `json:"year"`
	Type      string    `json:"type"`
	Poster    string    `json:"poster"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MovieDetail is a movie enriched with review aggregates for API responses.
// AverageRating serializes as 0 when the movie has no reviews.
type MovieDetail struct {
	Movie
	ReviewsCount  int64   `json:"reviews_count"`
	AverageRating float64 `json:"average_rating"`
}

// MovieUpsert carries the fields written during a catalog sync. The store
// inserts a new row or updates the existing row with the same IMDbID.
type MovieUpsert struct {
	IMDbID string
	Title  string
	Year   string
	Type   string
	Poster string
}
