// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

// Request body structs with go-playground/validator tags. Handlers decode
// the JSON body into one of these and pass it through validateRequest
// before touching the store.
//
// The custom "rating" tag enforces one-decimal ratings in [1.0, 5.0].
package api

// RegisterRequest is the body for POST /api/v1/auth/register.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64,alphanum"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"max=64"`
	LastName  string `json:"last_name" validate:"max=64"`
}

// LoginRequest is the body for POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest is the body for PUT /api/v1/users/{id}. Zero-value
// fields keep their stored values; Password, when present, is re-hashed.
type UpdateUserRequest struct {
	Email     string `json:"email" validate:"omitempty,email,max=254"`
	Password  string `json:"password" validate:"omitempty,min=8,max=128"`
	FirstName string `json:"first_name" validate:"max=64"`
	LastName  string `json:"last_name" validate:"max=64"`
}

// TargetRequest names the entity a review attaches to.
type TargetRequest struct {
	Type string `json:"type" validate:"required"`
	ID   int64  `json:"id" validate:"required,min=1"`
}

// CreateReviewRequest is the body for POST /api/v1/reviews. The review
// owner is always the authenticated caller, never taken from the body.
type CreateReviewRequest struct {
	Target  TargetRequest `json:"target" validate:"required"`
	Title   string        `json:"title" validate:"required,max=255"`
	Content string        `json:"content" validate:"required,max=10000"`
	Rating  float64       `json:"rating" validate:"required,rating"`
}

// UpdateReviewRequest is the body for PUT/PATCH /api/v1/reviews/{id}.
// The target association is immutable after creation.
type UpdateReviewRequest struct {
	Title   string   `json:"title" validate:"omitempty,max=255"`
	Content string   `json:"content" validate:"omitempty,max=10000"`
	Rating  *float64 `json:"rating" validate:"omitempty,rating"`
}

// CreateMovieRequest is the body for POST /api/v1/movies, the admin
// path for adding a catalog entry without an upstream search.
type CreateMovieRequest struct {
	IMDbID string `json:"imdb_id" validate:"required,min=2,max=20"`
	Title  string `json:"title" validate:"required,max=500"`
	Year   string `json:"year" validate:"omitempty,max=16"`
	Type   string `json:"type" validate:"omitempty,oneof=movie series episode"`
	Poster string `json:"poster" validate:"omitempty,url,max=2048"`
}

// UpdateMovieRequest is the body for PUT/PATCH /api/v1/movies/{id}.
// The IMDb ID is the natural key and cannot change.
type UpdateMovieRequest struct {
	Title  string `json:"title" validate:"omitempty,max=500"`
	Year   string `json:"year" validate:"omitempty,max=16"`
	Type   string `json:"type" validate:"omitempty,oneof=movie series episode"`
	Poster string `json:"poster" validate:"omitempty,url,max=2048"`
}

// MovieSearchRequest carries validated query parameters for
// GET /api/v1/movies/search.
type MovieSearchRequest struct {
	Query    string `validate:"max=200"`
	Page     int    `validate:"min=1"`
	PageSize int    `validate:"min=1,max=100"`
}

// ReviewSearchRequest carries validated query parameters for
// GET /api/v1/reviews/search.
type ReviewSearchRequest struct {
	MovieTitle string   `validate:"max=500"`
	Rating     *float64 `validate:"omitempty,rating"`
}
