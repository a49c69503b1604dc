// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/solmarita/filmopine/internal/authz"
	"github.com/solmarita/filmopine/internal/database"
	"github.com/solmarita/filmopine/internal/logging"
	"github.com/solmarita/filmopine/internal/metrics"
	"github.com/solmarita/filmopine/internal/models"
)

// urlParamUUID parses a UUID path parameter.
func urlParamUUID(r *http.Request, key string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, key))
}

// ownerGuard returns the SQL ownership guard for a mutation: nil for
// staff (no restriction), the actor's ID otherwise. The store adds it
// to the WHERE clause so the permission check and the write are one
// conditional statement.
func ownerGuard(actor authz.Actor) *int64 {
	if actor.IsStaff {
		return nil
	}
	id := actor.ID
	return &id
}

// ListReviews handles GET /api/v1/reviews.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	page, pageSize := h.pagination(r, h.config.API.ReviewPageSize)
	reviews, total, err := h.db.ListReviews(r.Context(), page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, started, pagedResult(reviews, total, page, pageSize))
}

// CreateReview handles POST /api/v1/reviews. The review owner is the
// authenticated caller regardless of anything in the body.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	actor := authz.ActorFromContext(r.Context())
	if !actor.Authenticated {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "authentication required", nil)
		return
	}

	var req CreateReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	review := &models.Review{
		UserID: actor.ID,
		Target: models.TargetRef{
			Type: models.TargetType(req.Target.Type),
			ID:   req.Target.ID,
		},
		Title:   req.Title,
		Content: req.Content,
		Rating:  req.Rating,
	}
	if err := h.db.CreateReview(r.Context(), review); err != nil {
		respondStoreError(w, err)
		return
	}

	metrics.ReviewsCreated.Inc()
	logging.Ctx(r.Context()).Info().
		Str("review_id", review.ID.String()).
		Str("target", review.Target.String()).
		Int64("user_id", actor.ID).
		Msg("review created")

	created, err := h.db.GetReviewByID(r.Context(), review.ID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, started, created)
}

// GetReview handles GET /api/v1/reviews/{id}.
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	id, err := urlParamUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid review id", nil)
		return
	}

	review, err := h.db.GetReviewByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, started, review)
}

// UpdateReview handles PUT and PATCH /api/v1/reviews/{id}. Only the
// owner or an admin may modify a review; the target association never
// changes.
func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	id, err := urlParamUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid review id", nil)
		return
	}

	var req UpdateReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	actor := authz.ActorFromContext(r.Context())
	review, err := h.db.GetReviewByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if !authz.OwnerOrAdmin(actor, authz.ActionUpdate, review.UserID) {
		if !actor.Authenticated {
			respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "authentication required", nil)
			return
		}
		respondError(w, http.StatusForbidden, "AUTHORIZATION_ERROR", "you do not have permission to modify this review", nil)
		return
	}

	if req.Title != "" {
		review.Title = req.Title
	}
	if req.Content != "" {
		review.Content = req.Content
	}
	if req.Rating != nil {
		review.Rating = *req.Rating
	}

	if err := h.db.UpdateReview(r.Context(), review, ownerGuard(actor)); err != nil {
		respondStoreError(w, err)
		return
	}

	updated, err := h.db.GetReviewByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, started, updated)
}

// DeleteReview handles DELETE /api/v1/reviews/{id}.
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid review id", nil)
		return
	}

	actor := authz.ActorFromContext(r.Context())
	review, err := h.db.GetReviewByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if !authz.OwnerOrAdmin(actor, authz.ActionDelete, review.UserID) {
		if !actor.Authenticated {
			respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "authentication required", nil)
			return
		}
		respondError(w, http.StatusForbidden, "AUTHORIZATION_ERROR", "you do not have permission to delete this review", nil)
		return
	}

	if err := h.db.DeleteReview(r.Context(), id, ownerGuard(actor)); err != nil {
		respondStoreError(w, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("review_id", id.String()).
		Int64("user_id", actor.ID).
		Msg("review deleted")
	w.WriteHeader(http.StatusNoContent)
}

// SearchReviews handles GET /api/v1/reviews/search. Filters combine
// with AND: case-insensitive substring on the resolved movie title,
// exact rating match, or both.
func (h *Handler) SearchReviews(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	req := ReviewSearchRequest{
		MovieTitle: r.URL.Query().Get("movie_title"),
	}
	if raw := r.URL.Query().Get("rating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondFieldError(w, "rating", "rating must be a number")
			return
		}
		req.Rating = &rating
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	page, pageSize := h.pagination(r, h.config.API.ReviewPageSize)
	filter := database.ReviewSearchFilter{
		MovieTitle: req.MovieTitle,
		Rating:     req.Rating,
	}
	reviews, total, err := h.db.SearchReviews(r.Context(), filter, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, started, pagedResult(reviews, total, page, pageSize))
}

// MyReviews handles GET /api/v1/reviews/me.
func (h *Handler) MyReviews(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	actor := authz.ActorFromContext(r.Context())
	page, pageSize := h.pagination(r, h.config.API.ReviewPageSize)
	reviews, total, err := h.db.ListReviewsByUser(r.Context(), actor.ID, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, started, pagedResult(reviews, total, page, pageSize))
}

// ListMovieReviews handles GET /api/v1/movies/{id}/reviews. The movie
// must exist; its reviews paginate newest first.
func (h *Handler) ListMovieReviews(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	movieID, err := urlParamID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if _, err := h.db.GetMovieByID(r.Context(), movieID); err != nil {
		respondStoreError(w, err)
		return
	}

	ref := models.TargetRef{Type: models.TargetMovie, ID: movieID}
	page, pageSize := h.pagination(r, h.config.API.ReviewPageSize)
	reviews, total, err := h.db.ListReviewsForTarget(r.Context(), ref, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, started, pagedResult(reviews, total, page, pageSize))
}

// GetMovieReview handles GET /api/v1/movies/{id}/reviews/{review_id}.
// The review must belong to the movie in the path; a review attached to
// a different target is a 404, not a leak.
func (h *Handler) GetMovieReview(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	movieID, err := urlParamID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	reviewID, err := urlParamUUID(r, "review_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid review id", nil)
		return
	}

	ref := models.TargetRef{Type: models.TargetMovie, ID: movieID}
	review, err := h.db.GetReviewForTarget(r.Context(), ref, reviewID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, started, review)
}
