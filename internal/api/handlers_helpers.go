// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/solmarita/filmopine/internal/database"
	"github.com/solmarita/filmopine/internal/logging"
	"github.com/solmarita/filmopine/internal/models"
	"github.com/solmarita/filmopine/internal/omdb"
	"github.com/solmarita/filmopine/internal/validation"
)

// maxRequestBodySize caps JSON request bodies at 1 MiB.
const maxRequestBodySize = 1 << 20

// sanitizeLogValue strips control characters so attacker-supplied input
// cannot forge log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON writes the standard envelope with proper headers.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

// respondSuccess writes a success envelope with query timing metadata.
func respondSuccess(w http.ResponseWriter, status int, started time.Time, data interface{}) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(started).Milliseconds(),
		},
	})
}

// respondError writes an error envelope. The underlying error, if any,
// is logged but never exposed to the client.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", code).Str("error", sanitizeLogValue(err.Error())).Msg("API error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondFieldError writes a 400 validation error pinned to one field.
func respondFieldError(w http.ResponseWriter, field, message string) {
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: &models.APIError{
			Code:    "VALIDATION_ERROR",
			Message: message,
			Details: map[string]interface{}{"field": field},
		},
	})
}

// respondStoreError maps store and upstream errors onto the HTTP
// contract. Unrecognized errors become opaque 500s.
func respondStoreError(w http.ResponseWriter, err error) {
	var notFound *omdb.NotFoundError
	switch {
	case errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrMovieNotFound),
		errors.Is(err, database.ErrReviewNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	case errors.Is(err, database.ErrTargetNotFound):
		respondFieldError(w, "target", "review target does not exist")
	case errors.Is(err, database.ErrInvalidTargetType):
		respondFieldError(w, "target", "unknown target type")
	case errors.Is(err, database.ErrUsernameTaken):
		respondFieldError(w, "username", "username is already taken")
	case errors.Is(err, database.ErrEmailTaken):
		respondFieldError(w, "email", "email is already registered")
	case errors.Is(err, database.ErrNotOwner):
		respondError(w, http.StatusForbidden, "AUTHORIZATION_ERROR", "you do not have permission to modify this resource", nil)
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", notFound.Message, nil)
	case errors.Is(err, omdb.ErrUnavailable):
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "catalog provider unavailable", err)
	default:
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "an internal error occurred", err)
	}
}

// decodeJSON reads and decodes a request body into v. Unknown fields are
// rejected so typos surface as errors instead of silently dropped input.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// validateRequest validates a request struct and converts failures to
// the envelope error format.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// respondValidation writes a 400 from a request validation failure.
func respondValidation(w http.ResponseWriter, apiErr *models.APIError) {
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: apiErr,
	})
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// pagination parses page/page_size query parameters, clamping page_size
// to the configured maximum. maxSize of 0 falls back to the global cap.
func (h *Handler) pagination(r *http.Request, maxSize int) (page, pageSize int) {
	if maxSize <= 0 {
		maxSize = h.config.API.MaxPageSize
	}

	page = getIntParam(r, "page", 1)
	if page < 1 {
		page = 1
	}

	pageSize = getIntParam(r, "page_size", h.config.API.DefaultPageSize)
	if pageSize < 1 {
		pageSize = h.config.API.DefaultPageSize
	}
	if pageSize > maxSize {
		pageSize = maxSize
	}

	return page, pageSize
}

// pagedResult assembles the list envelope payload.
func pagedResult[T any](items []T, total int64, page, pageSize int) models.PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	return models.PagedResult[T]{
		Count:   total,
		Results: items,
		Page: models.PageInfo{
			Page:       page,
			PageSize:   pageSize,
			TotalCount: total,
			HasMore:    int64(page*pageSize) < total,
		},
	}
}

// urlParamID parses a numeric path parameter.
func urlParamID(r *http.Request, key string) (int64, error) {
	raw := chi.URLParam(r, key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return id, nil
}
