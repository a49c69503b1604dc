// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

// Package models defines the domain types shared between the store layer
// and the HTTP API.
package models

import (
	"time"
)

// APIResponse is the standardized response wrapper used by all HTTP
// endpoints. It provides a consistent structure for both successful and
// error responses.
//
// Status field values:
//   - "success": request completed, see Data
//   - "error": request failed, see Error
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"count": 2, "results": [...]},
//	  "metadata": {"timestamp": "2026-01-15T12:00:00Z", "query_time_ms": 4}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "rating must be between 1.0 and 5.0",
//	    "details": {"field": "rating"}
//	  },
//	  "metadata": {"timestamp": "2026-01-15T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError carries structured error details.
//
// Common codes:
//   - VALIDATION_ERROR: invalid input parameters
//   - AUTHENTICATION_ERROR: invalid or missing credentials
//   - AUTHORIZATION_ERROR: insufficient permissions
//   - NOT_FOUND: resource does not exist
//   - UPSTREAM_ERROR: catalog provider unavailable
//   - DATABASE_ERROR: query execution failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PageInfo contains offset-based pagination metadata for list responses.
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	HasMore    bool  `json:"has_more"`
}

// PagedResult wraps a page of items together with pagination metadata.
type PagedResult[T any] struct {
	Count   int64    `json:"count"`
	Results []T      `json:"results"`
	Page    PageInfo `json:"page_info"`
}
