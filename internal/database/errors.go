// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

package database

import (
	"errors"
	"io"
	"strings"
)

// Sentinel errors returned by store operations. Handlers map these to
// HTTP status codes; raw DuckDB errors never reach API responses.
var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrMovieNotFound is returned when no movie matches the lookup.
	ErrMovieNotFound = errors.New("movie not found")

	// ErrReviewNotFound is returned when no review matches the lookup.
	ErrReviewNotFound = errors.New("review not found")

	// ErrTargetNotFound is returned when a review names a target entity
	// that does not exist.
	ErrTargetNotFound = errors.New("review target not found")

	// ErrInvalidTargetType is returned when a review names an
	// unregistered target type.
	ErrInvalidTargetType = errors.New("invalid target type")

	// ErrUsernameTaken is returned when a username is already registered.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken is returned when an email is already registered.
	ErrEmailTaken = errors.New("email already taken")

	// ErrNotOwner is returned when a mutation's ownership guard rejects
	// the write. The row exists but belongs to another user.
	ErrNotOwner = errors.New("review owned by another user")
)

// isUniqueViolation reports whether err is a DuckDB unique constraint
// violation. The driver does not expose typed errors for this, so the
// message text is the only signal available.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate key") ||
		strings.Contains(msg, "Constraint Error") ||
		strings.Contains(msg, "violates unique constraint")
}

// closeQuietly closes a resource and explicitly ignores any error.
// Used in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
