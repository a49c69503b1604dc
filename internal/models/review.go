// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TargetType identifies the kind of entity a review is attached to.
// Reviews associate to their subject through a (type, id) pair rather than
// a direct foreign key, so new reviewable types can be added without
// changing the reviews table.
type TargetType string

// TargetMovie is the only reviewable type currently registered.
const TargetMovie TargetType = "movie"

// Valid reports whether t names a registered target type.
func (t TargetType) Valid() bool {
	return t == TargetMovie
}

// TargetRef addresses one reviewable entity.
type TargetRef struct {
	Type TargetType `json:"type"`
	ID   int64      `json:"id"`
}

func (r TargetRef) String() string {
	return fmt.Sprintf("%s/%d", r.Type, r.ID)
}

// Review is a user's rating and commentary on a target entity.
//
// Rating is a one-decimal value in [1.0, 5.0]. MovieTitle is resolved at
// read time from the target and is empty when the target row no longer
// exists.
type Review struct {
	ID         uuid.UUID `json:"id"`
	UserID     int64     `json:"-"`
	Username   string    `json:"user"`
	Target     TargetRef `json:"target"`
	MovieTitle string    `json:"movie_title,omitempty"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Rating     float64   `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ReviewAggregate summarizes the reviews attached to one target.
// Average is nil when Count is zero.
type ReviewAggregate struct {
	Count   int64
	Average *float64
}

// AverageOrZero returns the average rating, or 0 when there are no reviews.
// This is the serialization contract for movie detail responses.
func (a ReviewAggregate) AverageOrZero() float64 {
	if a.Average == nil {
		return 0
	}
	return *a.Average
}
