// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

package models

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestUserRole(t *testing.T) {
	t.Parallel()

	staff := &User{IsStaff: true}
	if got := staff.Role(); got != "admin" {
		t.Errorf("staff Role() = %q, want admin", got)
	}

	regular := &User{}
	if got := regular.Role(); got != "user" {
		t.Errorf("regular Role() = %q, want user", got)
	}
}

func TestUserPasswordHashNeverSerialized(t *testing.T) {
	t.Parallel()

	u := User{Username: "ada", PasswordHash: "$2a$12$secret"}
	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Errorf("password hash leaked into JSON: %s", data)
	}
}

func TestTargetTypeValid(t *testing.T) {
	t.Parallel()

	if !TargetMovie.Valid() {
		t.Error("movie should be a valid target type")
	}
	if TargetType("book").Valid() {
		t.Error("unregistered target type should be invalid")
	}
	if TargetType("").Valid() {
		t.Error("empty target type should be invalid")
	}
}

func TestTargetRefString(t *testing.T) {
	t.Parallel()

	ref := TargetRef{Type: TargetMovie, ID: 42}
	if got := ref.String(); got != "movie/42" {
		t.Errorf("String() = %q, want movie/42", got)
	}
}

func TestReviewAggregateAverageOrZero(t *testing.T) {
	t.Parallel()

	empty := ReviewAggregate{Count: 0, Average: nil}
	if got := empty.AverageOrZero(); got != 0 {
		t.Errorf("empty aggregate AverageOrZero() = %v, want 0", got)
	}

	avg := 4.5
	filled := ReviewAggregate{Count: 3, Average: &avg}
	if got := filled.AverageOrZero(); got != 4.5 {
		t.Errorf("AverageOrZero() = %v, want 4.5", got)
	}
}
