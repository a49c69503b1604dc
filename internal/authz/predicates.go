// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

// Package authz implements access control as pure predicates over the
// acting user, the action, and the resource. Handlers evaluate these
// before mutating anything; ownership checks on mutations are
// additionally repeated inside the store's WHERE clause so a decision
// cannot go stale between check and write.
package authz

// Action classifies what a request wants to do with a resource.
type Action int

const (
	// ActionRead covers GET and HEAD requests.
	ActionRead Action = iota
	// ActionCreate covers POST requests creating a resource.
	ActionCreate
	// ActionUpdate covers PUT and PATCH requests.
	ActionUpdate
	// ActionDelete covers DELETE requests.
	ActionDelete
)

// IsWrite reports whether the action mutates state.
func (a Action) IsWrite() bool {
	return a != ActionRead
}

// Actor is the authenticated principal a request acts as. The zero
// value is an anonymous visitor.
type Actor struct {
	ID            int64
	Username      string
	IsStaff       bool
	Authenticated bool
}

// Anonymous is the actor for unauthenticated requests.
var Anonymous = Actor{}

// AdminOrReadOnly grants reads to everyone and writes to staff only.
// Governs the movie catalog: anyone may browse, only admins curate.
func AdminOrReadOnly(actor Actor, action Action) bool {
	if !action.IsWrite() {
		return true
	}
	return actor.Authenticated && actor.IsStaff
}

// OwnerOrAdmin grants reads to everyone and writes to the resource
// owner or staff. Governs reviews: anyone may read a review, only its
// author or an admin may change it.
func OwnerOrAdmin(actor Actor, action Action, ownerID int64) bool {
	if !action.IsWrite() {
		return true
	}
	if !actor.Authenticated {
		return false
	}
	return actor.IsStaff || actor.ID == ownerID
}

// AdminOnly grants any action to staff only. Governs user
// administration.
func AdminOnly(actor Actor) bool {
	return actor.Authenticated && actor.IsStaff
}

// SelfOrAdmin grants access to the subject user or staff. Governs
// reading and editing a user account.
func SelfOrAdmin(actor Actor, subjectID int64) bool {
	if !actor.Authenticated {
		return false
	}
	return actor.IsStaff || actor.ID == subjectID
}
