// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

package authz

import "context"

// contextKey is a private type for authz context keys.
type contextKey string

// actorContextKey stores the acting user in the request context.
const actorContextKey contextKey = "actor"

// ContextWithActor returns a context carrying the acting user.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext returns the acting user stored in the context, or
// Anonymous when authentication middleware has not run.
func ActorFromContext(ctx context.Context) Actor {
	if actor, ok := ctx.Value(actorContextKey).(Actor); ok {
		return actor
	}
	return Anonymous
}
