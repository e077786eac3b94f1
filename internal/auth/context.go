// Package auth provides credential hashing and session token utilities.
package auth

import (
	"context"

	"github.com/slatepad/slatepad/internal/model"
)

// Caller holds the identity asserted by a verified session token.
// It is injected into the request context by the auth middleware and
// consumed by every downstream authorization check.
type Caller struct {
	UserID     string
	TenantID   string
	Role       model.Role
	TenantSlug string
}

// IsAdmin returns true if the caller holds the admin role.
func (c *Caller) IsAdmin() bool {
	return c.Role == model.RoleAdmin
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// callerContextKey is the context key for storing the Caller.
const callerContextKey contextKey = "caller"

// ContextWithCaller adds a Caller to the context.
func ContextWithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}

// CallerFromContext retrieves the Caller from the context.
// Returns nil if not present.
func CallerFromContext(ctx context.Context) *Caller {
	caller, ok := ctx.Value(callerContextKey).(*Caller)
	if !ok {
		return nil
	}
	return caller
}

// MustCallerFromContext retrieves the Caller from the context.
// Panics if not present (use only when auth middleware has run).
func MustCallerFromContext(ctx context.Context) *Caller {
	caller := CallerFromContext(ctx)
	if caller == nil {
		panic("caller not found - ensure auth middleware is applied")
	}
	return caller
}
