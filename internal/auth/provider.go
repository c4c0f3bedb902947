// Package auth defines the pluggable authentication provider contract and
// its loading machinery. The platform refuses to start without an explicitly
// configured provider.
package auth

import (
	"context"
)

// UserContext is the authenticated identity attached to every request.
type UserContext struct {
	// UserID is the stable user identifier.
	UserID string `json:"user_id"`

	// OrganizationID scopes every workspace operation.
	OrganizationID string `json:"organization_id"`

	// Email is informational.
	Email string `json:"email,omitempty"`
}

// Provider is the five-operation authentication contract. Implementations
// must be safe for concurrent use.
type Provider interface {
	// Initialize establishes provider resources. Called once at startup;
	// an error is fatal.
	Initialize(ctx context.Context) error

	// Shutdown releases provider resources. Best-effort.
	Shutdown(ctx context.Context) error

	// ValidateToken resolves an opaque token to a user context. A nil
	// result with nil error means the token is invalid; a non-nil error
	// means validation itself failed.
	ValidateToken(ctx context.Context, token string) (*UserContext, error)

	// CheckWorkspaceAccess reports whether the user may act on the
	// workspace.
	CheckWorkspaceAccess(ctx context.Context, user *UserContext, workspaceID string) (bool, error)

	// CheckPermission reports whether the user may perform action on
	// resource.
	CheckPermission(ctx context.Context, user *UserContext, resource, action string) (bool, error)
}

type contextKey int

const userContextKey contextKey = iota

// WithUser attaches the authenticated user to the context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFrom retrieves the authenticated user from the context.
func UserFrom(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok && user != nil
}
