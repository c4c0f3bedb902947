package mcp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/nimblebrain/nimbletools-core/internal/auth"
)

// tokenKey is the context key carrying the request's bearer token.
type tokenKey struct{}

// WithRequestToken is the HTTP context func wired into the MCP server. It
// lifts the bearer token off the incoming request so tool handlers can
// resolve the caller through the platform auth provider.
func WithRequestToken(ctx context.Context, r *http.Request) context.Context {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		if token := strings.TrimSpace(header[7:]); token != "" {
			return context.WithValue(ctx, tokenKey{}, token)
		}
	}
	return ctx
}

func requestToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// authenticate resolves the request's bearer token through the configured
// auth provider. Mutating tools require a valid caller; the resolved
// identity is recorded for attribution.
func (s *Server) authenticate(ctx context.Context) (*auth.UserContext, error) {
	token := requestToken(ctx)
	if token == "" {
		return nil, fmt.Errorf("no bearer token provided")
	}

	user, err := s.provider.ValidateToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("validating token: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("invalid token")
	}
	return user, nil
}
