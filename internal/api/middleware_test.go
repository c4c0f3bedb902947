package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimblebrain/nimbletools-core/internal/auth"
)

// deadlineProbe records how much time remains on the request context when
// the provider is consulted, which happens inside the route's deadline
// middleware.
type deadlineProbe struct {
	auth.Provider
	remaining time.Duration
}

func (p *deadlineProbe) CheckWorkspaceAccess(ctx context.Context, user *auth.UserContext, workspaceID string) (bool, error) {
	if dl, ok := ctx.Deadline(); ok {
		p.remaining = time.Until(dl)
	}
	return p.Provider.CheckWorkspaceAccess(ctx, user, workspaceID)
}

func TestRouteDeadlines(t *testing.T) {
	s, _ := newTestServer(t, workspaceNamespace(), existingServer())
	probe := &deadlineProbe{Provider: s.Provider}
	s.Provider = probe

	// Standard routes run under the default deadline.
	rec := doRequest(t, s, http.MethodGet, serversPath()+"/weather", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Greater(t, probe.remaining, requestTimeout-5*time.Second)
	assert.LessOrEqual(t, probe.remaining, requestTimeout)

	// Log queries get the wider deadline; it must not be capped by the
	// default applying somewhere above it.
	rec = doRequest(t, s, http.MethodGet, logsPath(""), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Greater(t, probe.remaining, requestTimeout,
		"log route deadline capped at the default request timeout")
	assert.LessOrEqual(t, probe.remaining, logRequestTimeout)
}

func TestDeadline_SetsContextDeadline(t *testing.T) {
	var remaining time.Duration
	handler := deadline(requestTimeout)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if dl, ok := r.Context().Deadline(); ok {
			remaining = time.Until(dl)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Greater(t, remaining, requestTimeout-time.Second)
	assert.LessOrEqual(t, remaining, requestTimeout)
}
