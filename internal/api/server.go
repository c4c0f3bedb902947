// Package api implements the control-plane HTTP surface: workspace and
// server lifecycle, log aggregation, and auth introspection. Handlers are
// stateless; the cluster API is the single source of truth.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"k8s.io/client-go/kubernetes"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/nimblebrain/nimbletools-core/internal/auth"
)

// Server carries the shared dependencies of all handlers. All fields are
// read-only after construction; handlers share no other mutable state.
type Server struct {
	// Client is the controller-runtime client for typed resources.
	Client client.Client

	// Clientset is the typed clientset, needed for pod log streaming.
	Clientset kubernetes.Interface

	// Provider is the loaded authentication provider.
	Provider auth.Provider

	// Logger is the process logger.
	Logger *zap.Logger

	// PlatformDomain is the ingress host for deployed servers.
	PlatformDomain string

	// ClusterArch is the target architecture for package selection.
	ClusterArch string
}

// Router assembles the HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(s.recovery)
	r.Use(metricsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Deadlines are applied per route, never stacked: nesting WithTimeout
	// can only shorten, so an outer default would cap the wider log-query
	// deadline at the default.
	std := deadline(requestTimeout)
	long := deadline(logRequestTimeout)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.With(std).Get("/auth", s.handleAuth)

		r.Route("/v1/workspaces", func(r chi.Router) {
			r.With(std).Post("/", s.handleCreateWorkspace)
			r.With(std).Get("/", s.handleListWorkspaces)

			r.Route("/{workspaceID}", func(r chi.Router) {
				r.With(std).Get("/", s.handleGetWorkspace)
				r.With(std).Delete("/", s.handleDeleteWorkspace)

				r.With(std).Get("/secrets", s.handleListSecrets)
				r.With(std).Put("/secrets", s.handleSetSecret)
				r.With(std).Delete("/secrets/{key}", s.handleDeleteSecret)

				r.Route("/servers", func(r chi.Router) {
					r.With(std).Post("/", s.handleDeployServer)
					r.With(std).Get("/", s.handleListServers)

					r.Route("/{serverName}", func(r chi.Router) {
						r.With(std).Get("/", s.handleGetServer)
						r.With(std).Patch("/", s.handlePatchServer)
						r.With(std).Delete("/", s.handleDeleteServer)
						r.With(std).Post("/restart", s.handleRestartServer)
						r.With(long).Get("/logs", s.handleServerLogs)
					})
				})
			})
		})
	})

	return r
}

// handleHealth is pure liveness: it never consults downstream systems.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{APIVersion: Version, Status: "ok"})
}

// handleAuth echoes the provider-resolved user context.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())
	writeJSON(w, http.StatusOK, AuthResponse{
		APIVersion:     Version,
		UserID:         user.UserID,
		OrganizationID: user.OrganizationID,
		Email:          user.Email,
	})
}
