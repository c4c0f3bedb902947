package api

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/nimblebrain/nimbletools-core/internal/auth"
	"github.com/nimblebrain/nimbletools-core/internal/errdefs"
	"github.com/nimblebrain/nimbletools-core/internal/resources"
	"github.com/nimblebrain/nimbletools-core/internal/tenancy"
)

// workspaceBasePattern constrains the user-chosen base name. The namespace
// becomes ws-{base}-{uuid}, so the base is capped to stay inside the 63-char
// DNS label limit.
var workspaceBasePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,21}[a-z0-9])?$`)

func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	var req CreateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errdefs.Newf(errdefs.ErrInvalidInput, "malformed request body: %v", err))
		return
	}
	if !workspaceBasePattern.MatchString(req.Name) {
		writeError(w, errdefs.Newf(errdefs.ErrInvalidInput,
			"workspace name %q must be a DNS label of at most 23 characters", req.Name))
		return
	}

	meta := tenancy.Metadata{
		WorkspaceID:    uuid.NewString(),
		UserID:         user.UserID,
		OrganizationID: user.OrganizationID,
	}
	meta.WorkspaceName = tenancy.WorkspaceName(req.Name, meta.WorkspaceID)

	ns := resources.BuildWorkspaceNamespace(meta)
	if req.Description != "" {
		ns.Annotations = map[string]string{tenancy.AnnotationDescription: req.Description}
	}

	if err := s.Client.Create(r.Context(), ns); err != nil {
		err = classifyClusterError(err, "create", "workspace", meta.WorkspaceName)
		s.logOperationError(r.Context(), "create", "workspace", meta.WorkspaceName, err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, workspaceSummary(ns, meta, "created"))
}

func (s *Server) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	var nsList corev1.NamespaceList
	err := s.Client.List(r.Context(), &nsList, client.MatchingLabels{
		tenancy.LabelWorkspace:    "true",
		tenancy.LabelOrganization: user.OrganizationID,
	})
	if err != nil {
		err = classifyClusterError(err, "list", "workspaces", user.OrganizationID)
		s.logOperationError(r.Context(), "list", "workspaces", user.OrganizationID, err)
		writeError(w, err)
		return
	}

	summaries := make([]WorkspaceSummary, 0, len(nsList.Items))
	for i := range nsList.Items {
		ns := &nsList.Items[i]
		meta, err := tenancy.FromLabels(ns.Labels)
		if err != nil {
			// Invalid workspaces are skipped, never patched over with
			// fallback identities.
			s.Logger.Warn("skipping workspace with invalid labels",
				zap.String("namespace", ns.Name),
				zap.Error(err),
			)
			continue
		}
		summaries = append(summaries, workspaceSummary(ns, meta, string(ns.Status.Phase)))
	}

	writeJSON(w, http.StatusOK, WorkspaceListResponse{
		APIVersion: Version,
		Workspaces: summaries,
		Count:      len(summaries),
	})
}

func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	ns, meta, err := s.workspaceForRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workspaceSummary(ns, meta, string(ns.Status.Phase)))
}

func (s *Server) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	ns, meta, err := s.workspaceForRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	// Namespace deletion cascades every contained resource.
	if err := s.Client.Delete(r.Context(), ns); err != nil {
		err = classifyClusterError(err, "delete", "workspace", meta.WorkspaceID)
		s.logOperationError(r.Context(), "delete", "workspace", meta.WorkspaceID, err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ack{APIVersion: Version, Status: "deleting"})
}

// workspaceForRequest resolves the {workspaceID} path parameter to its
// namespace, enforcing organization scope and provider access checks.
func (s *Server) workspaceForRequest(r *http.Request) (*corev1.Namespace, tenancy.Metadata, error) {
	workspaceID := chi.URLParam(r, "workspaceID")
	user, _ := auth.UserFrom(r.Context())
	return s.lookupWorkspace(r.Context(), user, workspaceID)
}

func (s *Server) lookupWorkspace(ctx context.Context, user *auth.UserContext, workspaceID string) (*corev1.Namespace, tenancy.Metadata, error) {
	if _, err := uuid.Parse(workspaceID); err != nil {
		return nil, tenancy.Metadata{}, errdefs.Newf(errdefs.ErrInvalidInput,
			"workspace ID %q is not a UUID", workspaceID)
	}

	var nsList corev1.NamespaceList
	err := s.Client.List(ctx, &nsList, client.MatchingLabels{
		tenancy.LabelWorkspace:   "true",
		tenancy.LabelWorkspaceID: workspaceID,
	})
	if err != nil {
		err = classifyClusterError(err, "get", "workspace", workspaceID)
		s.logOperationError(ctx, "get", "workspace", workspaceID, err)
		return nil, tenancy.Metadata{}, err
	}
	if len(nsList.Items) == 0 {
		return nil, tenancy.Metadata{}, errdefs.Newf(errdefs.ErrNotFound, "workspace %q not found", workspaceID)
	}

	ns := &nsList.Items[0]
	meta, err := tenancy.FromLabels(ns.Labels)
	if err != nil {
		// Partial labels on an existing workspace are an invariant
		// violation, not a user error.
		err = errdefs.New(errdefs.ErrInvariant, "get", "workspace", workspaceID, err)
		s.logOperationError(ctx, "get", "workspace", workspaceID, err)
		return nil, tenancy.Metadata{}, err
	}

	if meta.OrganizationID != user.OrganizationID {
		return nil, tenancy.Metadata{}, errdefs.Newf(errdefs.ErrNotFound, "workspace %q not found", workspaceID)
	}

	allowed, err := s.Provider.CheckWorkspaceAccess(ctx, user, workspaceID)
	if err != nil {
		return nil, tenancy.Metadata{}, errdefs.Newf(errdefs.ErrTransient, "authentication provider unavailable")
	}
	if !allowed {
		return nil, tenancy.Metadata{}, errdefs.Newf(errdefs.ErrForbidden,
			"access to workspace %q denied", workspaceID)
	}

	return ns, meta, nil
}

func (s *Server) logOperationError(ctx context.Context, operation, resourceType, resourceID string, err error) {
	s.Logger.Error("operation failed",
		zap.String("operation", operation),
		zap.String("resource_type", resourceType),
		zap.String("resource_id", resourceID),
		zap.String("request_id", RequestIDFrom(ctx)),
		zap.Error(err),
	)
}

func workspaceSummary(ns *corev1.Namespace, meta tenancy.Metadata, status string) WorkspaceSummary {
	return WorkspaceSummary{
		APIVersion:     Version,
		WorkspaceID:    meta.WorkspaceID,
		WorkspaceName:  meta.WorkspaceName,
		OrganizationID: meta.OrganizationID,
		UserID:         meta.UserID,
		Namespace:      ns.Name,
		Status:         status,
		CreatedAt:      ns.CreationTimestamp.Time,
	}
}
