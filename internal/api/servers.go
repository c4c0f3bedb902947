package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	appsv1 "k8s.io/api/apps/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
	"github.com/nimblebrain/nimbletools-core/internal/errdefs"
	"github.com/nimblebrain/nimbletools-core/internal/registry"
	"github.com/nimblebrain/nimbletools-core/internal/resources"
	"github.com/nimblebrain/nimbletools-core/internal/tenancy"
)

func (s *Server) handleDeployServer(w http.ResponseWriter, r *http.Request) {
	_, meta, err := s.workspaceForRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var doc registry.ServerDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, &registry.TranslationError{
			Code:   registry.CodeInvalidServerDefinition,
			Detail: fmt.Sprintf("malformed server.json: %v", err),
		})
		return
	}

	svc, err := registry.Translate(&doc, meta, s.ClusterArch)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.Client.Create(r.Context(), svc); err != nil {
		err = classifyClusterError(err, "create", "server", svc.Name)
		s.logOperationError(r.Context(), "create", "server", svc.Name, err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, serverSummary(svc, meta))
}

func (s *Server) handleListServers(w http.ResponseWriter, r *http.Request) {
	_, meta, err := s.workspaceForRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var list v1alpha1.MCPServiceList
	err = s.Client.List(r.Context(), &list,
		client.InNamespace(meta.Namespace()),
		client.MatchingLabels{tenancy.LabelService: "true"},
	)
	if err != nil {
		err = classifyClusterError(err, "list", "servers", meta.WorkspaceID)
		s.logOperationError(r.Context(), "list", "servers", meta.WorkspaceID, err)
		writeError(w, err)
		return
	}

	summaries := make([]ServerSummary, 0, len(list.Items))
	for i := range list.Items {
		summaries = append(summaries, serverSummary(&list.Items[i], meta))
	}

	writeJSON(w, http.StatusOK, ServerListResponse{
		APIVersion: Version,
		Servers:    summaries,
		Count:      len(summaries),
	})
}

func (s *Server) handleGetServer(w http.ResponseWriter, r *http.Request) {
	svc, meta, err := s.serverForRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, serverSummary(svc, meta))
}

func (s *Server) handlePatchServer(w http.ResponseWriter, r *http.Request) {
	svc, meta, err := s.serverForRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req PatchServerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errdefs.Newf(errdefs.ErrInvalidInput, "malformed request body: %v", err))
		return
	}
	if req.Replicas != nil && *req.Replicas < 0 {
		writeError(w, errdefs.Newf(errdefs.ErrInvalidInput, "replicas must not be negative, got %d", *req.Replicas))
		return
	}

	applyPatch(svc, &req)

	if err := resources.ValidateSpec(svc); err != nil {
		writeError(w, errdefs.Newf(errdefs.ErrInvalidInput, "%v", err))
		return
	}

	if err := s.Client.Update(r.Context(), svc); err != nil {
		err = classifyClusterError(err, "update", "server", svc.Name)
		s.logOperationError(r.Context(), "update", "server", svc.Name, err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, serverSummary(svc, meta))
}

func (s *Server) handleDeleteServer(w http.ResponseWriter, r *http.Request) {
	svc, _, err := s.serverForRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.Client.Delete(r.Context(), svc); err != nil {
		err = classifyClusterError(err, "delete", "server", svc.Name)
		s.logOperationError(r.Context(), "delete", "server", svc.Name, err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ack{APIVersion: Version, Status: "deleting"})
}

// handleRestartServer stamps the pod template to trigger a rolling restart,
// leaving the MCPService spec untouched.
func (s *Server) handleRestartServer(w http.ResponseWriter, r *http.Request) {
	svc, _, err := s.serverForRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var dep appsv1.Deployment
	err = s.Client.Get(r.Context(), types.NamespacedName{
		Name:      resources.DeploymentName(svc),
		Namespace: svc.Namespace,
	}, &dep)
	if err != nil {
		if apierrors.IsNotFound(err) {
			writeError(w, errdefs.Newf(errdefs.ErrConflict,
				"server %q has no workload to restart yet", svc.Name))
			return
		}
		err = classifyClusterError(err, "restart", "server", svc.Name)
		s.logOperationError(r.Context(), "restart", "server", svc.Name, err)
		writeError(w, err)
		return
	}

	patched := dep.DeepCopy()
	if patched.Spec.Template.Annotations == nil {
		patched.Spec.Template.Annotations = map[string]string{}
	}
	patched.Spec.Template.Annotations[tenancy.AnnotationRestartedAt] = time.Now().UTC().Format(time.RFC3339)

	if err := s.Client.Patch(r.Context(), patched, client.MergeFrom(&dep)); err != nil {
		err = classifyClusterError(err, "restart", "server", svc.Name)
		s.logOperationError(r.Context(), "restart", "server", svc.Name, err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ack{APIVersion: Version, Status: "restarting"})
}

// serverForRequest resolves {workspaceID}/{serverName} to the MCPService,
// after the workspace-level tenancy checks.
func (s *Server) serverForRequest(r *http.Request) (*v1alpha1.MCPService, tenancy.Metadata, error) {
	_, meta, err := s.workspaceForRequest(r)
	if err != nil {
		return nil, tenancy.Metadata{}, err
	}

	name := chi.URLParam(r, "serverName")

	var svc v1alpha1.MCPService
	err = s.Client.Get(r.Context(), types.NamespacedName{Name: name, Namespace: meta.Namespace()}, &svc)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, tenancy.Metadata{}, errdefs.Newf(errdefs.ErrNotFound,
				"server %q not found in workspace %q", name, meta.WorkspaceID)
		}
		err = classifyClusterError(err, "get", "server", name)
		s.logOperationError(r.Context(), "get", "server", name, err)
		return nil, tenancy.Metadata{}, err
	}

	return &svc, meta, nil
}

func applyPatch(svc *v1alpha1.MCPService, req *PatchServerRequest) {
	if req.Replicas != nil {
		svc.Spec.Replicas = req.Replicas
	}
	if req.Scaling != nil {
		if svc.Spec.Scaling == nil {
			svc.Spec.Scaling = &v1alpha1.ScalingSpec{}
		}
		if req.Scaling.MinReplicas != nil {
			svc.Spec.Scaling.MinReplicas = req.Scaling.MinReplicas
		}
		if req.Scaling.MaxReplicas != nil {
			svc.Spec.Scaling.MaxReplicas = *req.Scaling.MaxReplicas
		}
		if req.Scaling.TargetConcurrency != nil {
			svc.Spec.Scaling.TargetConcurrency = *req.Scaling.TargetConcurrency
		}
		if req.Scaling.ScaleDownDelaySeconds != nil {
			svc.Spec.Scaling.ScaleDownDelaySeconds = req.Scaling.ScaleDownDelaySeconds
		}
	}
	if req.Environment != nil {
		if svc.Spec.Environment == nil {
			svc.Spec.Environment = map[string]string{}
		}
		for key, value := range req.Environment {
			if value == "" {
				delete(svc.Spec.Environment, key)
				continue
			}
			svc.Spec.Environment[key] = value
		}
	}
}

func serverSummary(svc *v1alpha1.MCPService, meta tenancy.Metadata) ServerSummary {
	summary := ServerSummary{
		APIVersion:  Version,
		Name:        svc.Name,
		WorkspaceID: meta.WorkspaceID,
		Image:       svc.Spec.Container.Image,
		Phase:       string(svc.Status.Phase),
		Replicas:    resources.DesiredReplicas(svc),
		Endpoint:    svc.Status.ServiceEndpoint,
	}
	if svc.Status.DeploymentStatus != nil {
		summary.ReadyReplicas = svc.Status.DeploymentStatus.ReadyReplicas
	}
	if !svc.CreationTimestamp.IsZero() {
		created := svc.CreationTimestamp.Time
		summary.CreatedAt = &created
	}
	return summary
}
