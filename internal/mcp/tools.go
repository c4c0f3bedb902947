package mcp

import (
	"context"
	"encoding/json"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	mcpgolang "github.com/mark3labs/mcp-go/mcp"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
	"github.com/nimblebrain/nimbletools-core/internal/resources"
	"github.com/nimblebrain/nimbletools-core/internal/tenancy"
)

// handleListWorkspaces lists workspace namespaces with their identity labels.
func (s *Server) handleListWorkspaces(ctx context.Context, _ mcpgolang.CallToolRequest) (*mcpgolang.CallToolResult, error) {
	var nsList corev1.NamespaceList
	if err := s.client.List(ctx, &nsList, client.MatchingLabels{
		tenancy.LabelWorkspace: "true",
	}); err != nil {
		return mcpError("failed to list workspaces: " + err.Error()), nil
	}

	var workspaces []map[string]any
	for i := range nsList.Items {
		ns := &nsList.Items[i]
		meta, err := tenancy.FromLabels(ns.Labels)
		if err != nil {
			// Invalid workspaces are reported, not silently dropped: this
			// is an operator-facing diagnostic surface.
			workspaces = append(workspaces, map[string]any{
				"namespace": ns.Name,
				"invalid":   err.Error(),
			})
			continue
		}
		workspaces = append(workspaces, map[string]any{
			"namespace":       ns.Name,
			"workspace_id":    meta.WorkspaceID,
			"workspace_name":  meta.WorkspaceName,
			"organization_id": meta.OrganizationID,
			"age":             time.Since(ns.CreationTimestamp.Time).Truncate(time.Second).String(),
		})
	}

	return mcpSuccess(map[string]any{
		"count":      len(workspaces),
		"workspaces": workspaces,
	}), nil
}

// handleListServers lists MCPServices, optionally scoped to one workspace.
func (s *Server) handleListServers(ctx context.Context, request mcpgolang.CallToolRequest) (*mcpgolang.CallToolResult, error) {
	args := request.GetArguments()
	workspaceID, _ := args["workspace_id"].(string)

	opts := []client.ListOption{
		client.MatchingLabels{tenancy.LabelService: "true"},
	}
	if workspaceID != "" {
		opts = []client.ListOption{client.MatchingLabels{
			tenancy.LabelService:     "true",
			tenancy.LabelWorkspaceID: workspaceID,
		}}
	}

	var list v1alpha1.MCPServiceList
	if err := s.client.List(ctx, &list, opts...); err != nil {
		return mcpError("failed to list servers: " + err.Error()), nil
	}

	var servers []map[string]any
	for _, svc := range list.Items {
		servers = append(servers, map[string]any{
			"name":         svc.Name,
			"namespace":    svc.Namespace,
			"workspace_id": svc.Labels[tenancy.LabelWorkspaceID],
			"phase":        string(svc.Status.Phase),
			"endpoint":     svc.Status.ServiceEndpoint,
			"age":          time.Since(svc.CreationTimestamp.Time).Truncate(time.Second).String(),
		})
	}

	return mcpSuccess(map[string]any{
		"count":   len(servers),
		"servers": servers,
	}), nil
}

// handleGetServer returns spec and status details of one MCPService.
func (s *Server) handleGetServer(ctx context.Context, request mcpgolang.CallToolRequest) (*mcpgolang.CallToolResult, error) {
	svc, errResult := s.resolveServer(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	details := map[string]any{
		"name":         svc.Name,
		"namespace":    svc.Namespace,
		"workspace_id": svc.Labels[tenancy.LabelWorkspaceID],
		"image":        svc.Spec.Container.Image,
		"runtime":      svc.Spec.Runtime,
		"replicas":     resources.DesiredReplicas(svc),
		"phase":        string(svc.Status.Phase),
		"endpoint":     svc.Status.ServiceEndpoint,
	}
	if svc.Status.DeploymentStatus != nil {
		details["ready_replicas"] = svc.Status.DeploymentStatus.ReadyReplicas
	}
	if len(svc.Status.Conditions) > 0 {
		var conditions []map[string]any
		for _, cond := range svc.Status.Conditions {
			conditions = append(conditions, map[string]any{
				"type":    cond.Type,
				"status":  string(cond.Status),
				"reason":  cond.Reason,
				"message": cond.Message,
			})
		}
		details["conditions"] = conditions
	}

	return mcpSuccess(details), nil
}

// handleRestartServer stamps the workload's pod template, triggering a
// rolling restart. Restart is the one mutating tool on this surface, so the
// caller must resolve through the auth provider and is recorded for
// attribution.
func (s *Server) handleRestartServer(ctx context.Context, request mcpgolang.CallToolRequest) (*mcpgolang.CallToolResult, error) {
	user, err := s.authenticate(ctx)
	if err != nil {
		return mcpError("authentication required: " + err.Error()), nil
	}

	svc, errResult := s.resolveServer(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	var dep appsv1.Deployment
	if err := s.client.Get(ctx, types.NamespacedName{
		Name:      resources.DeploymentName(svc),
		Namespace: svc.Namespace,
	}, &dep); err != nil {
		return mcpError("failed to fetch workload: " + err.Error()), nil
	}

	patched := dep.DeepCopy()
	if patched.Spec.Template.Annotations == nil {
		patched.Spec.Template.Annotations = map[string]string{}
	}
	patched.Spec.Template.Annotations[tenancy.AnnotationRestartedAt] = time.Now().UTC().Format(time.RFC3339)

	if err := s.client.Patch(ctx, patched, client.MergeFrom(&dep)); err != nil {
		return mcpError("failed to restart workload: " + err.Error()), nil
	}

	requestedBy := user.UserID
	if user.Email != "" {
		requestedBy = user.Email
	}

	return mcpSuccess(map[string]any{
		"name":         svc.Name,
		"status":       "restarting",
		"requested_by": requestedBy,
	}), nil
}

// resolveServer fetches the MCPService named by workspace_id + name.
func (s *Server) resolveServer(ctx context.Context, request mcpgolang.CallToolRequest) (*v1alpha1.MCPService, *mcpgolang.CallToolResult) {
	args := request.GetArguments()

	workspaceID, _ := args["workspace_id"].(string)
	name, _ := args["name"].(string)
	if workspaceID == "" || name == "" {
		return nil, mcpError("workspace_id and name are required")
	}

	var list v1alpha1.MCPServiceList
	if err := s.client.List(ctx, &list, client.MatchingLabels{
		tenancy.LabelWorkspaceID: workspaceID,
		tenancy.LabelServer:      name,
	}); err != nil {
		if apierrors.IsNotFound(err) {
			return nil, mcpError("server '" + name + "' not found")
		}
		return nil, mcpError("failed to fetch server: " + err.Error())
	}
	if len(list.Items) == 0 {
		return nil, mcpError("server '" + name + "' not found in workspace " + workspaceID)
	}

	return &list.Items[0], nil
}

func mcpSuccess(payload map[string]any) *mcpgolang.CallToolResult {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcpError("failed to marshal result: " + err.Error())
	}
	return mcpgolang.NewToolResultText(string(data))
}

func mcpError(message string) *mcpgolang.CallToolResult {
	return mcpgolang.NewToolResultError(message)
}
