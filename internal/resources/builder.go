// Package resources provides pure functions that build the Kubernetes child
// resources for an MCPService. Builders take the parent object plus resolved
// external data (cluster architecture, workspace secret keys) and return
// complete desired objects; they perform no I/O.
package resources

import (
	"strconv"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
	"github.com/nimblebrain/nimbletools-core/internal/tenancy"
)

const (
	// WorkspaceSecretName is the per-workspace secret holding user-supplied
	// key/value pairs. Written by the control plane, read by the operator.
	WorkspaceSecretName = "workspace-secrets"

	// ManagedBy identifies resources created by the operator.
	ManagedBy = "mcp-operator"

	// DefaultHealthPath is used when routing.healthPath is unset.
	DefaultHealthPath = "/health"

	// DefaultMCPPath is used when routing.mcpPath is unset.
	DefaultMCPPath = "/mcp"
)

// ServiceLabels returns the full label set for resources owned by the
// MCPService: the four tenancy identity labels carried by the parent, the
// service marker, and the server name.
func ServiceLabels(svc *v1alpha1.MCPService) map[string]string {
	labels := map[string]string{
		"app":                          svc.Name,
		"app.kubernetes.io/managed-by": ManagedBy,
		tenancy.LabelService:           "true",
		tenancy.LabelServer:            svc.Name,
	}
	for _, key := range []string{
		tenancy.LabelWorkspaceID,
		tenancy.LabelWorkspaceName,
		tenancy.LabelUserID,
		tenancy.LabelOrganization,
	} {
		if v := svc.Labels[key]; v != "" {
			labels[key] = v
		}
	}
	return labels
}

// SelectorLabels returns the immutable pod selector labels. Kept minimal
// because selectors cannot be updated in place.
func SelectorLabels(svc *v1alpha1.MCPService) map[string]string {
	return map[string]string{
		"app":                svc.Name,
		tenancy.LabelServer:  svc.Name,
		tenancy.LabelService: "true",
	}
}

// DeploymentName returns the child Deployment name.
func DeploymentName(svc *v1alpha1.MCPService) string {
	return svc.Name
}

// ServiceName returns the child Service name.
func ServiceName(svc *v1alpha1.MCPService) string {
	return svc.Name
}

// HPAName returns the child HorizontalPodAutoscaler name.
func HPAName(svc *v1alpha1.MCPService) string {
	return svc.Name
}

// MCPIngressName returns the name of the ingress routing the MCP endpoint.
func MCPIngressName(svc *v1alpha1.MCPService) string {
	return svc.Name + "-mcp"
}

// HealthIngressName returns the name of the ingress routing the health endpoint.
func HealthIngressName(svc *v1alpha1.MCPService) string {
	return svc.Name + "-health"
}

// RoutingPort returns the service port, defaulting to the container port.
func RoutingPort(svc *v1alpha1.MCPService) int32 {
	if svc.Spec.Routing.Port > 0 {
		return svc.Spec.Routing.Port
	}
	return svc.Spec.Container.Port
}

// HealthPath returns the liveness probe path.
func HealthPath(svc *v1alpha1.MCPService) string {
	if svc.Spec.Routing.HealthPath != "" {
		return svc.Spec.Routing.HealthPath
	}
	return DefaultHealthPath
}

// MCPPath returns the MCP endpoint path inside the container.
func MCPPath(svc *v1alpha1.MCPService) string {
	if svc.Spec.Routing.MCPPath != "" {
		return svc.Spec.Routing.MCPPath
	}
	return DefaultMCPPath
}

// DesiredReplicas returns the replica count, defaulting to one.
func DesiredReplicas(svc *v1alpha1.MCPService) int32 {
	if svc.Spec.Replicas != nil {
		return *svc.Spec.Replicas
	}
	return 1
}

// MinReplicas returns scaling.minReplicas, defaulting to zero.
func MinReplicas(svc *v1alpha1.MCPService) int32 {
	if svc.Spec.Scaling != nil && svc.Spec.Scaling.MinReplicas != nil {
		return *svc.Spec.Scaling.MinReplicas
	}
	return 0
}

// ServiceEndpoint returns the in-cluster URL of the server.
func ServiceEndpoint(svc *v1alpha1.MCPService) string {
	return "http://" + ServiceName(svc) + "." + svc.Namespace + ".svc.cluster.local:" +
		strconv.Itoa(int(RoutingPort(svc)))
}
