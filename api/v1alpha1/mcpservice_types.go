package v1alpha1

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// MCPServicePhase describes the observed lifecycle phase of an MCPService.
type MCPServicePhase string

const (
	// PhasePending means the workload exists but has not reached its desired
	// ready replica count yet.
	PhasePending MCPServicePhase = "Pending"

	// PhaseRunning means the workload is available and serving.
	PhaseRunning MCPServicePhase = "Running"

	// PhaseFailed means reconciliation hit a terminal error that requires a
	// spec change (invalid labels, architecture mismatch, sustained crash).
	PhaseFailed MCPServicePhase = "Failed"

	// PhaseUnknown is the initial or transient observation state.
	PhaseUnknown MCPServicePhase = "Unknown"
)

// Deployment protocols.
const (
	ProtocolHTTP  = "http"
	ProtocolStdio = "stdio"
)

// Package registry types.
const (
	RegistryTypeOCI  = "oci"
	RegistryTypeMCPB = "mcpb"
)

// ContainerSpec describes the server container. The image reference is
// derived by the operator from packages and runtime, never user-supplied.
type ContainerSpec struct {
	// Image is the computed image reference. Populated by the platform.
	// +optional
	Image string `json:"image,omitempty"`

	// Registry is an optional registry prefix for runtime base images.
	// +optional
	Registry string `json:"registry,omitempty"`

	// Port is the container port the MCP server listens on.
	Port int32 `json:"port"`
}

// StdioSpec configures the wrapped process for stdio-protocol servers.
type StdioSpec struct {
	// Executable is the program started inside the container.
	Executable string `json:"executable"`

	// Args are passed to the executable.
	// +optional
	Args []string `json:"args,omitempty"`

	// WorkingDir is the working directory for the executable.
	// +optional
	WorkingDir string `json:"workingDir,omitempty"`
}

// ServiceDeploymentSpec describes how the server process is run.
type ServiceDeploymentSpec struct {
	// Protocol is "http" or "stdio".
	Protocol string `json:"protocol"`

	// HealthPath is the readiness probe path, when the server exposes one.
	// +optional
	HealthPath string `json:"healthPath,omitempty"`

	// Stdio configures the wrapped process for stdio servers.
	// +optional
	Stdio *StdioSpec `json:"stdio,omitempty"`
}

// RuntimeArgument is a single argument passed to a packaged runtime.
type RuntimeArgument struct {
	// Type distinguishes positional arguments from named ones.
	// +optional
	Type string `json:"type,omitempty"`

	// Value is the literal argument value.
	Value string `json:"value"`
}

// EnvVarDecl declares an environment variable by name. Values are resolved
// from the workspace secret store at reconcile time.
type EnvVarDecl struct {
	// Name is the environment variable name.
	Name string `json:"name"`

	// IsSecret forces resolution through the workspace-secrets Secret.
	// +optional
	IsSecret bool `json:"isSecret,omitempty"`

	// IsRequired makes reconciliation fail when the name cannot be resolved.
	// +optional
	IsRequired bool `json:"isRequired,omitempty"`
}

// PackageTransport carries transport metadata from the registry document.
type PackageTransport struct {
	// Type is the transport identifier (e.g. "streamable-http").
	Type string `json:"type"`
}

// Package is one architecture-specific package descriptor from server.json.
type Package struct {
	// RegistryType is "oci" or "mcpb".
	RegistryType string `json:"registryType"`

	// Identifier is the image repository (oci) or bundle URL (mcpb).
	Identifier string `json:"identifier"`

	// Version is the package version. Optional for mutable references.
	// +optional
	Version string `json:"version,omitempty"`

	// SHA256 is the bundle content hash for mcpb packages.
	// +optional
	SHA256 string `json:"sha256,omitempty"`

	// RuntimeArguments are passed to the runtime at startup.
	// +optional
	RuntimeArguments []RuntimeArgument `json:"runtimeArguments,omitempty"`

	// EnvironmentVariables declared by this package.
	// +optional
	EnvironmentVariables []EnvVarDecl `json:"environmentVariables,omitempty"`

	// Transport metadata for this package.
	// +optional
	Transport *PackageTransport `json:"transport,omitempty"`
}

// ScalingSpec bounds the replica range and drives the optional autoscaler.
type ScalingSpec struct {
	// MinReplicas is the lower replica bound. Zero allows scale-to-zero.
	// +optional
	MinReplicas *int32 `json:"minReplicas,omitempty"`

	// MaxReplicas is the upper replica bound.
	// +optional
	MaxReplicas int32 `json:"maxReplicas,omitempty"`

	// TargetConcurrency is the per-pod concurrent request target. A value
	// greater than zero produces a HorizontalPodAutoscaler.
	// +optional
	TargetConcurrency int32 `json:"targetConcurrency,omitempty"`

	// ScaleDownDelaySeconds stabilizes scale-down decisions.
	// +optional
	ScaleDownDelaySeconds *int32 `json:"scaleDownDelaySeconds,omitempty"`
}

// RoutingSpec describes the external HTTP surface of the server.
type RoutingSpec struct {
	// Path is the base ingress path. Defaults to /{workspace_id}/{name}.
	// +optional
	Path string `json:"path,omitempty"`

	// Port is the service port. Defaults to the container port.
	// +optional
	Port int32 `json:"port,omitempty"`

	// HealthPath is the liveness probe path inside the container.
	// +optional
	HealthPath string `json:"healthPath,omitempty"`

	// MCPPath is the MCP endpoint path inside the container.
	// +optional
	MCPPath string `json:"mcpPath,omitempty"`
}

// MCPServiceSpec defines the desired state of one MCP server deployment.
type MCPServiceSpec struct {
	// Container describes the server container.
	Container ContainerSpec `json:"container"`

	// Deployment describes how the server process runs.
	Deployment ServiceDeploymentSpec `json:"deployment"`

	// Packages is the ordered list of architecture-specific packages.
	// +optional
	Packages []Package `json:"packages,omitempty"`

	// Runtime selects a runtime base image, e.g. "python:3.14", "node:22",
	// "supergateway-python:3.14", "binary", "adapter-legacy". Empty means a
	// direct OCI image.
	// +optional
	Runtime string `json:"runtime,omitempty"`

	// Replicas is the desired replica count. Must be >= scaling.minReplicas.
	// +optional
	Replicas *int32 `json:"replicas,omitempty"`

	// Scaling bounds replicas and configures autoscaling.
	// +optional
	Scaling *ScalingSpec `json:"scaling,omitempty"`

	// Resources specifies container compute requirements.
	// +optional
	Resources *corev1.ResourceRequirements `json:"resources,omitempty"`

	// Routing describes the external HTTP surface.
	// +optional
	Routing RoutingSpec `json:"routing,omitempty"`

	// Environment contains literal environment variables.
	// +optional
	Environment map[string]string `json:"environment,omitempty"`

	// EnvironmentVariables declares names resolved from workspace-secrets.
	// +optional
	EnvironmentVariables []EnvVarDecl `json:"environmentVariables,omitempty"`
}

// WorkloadStatus summarizes the child Deployment's observed state.
type WorkloadStatus struct {
	// Ready is true when the deployment reports Available=True.
	// +optional
	Ready bool `json:"ready,omitempty"`

	// Replicas is the observed replica count.
	// +optional
	Replicas int32 `json:"replicas,omitempty"`

	// ReadyReplicas is the observed ready replica count.
	// +optional
	ReadyReplicas int32 `json:"readyReplicas,omitempty"`
}

// MCPServiceStatus defines the observed state of an MCPService. Written only
// by the operator.
type MCPServiceStatus struct {
	// Phase is the coarse lifecycle phase.
	// +optional
	Phase MCPServicePhase `json:"phase,omitempty"`

	// DeploymentStatus summarizes the child workload.
	// +optional
	DeploymentStatus *WorkloadStatus `json:"deploymentStatus,omitempty"`

	// Conditions represent the latest available observations.
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`

	// ServiceEndpoint is the in-cluster URL of the server.
	// +optional
	ServiceEndpoint string `json:"serviceEndpoint,omitempty"`

	// LastReconcileTime is when the operator last wrote this status.
	// +optional
	LastReconcileTime *metav1.Time `json:"lastReconcileTime,omitempty"`

	// ObservedGeneration is the most recent generation observed.
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Ready",type=boolean,JSONPath=`.status.deploymentStatus.ready`
// +kubebuilder:printcolumn:name="Endpoint",type=string,JSONPath=`.status.serviceEndpoint`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`
// +kubebuilder:resource:shortName=mcpsvc

// MCPService is the declarative description of one MCP server within a
// workspace namespace.
type MCPService struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   MCPServiceSpec   `json:"spec,omitempty"`
	Status MCPServiceStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// MCPServiceList contains a list of MCPService.
type MCPServiceList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []MCPService `json:"items"`
}

func init() {
	SchemeBuilder.Register(&MCPService{}, &MCPServiceList{})
}
