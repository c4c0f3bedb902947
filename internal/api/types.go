package api

import (
	"time"

	"github.com/nimblebrain/nimbletools-core/internal/logs"
)

// Version is carried by every request and response body.
const Version = "v1"

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// CreateWorkspaceRequest creates a new workspace for the caller's
// organization.
type CreateWorkspaceRequest struct {
	APIVersion  string `json:"version"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// WorkspaceSummary describes one workspace.
type WorkspaceSummary struct {
	APIVersion     string    `json:"version"`
	WorkspaceID    string    `json:"workspace_id"`
	WorkspaceName  string    `json:"workspace_name"`
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	Namespace      string    `json:"namespace"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// WorkspaceListResponse lists the caller's workspaces.
type WorkspaceListResponse struct {
	APIVersion string             `json:"version"`
	Workspaces []WorkspaceSummary `json:"workspaces"`
	Count      int                `json:"count"`
}

// Ack acknowledges a mutation with no richer payload.
type Ack struct {
	APIVersion string `json:"version"`
	Status     string `json:"status"`
	Detail     string `json:"detail,omitempty"`
}

// ServerSummary describes one MCP server in a workspace.
type ServerSummary struct {
	APIVersion    string     `json:"version"`
	Name          string     `json:"name"`
	WorkspaceID   string     `json:"workspace_id"`
	Image         string     `json:"image,omitempty"`
	Phase         string     `json:"phase,omitempty"`
	Replicas      int32      `json:"replicas"`
	ReadyReplicas int32      `json:"ready_replicas"`
	Endpoint      string     `json:"endpoint,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// ServerListResponse lists the servers in a workspace.
type ServerListResponse struct {
	APIVersion string          `json:"version"`
	Servers    []ServerSummary `json:"servers"`
	Count      int             `json:"count"`
}

// PatchServerRequest is a partial spec update: scaling and environment only.
type PatchServerRequest struct {
	APIVersion  string            `json:"version"`
	Replicas    *int32            `json:"replicas,omitempty"`
	Scaling     *PatchScaling     `json:"scaling,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
}

// PatchScaling mirrors the MCPService scaling block for updates.
type PatchScaling struct {
	MinReplicas           *int32 `json:"minReplicas,omitempty"`
	MaxReplicas           *int32 `json:"maxReplicas,omitempty"`
	TargetConcurrency     *int32 `json:"targetConcurrency,omitempty"`
	ScaleDownDelaySeconds *int32 `json:"scaleDownDelaySeconds,omitempty"`
}

// LogsResponse is the aggregated log view.
type LogsResponse struct {
	APIVersion     string       `json:"version"`
	Logs           []logs.Entry `json:"logs"`
	Count          int          `json:"count"`
	HasMore        bool         `json:"has_more"`
	QueryTimestamp time.Time    `json:"query_timestamp"`
}

// SecretsResponse lists workspace secret key names. Values never leave the
// cluster.
type SecretsResponse struct {
	APIVersion string   `json:"version"`
	Keys       []string `json:"keys"`
	Count      int      `json:"count"`
}

// SetSecretRequest writes one workspace secret key.
type SetSecretRequest struct {
	APIVersion string `json:"version"`
	Key        string `json:"key"`
	Value      string `json:"value"`
}

// AuthResponse echoes the authenticated user context.
type AuthResponse struct {
	APIVersion     string `json:"version"`
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Email          string `json:"email,omitempty"`
}

// HealthResponse reports process liveness.
type HealthResponse struct {
	APIVersion string `json:"version"`
	Status     string `json:"status"`
}
