// Package tenancy defines the label schema that carries workspace identity
// on every platform-managed resource, and the strict extraction of that
// identity. Labels are the authoritative source of tenancy metadata; there is
// no fallback to namespace-name parsing or sentinel values.
package tenancy

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Label keys in the mcp.nimbletools.dev namespace.
const (
	LabelWorkspaceID   = "mcp.nimbletools.dev/workspace_id"
	LabelWorkspaceName = "mcp.nimbletools.dev/workspace_name"
	LabelUserID        = "mcp.nimbletools.dev/user_id"
	LabelOrganization  = "mcp.nimbletools.dev/organization_id"

	// LabelWorkspace marks a namespace as a workspace namespace.
	LabelWorkspace = "mcp.nimbletools.dev/workspace"

	// LabelService marks resources belonging to an MCP server deployment.
	LabelService = "mcp.nimbletools.dev/service"

	// LabelServer carries the server name on MCPService children.
	LabelServer = "mcp.nimbletools.dev/server"

	// LabelIngressType distinguishes the mcp and health ingress objects.
	LabelIngressType = "mcp.nimbletools.dev/ingress-type"
)

// Informational annotations. Not load-bearing.
const (
	AnnotationDescription = "mcp.nimbletools.dev/description"
	AnnotationVersion     = "mcp.nimbletools.dev/version"

	// AnnotationRestartedAt triggers a rolling restart when patched onto the
	// pod template.
	AnnotationRestartedAt = "mcp.nimbletools.dev/restartedAt"
)

// NamespacePrefix prefixes every workspace namespace name.
const NamespacePrefix = "ws-"

// Metadata is the tenancy identity extracted from resource labels.
type Metadata struct {
	WorkspaceID    string
	WorkspaceName  string
	UserID         string
	OrganizationID string
}

// Labels renders the metadata back into the four identity labels.
func (m Metadata) Labels() map[string]string {
	return map[string]string{
		LabelWorkspaceID:   m.WorkspaceID,
		LabelWorkspaceName: m.WorkspaceName,
		LabelUserID:        m.UserID,
		LabelOrganization:  m.OrganizationID,
	}
}

// Namespace returns the workspace namespace name.
func (m Metadata) Namespace() string {
	return NamespacePrefix + m.WorkspaceName
}

// FromLabels extracts tenancy metadata from a label map. Every identity
// label must be present and the UUID-valued ones must parse; a resource
// failing this check is invalid per the platform contract.
func FromLabels(labels map[string]string) (Metadata, error) {
	var missing []string
	for _, key := range []string{LabelWorkspaceID, LabelWorkspaceName, LabelUserID, LabelOrganization} {
		if labels[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Metadata{}, fmt.Errorf("required labels missing: %s", strings.Join(missing, ", "))
	}

	m := Metadata{
		WorkspaceID:    labels[LabelWorkspaceID],
		WorkspaceName:  labels[LabelWorkspaceName],
		UserID:         labels[LabelUserID],
		OrganizationID: labels[LabelOrganization],
	}

	for _, id := range []struct{ key, value string }{
		{LabelWorkspaceID, m.WorkspaceID},
		{LabelUserID, m.UserID},
		{LabelOrganization, m.OrganizationID},
	} {
		if _, err := uuid.Parse(id.value); err != nil {
			return Metadata{}, fmt.Errorf("label %s is not a UUID: %q", id.key, id.value)
		}
	}

	return m, nil
}

// WorkspaceName derives the immutable workspace name from the user-chosen
// base and the workspace ID.
func WorkspaceName(base, workspaceID string) string {
	return base + "-" + workspaceID
}
