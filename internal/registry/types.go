// Package registry translates MCP registry server.json documents into
// MCPService objects. It is pure: all architecture selection, URL
// validation, and label injection happen here so the HTTP layer stays thin.
package registry

import (
	"encoding/json"

	"github.com/nimblebrain/nimbletools-core/internal/errdefs"
)

// Machine-readable error codes surfaced as 422 responses.
const (
	CodeInvalidServerDefinition = "INVALID_SERVER_DEFINITION"
	CodeArchitectureMismatch    = "ARCHITECTURE_MISMATCH"
	CodeInvalidMCPBURL          = "INVALID_MCPB_URL"
)

// PlatformMetaNamespace is the _meta key this platform understands. All
// other _meta namespaces are ignored.
const PlatformMetaNamespace = "mcp.nimbletools.dev/v1"

// TranslationError is a structured rejection of a server.json document.
type TranslationError struct {
	Code   string
	Detail string
}

func (e *TranslationError) Error() string { return e.Detail }

// Unwrap classifies every translation error as invalid input.
func (e *TranslationError) Unwrap() error { return errdefs.ErrInvalidInput }

// ServerDocument is the subset of the MCP registry server.json schema the
// platform consumes. Unknown fields are ignored by the JSON decoder.
type ServerDocument struct {
	Name        string                     `json:"name"`
	Description string                     `json:"description,omitempty"`
	Version     string                     `json:"version,omitempty"`
	Packages    []PackageDocument          `json:"packages"`
	Meta        map[string]json.RawMessage `json:"_meta,omitempty"`
}

// PackageDocument is one package entry from server.json.
type PackageDocument struct {
	RegistryType         string             `json:"registryType"`
	Identifier           string             `json:"identifier"`
	Version              string             `json:"version,omitempty"`
	SHA256               string             `json:"sha256,omitempty"`
	Transport            *TransportDocument `json:"transport,omitempty"`
	RuntimeArguments     []ArgumentDocument `json:"runtimeArguments,omitempty"`
	EnvironmentVariables []EnvVarDocument   `json:"environmentVariables,omitempty"`
}

// TransportDocument carries transport metadata for a package.
type TransportDocument struct {
	Type string `json:"type"`
}

// ArgumentDocument is a runtime argument from server.json.
type ArgumentDocument struct {
	Type  string `json:"type,omitempty"`
	Value string `json:"value"`
}

// EnvVarDocument is a declared environment variable from server.json.
type EnvVarDocument struct {
	Name       string `json:"name"`
	IsSecret   bool   `json:"isSecret,omitempty"`
	IsRequired bool   `json:"isRequired,omitempty"`
}

// PlatformMeta is the platform's own _meta extension: deployment hints the
// generic registry schema has no field for.
type PlatformMeta struct {
	Runtime     string            `json:"runtime,omitempty"`
	Port        int32             `json:"port,omitempty"`
	HealthPath  string            `json:"healthPath,omitempty"`
	MCPPath     string            `json:"mcpPath,omitempty"`
	Replicas    *int32            `json:"replicas,omitempty"`
	Scaling     *ScalingMeta      `json:"scaling,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
}

// ScalingMeta mirrors the MCPService scaling block.
type ScalingMeta struct {
	MinReplicas           *int32 `json:"minReplicas,omitempty"`
	MaxReplicas           int32  `json:"maxReplicas,omitempty"`
	TargetConcurrency     int32  `json:"targetConcurrency,omitempty"`
	ScaleDownDelaySeconds *int32 `json:"scaleDownDelaySeconds,omitempty"`
}
