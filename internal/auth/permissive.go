package auth

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"sigs.k8s.io/yaml"
)

// PermissiveClass is the class name of the built-in development provider.
const PermissiveClass = "permissive"

// permissiveIDNamespace seeds deterministic identity derivation so that the
// same token always maps to the same user and organization.
var permissiveIDNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// PermissiveConfig is the typed configuration of the permissive provider.
type PermissiveConfig struct {
	// OrganizationID pins every caller to one organization. When empty,
	// organizations are derived from the token.
	OrganizationID string `json:"organizationId,omitempty"`
}

// PermissiveProvider accepts any non-empty bearer token and derives stable
// identities from it. Development and single-tenant installs only; it must
// still be named explicitly in the provider configuration.
type PermissiveProvider struct {
	config PermissiveConfig
}

func init() {
	Register(PermissiveClass, NewPermissiveProvider)
}

// NewPermissiveProvider constructs the provider from its typed config.
// Unknown configuration keys are a startup error.
func NewPermissiveProvider(config json.RawMessage) (Provider, error) {
	var cfg PermissiveConfig
	if len(config) > 0 {
		if err := yaml.UnmarshalStrict(config, &cfg); err != nil {
			return nil, err
		}
	}
	if cfg.OrganizationID != "" {
		if _, err := uuid.Parse(cfg.OrganizationID); err != nil {
			return nil, err
		}
	}
	return &PermissiveProvider{config: cfg}, nil
}

// Initialize implements Provider.
func (p *PermissiveProvider) Initialize(_ context.Context) error { return nil }

// Shutdown implements Provider.
func (p *PermissiveProvider) Shutdown(_ context.Context) error { return nil }

// ValidateToken accepts any non-empty token. Identity is derived
// deterministically so repeat calls agree.
func (p *PermissiveProvider) ValidateToken(_ context.Context, token string) (*UserContext, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	orgID := p.config.OrganizationID
	if orgID == "" {
		orgID = uuid.NewSHA1(permissiveIDNamespace, []byte("org:"+token)).String()
	}

	return &UserContext{
		UserID:         uuid.NewSHA1(permissiveIDNamespace, []byte("user:"+token)).String(),
		OrganizationID: orgID,
	}, nil
}

// CheckWorkspaceAccess implements Provider. Always allowed.
func (p *PermissiveProvider) CheckWorkspaceAccess(_ context.Context, _ *UserContext, _ string) (bool, error) {
	return true, nil
}

// CheckPermission implements Provider. Always allowed.
func (p *PermissiveProvider) CheckPermission(_ context.Context, _ *UserContext, _, _ string) (bool, error) {
	return true, nil
}
