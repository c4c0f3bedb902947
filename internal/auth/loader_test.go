package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "provider.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Permissive(t *testing.T) {
	path := writeConfig(t, "class: permissive\n")

	provider, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, provider)

	user, err := provider.ValidateToken(context.Background(), "some-token")
	require.NoError(t, err)
	require.NotNil(t, user)
}

func TestLoad_PermissiveWithConfig(t *testing.T) {
	path := writeConfig(t, `class: permissive
config:
  organizationId: 16fd2706-8baf-433b-82eb-8c7fada847da
`)

	provider, err := Load(context.Background(), path)
	require.NoError(t, err)

	user, err := provider.ValidateToken(context.Background(), "some-token")
	require.NoError(t, err)
	assert.Equal(t, "16fd2706-8baf-433b-82eb-8c7fada847da", user.OrganizationID)
}

func TestLoad_MissingPathIsFatal(t *testing.T) {
	_, err := Load(context.Background(), "")
	require.Error(t, err)
}

func TestLoad_MissingFileIsFatal(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}

func TestLoad_UnknownClass(t *testing.T) {
	path := writeConfig(t, "class: enterprise-sso\n")

	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enterprise-sso")
}

func TestLoad_UnknownTopLevelKey(t *testing.T) {
	path := writeConfig(t, "class: permissive\nextraKey: boom\n")

	_, err := Load(context.Background(), path)
	require.Error(t, err)
}

func TestLoad_UnknownProviderConfigKey(t *testing.T) {
	path := writeConfig(t, `class: permissive
config:
  organisationId: typo
`)

	_, err := Load(context.Background(), path)
	require.Error(t, err)
}

func TestLoad_MissingClass(t *testing.T) {
	path := writeConfig(t, "config: {}\n")

	_, err := Load(context.Background(), path)
	require.Error(t, err)
}
