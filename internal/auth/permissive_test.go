package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissive_DeterministicIdentity(t *testing.T) {
	provider, err := NewPermissiveProvider(nil)
	require.NoError(t, err)

	first, err := provider.ValidateToken(context.Background(), "token-a")
	require.NoError(t, err)
	require.NotNil(t, first)

	again, err := provider.ValidateToken(context.Background(), "token-a")
	require.NoError(t, err)
	assert.Equal(t, first.UserID, again.UserID)
	assert.Equal(t, first.OrganizationID, again.OrganizationID)

	other, err := provider.ValidateToken(context.Background(), "token-b")
	require.NoError(t, err)
	assert.NotEqual(t, first.UserID, other.UserID)

	// Derived identities must be real UUIDs: they become tenancy labels.
	_, err = uuid.Parse(first.UserID)
	assert.NoError(t, err)
	_, err = uuid.Parse(first.OrganizationID)
	assert.NoError(t, err)
}

func TestPermissive_EmptyTokenInvalid(t *testing.T) {
	provider, err := NewPermissiveProvider(nil)
	require.NoError(t, err)

	user, err := provider.ValidateToken(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestPermissive_AccessAlwaysGranted(t *testing.T) {
	provider, err := NewPermissiveProvider(nil)
	require.NoError(t, err)

	user := &UserContext{UserID: uuid.NewString(), OrganizationID: uuid.NewString()}

	ok, err := provider.CheckWorkspaceAccess(context.Background(), user, uuid.NewString())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = provider.CheckPermission(context.Background(), user, "servers", "delete")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPermissive_RejectsBadOrganizationID(t *testing.T) {
	_, err := NewPermissiveProvider([]byte(`{"organizationId": "not-a-uuid"}`))
	require.Error(t, err)
}
