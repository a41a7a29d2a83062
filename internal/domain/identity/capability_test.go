package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapability_IsValid(t *testing.T) {
	tests := []struct {
		capability Capability
		isValid    bool
	}{
		{CapabilityOwner, true},
		{CapabilityProjectManager, true},
		{CapabilityVerifier, true},
		{CapabilityMinter, true},
		{CapabilityBurner, true},
		{CapabilityPauser, true},
		{Capability("ADMIN"), false},
		{Capability(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.capability), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.capability.IsValid())
		})
	}
}

func TestNewRoleBinding(t *testing.T) {
	identityID := uuid.New()

	t.Run("creates global binding", func(t *testing.T) {
		rb, err := NewRoleBinding(identityID, nil, CapabilityMinter, CapabilityBurner)
		require.NoError(t, err)
		assert.True(t, rb.IsGlobal())
		assert.True(t, rb.Has(CapabilityMinter))
		assert.True(t, rb.Has(CapabilityBurner))
		assert.False(t, rb.Has(CapabilityOwner))
		assert.Len(t, rb.GetDomainEvents(), 1)
	})

	t.Run("creates project-scoped binding", func(t *testing.T) {
		projectID := uuid.New()
		rb, err := NewRoleBinding(identityID, &projectID, CapabilityVerifier)
		require.NoError(t, err)
		assert.False(t, rb.IsGlobal())
		assert.True(t, rb.AppliesTo(projectID))
		assert.False(t, rb.AppliesTo(uuid.New()))
	})

	t.Run("rejects nil identity", func(t *testing.T) {
		_, err := NewRoleBinding(uuid.Nil, nil, CapabilityMinter)
		assert.Error(t, err)
	})

	t.Run("rejects unknown capability", func(t *testing.T) {
		_, err := NewRoleBinding(identityID, nil, Capability("ROOT"))
		assert.Error(t, err)
	})
}

func TestRoleBinding_GrantRevoke(t *testing.T) {
	rb, err := NewRoleBinding(uuid.New(), nil, CapabilityMinter)
	require.NoError(t, err)

	t.Run("grant adds capability once", func(t *testing.T) {
		require.NoError(t, rb.Grant(CapabilityPauser))
		assert.True(t, rb.Has(CapabilityPauser))

		// Second grant is a no-op
		before := len(rb.Capabilities)
		require.NoError(t, rb.Grant(CapabilityPauser))
		assert.Len(t, rb.Capabilities, before)
	})

	t.Run("revoke removes capability", func(t *testing.T) {
		require.NoError(t, rb.Revoke(CapabilityPauser))
		assert.False(t, rb.Has(CapabilityPauser))
		assert.True(t, rb.Has(CapabilityMinter))
	})

	t.Run("revoke of absent capability is a no-op", func(t *testing.T) {
		version := rb.Version
		require.NoError(t, rb.Revoke(CapabilityVerifier))
		assert.Equal(t, version, rb.Version)
	})
}

func TestAuthorize(t *testing.T) {
	identityID := uuid.New()
	projectID := uuid.New()
	otherProject := uuid.New()

	t.Run("global capability covers every project", func(t *testing.T) {
		rb, err := NewRoleBinding(identityID, nil, CapabilityMinter)
		require.NoError(t, err)

		assert.NoError(t, Authorize([]RoleBinding{*rb}, CapabilityMinter, projectID))
		assert.NoError(t, Authorize([]RoleBinding{*rb}, CapabilityMinter, otherProject))
	})

	t.Run("project-scoped capability covers only that project", func(t *testing.T) {
		rb, err := NewRoleBinding(identityID, &projectID, CapabilityVerifier)
		require.NoError(t, err)

		assert.NoError(t, Authorize([]RoleBinding{*rb}, CapabilityVerifier, projectID))
		assert.ErrorContains(t, Authorize([]RoleBinding{*rb}, CapabilityVerifier, otherProject), "Not authorized")
	})

	t.Run("global owner passes any check", func(t *testing.T) {
		rb, err := NewRoleBinding(identityID, nil, CapabilityOwner)
		require.NoError(t, err)

		assert.NoError(t, Authorize([]RoleBinding{*rb}, CapabilityMinter, projectID))
		assert.NoError(t, Authorize([]RoleBinding{*rb}, CapabilityVerifier, otherProject))
	})

	t.Run("missing capability is rejected", func(t *testing.T) {
		rb, err := NewRoleBinding(identityID, nil, CapabilityBurner)
		require.NoError(t, err)

		err = Authorize([]RoleBinding{*rb}, CapabilityMinter, projectID)
		assert.Error(t, err)
	})

	t.Run("no bindings is rejected", func(t *testing.T) {
		assert.Error(t, Authorize(nil, CapabilityMinter, projectID))
	})
}
