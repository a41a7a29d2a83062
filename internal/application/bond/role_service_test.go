package bond

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bondledger/backend/internal/domain/identity"
	"github.com/bondledger/backend/internal/domain/shared"
)

func newRoleFixture() (*RoleService, *MockRoleBindingRepository) {
	roleRepo := new(MockRoleBindingRepository)
	svc := NewRoleService(roleRepo, zap.NewNop())
	return svc, roleRepo
}

func TestRoleService_GrantCapability(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	grantee := uuid.New()

	t.Run("creates binding when none exists at scope", func(t *testing.T) {
		svc, roleRepo := newRoleFixture()
		grantBindings(roleRepo, owner, scopedBinding(owner, nil, identity.CapabilityOwner))
		roleRepo.On("FindByIdentityAndScope", mock.Anything, grantee, (*uuid.UUID)(nil)).
			Return(nil, shared.ErrNotFound)
		roleRepo.On("Save", mock.Anything, mock.MatchedBy(func(rb *identity.RoleBinding) bool {
			return rb.IdentityID == grantee && rb.IsGlobal() && rb.Has(identity.CapabilityVerifier)
		})).Return(nil)

		err := svc.GrantCapability(ctx, GrantCapabilityRequest{
			ActorID:    owner,
			IdentityID: grantee,
			Capability: identity.CapabilityVerifier,
		})
		require.NoError(t, err)
		roleRepo.AssertExpectations(t)
	})

	t.Run("extends existing binding", func(t *testing.T) {
		svc, roleRepo := newRoleFixture()
		projectID := uuid.New()
		existing := scopedBinding(grantee, &projectID, identity.CapabilityMinter)
		grantBindings(roleRepo, owner, scopedBinding(owner, nil, identity.CapabilityOwner))
		roleRepo.On("FindByIdentityAndScope", mock.Anything, grantee, &projectID).
			Return(&existing, nil)
		roleRepo.On("Save", mock.Anything, mock.MatchedBy(func(rb *identity.RoleBinding) bool {
			return rb.Has(identity.CapabilityMinter) && rb.Has(identity.CapabilityBurner)
		})).Return(nil)

		err := svc.GrantCapability(ctx, GrantCapabilityRequest{
			ActorID:    owner,
			IdentityID: grantee,
			Capability: identity.CapabilityBurner,
			ProjectID:  &projectID,
		})
		require.NoError(t, err)
		roleRepo.AssertExpectations(t)
	})

	t.Run("rejects non-owner caller", func(t *testing.T) {
		svc, roleRepo := newRoleFixture()
		manager := uuid.New()
		grantBindings(roleRepo, manager, scopedBinding(manager, nil, identity.CapabilityProjectManager))

		err := svc.GrantCapability(ctx, GrantCapabilityRequest{
			ActorID:    manager,
			IdentityID: grantee,
			Capability: identity.CapabilityVerifier,
		})
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
		roleRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestRoleService_RevokeCapability(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	holder := uuid.New()

	t.Run("removes capability from binding", func(t *testing.T) {
		svc, roleRepo := newRoleFixture()
		existing := scopedBinding(holder, nil, identity.CapabilityVerifier, identity.CapabilityPauser)
		grantBindings(roleRepo, owner, scopedBinding(owner, nil, identity.CapabilityOwner))
		roleRepo.On("FindByIdentityAndScope", mock.Anything, holder, (*uuid.UUID)(nil)).
			Return(&existing, nil)
		roleRepo.On("Save", mock.Anything, mock.MatchedBy(func(rb *identity.RoleBinding) bool {
			return !rb.Has(identity.CapabilityPauser) && rb.Has(identity.CapabilityVerifier)
		})).Return(nil)

		err := svc.RevokeCapability(ctx, RevokeCapabilityRequest{
			ActorID:    owner,
			IdentityID: holder,
			Capability: identity.CapabilityPauser,
		})
		require.NoError(t, err)
		roleRepo.AssertExpectations(t)
	})

	t.Run("missing binding is a no-op", func(t *testing.T) {
		svc, roleRepo := newRoleFixture()
		grantBindings(roleRepo, owner, scopedBinding(owner, nil, identity.CapabilityOwner))
		roleRepo.On("FindByIdentityAndScope", mock.Anything, holder, (*uuid.UUID)(nil)).
			Return(nil, shared.ErrNotFound)

		err := svc.RevokeCapability(ctx, RevokeCapabilityRequest{
			ActorID:    owner,
			IdentityID: holder,
			Capability: identity.CapabilityVerifier,
		})
		assert.NoError(t, err)
		roleRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects non-owner caller", func(t *testing.T) {
		svc, roleRepo := newRoleFixture()
		stranger := uuid.New()
		grantBindings(roleRepo, stranger)

		err := svc.RevokeCapability(ctx, RevokeCapabilityRequest{
			ActorID:    stranger,
			IdentityID: holder,
			Capability: identity.CapabilityVerifier,
		})
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})
}

func TestRoleService_ListCapabilities(t *testing.T) {
	ctx := context.Background()

	t.Run("returns all bindings for an identity", func(t *testing.T) {
		svc, roleRepo := newRoleFixture()
		holder := uuid.New()
		projectID := uuid.New()
		bindings := []identity.RoleBinding{
			scopedBinding(holder, nil, identity.CapabilityVerifier),
			scopedBinding(holder, &projectID, identity.CapabilityProjectManager),
		}
		roleRepo.On("FindByIdentity", mock.Anything, holder).Return(bindings, nil)

		result, err := svc.ListCapabilities(ctx, holder)
		require.NoError(t, err)
		assert.Len(t, result, 2)
	})

	t.Run("rejects nil identity", func(t *testing.T) {
		svc, _ := newRoleFixture()

		_, err := svc.ListCapabilities(ctx, uuid.Nil)
		assert.Error(t, err)
	})
}
