package identity

import (
	"context"

	"github.com/google/uuid"
)

// RoleBindingRepository defines the interface for role binding persistence
type RoleBindingRepository interface {
	// FindByID finds a role binding by ID
	FindByID(ctx context.Context, id uuid.UUID) (*RoleBinding, error)

	// FindByIdentity finds all bindings (global and project-scoped) for an identity
	FindByIdentity(ctx context.Context, identityID uuid.UUID) ([]RoleBinding, error)

	// FindByIdentityAndScope finds the binding for an identity at a specific scope
	// (nil projectID = global scope). Returns shared.ErrNotFound when absent.
	FindByIdentityAndScope(ctx context.Context, identityID uuid.UUID, projectID *uuid.UUID) (*RoleBinding, error)

	// FindByCapability finds all identities holding a capability for a project
	FindByCapability(ctx context.Context, c Capability, projectID uuid.UUID) ([]RoleBinding, error)

	// Save creates or updates a role binding
	Save(ctx context.Context, binding *RoleBinding) error

	// Delete removes a role binding
	Delete(ctx context.Context, id uuid.UUID) error
}
