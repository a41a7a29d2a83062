package bond

import (
	"context"
	"fmt"

	"github.com/bondledger/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// accessControl loads the caller's role bindings and runs the pure
// capability check against them. All commands authorize before touching
// any aggregate.
type accessControl struct {
	roleRepo identity.RoleBindingRepository
}

// require fails with shared.ErrUnauthorized unless the actor holds the
// capability for the project (or is a global Owner). Pass uuid.Nil for
// operations outside any project scope, such as project creation.
func (a *accessControl) require(ctx context.Context, actorID uuid.UUID, required identity.Capability, projectID uuid.UUID) error {
	bindings, err := a.roleRepo.FindByIdentity(ctx, actorID)
	if err != nil {
		return fmt.Errorf("failed to load role bindings: %w", err)
	}
	return identity.Authorize(bindings, required, projectID)
}
