package bond

import (
	"context"
	"fmt"

	"github.com/bondledger/backend/internal/domain/identity"
	"github.com/bondledger/backend/internal/domain/shared"
	"github.com/bondledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoleService administers capability grants. Only platform Owners may
// change bindings; the Owner capability itself is seeded at bootstrap.
type RoleService struct {
	roleRepo identity.RoleBindingRepository
	access   *accessControl
	logger   *zap.Logger
}

// NewRoleService creates a new RoleService
func NewRoleService(roleRepo identity.RoleBindingRepository, logger *zap.Logger) *RoleService {
	return &RoleService{
		roleRepo: roleRepo,
		access:   &accessControl{roleRepo: roleRepo},
		logger:   logger,
	}
}

// GrantCapabilityRequest represents a capability grant
type GrantCapabilityRequest struct {
	ActorID    uuid.UUID
	IdentityID uuid.UUID
	Capability identity.Capability
	ProjectID  *uuid.UUID // nil grants at global scope
}

// GrantCapability grants a capability to an identity at the requested
// scope, creating the binding if none exists yet. Idempotent.
func (s *RoleService) GrantCapability(ctx context.Context, req GrantCapabilityRequest) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "role", "grant")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCapability, req.Capability.String(),
		"identity_id", req.IdentityID.String(),
	)

	if err := s.access.require(ctx, req.ActorID, identity.CapabilityOwner, uuid.Nil); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	binding, err := s.roleRepo.FindByIdentityAndScope(ctx, req.IdentityID, req.ProjectID)
	if err != nil {
		if !isNotFound(err) {
			telemetry.RecordError(span, err)
			return fmt.Errorf("failed to get role binding: %w", err)
		}
		binding, err = identity.NewRoleBinding(req.IdentityID, req.ProjectID, req.Capability)
		if err != nil {
			telemetry.RecordError(span, err)
			return err
		}
	} else if err := binding.Grant(req.Capability); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if err := s.roleRepo.Save(ctx, binding); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to save role binding: %w", err)
	}

	s.logger.Info("Capability granted",
		zap.String("actor_id", req.ActorID.String()),
		zap.String("identity_id", req.IdentityID.String()),
		zap.String("capability", req.Capability.String()),
		zap.Bool("global", req.ProjectID == nil),
	)

	return nil
}

// RevokeCapabilityRequest represents a capability revocation
type RevokeCapabilityRequest struct {
	ActorID    uuid.UUID
	IdentityID uuid.UUID
	Capability identity.Capability
	ProjectID  *uuid.UUID
}

// RevokeCapability removes a capability from an identity's binding at
// the requested scope. Revoking an absent capability is a no-op.
func (s *RoleService) RevokeCapability(ctx context.Context, req RevokeCapabilityRequest) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "role", "revoke")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCapability, req.Capability.String(),
		"identity_id", req.IdentityID.String(),
	)

	if err := s.access.require(ctx, req.ActorID, identity.CapabilityOwner, uuid.Nil); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	binding, err := s.roleRepo.FindByIdentityAndScope(ctx, req.IdentityID, req.ProjectID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to get role binding: %w", err)
	}

	if err := binding.Revoke(req.Capability); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if err := s.roleRepo.Save(ctx, binding); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to save role binding: %w", err)
	}

	s.logger.Info("Capability revoked",
		zap.String("actor_id", req.ActorID.String()),
		zap.String("identity_id", req.IdentityID.String()),
		zap.String("capability", req.Capability.String()),
	)

	return nil
}

// ListCapabilities returns every binding held by an identity
func (s *RoleService) ListCapabilities(ctx context.Context, identityID uuid.UUID) ([]identity.RoleBinding, error) {
	if identityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_IDENTITY", "Identity ID cannot be empty")
	}
	return s.roleRepo.FindByIdentity(ctx, identityID)
}
