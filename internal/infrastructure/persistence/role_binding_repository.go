package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bondledger/backend/internal/domain/identity"
	"github.com/bondledger/backend/internal/domain/shared"
)

// GormRoleBindingRepository implements identity.RoleBindingRepository using GORM
type GormRoleBindingRepository struct {
	db *gorm.DB
}

// NewGormRoleBindingRepository creates a new GormRoleBindingRepository
func NewGormRoleBindingRepository(db *gorm.DB) *GormRoleBindingRepository {
	return &GormRoleBindingRepository{db: db}
}

var _ identity.RoleBindingRepository = (*GormRoleBindingRepository)(nil)

// FindByID finds a role binding by its ID
func (r *GormRoleBindingRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.RoleBinding, error) {
	var binding identity.RoleBinding
	if err := r.db.WithContext(ctx).First(&binding, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &binding, nil
}

// FindByIdentity finds all bindings (global and project-scoped) for an identity
func (r *GormRoleBindingRepository) FindByIdentity(ctx context.Context, identityID uuid.UUID) ([]identity.RoleBinding, error) {
	var bindings []identity.RoleBinding
	if err := r.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Find(&bindings).Error; err != nil {
		return nil, err
	}
	return bindings, nil
}

// FindByIdentityAndScope finds the binding for an identity at a specific scope
func (r *GormRoleBindingRepository) FindByIdentityAndScope(ctx context.Context, identityID uuid.UUID, projectID *uuid.UUID) (*identity.RoleBinding, error) {
	query := r.db.WithContext(ctx).Where("identity_id = ?", identityID)
	if projectID == nil {
		query = query.Where("project_id IS NULL")
	} else {
		query = query.Where("project_id = ?", *projectID)
	}

	var binding identity.RoleBinding
	if err := query.First(&binding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &binding, nil
}

// FindByCapability finds all bindings holding a capability covering a project.
// Global bindings cover every project, so both scopes are matched. The JSONB
// containment check requires the capability to be present in the array.
func (r *GormRoleBindingRepository) FindByCapability(ctx context.Context, c identity.Capability, projectID uuid.UUID) ([]identity.RoleBinding, error) {
	var bindings []identity.RoleBinding
	if err := r.db.WithContext(ctx).
		Where("(project_id = ? OR project_id IS NULL) AND capabilities @> ?", projectID, `["`+c.String()+`"]`).
		Find(&bindings).Error; err != nil {
		return nil, err
	}
	return bindings, nil
}

// Save creates or updates a role binding
func (r *GormRoleBindingRepository) Save(ctx context.Context, binding *identity.RoleBinding) error {
	return r.db.WithContext(ctx).Save(binding).Error
}

// Delete removes a role binding
func (r *GormRoleBindingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&identity.RoleBinding{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
