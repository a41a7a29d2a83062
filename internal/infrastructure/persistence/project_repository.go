package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bondledger/backend/internal/domain/funding"
	"github.com/bondledger/backend/internal/domain/shared"
)

// GormProjectRepository implements funding.ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

var _ funding.ProjectRepository = (*GormProjectRepository)(nil)

// FindByID finds a project by its ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*funding.Project, error) {
	var project funding.Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// FindAll finds projects matching the filter
func (r *GormProjectRepository) FindAll(ctx context.Context, filter funding.ProjectFilter) ([]funding.Project, error) {
	var projects []funding.Project
	query := r.applyFilter(r.db.WithContext(ctx).Model(&funding.Project{}), filter)
	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// FindByManager finds projects owned by a manager
func (r *GormProjectRepository) FindByManager(ctx context.Context, managerID uuid.UUID, filter funding.ProjectFilter) ([]funding.Project, error) {
	filter.ManagerID = &managerID
	return r.FindAll(ctx, filter)
}

// FindByStatus finds projects in a given status
func (r *GormProjectRepository) FindByStatus(ctx context.Context, status funding.ProjectStatus, filter funding.ProjectFilter) ([]funding.Project, error) {
	filter.Status = &status
	return r.FindAll(ctx, filter)
}

// Save creates or updates a project
func (r *GormProjectRepository) Save(ctx context.Context, project *funding.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormProjectRepository) SaveWithLock(ctx context.Context, project *funding.Project) error {
	result := r.db.WithContext(ctx).
		Model(project).
		Where("id = ? AND version = ?", project.ID, project.Version-1).
		Updates(map[string]interface{}{
			"total_raised":   project.TotalRaised,
			"total_released": project.TotalReleased,
			"status":         project.Status,
			"positions":      project.Positions,
			"milestones":     project.Milestones,
			"version":        project.Version,
			"updated_at":     project.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Count counts projects matching the filter
func (r *GormProjectRepository) Count(ctx context.Context, filter funding.ProjectFilter) (int64, error) {
	var count int64
	query := r.applyWhere(r.db.WithContext(ctx).Model(&funding.Project{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyWhere applies the filter's predicates without pagination
func (r *GormProjectRepository) applyWhere(query *gorm.DB, filter funding.ProjectFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ManagerID != nil {
		query = query.Where("manager_id = ?", *filter.ManagerID)
	}
	return query
}

// applyFilter applies predicates, ordering, and pagination
func (r *GormProjectRepository) applyFilter(query *gorm.DB, filter funding.ProjectFilter) *gorm.DB {
	query = r.applyWhere(query, filter)

	orderBy := ValidateSortField(filter.OrderBy, ProjectSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	return query.Limit(filter.Limit()).Offset(filter.Offset())
}
