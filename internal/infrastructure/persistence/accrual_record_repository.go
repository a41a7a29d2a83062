package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bondledger/backend/internal/domain/interest"
	"github.com/bondledger/backend/internal/domain/shared"
)

// GormAccrualRecordRepository implements interest.AccrualRecordRepository using GORM
type GormAccrualRecordRepository struct {
	db *gorm.DB
}

// NewGormAccrualRecordRepository creates a new GormAccrualRecordRepository
func NewGormAccrualRecordRepository(db *gorm.DB) *GormAccrualRecordRepository {
	return &GormAccrualRecordRepository{db: db}
}

var _ interest.AccrualRecordRepository = (*GormAccrualRecordRepository)(nil)

// FindByID finds an accrual record by its ID
func (r *GormAccrualRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*interest.AccrualRecord, error) {
	var record interest.AccrualRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByInvestorAndProject finds the record for an investor-project pair
func (r *GormAccrualRecordRepository) FindByInvestorAndProject(ctx context.Context, investorID, projectID uuid.UUID) (*interest.AccrualRecord, error) {
	var record interest.AccrualRecord
	if err := r.db.WithContext(ctx).
		Where("investor_id = ? AND project_id = ?", investorID, projectID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByProject finds all accrual records for a project
func (r *GormAccrualRecordRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]interest.AccrualRecord, error) {
	var records []interest.AccrualRecord
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByInvestor finds all accrual records for an investor across projects
func (r *GormAccrualRecordRepository) FindByInvestor(ctx context.Context, investorID uuid.UUID) ([]interest.AccrualRecord, error) {
	var records []interest.AccrualRecord
	if err := r.db.WithContext(ctx).
		Where("investor_id = ?", investorID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates or updates an accrual record
func (r *GormAccrualRecordRepository) Save(ctx context.Context, record *interest.AccrualRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormAccrualRecordRepository) SaveWithLock(ctx context.Context, record *interest.AccrualRecord) error {
	result := r.db.WithContext(ctx).
		Model(record).
		Where("id = ? AND version = ?", record.ID, record.Version-1).
		Updates(map[string]interface{}{
			"last_accrual_at":   record.LastAccrualAt,
			"accrued_unclaimed": record.AccruedUnclaimed,
			"total_claimed":     record.TotalClaimed,
			"version":           record.Version,
			"updated_at":        record.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
