package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bondledger/backend/internal/domain/shared"
	"github.com/bondledger/backend/internal/domain/token"
)

// GormLedgerRepository implements token.LedgerRepository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

var _ token.LedgerRepository = (*GormLedgerRepository)(nil)

// FindByID finds a ledger by its ID
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*token.Ledger, error) {
	var ledger token.Ledger
	if err := r.db.WithContext(ctx).First(&ledger, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ledger, nil
}

// FindByProject finds the ledger for a project
func (r *GormLedgerRepository) FindByProject(ctx context.Context, projectID uuid.UUID) (*token.Ledger, error) {
	var ledger token.Ledger
	if err := r.db.WithContext(ctx).First(&ledger, "project_id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ledger, nil
}

// Save creates or updates a ledger
func (r *GormLedgerRepository) Save(ctx context.Context, ledger *token.Ledger) error {
	return r.db.WithContext(ctx).Save(ledger).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormLedgerRepository) SaveWithLock(ctx context.Context, ledger *token.Ledger) error {
	result := r.db.WithContext(ctx).
		Model(ledger).
		Where("id = ? AND version = ?", ledger.ID, ledger.Version-1).
		Updates(map[string]interface{}{
			"total_supply": ledger.TotalSupply,
			"paused":       ledger.Paused,
			"holdings":     ledger.Holdings,
			"version":      ledger.Version,
			"updated_at":   ledger.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
