package interest

import (
	"context"

	"github.com/google/uuid"
)

// AccrualRecordRepository defines the interface for accrual persistence
type AccrualRecordRepository interface {
	// FindByID finds an accrual record by ID
	FindByID(ctx context.Context, id uuid.UUID) (*AccrualRecord, error)

	// FindByInvestorAndProject finds the record for one holding
	FindByInvestorAndProject(ctx context.Context, investorID, projectID uuid.UUID) (*AccrualRecord, error)

	// FindByProject finds all accrual records for a project
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]AccrualRecord, error)

	// FindByInvestor finds all accrual records held by an investor
	FindByInvestor(ctx context.Context, investorID uuid.UUID) ([]AccrualRecord, error)

	// Save creates or updates an accrual record
	Save(ctx context.Context, record *AccrualRecord) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, record *AccrualRecord) error
}
