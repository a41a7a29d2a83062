package token

import (
	"context"

	"github.com/google/uuid"
)

// LedgerRepository defines the interface for ledger persistence
type LedgerRepository interface {
	// FindByID finds a ledger by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Ledger, error)

	// FindByProject finds the ledger for a project
	FindByProject(ctx context.Context, projectID uuid.UUID) (*Ledger, error)

	// Save creates or updates a ledger
	Save(ctx context.Context, ledger *Ledger) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, ledger *Ledger) error
}
