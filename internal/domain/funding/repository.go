package funding

import (
	"context"

	"github.com/bondledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProjectFilter defines filtering options for project queries
type ProjectFilter struct {
	shared.Filter
	Status    *ProjectStatus // Filter by status
	ManagerID *uuid.UUID     // Filter by project manager
}

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	// FindByID finds a project by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)

	// FindAll finds projects matching the filter
	FindAll(ctx context.Context, filter ProjectFilter) ([]Project, error)

	// FindByManager finds projects owned by a manager
	FindByManager(ctx context.Context, managerID uuid.UUID, filter ProjectFilter) ([]Project, error)

	// FindByStatus finds projects in a given status
	FindByStatus(ctx context.Context, status ProjectStatus, filter ProjectFilter) ([]Project, error)

	// Save creates or updates a project
	Save(ctx context.Context, project *Project) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, project *Project) error

	// Count counts projects matching the filter
	Count(ctx context.Context, filter ProjectFilter) (int64, error)
}
