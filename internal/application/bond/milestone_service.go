package bond

import (
	"context"
	"fmt"
	"time"

	"github.com/bondledger/backend/internal/domain/funding"
	"github.com/bondledger/backend/internal/domain/identity"
	"github.com/bondledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MilestoneService handles milestone planning, verification and the
// escrow releases gated on them.
type MilestoneService struct {
	projectRepo funding.ProjectRepository
	access      *accessControl
	locks       *projectLocks
	invalidator SummaryInvalidator
	logger      *zap.Logger
}

// NewMilestoneService creates a new MilestoneService
func NewMilestoneService(
	projectRepo funding.ProjectRepository,
	roleRepo identity.RoleBindingRepository,
	logger *zap.Logger,
) *MilestoneService {
	return &MilestoneService{
		projectRepo: projectRepo,
		access:      &accessControl{roleRepo: roleRepo},
		locks:       newProjectLocks(),
		logger:      logger,
	}
}

// SetSummaryInvalidator wires the query-side cache invalidation
func (s *MilestoneService) SetSummaryInvalidator(inv SummaryInvalidator) {
	s.invalidator = inv
}

// invalidateSummary drops the cached summary, if a cache is wired
func (s *MilestoneService) invalidateSummary(ctx context.Context, projectID uuid.UUID) {
	if s.invalidator != nil {
		s.invalidator.InvalidateSummary(ctx, projectID)
	}
}

// CreateMilestoneRequest represents a request to plan a milestone
type CreateMilestoneRequest struct {
	ActorID       uuid.UUID
	ProjectID     uuid.UUID
	Name          string
	Description   string
	ReleaseAmount decimal.Decimal
	TargetDate    time.Time
}

// CreateMilestoneResult represents the planned milestone
type CreateMilestoneResult struct {
	ProjectID     uuid.UUID       `json:"project_id"`
	Sequence      int             `json:"sequence"`
	Name          string          `json:"name"`
	ReleaseAmount decimal.Decimal `json:"release_amount"`
	TargetDate    time.Time       `json:"target_date"`
	Status        string          `json:"status"`
}

// CreateMilestone appends a milestone to the project plan
func (s *MilestoneService) CreateMilestone(ctx context.Context, req CreateMilestoneRequest) (*CreateMilestoneResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "milestone", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, req.ProjectID.String(),
		telemetry.SpanAttrAmount, req.ReleaseAmount.String(),
	)

	if err := s.access.require(ctx, req.ActorID, identity.CapabilityProjectManager, req.ProjectID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	lock := s.locks.acquire(req.ProjectID.String())
	lock.Lock()
	defer lock.Unlock()

	project, err := s.projectRepo.FindByID(ctx, req.ProjectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	m, err := project.AddMilestone(req.Name, req.Description, req.ReleaseAmount, req.TargetDate, time.Now())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.projectRepo.SaveWithLock(ctx, project); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	s.invalidateSummary(ctx, req.ProjectID)

	return &CreateMilestoneResult{
		ProjectID:     project.ID,
		Sequence:      m.Sequence,
		Name:          m.Name,
		ReleaseAmount: m.ReleaseAmount,
		TargetDate:    m.TargetDate,
		Status:        m.Status.String(),
	}, nil
}

// CompleteMilestoneRequest represents a verifier completing a milestone
type CompleteMilestoneRequest struct {
	ActorID         uuid.UUID
	ProjectID       uuid.UUID
	Sequence        int
	DeliverableRefs []string
}

// CompleteMilestoneResult represents the completion and funds release
type CompleteMilestoneResult struct {
	ProjectID      uuid.UUID       `json:"project_id"`
	Sequence       int             `json:"sequence"`
	ReleasedAmount decimal.Decimal `json:"released_amount"`
	TotalReleased  decimal.Decimal `json:"total_released"`
	EscrowBalance  decimal.Decimal `json:"escrow_balance"`
	ProjectStatus  string          `json:"project_status"`
}

// CompleteMilestone marks a milestone completed and releases its funds
// from escrow in the same unit of work
func (s *MilestoneService) CompleteMilestone(ctx context.Context, req CompleteMilestoneRequest) (*CompleteMilestoneResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "milestone", "complete")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, req.ProjectID.String(),
		telemetry.SpanAttrSequence, req.Sequence,
		telemetry.SpanAttrVerifierID, req.ActorID.String(),
	)

	if err := s.access.require(ctx, req.ActorID, identity.CapabilityVerifier, req.ProjectID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	lock := s.locks.acquire(req.ProjectID.String())
	lock.Lock()
	defer lock.Unlock()

	project, err := s.projectRepo.FindByID(ctx, req.ProjectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if err := project.CompleteMilestone(req.Sequence, req.ActorID, req.DeliverableRefs, time.Now()); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.projectRepo.SaveWithLock(ctx, project); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	s.invalidateSummary(ctx, req.ProjectID)

	m, _ := project.Milestone(req.Sequence)

	telemetry.AddEvent(span, "funds_released",
		telemetry.SpanAttrAmount, m.ReleaseAmount.String(),
		"total_released", project.TotalReleased.String(),
	)

	return &CompleteMilestoneResult{
		ProjectID:      project.ID,
		Sequence:       req.Sequence,
		ReleasedAmount: m.ReleaseAmount,
		TotalReleased:  project.TotalReleased,
		EscrowBalance:  project.EscrowBalance(),
		ProjectStatus:  project.Status.String(),
	}, nil
}

// EmergencyWithdrawRequest represents an Owner-only emergency release
type EmergencyWithdrawRequest struct {
	ActorID   uuid.UUID
	ProjectID uuid.UUID
	Amount    decimal.Decimal
	Reason    string
}

// EmergencyWithdraw releases escrowed funds bypassing milestone gating.
// Restricted to platform Owners and logged loudly.
func (s *MilestoneService) EmergencyWithdraw(ctx context.Context, req EmergencyWithdrawRequest) (*CompleteMilestoneResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "milestone", "emergency_withdraw")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, req.ProjectID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if err := s.access.require(ctx, req.ActorID, identity.CapabilityOwner, req.ProjectID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	lock := s.locks.acquire(req.ProjectID.String())
	lock.Lock()
	defer lock.Unlock()

	project, err := s.projectRepo.FindByID(ctx, req.ProjectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if err := project.EmergencyWithdraw(req.Amount, req.Reason, time.Now()); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.projectRepo.SaveWithLock(ctx, project); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	s.invalidateSummary(ctx, req.ProjectID)

	s.logger.Warn("Emergency withdrawal executed",
		zap.String("project_id", project.ID.String()),
		zap.String("actor_id", req.ActorID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("reason", req.Reason),
		zap.String("escrow_balance", project.EscrowBalance().String()),
	)

	return &CompleteMilestoneResult{
		ProjectID:      project.ID,
		ReleasedAmount: req.Amount,
		TotalReleased:  project.TotalReleased,
		EscrowBalance:  project.EscrowBalance(),
		ProjectStatus:  project.Status.String(),
	}, nil
}
