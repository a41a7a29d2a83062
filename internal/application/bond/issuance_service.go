package bond

import (
	"context"
	"fmt"
	"time"

	"github.com/bondledger/backend/internal/domain/funding"
	"github.com/bondledger/backend/internal/domain/identity"
	"github.com/bondledger/backend/internal/domain/interest"
	"github.com/bondledger/backend/internal/domain/shared/valueobject"
	"github.com/bondledger/backend/internal/domain/token"
	"github.com/bondledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SummaryInvalidator drops a project's cached summary read model after
// a state-changing command commits.
type SummaryInvalidator interface {
	InvalidateSummary(ctx context.Context, projectID uuid.UUID)
}

// IssuanceService handles the project funding lifecycle: creation,
// activation and investment. Investing is the one command that spans
// three aggregates (project escrow, token ledger, accrual record), so
// it runs under the per-project lock.
type IssuanceService struct {
	projectRepo funding.ProjectRepository
	ledgerRepo  token.LedgerRepository
	accrualRepo interest.AccrualRecordRepository
	access      *accessControl
	locks       *projectLocks
	invalidator SummaryInvalidator
}

// NewIssuanceService creates a new IssuanceService
func NewIssuanceService(
	projectRepo funding.ProjectRepository,
	ledgerRepo token.LedgerRepository,
	accrualRepo interest.AccrualRecordRepository,
	roleRepo identity.RoleBindingRepository,
) *IssuanceService {
	return &IssuanceService{
		projectRepo: projectRepo,
		ledgerRepo:  ledgerRepo,
		accrualRepo: accrualRepo,
		access:      &accessControl{roleRepo: roleRepo},
		locks:       newProjectLocks(),
	}
}

// SetSummaryInvalidator wires the query-side cache invalidation. The
// query service is built after the command services, so this is a
// setter rather than a constructor argument.
func (s *IssuanceService) SetSummaryInvalidator(inv SummaryInvalidator) {
	s.invalidator = inv
}

// invalidateSummary drops the cached summary, if a cache is wired
func (s *IssuanceService) invalidateSummary(ctx context.Context, projectID uuid.UUID) {
	if s.invalidator != nil {
		s.invalidator.InvalidateSummary(ctx, projectID)
	}
}

// CreateProjectRequest represents a request to create a financing project
type CreateProjectRequest struct {
	ActorID        uuid.UUID
	Name           string
	Description    string
	FundingGoal    decimal.Decimal
	RateBps        int64
	DurationMonths int
	WalletAddress  string
	TokenPrice     decimal.Decimal
}

// CreateProjectResult represents the result of creating a project
type CreateProjectResult struct {
	ProjectID uuid.UUID `json:"project_id"`
	LedgerID  uuid.UUID `json:"ledger_id"`
	Status    string    `json:"status"`
}

// CreateProject creates a project in Draft status together with its
// empty token ledger. The caller becomes the project manager.
func (s *IssuanceService) CreateProject(ctx context.Context, req CreateProjectRequest) (*CreateProjectResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "issuance", "create_project")
	defer span.End()

	if err := s.access.require(ctx, req.ActorID, identity.CapabilityProjectManager, uuid.Nil); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	project, err := funding.NewProject(
		req.Name,
		req.Description,
		valueobject.NewMoneyUSD(req.FundingGoal),
		req.RateBps,
		req.DurationMonths,
		req.ActorID,
		req.WalletAddress,
		valueobject.NewMoneyUSD(req.TokenPrice),
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	ledger, err := token.NewLedger(project.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.projectRepo.Save(ctx, project); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	if err := s.ledgerRepo.Save(ctx, ledger); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save ledger: %w", err)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, project.ID.String(),
		telemetry.SpanAttrAmount, req.FundingGoal.String(),
		telemetry.SpanAttrRateBps, req.RateBps,
	)

	return &CreateProjectResult{
		ProjectID: project.ID,
		LedgerID:  ledger.ID,
		Status:    project.Status.String(),
	}, nil
}

// ActivateProject opens a draft project for investment
func (s *IssuanceService) ActivateProject(ctx context.Context, actorID, projectID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "issuance", "activate_project")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrProjectID, projectID.String())

	if err := s.access.require(ctx, actorID, identity.CapabilityProjectManager, projectID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	lock := s.locks.acquire(projectID.String())
	lock.Lock()
	defer lock.Unlock()

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to get project: %w", err)
	}

	if err := project.Activate(); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if err := s.projectRepo.SaveWithLock(ctx, project); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to save project: %w", err)
	}

	s.invalidateSummary(ctx, projectID)

	return nil
}

// CancelProject cancels a project that has not raised any funds
func (s *IssuanceService) CancelProject(ctx context.Context, actorID, projectID uuid.UUID, reason string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "issuance", "cancel_project")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrProjectID, projectID.String())

	if err := s.access.require(ctx, actorID, identity.CapabilityProjectManager, projectID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	lock := s.locks.acquire(projectID.String())
	lock.Lock()
	defer lock.Unlock()

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to get project: %w", err)
	}

	if err := project.Cancel(reason); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if err := s.projectRepo.SaveWithLock(ctx, project); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to save project: %w", err)
	}

	s.invalidateSummary(ctx, projectID)

	return nil
}

// InvestRequest represents an investment into an active project
type InvestRequest struct {
	InvestorID uuid.UUID
	ProjectID  uuid.UUID
	Amount     decimal.Decimal
}

// InvestResult represents the result of an investment
type InvestResult struct {
	ProjectID     uuid.UUID       `json:"project_id"`
	InvestorID    uuid.UUID       `json:"investor_id"`
	Amount        decimal.Decimal `json:"amount"`
	TokensMinted  decimal.Decimal `json:"tokens_minted"`
	TotalRaised   decimal.Decimal `json:"total_raised"`
	ProjectStatus string          `json:"project_status"`
}

// Invest records an investment, mints the matching bond tokens and
// settles the investor's accrual checkpoint, all under the project
// lock. The accrual settles before the mint so interest never accrues
// retroactively on the newly minted tokens.
func (s *IssuanceService) Invest(ctx context.Context, req InvestRequest) (*InvestResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "issuance", "invest")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, req.ProjectID.String(),
		telemetry.SpanAttrInvestorID, req.InvestorID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	lock := s.locks.acquire(req.ProjectID.String())
	lock.Lock()
	defer lock.Unlock()

	project, err := s.projectRepo.FindByID(ctx, req.ProjectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	ledger, err := s.ledgerRepo.FindByProject(ctx, req.ProjectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}

	now := time.Now()

	if err := s.settleAccrual(ctx, req.InvestorID, project, ledger, now); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	tokens, err := project.RecordInvestment(req.InvestorID, req.Amount, now)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := ledger.Mint(req.InvestorID, tokens); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.projectRepo.SaveWithLock(ctx, project); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	if err := s.ledgerRepo.SaveWithLock(ctx, ledger); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save ledger: %w", err)
	}

	s.invalidateSummary(ctx, req.ProjectID)

	telemetry.AddEvent(span, "investment_recorded",
		telemetry.SpanAttrTokens, tokens.String(),
		"total_raised", project.TotalRaised.String(),
	)

	return &InvestResult{
		ProjectID:     project.ID,
		InvestorID:    req.InvestorID,
		Amount:        req.Amount,
		TokensMinted:  tokens,
		TotalRaised:   project.TotalRaised,
		ProjectStatus: project.Status.String(),
	}, nil
}

// settleAccrual brings the investor's accrual checkpoint up to now at
// their pre-change token balance, creating the record on first touch.
func (s *IssuanceService) settleAccrual(ctx context.Context, investorID uuid.UUID, project *funding.Project, ledger *token.Ledger, now time.Time) error {
	record, err := s.accrualRepo.FindByInvestorAndProject(ctx, investorID, project.ID)
	if err != nil {
		if isNotFound(err) {
			record, err = interest.NewAccrualRecord(investorID, project.ID, now)
			if err != nil {
				return err
			}
			return s.accrualRepo.Save(ctx, record)
		}
		return fmt.Errorf("failed to get accrual record: %w", err)
	}

	record.Accrue(ledger.BalanceOf(investorID), project.RateBps, now)
	if err := s.accrualRepo.SaveWithLock(ctx, record); err != nil {
		return fmt.Errorf("failed to save accrual record: %w", err)
	}
	return nil
}
