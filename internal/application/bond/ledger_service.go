package bond

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bondledger/backend/internal/domain/funding"
	"github.com/bondledger/backend/internal/domain/identity"
	"github.com/bondledger/backend/internal/domain/interest"
	"github.com/bondledger/backend/internal/domain/shared"
	"github.com/bondledger/backend/internal/domain/token"
	"github.com/bondledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService handles direct token ledger commands: transfer, mint,
// burn and the pause switch. Balance-changing commands settle both
// parties' accrual checkpoints first so earned interest is computed
// against pre-change balances.
type LedgerService struct {
	ledgerRepo  token.LedgerRepository
	projectRepo funding.ProjectRepository
	accrualRepo interest.AccrualRecordRepository
	access      *accessControl
	locks       *projectLocks
	logger      *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	ledgerRepo token.LedgerRepository,
	projectRepo funding.ProjectRepository,
	accrualRepo interest.AccrualRecordRepository,
	roleRepo identity.RoleBindingRepository,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		ledgerRepo:  ledgerRepo,
		projectRepo: projectRepo,
		accrualRepo: accrualRepo,
		access:      &accessControl{roleRepo: roleRepo},
		locks:       newProjectLocks(),
		logger:      logger,
	}
}

// TransferRequest represents a holder-initiated token transfer
type TransferRequest struct {
	ActorID   uuid.UUID
	ProjectID uuid.UUID
	From      uuid.UUID
	To        uuid.UUID
	Amount    decimal.Decimal
}

// TransferResult represents the post-transfer balances
type TransferResult struct {
	ProjectID   uuid.UUID       `json:"project_id"`
	From        uuid.UUID       `json:"from"`
	To          uuid.UUID       `json:"to"`
	Amount      decimal.Decimal `json:"amount"`
	FromBalance decimal.Decimal `json:"from_balance"`
	ToBalance   decimal.Decimal `json:"to_balance"`
}

// Transfer moves tokens between holders. Only the sending holder (or a
// global Owner acting on their behalf) may initiate it. Both parties'
// accrual checkpoints settle at pre-transfer balances before the move.
func (s *LedgerService) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "transfer")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, req.ProjectID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if req.ActorID != req.From {
		if err := s.access.require(ctx, req.ActorID, identity.CapabilityOwner, req.ProjectID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	lock := s.locks.acquire(req.ProjectID.String())
	lock.Lock()
	defer lock.Unlock()

	ledger, err := s.ledgerRepo.FindByProject(ctx, req.ProjectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}

	project, err := s.projectRepo.FindByID(ctx, req.ProjectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	// Reject doomed transfers before accrual settlement writes anything.
	if err := ledger.CanTransfer(req.From, req.To, req.Amount); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := time.Now()
	if err := s.settleAccrual(ctx, req.From, project, ledger, now); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.settleAccrual(ctx, req.To, project, ledger, now); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := ledger.Transfer(req.From, req.To, req.Amount); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.ledgerRepo.SaveWithLock(ctx, ledger); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save ledger: %w", err)
	}

	return &TransferResult{
		ProjectID:   req.ProjectID,
		From:        req.From,
		To:          req.To,
		Amount:      req.Amount,
		FromBalance: ledger.BalanceOf(req.From),
		ToBalance:   ledger.BalanceOf(req.To),
	}, nil
}

// Mint creates tokens for a holder outside the investment flow.
// Requires the Minter capability.
func (s *LedgerService) Mint(ctx context.Context, actorID, projectID, to uuid.UUID, amount decimal.Decimal) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "mint")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, projectID.String(),
		telemetry.SpanAttrHolderID, to.String(),
		telemetry.SpanAttrAmount, amount.String(),
	)

	if err := s.access.require(ctx, actorID, identity.CapabilityMinter, projectID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if err := s.withLedger(ctx, projectID, func(ledger *token.Ledger, project *funding.Project, now time.Time) error {
		if err := s.settleAccrual(ctx, to, project, ledger, now); err != nil {
			return err
		}
		return ledger.Mint(to, amount)
	}); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return nil
}

// Burn destroys tokens held by a holder. Requires the Burner capability.
func (s *LedgerService) Burn(ctx context.Context, actorID, projectID, from uuid.UUID, amount decimal.Decimal) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "burn")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, projectID.String(),
		telemetry.SpanAttrHolderID, from.String(),
		telemetry.SpanAttrAmount, amount.String(),
	)

	if err := s.access.require(ctx, actorID, identity.CapabilityBurner, projectID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if err := s.withLedger(ctx, projectID, func(ledger *token.Ledger, project *funding.Project, now time.Time) error {
		if err := s.settleAccrual(ctx, from, project, ledger, now); err != nil {
			return err
		}
		return ledger.Burn(from, amount)
	}); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return nil
}

// Pause blocks transfers on a project's ledger. Requires the Pauser capability.
func (s *LedgerService) Pause(ctx context.Context, actorID, projectID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "pause")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrProjectID, projectID.String())

	if err := s.access.require(ctx, actorID, identity.CapabilityPauser, projectID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if err := s.withLedger(ctx, projectID, func(ledger *token.Ledger, _ *funding.Project, _ time.Time) error {
		ledger.Pause()
		return nil
	}); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.logger.Warn("Token transfers paused",
		zap.String("project_id", projectID.String()),
		zap.String("actor_id", actorID.String()),
	)
	return nil
}

// Unpause re-enables transfers. Requires the Pauser capability.
func (s *LedgerService) Unpause(ctx context.Context, actorID, projectID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "unpause")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrProjectID, projectID.String())

	if err := s.access.require(ctx, actorID, identity.CapabilityPauser, projectID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if err := s.withLedger(ctx, projectID, func(ledger *token.Ledger, _ *funding.Project, _ time.Time) error {
		ledger.Unpause()
		return nil
	}); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.logger.Info("Token transfers resumed",
		zap.String("project_id", projectID.String()),
		zap.String("actor_id", actorID.String()),
	)
	return nil
}

// Balance returns a holder's token balance on a project's ledger
func (s *LedgerService) Balance(ctx context.Context, projectID, holderID uuid.UUID) (decimal.Decimal, error) {
	ledger, err := s.ledgerRepo.FindByProject(ctx, projectID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get ledger: %w", err)
	}
	return ledger.BalanceOf(holderID), nil
}

// TotalSupply returns the total token supply for a project
func (s *LedgerService) TotalSupply(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error) {
	ledger, err := s.ledgerRepo.FindByProject(ctx, projectID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get ledger: %w", err)
	}
	return ledger.TotalSupply, nil
}

// withLedger runs a mutation against the project's ledger under the
// project lock and persists it with optimistic locking.
func (s *LedgerService) withLedger(ctx context.Context, projectID uuid.UUID, fn func(*token.Ledger, *funding.Project, time.Time) error) error {
	lock := s.locks.acquire(projectID.String())
	lock.Lock()
	defer lock.Unlock()

	ledger, err := s.ledgerRepo.FindByProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to get ledger: %w", err)
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}

	if err := fn(ledger, project, time.Now()); err != nil {
		return err
	}

	if err := s.ledgerRepo.SaveWithLock(ctx, ledger); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return nil
}

// settleAccrual advances one holder's accrual checkpoint to now at the
// current (pre-change) balance, creating the record on first touch.
func (s *LedgerService) settleAccrual(ctx context.Context, holderID uuid.UUID, project *funding.Project, ledger *token.Ledger, now time.Time) error {
	record, err := s.accrualRepo.FindByInvestorAndProject(ctx, holderID, project.ID)
	if err != nil {
		if isNotFound(err) {
			record, err = interest.NewAccrualRecord(holderID, project.ID, now)
			if err != nil {
				return err
			}
			return s.accrualRepo.Save(ctx, record)
		}
		return fmt.Errorf("failed to get accrual record: %w", err)
	}

	record.Accrue(ledger.BalanceOf(holderID), project.RateBps, now)
	if err := s.accrualRepo.SaveWithLock(ctx, record); err != nil {
		return fmt.Errorf("failed to save accrual record: %w", err)
	}
	return nil
}

// isNotFound reports whether err is the shared not-found domain error
func isNotFound(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code
}
