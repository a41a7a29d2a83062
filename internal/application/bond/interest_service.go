package bond

import (
	"context"
	"fmt"
	"time"

	"github.com/bondledger/backend/internal/domain/funding"
	"github.com/bondledger/backend/internal/domain/interest"
	"github.com/bondledger/backend/internal/domain/token"
	"github.com/bondledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InterestService handles time-weighted interest accrual and claims.
// Accrual is lazy: checkpoints advance when someone asks, not on a
// schedule, and the pure calculation makes the pending amount readable
// at any time without mutation.
type InterestService struct {
	accrualRepo interest.AccrualRecordRepository
	projectRepo funding.ProjectRepository
	ledgerRepo  token.LedgerRepository
	locks       *projectLocks
	logger      *zap.Logger
}

// NewInterestService creates a new InterestService
func NewInterestService(
	accrualRepo interest.AccrualRecordRepository,
	projectRepo funding.ProjectRepository,
	ledgerRepo token.LedgerRepository,
	logger *zap.Logger,
) *InterestService {
	return &InterestService{
		accrualRepo: accrualRepo,
		projectRepo: projectRepo,
		ledgerRepo:  ledgerRepo,
		locks:       newProjectLocks(),
		logger:      logger,
	}
}

// AccrualInfo is the read model for one investor's interest position
type AccrualInfo struct {
	InvestorID       uuid.UUID       `json:"investor_id"`
	ProjectID        uuid.UUID       `json:"project_id"`
	TokenBalance     decimal.Decimal `json:"token_balance"`
	RateBps          int64           `json:"rate_bps"`
	LastAccrualAt    time.Time       `json:"last_accrual_at"`
	AccruedUnclaimed decimal.Decimal `json:"accrued_unclaimed"`
	PendingInterest  decimal.Decimal `json:"pending_interest"`
	AccruedTotal     decimal.Decimal `json:"accrued_total"`
	TotalClaimed     decimal.Decimal `json:"total_claimed"`
}

// CalculateAccruedInterest returns the investor's total accrued
// interest as of now (settled unclaimed plus pending since the
// checkpoint) without mutating anything.
func (s *InterestService) CalculateAccruedInterest(ctx context.Context, investorID, projectID uuid.UUID) (decimal.Decimal, error) {
	record, project, ledger, err := s.load(ctx, investorID, projectID)
	if err != nil {
		return decimal.Zero, err
	}
	return record.AccruedTotal(ledger.BalanceOf(investorID), project.RateBps, time.Now()), nil
}

// GetAccrualInfo returns the full interest read model for one holding
func (s *InterestService) GetAccrualInfo(ctx context.Context, investorID, projectID uuid.UUID) (*AccrualInfo, error) {
	record, project, ledger, err := s.load(ctx, investorID, projectID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	balance := ledger.BalanceOf(investorID)
	pending := record.PendingInterest(balance, project.RateBps, now)

	return &AccrualInfo{
		InvestorID:       investorID,
		ProjectID:        projectID,
		TokenBalance:     balance,
		RateBps:          project.RateBps,
		LastAccrualAt:    record.LastAccrualAt,
		AccruedUnclaimed: record.AccruedUnclaimed,
		PendingInterest:  pending,
		AccruedTotal:     record.AccruedUnclaimed.Add(pending),
		TotalClaimed:     record.TotalClaimed,
	}, nil
}

// UpdateAccrual settles one investor's accrual checkpoint to now and
// returns the interest earned since the previous checkpoint
func (s *InterestService) UpdateAccrual(ctx context.Context, investorID, projectID uuid.UUID) (decimal.Decimal, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "interest", "update_accrual")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, projectID.String(),
		telemetry.SpanAttrInvestorID, investorID.String(),
	)

	lock := s.locks.acquire(projectID.String())
	lock.Lock()
	defer lock.Unlock()

	record, project, ledger, err := s.load(ctx, investorID, projectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return decimal.Zero, err
	}

	earned := record.Accrue(ledger.BalanceOf(investorID), project.RateBps, time.Now())

	if err := s.accrualRepo.SaveWithLock(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return decimal.Zero, fmt.Errorf("failed to save accrual record: %w", err)
	}

	return earned, nil
}

// BatchAccrualOutcome is the per-investor result of a batch accrual run
type BatchAccrualOutcome struct {
	InvestorID uuid.UUID       `json:"investor_id"`
	Earned     decimal.Decimal `json:"earned"`
	Err        string          `json:"error,omitempty"`
}

// BatchUpdateAccrual settles accrual for the named investors on a
// project, or for every investor when the list is empty. Each entry
// succeeds or fails independently; one bad record does not abort the
// batch.
func (s *InterestService) BatchUpdateAccrual(ctx context.Context, projectID uuid.UUID, investorIDs []uuid.UUID) ([]BatchAccrualOutcome, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "interest", "batch_update_accrual")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrProjectID, projectID.String())

	lock := s.locks.acquire(projectID.String())
	lock.Lock()
	defer lock.Unlock()

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	ledger, err := s.ledgerRepo.FindByProject(ctx, projectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	records, err := s.accrualRepo.FindByProject(ctx, projectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list accrual records: %w", err)
	}

	selected := make([]*interest.AccrualRecord, 0, len(records))
	var missing []uuid.UUID
	if len(investorIDs) == 0 {
		for i := range records {
			selected = append(selected, &records[i])
		}
	} else {
		byInvestor := make(map[uuid.UUID]*interest.AccrualRecord, len(records))
		for i := range records {
			byInvestor[records[i].InvestorID] = &records[i]
		}
		for _, id := range investorIDs {
			if r, ok := byInvestor[id]; ok {
				selected = append(selected, r)
			} else {
				missing = append(missing, id)
			}
		}
	}

	now := time.Now()
	outcomes := make([]BatchAccrualOutcome, 0, len(selected)+len(missing))
	failures := 0

	for _, record := range selected {
		earned := record.Accrue(ledger.BalanceOf(record.InvestorID), project.RateBps, now)

		outcome := BatchAccrualOutcome{InvestorID: record.InvestorID, Earned: earned}
		if err := s.accrualRepo.SaveWithLock(ctx, record); err != nil {
			outcome.Err = err.Error()
			failures++
			s.logger.Error("Batch accrual entry failed",
				zap.String("project_id", projectID.String()),
				zap.String("investor_id", record.InvestorID.String()),
				zap.Error(err),
			)
		}
		outcomes = append(outcomes, outcome)
	}

	for _, id := range missing {
		outcomes = append(outcomes, BatchAccrualOutcome{
			InvestorID: id,
			Earned:     decimal.Zero,
			Err:        "no accrual record for investor",
		})
		failures++
	}

	telemetry.AddEvent(span, "batch_accrual_completed",
		"records", len(selected),
		"failures", failures,
	)

	return outcomes, nil
}

// ClaimResult represents a successful interest claim
type ClaimResult struct {
	InvestorID   uuid.UUID       `json:"investor_id"`
	ProjectID    uuid.UUID       `json:"project_id"`
	Claimed      decimal.Decimal `json:"claimed"`
	TotalClaimed decimal.Decimal `json:"total_claimed"`
	NewBalance   decimal.Decimal `json:"new_balance"`
}

// ClaimInterest settles accrual to now and pays out the entire
// unclaimed balance by minting it onto the project ledger, so total
// supply grows by exactly the claimed amount. The accrual settles at
// the pre-mint balance; the newly minted tokens start earning from now.
func (s *InterestService) ClaimInterest(ctx context.Context, investorID, projectID uuid.UUID) (*ClaimResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "interest", "claim")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, projectID.String(),
		telemetry.SpanAttrInvestorID, investorID.String(),
	)

	lock := s.locks.acquire(projectID.String())
	lock.Lock()
	defer lock.Unlock()

	record, project, ledger, err := s.load(ctx, investorID, projectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := time.Now()
	record.Accrue(ledger.BalanceOf(investorID), project.RateBps, now)

	claimed, err := record.Claim(now)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := ledger.Mint(investorID, claimed); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.accrualRepo.SaveWithLock(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save accrual record: %w", err)
	}
	if err := s.ledgerRepo.SaveWithLock(ctx, ledger); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save ledger: %w", err)
	}

	telemetry.AddEvent(span, "interest_claimed", telemetry.SpanAttrAmount, claimed.String())

	return &ClaimResult{
		InvestorID:   investorID,
		ProjectID:    projectID,
		Claimed:      claimed,
		TotalClaimed: record.TotalClaimed,
		NewBalance:   ledger.BalanceOf(investorID),
	}, nil
}

// load fetches the accrual record with its project and ledger context
func (s *InterestService) load(ctx context.Context, investorID, projectID uuid.UUID) (*interest.AccrualRecord, *funding.Project, *token.Ledger, error) {
	record, err := s.accrualRepo.FindByInvestorAndProject(ctx, investorID, projectID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get accrual record: %w", err)
	}
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get project: %w", err)
	}
	ledger, err := s.ledgerRepo.FindByProject(ctx, projectID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	return record, project, ledger, nil
}
