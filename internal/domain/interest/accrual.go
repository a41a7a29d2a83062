package interest

import (
	"time"

	"github.com/bondledger/backend/internal/domain/shared"
	"github.com/bondledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// secondsPerDay is the fixed day length used for accrual; calendar
// irregularities (DST, leap seconds) are ignored on purpose.
const secondsPerDay = 86400

// daysPerYear is the fixed annualization basis
const daysPerYear = 365

// AccrualPrecision is the number of decimal places accrued interest is
// truncated to at every accrual step
const AccrualPrecision int32 = 4

// CalculateInterest computes simple interest for a holding over an
// elapsed duration. Only whole elapsed days count; a partial day earns
// nothing. The formula is
//
//	balance * rateBps * wholeDays / (10000 * 365)
//
// evaluated in fixed-point decimal and truncated to AccrualPrecision,
// so the result is exact and identical across platforms.
func CalculateInterest(balance decimal.Decimal, rateBps int64, elapsed time.Duration) decimal.Decimal {
	if balance.LessThanOrEqual(decimal.Zero) || rateBps <= 0 || elapsed <= 0 {
		return decimal.Zero
	}

	wholeDays := int64(elapsed / (secondsPerDay * time.Second))
	if wholeDays == 0 {
		return decimal.Zero
	}

	numerator := balance.
		Mul(decimal.NewFromInt(rateBps)).
		Mul(decimal.NewFromInt(wholeDays))
	denominator := decimal.NewFromInt(valueobject.BasisPointScale * daysPerYear)

	return numerator.Div(denominator).Truncate(AccrualPrecision)
}

// AccrualRecord is the aggregate root tracking one investor's interest
// position in one project. It carries the accrual checkpoint and the
// accrued-but-unclaimed balance; the token balance and rate live on the
// ledger and project respectively and are passed in at accrual time.
type AccrualRecord struct {
	shared.BaseAggregateRoot
	InvestorID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_accrual_investor_project,priority:1" json:"investor_id"`
	ProjectID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_accrual_investor_project,priority:2;index" json:"project_id"`
	LastAccrualAt    time.Time       `gorm:"type:timestamptz;not null" json:"last_accrual_at"`
	AccruedUnclaimed decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"accrued_unclaimed"`
	TotalClaimed     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_claimed"`
}

// TableName returns the table name for GORM
func (AccrualRecord) TableName() string {
	return "accrual_records"
}

// NewAccrualRecord opens an accrual record with its checkpoint at now.
// Created on an investor's first token acquisition in a project.
func NewAccrualRecord(investorID, projectID uuid.UUID, now time.Time) (*AccrualRecord, error) {
	if investorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVESTOR", "Investor ID cannot be empty")
	}
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Project ID cannot be empty")
	}

	r := &AccrualRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvestorID:        investorID,
		ProjectID:         projectID,
		LastAccrualAt:     now,
		AccruedUnclaimed:  decimal.Zero,
		TotalClaimed:      decimal.Zero,
	}

	r.AddDomainEvent(NewAccrualRecordOpenedEvent(r))

	return r, nil
}

// PendingInterest returns the interest earned since the checkpoint at
// the given balance and rate, without mutating the record.
func (r *AccrualRecord) PendingInterest(balance decimal.Decimal, rateBps int64, now time.Time) decimal.Decimal {
	return CalculateInterest(balance, rateBps, now.Sub(r.LastAccrualAt))
}

// AccruedTotal returns unclaimed plus pending interest as of now
func (r *AccrualRecord) AccruedTotal(balance decimal.Decimal, rateBps int64, now time.Time) decimal.Decimal {
	return r.AccruedUnclaimed.Add(r.PendingInterest(balance, rateBps, now))
}

// Accrue folds the interest earned since the checkpoint into the
// unclaimed balance and advances the checkpoint to now. Accruing twice
// at the same instant is a no-op for the balance, so the operation is
// idempotent per timestamp. Callers settle accrual before any balance
// change so earned interest is never computed against a stale balance.
func (r *AccrualRecord) Accrue(balance decimal.Decimal, rateBps int64, now time.Time) decimal.Decimal {
	if now.Before(r.LastAccrualAt) {
		return decimal.Zero
	}

	earned := CalculateInterest(balance, rateBps, now.Sub(r.LastAccrualAt))
	r.AccruedUnclaimed = r.AccruedUnclaimed.Add(earned)
	r.LastAccrualAt = now
	r.UpdatedAt = now
	r.IncrementVersion()

	if earned.IsPositive() {
		r.AddDomainEvent(NewInterestAccruedEvent(r, earned))
	}

	return earned
}

// Claim moves the entire unclaimed balance to the claimed total and
// returns the claimed amount. The caller pays out by minting the same
// amount onto the project ledger in the same unit of work.
func (r *AccrualRecord) Claim(now time.Time) (decimal.Decimal, error) {
	if !r.AccruedUnclaimed.IsPositive() {
		return decimal.Zero, shared.ErrNothingToClaim
	}

	claimed := r.AccruedUnclaimed
	r.AccruedUnclaimed = decimal.Zero
	r.TotalClaimed = r.TotalClaimed.Add(claimed)
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewInterestClaimedEvent(r, claimed))

	return claimed, nil
}
