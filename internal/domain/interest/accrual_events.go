package interest

import (
	"github.com/bondledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccrualRecordOpenedEvent is raised when an investor's accrual record
// is created on first investment
type AccrualRecordOpenedEvent struct {
	shared.BaseDomainEvent
	RecordID   uuid.UUID `json:"record_id"`
	InvestorID uuid.UUID `json:"investor_id"`
	ProjectID  uuid.UUID `json:"project_id"`
}

// EventType returns the event type name
func (e *AccrualRecordOpenedEvent) EventType() string {
	return "AccrualRecordOpened"
}

// NewAccrualRecordOpenedEvent creates a new AccrualRecordOpenedEvent
func NewAccrualRecordOpenedEvent(r *AccrualRecord) *AccrualRecordOpenedEvent {
	return &AccrualRecordOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AccrualRecordOpened", "AccrualRecord", r.ID),
		RecordID:        r.ID,
		InvestorID:      r.InvestorID,
		ProjectID:       r.ProjectID,
	}
}

// InterestAccruedEvent is raised when earned interest is folded into
// the unclaimed balance
type InterestAccruedEvent struct {
	shared.BaseDomainEvent
	RecordID         uuid.UUID       `json:"record_id"`
	InvestorID       uuid.UUID       `json:"investor_id"`
	ProjectID        uuid.UUID       `json:"project_id"`
	Earned           decimal.Decimal `json:"earned"`
	AccruedUnclaimed decimal.Decimal `json:"accrued_unclaimed"`
}

// EventType returns the event type name
func (e *InterestAccruedEvent) EventType() string {
	return "InterestAccrued"
}

// NewInterestAccruedEvent creates a new InterestAccruedEvent
func NewInterestAccruedEvent(r *AccrualRecord, earned decimal.Decimal) *InterestAccruedEvent {
	return &InterestAccruedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("InterestAccrued", "AccrualRecord", r.ID),
		RecordID:         r.ID,
		InvestorID:       r.InvestorID,
		ProjectID:        r.ProjectID,
		Earned:           earned,
		AccruedUnclaimed: r.AccruedUnclaimed,
	}
}

// InterestClaimedEvent is raised when the unclaimed balance is claimed
type InterestClaimedEvent struct {
	shared.BaseDomainEvent
	RecordID     uuid.UUID       `json:"record_id"`
	InvestorID   uuid.UUID       `json:"investor_id"`
	ProjectID    uuid.UUID       `json:"project_id"`
	Amount       decimal.Decimal `json:"amount"`
	TotalClaimed decimal.Decimal `json:"total_claimed"`
}

// EventType returns the event type name
func (e *InterestClaimedEvent) EventType() string {
	return "InterestClaimed"
}

// NewInterestClaimedEvent creates a new InterestClaimedEvent
func NewInterestClaimedEvent(r *AccrualRecord, amount decimal.Decimal) *InterestClaimedEvent {
	return &InterestClaimedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InterestClaimed", "AccrualRecord", r.ID),
		RecordID:        r.ID,
		InvestorID:      r.InvestorID,
		ProjectID:       r.ProjectID,
		Amount:          amount,
		TotalClaimed:    r.TotalClaimed,
	}
}
