package token

import (
	"github.com/bondledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerCreatedEvent is raised when a project ledger is created
type LedgerCreatedEvent struct {
	shared.BaseDomainEvent
	LedgerID  uuid.UUID `json:"ledger_id"`
	ProjectID uuid.UUID `json:"project_id"`
}

// EventType returns the event type name
func (e *LedgerCreatedEvent) EventType() string {
	return "LedgerCreated"
}

// NewLedgerCreatedEvent creates a new LedgerCreatedEvent
func NewLedgerCreatedEvent(l *Ledger) *LedgerCreatedEvent {
	return &LedgerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LedgerCreated", "Ledger", l.ID),
		LedgerID:        l.ID,
		ProjectID:       l.ProjectID,
	}
}

// TokensMintedEvent is raised when tokens are minted to a holder
type TokensMintedEvent struct {
	shared.BaseDomainEvent
	LedgerID    uuid.UUID       `json:"ledger_id"`
	ProjectID   uuid.UUID       `json:"project_id"`
	HolderID    uuid.UUID       `json:"holder_id"`
	Amount      decimal.Decimal `json:"amount"`
	TotalSupply decimal.Decimal `json:"total_supply"`
}

// EventType returns the event type name
func (e *TokensMintedEvent) EventType() string {
	return "TokensMinted"
}

// NewTokensMintedEvent creates a new TokensMintedEvent
func NewTokensMintedEvent(l *Ledger, holder uuid.UUID, amount decimal.Decimal) *TokensMintedEvent {
	return &TokensMintedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TokensMinted", "Ledger", l.ID),
		LedgerID:        l.ID,
		ProjectID:       l.ProjectID,
		HolderID:        holder,
		Amount:          amount,
		TotalSupply:     l.TotalSupply,
	}
}

// TokensBurnedEvent is raised when tokens are burned from a holder
type TokensBurnedEvent struct {
	shared.BaseDomainEvent
	LedgerID    uuid.UUID       `json:"ledger_id"`
	ProjectID   uuid.UUID       `json:"project_id"`
	HolderID    uuid.UUID       `json:"holder_id"`
	Amount      decimal.Decimal `json:"amount"`
	TotalSupply decimal.Decimal `json:"total_supply"`
}

// EventType returns the event type name
func (e *TokensBurnedEvent) EventType() string {
	return "TokensBurned"
}

// NewTokensBurnedEvent creates a new TokensBurnedEvent
func NewTokensBurnedEvent(l *Ledger, holder uuid.UUID, amount decimal.Decimal) *TokensBurnedEvent {
	return &TokensBurnedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TokensBurned", "Ledger", l.ID),
		LedgerID:        l.ID,
		ProjectID:       l.ProjectID,
		HolderID:        holder,
		Amount:          amount,
		TotalSupply:     l.TotalSupply,
	}
}

// TokensTransferredEvent is raised when tokens move between holders
type TokensTransferredEvent struct {
	shared.BaseDomainEvent
	LedgerID  uuid.UUID       `json:"ledger_id"`
	ProjectID uuid.UUID       `json:"project_id"`
	FromID    uuid.UUID       `json:"from_id"`
	ToID      uuid.UUID       `json:"to_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *TokensTransferredEvent) EventType() string {
	return "TokensTransferred"
}

// NewTokensTransferredEvent creates a new TokensTransferredEvent
func NewTokensTransferredEvent(l *Ledger, from, to uuid.UUID, amount decimal.Decimal) *TokensTransferredEvent {
	return &TokensTransferredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TokensTransferred", "Ledger", l.ID),
		LedgerID:        l.ID,
		ProjectID:       l.ProjectID,
		FromID:          from,
		ToID:            to,
		Amount:          amount,
	}
}

// LedgerPausedEvent is raised when transfers are paused
type LedgerPausedEvent struct {
	shared.BaseDomainEvent
	LedgerID  uuid.UUID `json:"ledger_id"`
	ProjectID uuid.UUID `json:"project_id"`
}

// EventType returns the event type name
func (e *LedgerPausedEvent) EventType() string {
	return "LedgerPaused"
}

// NewLedgerPausedEvent creates a new LedgerPausedEvent
func NewLedgerPausedEvent(l *Ledger) *LedgerPausedEvent {
	return &LedgerPausedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LedgerPaused", "Ledger", l.ID),
		LedgerID:        l.ID,
		ProjectID:       l.ProjectID,
	}
}

// LedgerUnpausedEvent is raised when transfers are re-enabled
type LedgerUnpausedEvent struct {
	shared.BaseDomainEvent
	LedgerID  uuid.UUID `json:"ledger_id"`
	ProjectID uuid.UUID `json:"project_id"`
}

// EventType returns the event type name
func (e *LedgerUnpausedEvent) EventType() string {
	return "LedgerUnpaused"
}

// NewLedgerUnpausedEvent creates a new LedgerUnpausedEvent
func NewLedgerUnpausedEvent(l *Ledger) *LedgerUnpausedEvent {
	return &LedgerUnpausedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LedgerUnpaused", "Ledger", l.ID),
		LedgerID:        l.ID,
		ProjectID:       l.ProjectID,
	}
}
