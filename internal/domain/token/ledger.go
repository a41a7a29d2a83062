package token

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/bondledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Holding records one holder's bond-token balance within a ledger.
// It is a value object within the Ledger aggregate, stored as JSONB.
type Holding struct {
	HolderID  uuid.UUID       `json:"holder_id"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Holdings is a slice of Holding that implements GORM Scanner/Valuer for JSONB storage
type Holdings []Holding

// Value implements driver.Valuer interface for GORM to store as JSONB
func (h Holdings) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (h *Holdings) Scan(value interface{}) error {
	if value == nil {
		*h = Holdings{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Holdings: unsupported type")
	}

	if len(bytes) == 0 {
		*h = Holdings{}
		return nil
	}

	return json.Unmarshal(bytes, h)
}

// Ledger is the aggregate root for a project's fungible bond-token
// bookkeeping. It knows nothing about escrow or milestones; it only
// does balance arithmetic under the mint/burn/transfer rules.
type Ledger struct {
	shared.BaseAggregateRoot
	ProjectID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"project_id"`
	TotalSupply decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_supply"`
	Paused      bool            `gorm:"not null;default:false" json:"paused"`
	Holdings    Holdings        `gorm:"type:jsonb" json:"holdings"`
}

// TableName returns the table name for GORM
func (Ledger) TableName() string {
	return "ledgers"
}

// NewLedger creates an empty ledger for a project
func NewLedger(projectID uuid.UUID) (*Ledger, error) {
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Project ID cannot be empty")
	}

	l := &Ledger{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProjectID:         projectID,
		TotalSupply:       decimal.Zero,
		Paused:            false,
		Holdings:          Holdings{},
	}

	l.AddDomainEvent(NewLedgerCreatedEvent(l))

	return l, nil
}

// BalanceOf returns the holder's current balance (zero if never held)
func (l *Ledger) BalanceOf(holder uuid.UUID) decimal.Decimal {
	for i := range l.Holdings {
		if l.Holdings[i].HolderID == holder {
			return l.Holdings[i].Balance
		}
	}
	return decimal.Zero
}

// HolderIDs returns the IDs of all holders ever recorded, including
// those whose balance has gone back to zero.
func (l *Ledger) HolderIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(l.Holdings))
	for i := range l.Holdings {
		ids[i] = l.Holdings[i].HolderID
	}
	return ids
}

// credit adds to a holder's balance, creating the holding on first touch.
func (l *Ledger) credit(holder uuid.UUID, amount decimal.Decimal, now time.Time) {
	for i := range l.Holdings {
		if l.Holdings[i].HolderID == holder {
			l.Holdings[i].Balance = l.Holdings[i].Balance.Add(amount)
			l.Holdings[i].UpdatedAt = now
			return
		}
	}
	l.Holdings = append(l.Holdings, Holding{HolderID: holder, Balance: amount, UpdatedAt: now})
}

// debit subtracts from a holder's balance. The holding stays on the
// ledger at zero balance; positions are never deleted.
func (l *Ledger) debit(holder uuid.UUID, amount decimal.Decimal, now time.Time) {
	for i := range l.Holdings {
		if l.Holdings[i].HolderID == holder {
			l.Holdings[i].Balance = l.Holdings[i].Balance.Sub(amount)
			l.Holdings[i].UpdatedAt = now
			return
		}
	}
}

// Mint creates amount new tokens for the holder and grows total supply.
// The Minter capability check happens in the application layer; the
// ledger itself only enforces amount validity.
func (l *Ledger) Mint(to uuid.UUID, amount decimal.Decimal) error {
	if to == uuid.Nil {
		return shared.NewDomainError("INVALID_HOLDER", "Holder ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidAmount
	}

	now := time.Now()
	l.credit(to, amount, now)
	l.TotalSupply = l.TotalSupply.Add(amount)
	l.UpdatedAt = now
	l.IncrementVersion()

	l.AddDomainEvent(NewTokensMintedEvent(l, to, amount))

	return nil
}

// Burn destroys amount tokens held by the holder and shrinks total supply
func (l *Ledger) Burn(from uuid.UUID, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidAmount
	}
	if amount.GreaterThan(l.BalanceOf(from)) {
		return shared.ErrInsufficientBalance
	}

	now := time.Now()
	l.debit(from, amount, now)
	l.TotalSupply = l.TotalSupply.Sub(amount)
	l.UpdatedAt = now
	l.IncrementVersion()

	l.AddDomainEvent(NewTokensBurnedEvent(l, from, amount))

	return nil
}

// CanTransfer validates the transfer preconditions without mutating
// the ledger. Callers with side effects of their own (accrual
// settlement) run this first so a rejected transfer leaves no trace.
func (l *Ledger) CanTransfer(from, to uuid.UUID, amount decimal.Decimal) error {
	if l.Paused {
		return shared.ErrTransfersPaused
	}
	if from == uuid.Nil || to == uuid.Nil {
		return shared.NewDomainError("INVALID_HOLDER", "Holder ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidAmount
	}
	if amount.GreaterThan(l.BalanceOf(from)) {
		return shared.ErrInsufficientBalance
	}
	return nil
}

// Transfer moves tokens between two holders. Blocked while the ledger
// is paused; mint and burn are deliberately unaffected by the pause
// switch (it is a transfer circuit breaker, not a supply freeze).
func (l *Ledger) Transfer(from, to uuid.UUID, amount decimal.Decimal) error {
	if err := l.CanTransfer(from, to, amount); err != nil {
		return err
	}

	now := time.Now()
	l.debit(from, amount, now)
	l.credit(to, amount, now)
	l.UpdatedAt = now
	l.IncrementVersion()

	l.AddDomainEvent(NewTokensTransferredEvent(l, from, to, amount))

	return nil
}

// Pause blocks transfers. Idempotent.
func (l *Ledger) Pause() {
	if l.Paused {
		return
	}
	l.Paused = true
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLedgerPausedEvent(l))
}

// Unpause re-enables transfers. Idempotent.
func (l *Ledger) Unpause() {
	if !l.Paused {
		return
	}
	l.Paused = false
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLedgerUnpausedEvent(l))
}
