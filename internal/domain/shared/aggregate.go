package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseAggregateRoot carries the identity, audit timestamps, optimistic
// locking version and pending domain events shared by every aggregate
// in the system. Aggregates embed it and bump Version on each mutation
// so SaveWithLock can detect concurrent writers.
type BaseAggregateRoot struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time     `gorm:"type:timestamptz;not null" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"type:timestamptz;not null" json:"updated_at"`
	Version      int           `gorm:"not null;default:1" json:"version"`
	domainEvents []DomainEvent `gorm:"-"`
}

// GetID returns the aggregate ID
func (a *BaseAggregateRoot) GetID() uuid.UUID {
	return a.ID
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// NewBaseAggregateRoot creates a base aggregate root with a fresh ID,
// both timestamps at now and the version at 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	now := time.Now()
	return BaseAggregateRoot{
		ID:           uuid.New(),
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}
