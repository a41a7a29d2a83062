package funding

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MilestoneStatus represents the completion state of a milestone
type MilestoneStatus string

const (
	MilestoneStatusPending   MilestoneStatus = "PENDING"
	MilestoneStatusCompleted MilestoneStatus = "COMPLETED" // Terminal
)

// IsValid checks if the status is a valid MilestoneStatus
func (s MilestoneStatus) IsValid() bool {
	return s == MilestoneStatusPending || s == MilestoneStatusCompleted
}

// String returns the string representation of MilestoneStatus
func (s MilestoneStatus) String() string {
	return string(s)
}

// Milestone is a planned deliverable carrying a fund-release amount.
// It is a value object within the Project aggregate, stored as JSONB.
// The release amount is fixed at creation and never changes; status
// moves Pending -> Completed exactly once.
type Milestone struct {
	Sequence        int             `json:"sequence"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	ReleaseAmount   decimal.Decimal `json:"release_amount"`
	TargetDate      time.Time       `json:"target_date"`
	Status          MilestoneStatus `json:"status"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	VerifierID      *uuid.UUID      `json:"verifier_id,omitempty"`
	DeliverableRefs []string        `json:"deliverable_refs,omitempty"` // Opaque evidence references; content never inspected
	CreatedAt       time.Time       `json:"created_at"`
}

// IsCompleted returns true if the milestone has been completed
func (m *Milestone) IsCompleted() bool {
	return m.Status == MilestoneStatusCompleted
}

// IsOverdue returns true if the milestone is pending past its target date
func (m *Milestone) IsOverdue(now time.Time) bool {
	return m.Status == MilestoneStatusPending && now.After(m.TargetDate)
}

// markCompleted records the terminal transition. Callers must have
// verified the escrow bounds first; see Project.CompleteMilestone.
func (m *Milestone) markCompleted(verifier uuid.UUID, refs []string, now time.Time) {
	m.Status = MilestoneStatusCompleted
	m.CompletedAt = &now
	m.VerifierID = &verifier
	m.DeliverableRefs = append([]string{}, refs...)
}

// Milestones is an ordered slice of Milestone that implements GORM
// Scanner/Valuer for JSONB storage
type Milestones []Milestone

// Value implements driver.Valuer interface for GORM to store as JSONB
func (ms Milestones) Value() (driver.Value, error) {
	if ms == nil {
		return "[]", nil
	}
	return json.Marshal(ms)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (ms *Milestones) Scan(value interface{}) error {
	if value == nil {
		*ms = Milestones{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Milestones: unsupported type")
	}

	if len(bytes) == 0 {
		*ms = Milestones{}
		return nil
	}

	return json.Unmarshal(bytes, ms)
}

// find returns the milestone with the given sequence, or nil
func (ms Milestones) find(sequence int) *Milestone {
	for i := range ms {
		if ms[i].Sequence == sequence {
			return &ms[i]
		}
	}
	return nil
}

// completedCount returns the number of completed milestones
func (ms Milestones) completedCount() int {
	count := 0
	for i := range ms {
		if ms[i].IsCompleted() {
			count++
		}
	}
	return count
}

// InvestorPosition records one investor's funding history in a project.
// It is a value object within the Project aggregate, stored as JSONB;
// positions are created on first investment and never deleted.
// TokensPurchased counts tokens bought through the investment flow
// only; the live balance is kept on the token ledger and moves with
// secondary transfers.
type InvestorPosition struct {
	InvestorID      uuid.UUID       `json:"investor_id"`
	TokensPurchased decimal.Decimal `json:"tokens_purchased"`
	TotalInvested   decimal.Decimal `json:"total_invested"`
	FirstInvestedAt time.Time       `json:"first_invested_at"`
	LastInvestedAt  time.Time       `json:"last_invested_at"`
}

// InvestorPositions is a slice of InvestorPosition that implements GORM
// Scanner/Valuer for JSONB storage
type InvestorPositions []InvestorPosition

// Value implements driver.Valuer interface for GORM to store as JSONB
func (ps InvestorPositions) Value() (driver.Value, error) {
	if ps == nil {
		return "[]", nil
	}
	return json.Marshal(ps)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (ps *InvestorPositions) Scan(value interface{}) error {
	if value == nil {
		*ps = InvestorPositions{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan InvestorPositions: unsupported type")
	}

	if len(bytes) == 0 {
		*ps = InvestorPositions{}
		return nil
	}

	return json.Unmarshal(bytes, ps)
}

// find returns the position for the investor, or nil
func (ps InvestorPositions) find(investorID uuid.UUID) *InvestorPosition {
	for i := range ps {
		if ps[i].InvestorID == investorID {
			return &ps[i]
		}
	}
	return nil
}
