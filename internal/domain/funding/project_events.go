package funding

import (
	"time"

	"github.com/bondledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectCreatedEvent is raised when a new project is created
type ProjectCreatedEvent struct {
	shared.BaseDomainEvent
	ProjectID      uuid.UUID       `json:"project_id"`
	Name           string          `json:"name"`
	ManagerID      uuid.UUID       `json:"manager_id"`
	FundingGoal    decimal.Decimal `json:"funding_goal"`
	RateBps        int64           `json:"rate_bps"`
	DurationMonths int             `json:"duration_months"`
	TokenPrice     decimal.Decimal `json:"token_price"`
}

// EventType returns the event type name
func (e *ProjectCreatedEvent) EventType() string {
	return "ProjectCreated"
}

// NewProjectCreatedEvent creates a new ProjectCreatedEvent
func NewProjectCreatedEvent(p *Project) *ProjectCreatedEvent {
	return &ProjectCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ProjectCreated", "Project", p.ID),
		ProjectID:       p.ID,
		Name:            p.Name,
		ManagerID:       p.ManagerID,
		FundingGoal:     p.FundingGoal,
		RateBps:         p.RateBps,
		DurationMonths:  p.DurationMonths,
		TokenPrice:      p.TokenPrice,
	}
}

// ProjectActivatedEvent is raised when a project opens for investment
type ProjectActivatedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID `json:"project_id"`
}

// EventType returns the event type name
func (e *ProjectActivatedEvent) EventType() string {
	return "ProjectActivated"
}

// NewProjectActivatedEvent creates a new ProjectActivatedEvent
func NewProjectActivatedEvent(p *Project) *ProjectActivatedEvent {
	return &ProjectActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ProjectActivated", "Project", p.ID),
		ProjectID:       p.ID,
	}
}

// ProjectFundedEvent is raised when raised reaches the funding goal
type ProjectFundedEvent struct {
	shared.BaseDomainEvent
	ProjectID   uuid.UUID       `json:"project_id"`
	TotalRaised decimal.Decimal `json:"total_raised"`
}

// EventType returns the event type name
func (e *ProjectFundedEvent) EventType() string {
	return "ProjectFunded"
}

// NewProjectFundedEvent creates a new ProjectFundedEvent
func NewProjectFundedEvent(p *Project) *ProjectFundedEvent {
	return &ProjectFundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ProjectFunded", "Project", p.ID),
		ProjectID:       p.ID,
		TotalRaised:     p.TotalRaised,
	}
}

// ProjectCompletedEvent is raised when every milestone has completed
type ProjectCompletedEvent struct {
	shared.BaseDomainEvent
	ProjectID     uuid.UUID       `json:"project_id"`
	TotalReleased decimal.Decimal `json:"total_released"`
}

// EventType returns the event type name
func (e *ProjectCompletedEvent) EventType() string {
	return "ProjectCompleted"
}

// NewProjectCompletedEvent creates a new ProjectCompletedEvent
func NewProjectCompletedEvent(p *Project) *ProjectCompletedEvent {
	return &ProjectCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ProjectCompleted", "Project", p.ID),
		ProjectID:       p.ID,
		TotalReleased:   p.TotalReleased,
	}
}

// ProjectCancelledEvent is raised when a project is cancelled
type ProjectCancelledEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID `json:"project_id"`
	Reason    string    `json:"reason"`
}

// EventType returns the event type name
func (e *ProjectCancelledEvent) EventType() string {
	return "ProjectCancelled"
}

// NewProjectCancelledEvent creates a new ProjectCancelledEvent
func NewProjectCancelledEvent(p *Project, reason string) *ProjectCancelledEvent {
	return &ProjectCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ProjectCancelled", "Project", p.ID),
		ProjectID:       p.ID,
		Reason:          reason,
	}
}

// InvestmentRecordedEvent is raised when an investment is accepted
type InvestmentRecordedEvent struct {
	shared.BaseDomainEvent
	ProjectID   uuid.UUID       `json:"project_id"`
	InvestorID  uuid.UUID       `json:"investor_id"`
	Amount      decimal.Decimal `json:"amount"`
	Tokens      decimal.Decimal `json:"tokens"`
	TotalRaised decimal.Decimal `json:"total_raised"`
}

// EventType returns the event type name
func (e *InvestmentRecordedEvent) EventType() string {
	return "InvestmentRecorded"
}

// NewInvestmentRecordedEvent creates a new InvestmentRecordedEvent
func NewInvestmentRecordedEvent(p *Project, investorID uuid.UUID, amount, tokens decimal.Decimal) *InvestmentRecordedEvent {
	return &InvestmentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvestmentRecorded", "Project", p.ID),
		ProjectID:       p.ID,
		InvestorID:      investorID,
		Amount:          amount,
		Tokens:          tokens,
		TotalRaised:     p.TotalRaised,
	}
}

// MilestoneAddedEvent is raised when a milestone is planned
type MilestoneAddedEvent struct {
	shared.BaseDomainEvent
	ProjectID     uuid.UUID       `json:"project_id"`
	Sequence      int             `json:"sequence"`
	Name          string          `json:"name"`
	ReleaseAmount decimal.Decimal `json:"release_amount"`
	TargetDate    time.Time       `json:"target_date"`
}

// EventType returns the event type name
func (e *MilestoneAddedEvent) EventType() string {
	return "MilestoneAdded"
}

// NewMilestoneAddedEvent creates a new MilestoneAddedEvent
func NewMilestoneAddedEvent(p *Project, m *Milestone) *MilestoneAddedEvent {
	return &MilestoneAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("MilestoneAdded", "Project", p.ID),
		ProjectID:       p.ID,
		Sequence:        m.Sequence,
		Name:            m.Name,
		ReleaseAmount:   m.ReleaseAmount,
		TargetDate:      m.TargetDate,
	}
}

// MilestoneCompletedEvent is raised when a verifier completes a milestone
type MilestoneCompletedEvent struct {
	shared.BaseDomainEvent
	ProjectID       uuid.UUID       `json:"project_id"`
	Sequence        int             `json:"sequence"`
	Name            string          `json:"name"`
	ReleaseAmount   decimal.Decimal `json:"release_amount"`
	VerifierID      uuid.UUID       `json:"verifier_id"`
	DeliverableRefs []string        `json:"deliverable_refs,omitempty"`
	CompletedAt     time.Time       `json:"completed_at"`
}

// EventType returns the event type name
func (e *MilestoneCompletedEvent) EventType() string {
	return "MilestoneCompleted"
}

// NewMilestoneCompletedEvent creates a new MilestoneCompletedEvent
func NewMilestoneCompletedEvent(p *Project, m *Milestone) *MilestoneCompletedEvent {
	completedAt := time.Now()
	if m.CompletedAt != nil {
		completedAt = *m.CompletedAt
	}
	var verifier uuid.UUID
	if m.VerifierID != nil {
		verifier = *m.VerifierID
	}
	return &MilestoneCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("MilestoneCompleted", "Project", p.ID),
		ProjectID:       p.ID,
		Sequence:        m.Sequence,
		Name:            m.Name,
		ReleaseAmount:   m.ReleaseAmount,
		VerifierID:      verifier,
		DeliverableRefs: m.DeliverableRefs,
		CompletedAt:     completedAt,
	}
}

// FundsReleasedEvent is raised for every ordinary milestone-gated release
type FundsReleasedEvent struct {
	shared.BaseDomainEvent
	ProjectID     uuid.UUID       `json:"project_id"`
	Amount        decimal.Decimal `json:"amount"`
	Destination   string          `json:"destination"`
	Sequence      int             `json:"sequence"`
	TotalReleased decimal.Decimal `json:"total_released"`
}

// EventType returns the event type name
func (e *FundsReleasedEvent) EventType() string {
	return "FundsReleased"
}

// NewFundsReleasedEvent creates a new FundsReleasedEvent
func NewFundsReleasedEvent(p *Project, amount decimal.Decimal, destination string, sequence int) *FundsReleasedEvent {
	return &FundsReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("FundsReleased", "Project", p.ID),
		ProjectID:       p.ID,
		Amount:          amount,
		Destination:     destination,
		Sequence:        sequence,
		TotalReleased:   p.TotalReleased,
	}
}

// EmergencyWithdrawalEvent is raised by the Owner-only escape hatch.
// Deliberately a separate event type from FundsReleased so emergency
// flows are unmistakable in the audit trail.
type EmergencyWithdrawalEvent struct {
	shared.BaseDomainEvent
	ProjectID     uuid.UUID       `json:"project_id"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
	TotalReleased decimal.Decimal `json:"total_released"`
}

// EventType returns the event type name
func (e *EmergencyWithdrawalEvent) EventType() string {
	return "EmergencyWithdrawal"
}

// NewEmergencyWithdrawalEvent creates a new EmergencyWithdrawalEvent
func NewEmergencyWithdrawalEvent(p *Project, amount decimal.Decimal, reason string) *EmergencyWithdrawalEvent {
	return &EmergencyWithdrawalEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("EmergencyWithdrawal", "Project", p.ID),
		ProjectID:       p.ID,
		Amount:          amount,
		Reason:          reason,
		TotalReleased:   p.TotalReleased,
	}
}
