package funding

import (
	"fmt"
	"time"

	"github.com/bondledger/backend/internal/domain/shared"
	"github.com/bondledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectStatus represents the lifecycle status of a financing project
type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "DRAFT"     // Created, not yet open for investment
	ProjectStatusActive    ProjectStatus = "ACTIVE"    // Open for investment
	ProjectStatusFunded    ProjectStatus = "FUNDED"    // Raised equals goal; closed to new investment
	ProjectStatusCompleted ProjectStatus = "COMPLETED" // All milestones completed
	ProjectStatusCancelled ProjectStatus = "CANCELLED" // Cancelled before any funds were raised
)

// IsValid checks if the status is a valid ProjectStatus
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusActive, ProjectStatusFunded,
		ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ProjectStatus
func (s ProjectStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the project is in a terminal state
func (s ProjectStatus) IsTerminal() bool {
	return s == ProjectStatusCompleted || s == ProjectStatusCancelled
}

// CanInvest returns true if investments are accepted in this status
func (s ProjectStatus) CanInvest() bool {
	return s == ProjectStatusActive
}

// TokenPrecision is the number of decimal places carried by bond-token
// quantities. Minted totals are deterministic from raised amounts since
// the token price is fixed at project creation.
const TokenPrecision int32 = 4

// Project is the aggregate root for an infrastructure financing project.
// It owns the escrow account (goal/raised/released totals), the ordered
// milestone plan, and the investor position set. All mutations preserve
// the conservation invariant 0 <= released <= raised <= goal.
type Project struct {
	shared.BaseAggregateRoot
	Name           string            `gorm:"type:varchar(200);not null" json:"name"`
	Description    string            `gorm:"type:text" json:"description"`
	ManagerID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"manager_id"`
	WalletAddress  string            `gorm:"type:varchar(128);not null" json:"wallet_address"` // Release destination; immutable after creation
	FundingGoal    decimal.Decimal   `gorm:"type:decimal(18,4);not null" json:"funding_goal"`
	TotalRaised    decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0" json:"total_raised"`
	TotalReleased  decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0" json:"total_released"`
	RateBps        int64             `gorm:"not null" json:"rate_bps"` // Annual interest rate in basis points
	DurationMonths int               `gorm:"not null" json:"duration_months"`
	TokenPrice     decimal.Decimal   `gorm:"type:decimal(18,4);not null" json:"token_price"` // Fixed at creation
	Status         ProjectStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	Positions      InvestorPositions `gorm:"type:jsonb" json:"positions"`
	Milestones     Milestones        `gorm:"type:jsonb" json:"milestones"`
}

// TableName returns the table name for GORM
func (Project) TableName() string {
	return "projects"
}

// NewProject creates a new financing project in Draft status
func NewProject(
	name string,
	description string,
	goal valueobject.Money,
	rateBps int64,
	durationMonths int,
	managerID uuid.UUID,
	walletAddress string,
	tokenPrice valueobject.Money,
) (*Project, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Project name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Project name cannot exceed 200 characters")
	}
	if !goal.IsPositive() {
		return nil, shared.ErrInvalidGoal
	}
	if _, err := valueobject.NewInterestRate(rateBps); err != nil {
		return nil, shared.ErrInvalidRate
	}
	if durationMonths <= 0 {
		return nil, shared.NewDomainError("INVALID_DURATION", "Duration must be a positive number of months")
	}
	if managerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MANAGER", "Manager ID cannot be empty")
	}
	if walletAddress == "" {
		return nil, shared.NewDomainError("INVALID_WALLET", "Project wallet address cannot be empty")
	}
	if !tokenPrice.IsPositive() {
		return nil, shared.NewDomainError("INVALID_TOKEN_PRICE", "Token price must be positive")
	}

	p := &Project{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		ManagerID:         managerID,
		WalletAddress:     walletAddress,
		FundingGoal:       goal.Amount(),
		TotalRaised:       decimal.Zero,
		TotalReleased:     decimal.Zero,
		RateBps:           rateBps,
		DurationMonths:    durationMonths,
		TokenPrice:        tokenPrice.Amount(),
		Status:            ProjectStatusDraft,
		Positions:         InvestorPositions{},
		Milestones:        Milestones{},
	}

	p.AddDomainEvent(NewProjectCreatedEvent(p))

	return p, nil
}

// Activate opens the project for investment
func (p *Project) Activate() error {
	if p.Status != ProjectStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot activate project in %s status", p.Status))
	}

	p.Status = ProjectStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProjectActivatedEvent(p))

	return nil
}

// Cancel cancels the project. Only allowed before any funds are raised;
// unwinding raised escrow requires refunds which are not a core concern.
func (p *Project) Cancel(reason string) error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel project in %s status", p.Status))
	}
	if p.TotalRaised.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("HAS_INVESTMENTS", "Cannot cancel a project that has raised funds")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	p.Status = ProjectStatusCancelled
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProjectCancelledEvent(p, reason))

	return nil
}

// TokensFor returns the bond tokens minted for an invested amount at
// the project's fixed token price.
func (p *Project) TokensFor(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(p.TokenPrice).Truncate(TokenPrecision)
}

// RecordInvestment validates an investment against escrow capacity and
// applies it: raised grows, the investor position is upserted. Returns
// the number of tokens to mint. The caller mints on the ledger inside
// the same unit of work.
func (p *Project) RecordInvestment(investorID uuid.UUID, amount decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if !p.Status.CanInvest() {
		return decimal.Zero, shared.ErrProjectInactive
	}
	if investorID == uuid.Nil {
		return decimal.Zero, shared.NewDomainError("INVALID_INVESTOR", "Investor ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.ErrInvalidAmount
	}
	if p.TotalRaised.Add(amount).GreaterThan(p.FundingGoal) {
		return decimal.Zero, shared.ErrExceedsFundingGoal
	}

	tokens := p.TokensFor(amount)

	p.TotalRaised = p.TotalRaised.Add(amount)
	if pos := p.Positions.find(investorID); pos != nil {
		pos.TokensPurchased = pos.TokensPurchased.Add(tokens)
		pos.TotalInvested = pos.TotalInvested.Add(amount)
		pos.LastInvestedAt = now
	} else {
		p.Positions = append(p.Positions, InvestorPosition{
			InvestorID:      investorID,
			TokensPurchased: tokens,
			TotalInvested:   amount,
			FirstInvestedAt: now,
			LastInvestedAt:  now,
		})
	}

	p.AddDomainEvent(NewInvestmentRecordedEvent(p, investorID, amount, tokens))

	if p.TotalRaised.Equal(p.FundingGoal) {
		p.Status = ProjectStatusFunded
		p.AddDomainEvent(NewProjectFundedEvent(p))
	}

	p.UpdatedAt = now
	p.IncrementVersion()

	return tokens, nil
}

// AddMilestone appends a milestone to the project's plan. The sum of
// planned release amounts is deliberately not capped against the goal:
// release is bounded at completion time against actual raised/released
// totals, so milestones can be planned before funding completes.
func (p *Project) AddMilestone(name, description string, releaseAmount decimal.Decimal, targetDate time.Time, now time.Time) (*Milestone, error) {
	if p.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot add milestone to project in %s status", p.Status))
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Milestone name cannot be empty")
	}
	if releaseAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrZeroReleaseAmount
	}
	if !targetDate.After(now) {
		return nil, shared.ErrTargetDateInPast
	}

	m := Milestone{
		Sequence:      len(p.Milestones) + 1,
		Name:          name,
		Description:   description,
		ReleaseAmount: releaseAmount,
		TargetDate:    targetDate,
		Status:        MilestoneStatusPending,
		CreatedAt:     now,
	}
	p.Milestones = append(p.Milestones, m)

	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewMilestoneAddedEvent(p, &m))

	return &p.Milestones[len(p.Milestones)-1], nil
}

// CompleteMilestone performs the Pending -> Completed transition and
// releases the milestone's funds from escrow in one unit of work. If
// the escrow bounds reject the release, the milestone stays Pending
// with no observable intermediate state.
func (p *Project) CompleteMilestone(sequence int, verifierID uuid.UUID, deliverableRefs []string, now time.Time) error {
	m := p.Milestones.find(sequence)
	if m == nil {
		return shared.ErrInvalidMilestoneID
	}
	if m.IsCompleted() {
		return shared.ErrAlreadyCompleted
	}
	if verifierID == uuid.Nil {
		return shared.NewDomainError("INVALID_VERIFIER", "Verifier ID cannot be empty")
	}

	// Bound the release against actual escrow state before touching anything
	if err := p.checkRelease(m.ReleaseAmount); err != nil {
		return err
	}

	m.markCompleted(verifierID, deliverableRefs, now)
	p.TotalReleased = p.TotalReleased.Add(m.ReleaseAmount)

	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewMilestoneCompletedEvent(p, m))
	p.AddDomainEvent(NewFundsReleasedEvent(p, m.ReleaseAmount, p.WalletAddress, m.Sequence))

	if p.Milestones.completedCount() == len(p.Milestones) && p.Status == ProjectStatusFunded {
		p.Status = ProjectStatusCompleted
		p.AddDomainEvent(NewProjectCompletedEvent(p))
	}

	return nil
}

// checkRelease validates the escrow bounds for an outgoing amount.
// Before any funds have left escrow the free balance equals raised, so
// a rejection there is a cap violation against the raised total. Once
// releases have begun the shortfall is reported against the remaining
// escrow balance. Both branches enforce released + amount <= raised.
func (p *Project) checkRelease(amount decimal.Decimal) error {
	if p.TotalReleased.IsZero() {
		if amount.GreaterThan(p.TotalRaised) {
			return shared.ErrExceedsRaised
		}
		return nil
	}
	if p.EscrowBalance().LessThan(amount) {
		return shared.ErrInsufficientEscrowBalance
	}
	return nil
}

// EmergencyWithdraw releases funds bypassing milestone gating. This is
// the platform-failure escape hatch: Owner-only (enforced in the
// application layer), and raised as a distinct event so it can never be
// mistaken for an ordinary milestone release in the audit trail.
func (p *Project) EmergencyWithdraw(amount decimal.Decimal, reason string, now time.Time) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidAmount
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Emergency withdrawal reason is required")
	}
	if err := p.checkRelease(amount); err != nil {
		return err
	}

	p.TotalReleased = p.TotalReleased.Add(amount)
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewEmergencyWithdrawalEvent(p, amount, reason))

	return nil
}

// EscrowBalance returns the free escrow balance: raised minus released
func (p *Project) EscrowBalance() decimal.Decimal {
	return p.TotalRaised.Sub(p.TotalReleased)
}

// FundingProgress returns the raised percentage of the goal (truncated)
func (p *Project) FundingProgress() int64 {
	if p.FundingGoal.IsZero() {
		return 0
	}
	return p.TotalRaised.Mul(decimal.NewFromInt(100)).Div(p.FundingGoal).Truncate(0).IntPart()
}

// ReleaseProgress returns the released percentage of raised funds
// (truncated, 0 when nothing is raised)
func (p *Project) ReleaseProgress() int64 {
	if p.TotalRaised.IsZero() {
		return 0
	}
	return p.TotalReleased.Mul(decimal.NewFromInt(100)).Div(p.TotalRaised).Truncate(0).IntPart()
}

// CompletionPercentage returns completed milestones as an integer
// percentage of all milestones, with floor semantics (1 of 3 -> 33).
func (p *Project) CompletionPercentage() int {
	total := len(p.Milestones)
	if total == 0 {
		return 0
	}
	return p.Milestones.completedCount() * 100 / total
}

// Milestone returns the milestone with the given sequence
func (p *Project) Milestone(sequence int) (*Milestone, error) {
	m := p.Milestones.find(sequence)
	if m == nil {
		return nil, shared.ErrInvalidMilestoneID
	}
	return m, nil
}

// PendingMilestones returns the milestones still awaiting completion
func (p *Project) PendingMilestones() []Milestone {
	out := make([]Milestone, 0)
	for _, m := range p.Milestones {
		if !m.IsCompleted() {
			out = append(out, m)
		}
	}
	return out
}

// CompletedMilestones returns the completed milestones
func (p *Project) CompletedMilestones() []Milestone {
	out := make([]Milestone, 0)
	for _, m := range p.Milestones {
		if m.IsCompleted() {
			out = append(out, m)
		}
	}
	return out
}

// TotalFundsLocked returns the sum of release amounts over pending milestones
func (p *Project) TotalFundsLocked() decimal.Decimal {
	sum := decimal.Zero
	for _, m := range p.Milestones {
		if !m.IsCompleted() {
			sum = sum.Add(m.ReleaseAmount)
		}
	}
	return sum
}

// Position returns the investor's position, or nil if they never invested
func (p *Project) Position(investorID uuid.UUID) *InvestorPosition {
	return p.Positions.find(investorID)
}

// InvestorIDs returns the IDs of every investor with a position
func (p *Project) InvestorIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(p.Positions))
	for i := range p.Positions {
		ids[i] = p.Positions[i].InvestorID
	}
	return ids
}

// Rate returns the project's annual interest rate value object
func (p *Project) Rate() valueobject.InterestRate {
	r, _ := valueobject.NewInterestRate(p.RateBps)
	return r
}
