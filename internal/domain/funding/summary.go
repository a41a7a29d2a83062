package funding

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectSummary is the cached read model for project dashboards. It
// carries the escrow totals and derived percentages so hot read paths
// skip the aggregate load entirely.
type ProjectSummary struct {
	ProjectID            uuid.UUID       `json:"project_id"`
	Name                 string          `json:"name"`
	Status               string          `json:"status"`
	FundingGoal          decimal.Decimal `json:"funding_goal"`
	TotalRaised          decimal.Decimal `json:"total_raised"`
	TotalReleased        decimal.Decimal `json:"total_released"`
	EscrowBalance        decimal.Decimal `json:"escrow_balance"`
	FundingProgress      int64           `json:"funding_progress"`
	ReleaseProgress      int64           `json:"release_progress"`
	CompletionPercentage int             `json:"completion_percentage"`
	TotalFundsLocked     decimal.Decimal `json:"total_funds_locked"`
	RateBps              int64           `json:"rate_bps"`
	MilestoneCount       int             `json:"milestone_count"`
	InvestorCount        int             `json:"investor_count"`
	GeneratedAt          time.Time       `json:"generated_at"`
}

// NewProjectSummary derives the summary read model from the aggregate
func NewProjectSummary(p *Project) *ProjectSummary {
	return &ProjectSummary{
		ProjectID:            p.ID,
		Name:                 p.Name,
		Status:               p.Status.String(),
		FundingGoal:          p.FundingGoal,
		TotalRaised:          p.TotalRaised,
		TotalReleased:        p.TotalReleased,
		EscrowBalance:        p.EscrowBalance(),
		FundingProgress:      p.FundingProgress(),
		ReleaseProgress:      p.ReleaseProgress(),
		CompletionPercentage: p.CompletionPercentage(),
		TotalFundsLocked:     p.TotalFundsLocked(),
		RateBps:              p.RateBps,
		MilestoneCount:       len(p.Milestones),
		InvestorCount:        len(p.Positions),
		GeneratedAt:          time.Now(),
	}
}

// SummaryCache caches project summaries. Implementations must treat a
// miss as (nil, nil); callers fall back to the repository.
type SummaryCache interface {
	// Get returns the cached summary, or nil on a miss
	Get(ctx context.Context, projectID uuid.UUID) (*ProjectSummary, error)

	// Set stores a summary with the given TTL
	Set(ctx context.Context, summary *ProjectSummary, ttl time.Duration) error

	// Delete drops a project's cached summary
	Delete(ctx context.Context, projectID uuid.UUID) error

	// Close releases any resources held by the cache
	Close() error
}
