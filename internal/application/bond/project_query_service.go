package bond

import (
	"context"
	"fmt"
	"time"

	"github.com/bondledger/backend/internal/domain/funding"
	"github.com/bondledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProjectQueryService serves project read models. Summaries go through
// the cache; cache failures degrade to repository reads rather than
// failing the request.
type ProjectQueryService struct {
	projectRepo funding.ProjectRepository
	cache       funding.SummaryCache
	summaryTTL  time.Duration // zero lets the cache apply its default
	logger      *zap.Logger
}

// NewProjectQueryService creates a new ProjectQueryService
func NewProjectQueryService(
	projectRepo funding.ProjectRepository,
	cache funding.SummaryCache,
	logger *zap.Logger,
) *ProjectQueryService {
	return &ProjectQueryService{
		projectRepo: projectRepo,
		cache:       cache,
		logger:      logger,
	}
}

// SetSummaryTTL overrides the cache TTL for summaries
func (s *ProjectQueryService) SetSummaryTTL(ttl time.Duration) {
	s.summaryTTL = ttl
}

// GetProject returns the full project aggregate
func (s *ProjectQueryService) GetProject(ctx context.Context, projectID uuid.UUID) (*funding.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// GetSummary returns the project summary read model, cache-first
func (s *ProjectQueryService) GetSummary(ctx context.Context, projectID uuid.UUID) (*funding.ProjectSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project_query", "summary")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrProjectID, projectID.String())

	if cached, err := s.cache.Get(ctx, projectID); err != nil {
		s.logger.Warn("Summary cache read failed, falling back to repository",
			zap.String("project_id", projectID.String()),
			zap.Error(err),
		)
	} else if cached != nil {
		telemetry.SetAttribute(span, "cache_hit", true)
		return cached, nil
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	summary := funding.NewProjectSummary(project)
	if err := s.cache.Set(ctx, summary, s.summaryTTL); err != nil {
		s.logger.Warn("Summary cache write failed",
			zap.String("project_id", projectID.String()),
			zap.Error(err),
		)
	}

	return summary, nil
}

// InvalidateSummary drops the cached summary after a write
func (s *ProjectQueryService) InvalidateSummary(ctx context.Context, projectID uuid.UUID) {
	if err := s.cache.Delete(ctx, projectID); err != nil {
		s.logger.Warn("Summary cache invalidation failed",
			zap.String("project_id", projectID.String()),
			zap.Error(err),
		)
	}
}

// ListProjects returns projects matching the filter
func (s *ProjectQueryService) ListProjects(ctx context.Context, filter funding.ProjectFilter) ([]funding.Project, int64, error) {
	projects, err := s.projectRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	total, err := s.projectRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return projects, total, nil
}

// EscrowBalance returns raised minus released for a project
func (s *ProjectQueryService) EscrowBalance(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get project: %w", err)
	}
	return project.EscrowBalance(), nil
}

// TotalFundsLocked returns the sum of pending milestone release amounts
func (s *ProjectQueryService) TotalFundsLocked(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get project: %w", err)
	}
	return project.TotalFundsLocked(), nil
}
