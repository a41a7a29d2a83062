package bond

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bondledger/backend/internal/domain/funding"
	"github.com/bondledger/backend/internal/domain/shared"
)

func newQueryFixture() (*ProjectQueryService, *MockProjectRepository, *MockSummaryCache) {
	projectRepo := new(MockProjectRepository)
	summaryCache := new(MockSummaryCache)
	svc := NewProjectQueryService(projectRepo, summaryCache, zap.NewNop())
	return svc, projectRepo, summaryCache
}

func TestProjectQueryService_GetSummary(t *testing.T) {
	ctx := context.Background()
	manager := uuid.New()

	t.Run("returns cached summary without repository load", func(t *testing.T) {
		svc, projectRepo, summaryCache := newQueryFixture()
		projectID := uuid.New()
		cached := &funding.ProjectSummary{ProjectID: projectID, Name: "Metro Line Extension"}
		summaryCache.On("Get", mock.Anything, projectID).Return(cached, nil)

		summary, err := svc.GetSummary(ctx, projectID)
		require.NoError(t, err)
		assert.Equal(t, cached, summary)
		projectRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("builds and caches summary on miss", func(t *testing.T) {
		svc, projectRepo, summaryCache := newQueryFixture()
		svc.SetSummaryTTL(time.Minute)
		project := activeProject(t, manager)
		summaryCache.On("Get", mock.Anything, project.ID).Return(nil, nil)
		projectRepo.On("FindByID", mock.Anything, project.ID).Return(project, nil)
		summaryCache.On("Set", mock.Anything, mock.AnythingOfType("*funding.ProjectSummary"), time.Minute).
			Return(nil)

		summary, err := svc.GetSummary(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, project.ID, summary.ProjectID)
		assert.Equal(t, "ACTIVE", summary.Status)
		summaryCache.AssertExpectations(t)
	})

	t.Run("cache read failure falls back to repository", func(t *testing.T) {
		svc, projectRepo, summaryCache := newQueryFixture()
		project := activeProject(t, manager)
		summaryCache.On("Get", mock.Anything, project.ID).Return(nil, assert.AnError)
		projectRepo.On("FindByID", mock.Anything, project.ID).Return(project, nil)
		summaryCache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		summary, err := svc.GetSummary(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, project.ID, summary.ProjectID)
	})

	t.Run("cache write failure does not fail the read", func(t *testing.T) {
		svc, projectRepo, summaryCache := newQueryFixture()
		project := activeProject(t, manager)
		summaryCache.On("Get", mock.Anything, project.ID).Return(nil, nil)
		projectRepo.On("FindByID", mock.Anything, project.ID).Return(project, nil)
		summaryCache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

		_, err := svc.GetSummary(ctx, project.ID)
		assert.NoError(t, err)
	})

	t.Run("propagates missing project", func(t *testing.T) {
		svc, projectRepo, summaryCache := newQueryFixture()
		projectID := uuid.New()
		summaryCache.On("Get", mock.Anything, projectID).Return(nil, nil)
		projectRepo.On("FindByID", mock.Anything, projectID).Return(nil, shared.ErrNotFound)

		_, err := svc.GetSummary(ctx, projectID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestProjectQueryService_InvalidateSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("drops the cached entry", func(t *testing.T) {
		svc, _, summaryCache := newQueryFixture()
		projectID := uuid.New()
		summaryCache.On("Delete", mock.Anything, projectID).Return(nil)

		svc.InvalidateSummary(ctx, projectID)
		summaryCache.AssertExpectations(t)
	})

	t.Run("swallows cache errors", func(t *testing.T) {
		svc, _, summaryCache := newQueryFixture()
		projectID := uuid.New()
		summaryCache.On("Delete", mock.Anything, projectID).Return(assert.AnError)

		svc.InvalidateSummary(ctx, projectID)
	})
}

func TestProjectQueryService_ListProjects(t *testing.T) {
	ctx := context.Background()

	svc, projectRepo, _ := newQueryFixture()
	filter := funding.ProjectFilter{Filter: shared.Filter{Page: 1, PageSize: 20}}
	projectRepo.On("FindAll", mock.Anything, filter).Return([]funding.Project{}, nil)
	projectRepo.On("Count", mock.Anything, filter).Return(int64(0), nil)

	projects, total, err := svc.ListProjects(ctx, filter)
	require.NoError(t, err)
	assert.Empty(t, projects)
	assert.Zero(t, total)
}

func TestProjectQueryService_EscrowQueries(t *testing.T) {
	ctx := context.Background()
	manager := uuid.New()

	t.Run("escrow balance is raised minus released", func(t *testing.T) {
		svc, projectRepo, _ := newQueryFixture()
		project := activeProject(t, manager)
		_, err := project.RecordInvestment(uuid.New(), decimal.NewFromInt(400), time.Now())
		require.NoError(t, err)
		projectRepo.On("FindByID", mock.Anything, project.ID).Return(project, nil)

		balance, err := svc.EscrowBalance(ctx, project.ID)
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(400)))
	})

	t.Run("total funds locked sums pending milestone tranches", func(t *testing.T) {
		svc, projectRepo, _ := newQueryFixture()
		project := activeProject(t, manager)
		_, err := project.AddMilestone("Foundation", "", decimal.NewFromInt(300),
			time.Now().Add(30*24*time.Hour), time.Now())
		require.NoError(t, err)
		_, err = project.AddMilestone("Framing", "", decimal.NewFromInt(200),
			time.Now().Add(60*24*time.Hour), time.Now())
		require.NoError(t, err)
		projectRepo.On("FindByID", mock.Anything, project.ID).Return(project, nil)

		locked, err := svc.TotalFundsLocked(ctx, project.ID)
		require.NoError(t, err)
		assert.True(t, locked.Equal(decimal.NewFromInt(500)))
	})
}
