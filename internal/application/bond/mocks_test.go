package bond

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/bondledger/backend/internal/domain/funding"
	"github.com/bondledger/backend/internal/domain/identity"
	"github.com/bondledger/backend/internal/domain/interest"
	"github.com/bondledger/backend/internal/domain/token"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockProjectRepository is a mock implementation of funding.ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*funding.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*funding.Project), args.Error(1)
}

func (m *MockProjectRepository) FindAll(ctx context.Context, filter funding.ProjectFilter) ([]funding.Project, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]funding.Project), args.Error(1)
}

func (m *MockProjectRepository) FindByManager(ctx context.Context, managerID uuid.UUID, filter funding.ProjectFilter) ([]funding.Project, error) {
	args := m.Called(ctx, managerID, filter)
	return args.Get(0).([]funding.Project), args.Error(1)
}

func (m *MockProjectRepository) FindByStatus(ctx context.Context, status funding.ProjectStatus, filter funding.ProjectFilter) ([]funding.Project, error) {
	args := m.Called(ctx, status, filter)
	return args.Get(0).([]funding.Project), args.Error(1)
}

func (m *MockProjectRepository) Save(ctx context.Context, project *funding.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) SaveWithLock(ctx context.Context, project *funding.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) Count(ctx context.Context, filter funding.ProjectFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockLedgerRepository is a mock implementation of token.LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*token.Ledger, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*token.Ledger), args.Error(1)
}

func (m *MockLedgerRepository) FindByProject(ctx context.Context, projectID uuid.UUID) (*token.Ledger, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*token.Ledger), args.Error(1)
}

func (m *MockLedgerRepository) Save(ctx context.Context, ledger *token.Ledger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

func (m *MockLedgerRepository) SaveWithLock(ctx context.Context, ledger *token.Ledger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

// MockAccrualRecordRepository is a mock implementation of interest.AccrualRecordRepository
type MockAccrualRecordRepository struct {
	mock.Mock
}

func (m *MockAccrualRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*interest.AccrualRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interest.AccrualRecord), args.Error(1)
}

func (m *MockAccrualRecordRepository) FindByInvestorAndProject(ctx context.Context, investorID, projectID uuid.UUID) (*interest.AccrualRecord, error) {
	args := m.Called(ctx, investorID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interest.AccrualRecord), args.Error(1)
}

func (m *MockAccrualRecordRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]interest.AccrualRecord, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]interest.AccrualRecord), args.Error(1)
}

func (m *MockAccrualRecordRepository) FindByInvestor(ctx context.Context, investorID uuid.UUID) ([]interest.AccrualRecord, error) {
	args := m.Called(ctx, investorID)
	return args.Get(0).([]interest.AccrualRecord), args.Error(1)
}

func (m *MockAccrualRecordRepository) Save(ctx context.Context, record *interest.AccrualRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAccrualRecordRepository) SaveWithLock(ctx context.Context, record *interest.AccrualRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockRoleBindingRepository is a mock implementation of identity.RoleBindingRepository
type MockRoleBindingRepository struct {
	mock.Mock
}

func (m *MockRoleBindingRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.RoleBinding, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.RoleBinding), args.Error(1)
}

func (m *MockRoleBindingRepository) FindByIdentity(ctx context.Context, identityID uuid.UUID) ([]identity.RoleBinding, error) {
	args := m.Called(ctx, identityID)
	return args.Get(0).([]identity.RoleBinding), args.Error(1)
}

func (m *MockRoleBindingRepository) FindByIdentityAndScope(ctx context.Context, identityID uuid.UUID, projectID *uuid.UUID) (*identity.RoleBinding, error) {
	args := m.Called(ctx, identityID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.RoleBinding), args.Error(1)
}

func (m *MockRoleBindingRepository) FindByCapability(ctx context.Context, c identity.Capability, projectID uuid.UUID) ([]identity.RoleBinding, error) {
	args := m.Called(ctx, c, projectID)
	return args.Get(0).([]identity.RoleBinding), args.Error(1)
}

func (m *MockRoleBindingRepository) Save(ctx context.Context, binding *identity.RoleBinding) error {
	args := m.Called(ctx, binding)
	return args.Error(0)
}

func (m *MockRoleBindingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSummaryCache is a mock implementation of funding.SummaryCache
type MockSummaryCache struct {
	mock.Mock
}

func (m *MockSummaryCache) Get(ctx context.Context, projectID uuid.UUID) (*funding.ProjectSummary, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*funding.ProjectSummary), args.Error(1)
}

func (m *MockSummaryCache) Set(ctx context.Context, summary *funding.ProjectSummary, ttl time.Duration) error {
	args := m.Called(ctx, summary, ttl)
	return args.Error(0)
}

func (m *MockSummaryCache) Delete(ctx context.Context, projectID uuid.UUID) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

func (m *MockSummaryCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockSummaryInvalidator is a mock implementation of SummaryInvalidator
type MockSummaryInvalidator struct {
	mock.Mock
}

func (m *MockSummaryInvalidator) InvalidateSummary(ctx context.Context, projectID uuid.UUID) {
	m.Called(ctx, projectID)
}

// =============================================================================
// Test fixtures
// =============================================================================

// grantBindings wires the role mock to answer with the given bindings
// for the actor.
func grantBindings(roleRepo *MockRoleBindingRepository, actorID uuid.UUID, bindings ...identity.RoleBinding) {
	roleRepo.On("FindByIdentity", mock.Anything, actorID).Return(bindings, nil)
}

// scopedBinding builds a binding for tests, panicking on invalid input
func scopedBinding(identityID uuid.UUID, projectID *uuid.UUID, caps ...identity.Capability) identity.RoleBinding {
	rb, err := identity.NewRoleBinding(identityID, projectID, caps...)
	if err != nil {
		panic(err)
	}
	return *rb
}
