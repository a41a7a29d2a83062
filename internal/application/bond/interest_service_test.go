package bond

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bondledger/backend/internal/domain/interest"
	"github.com/bondledger/backend/internal/domain/shared"
	"github.com/bondledger/backend/internal/domain/token"
)

func newInterestFixture() (*InterestService, *MockProjectRepository, *MockLedgerRepository, *MockAccrualRecordRepository) {
	projectRepo := new(MockProjectRepository)
	ledgerRepo := new(MockLedgerRepository)
	accrualRepo := new(MockAccrualRecordRepository)
	svc := NewInterestService(accrualRepo, projectRepo, ledgerRepo, zap.NewNop())
	return svc, projectRepo, ledgerRepo, accrualRepo
}

func TestInterestService_CalculateAccruedInterest(t *testing.T) {
	ctx := context.Background()
	manager := uuid.New()
	investor := uuid.New()

	svc, projectRepo, ledgerRepo, accrualRepo := newInterestFixture()
	project := activeProject(t, manager)
	ledger, err := token.NewLedger(project.ID)
	require.NoError(t, err)
	require.NoError(t, ledger.Mint(investor, decimal.NewFromInt(1000)))

	record, err := interest.NewAccrualRecord(investor, project.ID, time.Now().Add(-365*24*time.Hour))
	require.NoError(t, err)

	projectRepo.On("FindByID", mock.Anything, project.ID).Return(project, nil)
	ledgerRepo.On("FindByProject", mock.Anything, project.ID).Return(ledger, nil)
	accrualRepo.On("FindByInvestorAndProject", mock.Anything, investor, project.ID).Return(record, nil)

	total, err := svc.CalculateAccruedInterest(ctx, investor, project.ID)
	require.NoError(t, err)

	// 1000 tokens at 8.5% for a full year
	assert.True(t, total.Equal(decimal.NewFromInt(85)), total.String())

	// Read path never mutates the record
	assert.True(t, record.AccruedUnclaimed.IsZero())
	accrualRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestInterestService_UpdateAccrual(t *testing.T) {
	ctx := context.Background()
	manager := uuid.New()
	investor := uuid.New()

	svc, projectRepo, ledgerRepo, accrualRepo := newInterestFixture()
	project := activeProject(t, manager)
	ledger, err := token.NewLedger(project.ID)
	require.NoError(t, err)
	require.NoError(t, ledger.Mint(investor, decimal.NewFromInt(1000)))

	record, err := interest.NewAccrualRecord(investor, project.ID, time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)

	projectRepo.On("FindByID", mock.Anything, project.ID).Return(project, nil)
	ledgerRepo.On("FindByProject", mock.Anything, project.ID).Return(ledger, nil)
	accrualRepo.On("FindByInvestorAndProject", mock.Anything, investor, project.ID).Return(record, nil)
	accrualRepo.On("SaveWithLock", mock.Anything, record).Return(nil)

	earned, err := svc.UpdateAccrual(ctx, investor, project.ID)
	require.NoError(t, err)

	expected := interest.CalculateInterest(decimal.NewFromInt(1000), 850, 30*24*time.Hour)
	assert.True(t, earned.Equal(expected))
	assert.True(t, record.AccruedUnclaimed.Equal(expected))

	// Immediate second run earns nothing more
	earned2, err := svc.UpdateAccrual(ctx, investor, project.ID)
	require.NoError(t, err)
	assert.True(t, earned2.IsZero())
	assert.True(t, record.AccruedUnclaimed.Equal(expected))
}

func TestInterestService_BatchUpdateAccrual(t *testing.T) {
	ctx := context.Background()
	manager := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	svc, projectRepo, ledgerRepo, accrualRepo := newInterestFixture()
	project := activeProject(t, manager)
	ledger, err := token.NewLedger(project.ID)
	require.NoError(t, err)
	require.NoError(t, ledger.Mint(alice, decimal.NewFromInt(600)))
	require.NoError(t, ledger.Mint(bob, decimal.NewFromInt(400)))

	past := time.Now().Add(-10 * 24 * time.Hour)
	aliceRec, err := interest.NewAccrualRecord(alice, project.ID, past)
	require.NoError(t, err)
	bobRec, err := interest.NewAccrualRecord(bob, project.ID, past)
	require.NoError(t, err)

	projectRepo.On("FindByID", mock.Anything, project.ID).Return(project, nil)
	ledgerRepo.On("FindByProject", mock.Anything, project.ID).Return(ledger, nil)
	accrualRepo.On("FindByProject", mock.Anything, project.ID).Return([]interest.AccrualRecord{*aliceRec, *bobRec}, nil)

	// Alice's save fails; Bob's entry must still go through
	accrualRepo.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(r *interest.AccrualRecord) bool {
		return r.InvestorID == alice
	})).Return(errors.New("version conflict"))
	accrualRepo.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(r *interest.AccrualRecord) bool {
		return r.InvestorID == bob
	})).Return(nil)

	outcomes, err := svc.BatchUpdateAccrual(ctx, project.ID, nil)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	byInvestor := map[uuid.UUID]BatchAccrualOutcome{}
	for _, o := range outcomes {
		byInvestor[o.InvestorID] = o
	}

	assert.NotEmpty(t, byInvestor[alice].Err)
	assert.Empty(t, byInvestor[bob].Err)
	bobExpected := interest.CalculateInterest(decimal.NewFromInt(400), 850, 10*24*time.Hour)
	assert.True(t, byInvestor[bob].Earned.Equal(bobExpected))
}

func TestInterestService_BatchUpdateAccrual_NamedInvestors(t *testing.T) {
	ctx := context.Background()
	manager := uuid.New()
	alice := uuid.New()
	bob := uuid.New()
	stranger := uuid.New()

	svc, projectRepo, ledgerRepo, accrualRepo := newInterestFixture()
	project := activeProject(t, manager)
	ledger, err := token.NewLedger(project.ID)
	require.NoError(t, err)
	require.NoError(t, ledger.Mint(alice, decimal.NewFromInt(600)))
	require.NoError(t, ledger.Mint(bob, decimal.NewFromInt(400)))

	past := time.Now().Add(-10 * 24 * time.Hour)
	aliceRec, err := interest.NewAccrualRecord(alice, project.ID, past)
	require.NoError(t, err)
	bobRec, err := interest.NewAccrualRecord(bob, project.ID, past)
	require.NoError(t, err)

	projectRepo.On("FindByID", mock.Anything, project.ID).Return(project, nil)
	ledgerRepo.On("FindByProject", mock.Anything, project.ID).Return(ledger, nil)
	accrualRepo.On("FindByProject", mock.Anything, project.ID).Return([]interest.AccrualRecord{*aliceRec, *bobRec}, nil)
	accrualRepo.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(r *interest.AccrualRecord) bool {
		return r.InvestorID == alice
	})).Return(nil)

	// Only Alice is named; Bob's record must stay untouched, and the
	// unknown investor gets a per-entry failure rather than an error.
	outcomes, err := svc.BatchUpdateAccrual(ctx, project.ID, []uuid.UUID{alice, stranger})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	byInvestor := map[uuid.UUID]BatchAccrualOutcome{}
	for _, o := range outcomes {
		byInvestor[o.InvestorID] = o
	}

	aliceExpected := interest.CalculateInterest(decimal.NewFromInt(600), 850, 10*24*time.Hour)
	assert.True(t, byInvestor[alice].Earned.Equal(aliceExpected))
	assert.Empty(t, byInvestor[alice].Err)
	assert.NotEmpty(t, byInvestor[stranger].Err)
	_, touched := byInvestor[bob]
	assert.False(t, touched)
	accrualRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.MatchedBy(func(r *interest.AccrualRecord) bool {
		return r.InvestorID == bob
	}))
}

func TestInterestService_ClaimInterest(t *testing.T) {
	ctx := context.Background()
	manager := uuid.New()
	investor := uuid.New()

	t.Run("settles then claims the full unclaimed balance", func(t *testing.T) {
		svc, projectRepo, ledgerRepo, accrualRepo := newInterestFixture()
		project := activeProject(t, manager)
		ledger, err := token.NewLedger(project.ID)
		require.NoError(t, err)
		require.NoError(t, ledger.Mint(investor, decimal.NewFromInt(1000)))

		record, err := interest.NewAccrualRecord(investor, project.ID, time.Now().Add(-365*24*time.Hour))
		require.NoError(t, err)

		projectRepo.On("FindByID", mock.Anything, project.ID).Return(project, nil)
		ledgerRepo.On("FindByProject", mock.Anything, project.ID).Return(ledger, nil)
		accrualRepo.On("FindByInvestorAndProject", mock.Anything, investor, project.ID).Return(record, nil)
		accrualRepo.On("SaveWithLock", mock.Anything, record).Return(nil)
		ledgerRepo.On("SaveWithLock", mock.Anything, ledger).Return(nil)

		result, err := svc.ClaimInterest(ctx, investor, project.ID)
		require.NoError(t, err)
		assert.True(t, result.Claimed.Equal(decimal.NewFromInt(85)), result.Claimed.String())
		assert.True(t, record.AccruedUnclaimed.IsZero())
		assert.True(t, record.TotalClaimed.Equal(decimal.NewFromInt(85)))

		// The payout is minted: supply and the investor's balance grow
		// by exactly the claimed amount.
		assert.True(t, ledger.TotalSupply.Equal(decimal.NewFromInt(1085)), ledger.TotalSupply.String())
		assert.True(t, ledger.BalanceOf(investor).Equal(decimal.NewFromInt(1085)))
		assert.True(t, result.NewBalance.Equal(decimal.NewFromInt(1085)))
		ledgerRepo.AssertExpectations(t)
	})

	t.Run("rejects claim with nothing accrued", func(t *testing.T) {
		svc, projectRepo, ledgerRepo, accrualRepo := newInterestFixture()
		project := activeProject(t, manager)
		ledger, err := token.NewLedger(project.ID)
		require.NoError(t, err)

		record, err := interest.NewAccrualRecord(investor, project.ID, time.Now())
		require.NoError(t, err)

		projectRepo.On("FindByID", mock.Anything, project.ID).Return(project, nil)
		ledgerRepo.On("FindByProject", mock.Anything, project.ID).Return(ledger, nil)
		accrualRepo.On("FindByInvestorAndProject", mock.Anything, investor, project.ID).Return(record, nil)

		_, err = svc.ClaimInterest(ctx, investor, project.ID)
		assert.ErrorIs(t, err, shared.ErrNothingToClaim)
		assert.True(t, ledger.TotalSupply.IsZero())
		accrualRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		ledgerRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}
