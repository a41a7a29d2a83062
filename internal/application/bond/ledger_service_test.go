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

	"github.com/bondledger/backend/internal/domain/identity"
	"github.com/bondledger/backend/internal/domain/interest"
	"github.com/bondledger/backend/internal/domain/shared"
	"github.com/bondledger/backend/internal/domain/token"
)

func newLedgerFixture() (*LedgerService, *MockProjectRepository, *MockLedgerRepository, *MockAccrualRecordRepository, *MockRoleBindingRepository) {
	projectRepo := new(MockProjectRepository)
	ledgerRepo := new(MockLedgerRepository)
	accrualRepo := new(MockAccrualRecordRepository)
	roleRepo := new(MockRoleBindingRepository)
	svc := NewLedgerService(ledgerRepo, projectRepo, accrualRepo, roleRepo, zap.NewNop())
	return svc, projectRepo, ledgerRepo, accrualRepo, roleRepo
}

func TestLedgerService_Mint(t *testing.T) {
	ctx := context.Background()
	manager := uuid.New()
	holder := uuid.New()

	t.Run("rejects caller without minter capability", func(t *testing.T) {
		svc, _, ledgerRepo, _, roleRepo := newLedgerFixture()
		actor := uuid.New()
		projectID := uuid.New()
		grantBindings(roleRepo, actor, scopedBinding(actor, &projectID, identity.CapabilityVerifier))

		err := svc.Mint(ctx, actor, projectID, holder, decimal.NewFromInt(100))
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
		ledgerRepo.AssertNotCalled(t, "FindByProject", mock.Anything, mock.Anything)
	})

	t.Run("mints with scoped minter capability", func(t *testing.T) {
		svc, projectRepo, ledgerRepo, accrualRepo, roleRepo := newLedgerFixture()
		project := activeProject(t, manager)
		ledger, err := token.NewLedger(project.ID)
		require.NoError(t, err)
		minter := uuid.New()

		grantBindings(roleRepo, minter, scopedBinding(minter, &project.ID, identity.CapabilityMinter))
		projectRepo.On("FindByID", mock.Anything, project.ID).Return(project, nil)
		ledgerRepo.On("FindByProject", mock.Anything, project.ID).Return(ledger, nil)
		accrualRepo.On("FindByInvestorAndProject", mock.Anything, holder, project.ID).Return(nil, shared.ErrNotFound)
		accrualRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		ledgerRepo.On("SaveWithLock", mock.Anything, ledger).Return(nil)

		require.NoError(t, svc.Mint(ctx, minter, project.ID, holder, decimal.NewFromInt(100)))
		assert.True(t, ledger.BalanceOf(holder).Equal(decimal.NewFromInt(100)))
	})
}

func TestLedgerService_Transfer(t *testing.T) {
	ctx := context.Background()
	manager := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	setup := func(t *testing.T) (*LedgerService, *token.Ledger, *interest.AccrualRecord, *interest.AccrualRecord, *MockLedgerRepository, *MockAccrualRecordRepository) {
		svc, projectRepo, ledgerRepo, accrualRepo, _ := newLedgerFixture()
		project := activeProject(t, manager)
		ledger, err := token.NewLedger(project.ID)
		require.NoError(t, err)
		require.NoError(t, ledger.Mint(alice, decimal.NewFromInt(300)))

		// Both checkpoints ten days old; Alice holds 300, Bob nothing
		past := time.Now().Add(-10 * 24 * time.Hour)
		aliceRec, err := interest.NewAccrualRecord(alice, project.ID, past)
		require.NoError(t, err)
		bobRec, err := interest.NewAccrualRecord(bob, project.ID, past)
		require.NoError(t, err)

		projectRepo.On("FindByID", mock.Anything, project.ID).Return(project, nil)
		ledgerRepo.On("FindByProject", mock.Anything, project.ID).Return(ledger, nil)
		accrualRepo.On("FindByInvestorAndProject", mock.Anything, alice, project.ID).Return(aliceRec, nil)
		accrualRepo.On("FindByInvestorAndProject", mock.Anything, bob, project.ID).Return(bobRec, nil)
		accrualRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)
		ledgerRepo.On("SaveWithLock", mock.Anything, ledger).Return(nil)

		return svc, ledger, aliceRec, bobRec, ledgerRepo, accrualRepo
	}

	t.Run("settles both parties at pre-transfer balances", func(t *testing.T) {
		svc, ledger, aliceRec, bobRec, _, _ := setup(t)

		result, err := svc.Transfer(ctx, TransferRequest{
			ActorID:   alice,
			ProjectID: ledger.ProjectID,
			From:      alice,
			To:        bob,
			Amount:    decimal.NewFromInt(120),
		})
		require.NoError(t, err)
		assert.True(t, result.FromBalance.Equal(decimal.NewFromInt(180)))
		assert.True(t, result.ToBalance.Equal(decimal.NewFromInt(120)))

		// Alice earned ten days of interest on her full 300 before the move
		aliceExpected := interest.CalculateInterest(decimal.NewFromInt(300), 850, 10*24*time.Hour)
		assert.True(t, aliceRec.AccruedUnclaimed.Equal(aliceExpected),
			"got %s, want %s", aliceRec.AccruedUnclaimed, aliceExpected)

		// Bob held nothing before the transfer, so he earned nothing
		assert.True(t, bobRec.AccruedUnclaimed.IsZero())
	})

	t.Run("rejects transfer initiated by a third party", func(t *testing.T) {
		svc, _, ledgerRepo, _, roleRepo := newLedgerFixture()
		mallory := uuid.New()
		projectID := uuid.New()
		grantBindings(roleRepo, mallory) // no capabilities

		_, err := svc.Transfer(ctx, TransferRequest{
			ActorID:   mallory,
			ProjectID: projectID,
			From:      alice,
			To:        mallory,
			Amount:    decimal.NewFromInt(50),
		})
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
		ledgerRepo.AssertNotCalled(t, "FindByProject", mock.Anything, mock.Anything)
	})

	t.Run("paused ledger rejects transfer before settlement", func(t *testing.T) {
		svc, ledger, aliceRec, _, ledgerRepo, accrualRepo := setup(t)
		ledger.Pause()

		_, err := svc.Transfer(ctx, TransferRequest{
			ActorID:   alice,
			ProjectID: ledger.ProjectID,
			From:      alice,
			To:        bob,
			Amount:    decimal.NewFromInt(10),
		})
		assert.ErrorIs(t, err, shared.ErrTransfersPaused)

		// A doomed transfer leaves no trace: neither checkpoint moved
		// and nothing was persisted.
		assert.True(t, aliceRec.AccruedUnclaimed.IsZero())
		accrualRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		accrualRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		ledgerRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("insufficient balance rejects transfer before settlement", func(t *testing.T) {
		svc, ledger, _, _, _, accrualRepo := setup(t)

		_, err := svc.Transfer(ctx, TransferRequest{
			ActorID:   alice,
			ProjectID: ledger.ProjectID,
			From:      alice,
			To:        bob,
			Amount:    decimal.NewFromInt(301),
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
		accrualRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestLedgerService_PauseUnpause(t *testing.T) {
	ctx := context.Background()
	manager := uuid.New()

	t.Run("pauser toggles the switch", func(t *testing.T) {
		svc, projectRepo, ledgerRepo, _, roleRepo := newLedgerFixture()
		project := activeProject(t, manager)
		ledger, err := token.NewLedger(project.ID)
		require.NoError(t, err)
		pauser := uuid.New()

		grantBindings(roleRepo, pauser, scopedBinding(pauser, &project.ID, identity.CapabilityPauser))
		projectRepo.On("FindByID", mock.Anything, project.ID).Return(project, nil)
		ledgerRepo.On("FindByProject", mock.Anything, project.ID).Return(ledger, nil)
		ledgerRepo.On("SaveWithLock", mock.Anything, ledger).Return(nil)

		require.NoError(t, svc.Pause(ctx, pauser, project.ID))
		assert.True(t, ledger.Paused)

		require.NoError(t, svc.Unpause(ctx, pauser, project.ID))
		assert.False(t, ledger.Paused)
	})

	t.Run("rejects caller without pauser capability", func(t *testing.T) {
		svc, _, _, _, roleRepo := newLedgerFixture()
		actor := uuid.New()
		projectID := uuid.New()
		grantBindings(roleRepo, actor, scopedBinding(actor, &projectID, identity.CapabilityMinter))

		assert.ErrorIs(t, svc.Pause(ctx, actor, projectID), shared.ErrUnauthorized)
	})
}
