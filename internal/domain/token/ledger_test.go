package token

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) *Ledger {
	l, err := NewLedger(uuid.New())
	require.NoError(t, err)
	l.ClearDomainEvents()
	return l
}

func TestNewLedger(t *testing.T) {
	t.Run("creates empty ledger", func(t *testing.T) {
		projectID := uuid.New()
		l, err := NewLedger(projectID)
		require.NoError(t, err)
		assert.Equal(t, projectID, l.ProjectID)
		assert.True(t, l.TotalSupply.IsZero())
		assert.False(t, l.Paused)
		assert.Empty(t, l.Holdings)
		assert.Len(t, l.GetDomainEvents(), 1)
	})

	t.Run("rejects nil project", func(t *testing.T) {
		_, err := NewLedger(uuid.Nil)
		assert.Error(t, err)
	})
}

func TestLedger_Mint(t *testing.T) {
	l := newTestLedger(t)
	holder := uuid.New()

	t.Run("mints to new holder", func(t *testing.T) {
		require.NoError(t, l.Mint(holder, decimal.NewFromInt(100)))
		assert.True(t, l.BalanceOf(holder).Equal(decimal.NewFromInt(100)))
		assert.True(t, l.TotalSupply.Equal(decimal.NewFromInt(100)))
	})

	t.Run("mints again to same holder", func(t *testing.T) {
		require.NoError(t, l.Mint(holder, decimal.NewFromInt(50)))
		assert.True(t, l.BalanceOf(holder).Equal(decimal.NewFromInt(150)))
		assert.Len(t, l.Holdings, 1)
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		err := l.Mint(holder, decimal.Zero)
		assert.ErrorContains(t, err, "positive")
		assert.True(t, l.TotalSupply.Equal(decimal.NewFromInt(150)))
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		assert.Error(t, l.Mint(holder, decimal.NewFromInt(-1)))
	})

	t.Run("mint is unaffected by pause", func(t *testing.T) {
		l.Pause()
		require.NoError(t, l.Mint(holder, decimal.NewFromInt(10)))
		l.Unpause()
	})
}

func TestLedger_Burn(t *testing.T) {
	l := newTestLedger(t)
	holder := uuid.New()
	require.NoError(t, l.Mint(holder, decimal.NewFromInt(100)))

	t.Run("burns within balance", func(t *testing.T) {
		require.NoError(t, l.Burn(holder, decimal.NewFromInt(40)))
		assert.True(t, l.BalanceOf(holder).Equal(decimal.NewFromInt(60)))
		assert.True(t, l.TotalSupply.Equal(decimal.NewFromInt(60)))
	})

	t.Run("rejects burn beyond balance", func(t *testing.T) {
		err := l.Burn(holder, decimal.NewFromInt(61))
		assert.ErrorContains(t, err, "Insufficient")
		assert.True(t, l.BalanceOf(holder).Equal(decimal.NewFromInt(60)))
	})

	t.Run("burn to zero keeps the holding", func(t *testing.T) {
		require.NoError(t, l.Burn(holder, decimal.NewFromInt(60)))
		assert.True(t, l.BalanceOf(holder).IsZero())
		assert.Len(t, l.Holdings, 1)
	})

	t.Run("burn is unaffected by pause", func(t *testing.T) {
		require.NoError(t, l.Mint(holder, decimal.NewFromInt(5)))
		l.Pause()
		require.NoError(t, l.Burn(holder, decimal.NewFromInt(5)))
	})
}

func TestLedger_Transfer(t *testing.T) {
	l := newTestLedger(t)
	alice := uuid.New()
	bob := uuid.New()
	require.NoError(t, l.Mint(alice, decimal.NewFromInt(100)))

	t.Run("moves tokens between holders", func(t *testing.T) {
		require.NoError(t, l.Transfer(alice, bob, decimal.NewFromInt(30)))
		assert.True(t, l.BalanceOf(alice).Equal(decimal.NewFromInt(70)))
		assert.True(t, l.BalanceOf(bob).Equal(decimal.NewFromInt(30)))
		assert.True(t, l.TotalSupply.Equal(decimal.NewFromInt(100)))
	})

	t.Run("rejects transfer beyond balance", func(t *testing.T) {
		err := l.Transfer(alice, bob, decimal.NewFromInt(71))
		assert.ErrorContains(t, err, "Insufficient")
	})

	t.Run("rejects transfer while paused", func(t *testing.T) {
		l.Pause()
		err := l.Transfer(alice, bob, decimal.NewFromInt(1))
		assert.ErrorContains(t, err, "paused")

		l.Unpause()
		require.NoError(t, l.Transfer(alice, bob, decimal.NewFromInt(1)))
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		assert.Error(t, l.Transfer(alice, bob, decimal.Zero))
	})
}

func TestLedger_PauseUnpause(t *testing.T) {
	l := newTestLedger(t)

	l.Pause()
	assert.True(t, l.Paused)
	version := l.Version

	// Pausing again is a no-op
	l.Pause()
	assert.Equal(t, version, l.Version)

	l.Unpause()
	assert.False(t, l.Paused)

	l.Unpause()
	assert.False(t, l.Paused)
}

func TestLedger_HolderIDs(t *testing.T) {
	l := newTestLedger(t)
	alice := uuid.New()
	bob := uuid.New()
	require.NoError(t, l.Mint(alice, decimal.NewFromInt(10)))
	require.NoError(t, l.Mint(bob, decimal.NewFromInt(20)))
	require.NoError(t, l.Burn(bob, decimal.NewFromInt(20)))

	// Zero-balance holders remain listed
	assert.ElementsMatch(t, []uuid.UUID{alice, bob}, l.HolderIDs())
}
