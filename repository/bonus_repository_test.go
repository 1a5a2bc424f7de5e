package repository

import (
	"context"
	"testing"
	"time"

	"casino/domain/entities"
	"casino/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBonusRepository_Lifecycle(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewBonusRepository(testDB.DB)

	bonus := testutil.CreateTestBonus(100, 1000, 5000)
	require.NoError(t, repo.Create(ctx, bonus))
	assert.NotZero(t, bonus.ID)

	t.Run("wagering progress only counts pending bonuses in the currency", func(t *testing.T) {
		eur := testutil.CreateTestBonus(100, 1000, 5000)
		eur.Currency = "EUR"
		require.NoError(t, repo.Create(ctx, eur))

		advanced, err := repo.AddWageringProgress(ctx, 100, "USD", 3000, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(1), advanced)

		stored, err := repo.GetByID(ctx, bonus.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3000), stored.WageringProgress)
		assert.Equal(t, int64(2000), stored.RemainingWagering())

		stored, err = repo.GetByID(ctx, eur.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), stored.WageringProgress)
	})

	t.Run("claim is a one-time transition", func(t *testing.T) {
		claimedAt := time.Now()
		claimed, err := repo.MarkClaimed(ctx, bonus.ID, claimedAt)
		require.NoError(t, err)
		require.NotNil(t, claimed)
		assert.Equal(t, entities.BonusStatusClaimed, claimed.Status)
		assert.NotNil(t, claimed.ClaimedAt)

		again, err := repo.MarkClaimed(ctx, bonus.ID, claimedAt)
		require.NoError(t, err)
		assert.Nil(t, again)
	})

	t.Run("list with and without status", func(t *testing.T) {
		all, err := repo.ListByUser(ctx, 100, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		status := entities.BonusStatusClaimed
		claimed, err := repo.ListByUser(ctx, 100, &status)
		require.NoError(t, err)
		require.Len(t, claimed, 1)
		assert.Equal(t, bonus.ID, claimed[0].ID)
	})
}

func TestBonusRepository_ExpireDue(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewBonusRepository(testDB.DB)

	past := time.Now().Add(-time.Hour)

	overdue := testutil.CreateTestBonus(100, 1000, 5000)
	overdue.ExpiresAt = &past
	require.NoError(t, repo.Create(ctx, overdue))

	open := testutil.CreateTestBonus(100, 1000, 5000)
	require.NoError(t, repo.Create(ctx, open))

	noExpiry := testutil.CreateTestBonus(100, 1000, 5000)
	noExpiry.ExpiresAt = nil
	require.NoError(t, repo.Create(ctx, noExpiry))

	// Expired bonuses no longer collect wagering progress
	advanced, err := repo.AddWageringProgress(ctx, 100, "USD", 100, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), advanced)

	expired, err := repo.ExpireDue(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, overdue.ID, expired[0].ID)
	assert.Equal(t, entities.BonusStatusExpired, expired[0].Status)

	expired, err = repo.ExpireDue(ctx, time.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, expired)

	claimed, err := repo.MarkClaimed(ctx, overdue.ID, time.Now())
	require.NoError(t, err)
	assert.Nil(t, claimed)
}
