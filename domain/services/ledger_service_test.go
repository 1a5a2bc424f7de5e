package services

import (
	"context"
	"testing"
	"time"

	"casino/domain/entities"
	"casino/domain/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_Query_ScopesPlayersToThemselves(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := NewLedgerService(mocks.WalletRepo, mocks.TransactionRepo)

	mocks.TransactionRepo.On("Query", ctx, mock.MatchedBy(func(f entities.LedgerFilter) bool {
		return f.UserID != nil && *f.UserID == TestPlayerID && f.Limit == entities.DefaultLedgerLimit
	})).Return([]*entities.Transaction{}, nil)

	_, err := service.Query(ctx, testPlayer, entities.LedgerFilter{})
	require.NoError(t, err)
	mocks.AssertAllExpectations(t)
}

func TestLedgerService_Query_Validation(t *testing.T) {
	ctx := context.Background()
	other := TestOtherID
	unknown := entities.TransactionKind("refund")
	from := time.Now()
	to := from.Add(-time.Hour)

	tests := []struct {
		name   string
		actor  entities.Actor
		filter entities.LedgerFilter
		kind   types.ErrorKind
	}{
		{"other user's ledger", testPlayer, entities.LedgerFilter{UserID: &other}, types.KindForbidden},
		{"unknown kind", testAdmin, entities.LedgerFilter{Kind: &unknown}, types.KindValidation},
		{"inverted range", testAdmin, entities.LedgerFilter{From: &from, To: &to}, types.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := NewTestMocks()
			service := NewLedgerService(mocks.WalletRepo, mocks.TransactionRepo)

			_, err := service.Query(ctx, tt.actor, tt.filter)
			assert.Equal(t, tt.kind, types.KindOf(err))
			mocks.TransactionRepo.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
		})
	}
}

func TestLedgerService_Query_AdminSeesEveryone(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := NewLedgerService(mocks.WalletRepo, mocks.TransactionRepo)

	walletID := int64(7)
	mocks.TransactionRepo.On("Query", ctx, mock.MatchedBy(func(f entities.LedgerFilter) bool {
		return f.UserID == nil && f.WalletID != nil && *f.WalletID == walletID && f.Limit == entities.MaxLedgerLimit
	})).Return([]*entities.Transaction{{ID: 1}}, nil)

	entries, err := service.Query(ctx, testAdmin, entities.LedgerFilter{WalletID: &walletID, Limit: 10_000})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	mocks.AssertAllExpectations(t)
}

func TestLedgerService_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("balanced", func(t *testing.T) {
		mocks := NewTestMocks()
		service := NewLedgerService(mocks.WalletRepo, mocks.TransactionRepo)
		mocks.WalletRepo.On("GetByID", ctx, TestWalletID).Return(newTestWallet(TestPlayerID, 7000), nil)
		mocks.TransactionRepo.On("SumEffectiveByWallet", ctx, TestWalletID).Return(int64(7000), nil)

		result, err := service.Reconcile(ctx, testPlayer, TestWalletID)
		require.NoError(t, err)
		assert.True(t, result.Balanced())
		assert.Equal(t, int64(0), result.Difference())
	})

	t.Run("drift is reported, not hidden", func(t *testing.T) {
		mocks := NewTestMocks()
		service := NewLedgerService(mocks.WalletRepo, mocks.TransactionRepo)
		mocks.WalletRepo.On("GetByID", ctx, TestWalletID).Return(newTestWallet(TestPlayerID, 7000), nil)
		mocks.TransactionRepo.On("SumEffectiveByWallet", ctx, TestWalletID).Return(int64(6500), nil)

		result, err := service.Reconcile(ctx, testAdmin, TestWalletID)
		require.NoError(t, err)
		assert.False(t, result.Balanced())
		assert.Equal(t, int64(500), result.Difference())
	})

	t.Run("other player's wallet", func(t *testing.T) {
		mocks := NewTestMocks()
		service := NewLedgerService(mocks.WalletRepo, mocks.TransactionRepo)
		mocks.WalletRepo.On("GetByID", ctx, TestWalletID).Return(newTestWallet(TestPlayerID, 7000), nil)

		_, err := service.Reconcile(ctx, testOther, TestWalletID)
		assert.Equal(t, types.KindForbidden, types.KindOf(err))
	})

	t.Run("missing wallet", func(t *testing.T) {
		mocks := NewTestMocks()
		service := NewLedgerService(mocks.WalletRepo, mocks.TransactionRepo)
		mocks.WalletRepo.On("GetByID", ctx, TestWalletID).Return(nil, nil)

		_, err := service.Reconcile(ctx, testAdmin, TestWalletID)
		assert.Equal(t, types.KindNotFound, types.KindOf(err))
	})
}
