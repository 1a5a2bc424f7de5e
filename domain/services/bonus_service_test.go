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

func TestBonusService_GrantBonus_Immediate(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := NewBonusService(mocks.WalletRepo, mocks.TransactionRepo, mocks.BonusRepo, mocks.EventPublisher)

	wallet := newTestWallet(TestPlayerID, 0)
	mocks.BonusRepo.On("Create", ctx, mock.MatchedBy(func(b *entities.Bonus) bool {
		return b.Status == entities.BonusStatusClaimed && b.ClaimedAt != nil && b.GrantedBy == TestAdminID
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Bonus).ID = 31
	}).Return(nil)
	mocks.ExpectLockWallet(ctx, wallet)
	mocks.ExpectCredit(ctx, wallet, 2500, 2500)
	mocks.ExpectAppend(ctx, 41, func(tx *entities.Transaction) bool {
		return tx.Amount == 2500 &&
			tx.Kind == entities.TransactionKindBonus &&
			tx.BonusID != nil && *tx.BonusID == 31 &&
			tx.AdminID != nil && *tx.AdminID == TestAdminID &&
			tx.Reason != nil && *tx.Reason == "welcome"
	})
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BonusGrantedEvent")).Return(nil)

	result, err := service.GrantBonus(ctx, testAdmin, entities.BonusGrant{
		UserID:   TestPlayerID,
		Amount:   2500,
		Currency: TestCurrency,
		Reason:   "welcome",
	})
	require.NoError(t, err)

	assert.Equal(t, entities.BonusStatusClaimed, result.Bonus.Status)
	assert.Equal(t, int64(2500), result.Balance)
	mocks.AssertAllExpectations(t)
}

func TestBonusService_GrantBonus_WithWageringRequirement(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := NewBonusService(mocks.WalletRepo, mocks.TransactionRepo, mocks.BonusRepo, mocks.EventPublisher)

	mocks.BonusRepo.On("Create", ctx, mock.MatchedBy(func(b *entities.Bonus) bool {
		return b.Status == entities.BonusStatusPending && b.ClaimedAt == nil && b.WageringRequirement == 10000
	})).Return(nil)
	mocks.WalletRepo.On("GetByUserAndCurrency", ctx, TestPlayerID, TestCurrency).Return(newTestWallet(TestPlayerID, 2500), nil)
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BonusGrantedEvent")).Return(nil)

	result, err := service.GrantBonus(ctx, testAdmin, entities.BonusGrant{
		UserID:              TestPlayerID,
		Amount:              2500,
		Currency:            TestCurrency,
		WageringRequirement: 10000,
		Reason:              "reload",
	})
	require.NoError(t, err)

	assert.Equal(t, entities.BonusStatusPending, result.Bonus.Status)
	assert.Equal(t, int64(2500), result.Balance)
	mocks.AssertNoMoneyMoved(t)
	mocks.AssertAllExpectations(t)
}

func TestBonusService_GrantBonus_Rejections(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	valid := entities.BonusGrant{UserID: TestPlayerID, Amount: 100, Currency: TestCurrency, Reason: "promo"}

	tests := []struct {
		name     string
		actor    entities.Actor
		mutate   func(g *entities.BonusGrant)
		wantKind types.ErrorKind
	}{
		{name: "player grants", actor: testPlayer, mutate: func(g *entities.BonusGrant) {}, wantKind: types.KindForbidden},
		{name: "zero amount", actor: testAdmin, mutate: func(g *entities.BonusGrant) { g.Amount = 0 }, wantKind: types.KindValidation},
		{name: "negative requirement", actor: testAdmin, mutate: func(g *entities.BonusGrant) { g.WageringRequirement = -1 }, wantKind: types.KindValidation},
		{name: "missing reason", actor: testAdmin, mutate: func(g *entities.BonusGrant) { g.Reason = " " }, wantKind: types.KindValidation},
		{name: "expiry in the past", actor: testAdmin, mutate: func(g *entities.BonusGrant) { g.ExpiresAt = &past }, wantKind: types.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mocks := NewTestMocks()
			service := NewBonusService(mocks.WalletRepo, mocks.TransactionRepo, mocks.BonusRepo, mocks.EventPublisher)

			grant := valid
			tt.mutate(&grant)
			_, err := service.GrantBonus(context.Background(), tt.actor, grant)

			assert.Equal(t, tt.wantKind, types.KindOf(err))
			mocks.BonusRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestBonusService_ClaimBonus(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := NewBonusService(mocks.WalletRepo, mocks.TransactionRepo, mocks.BonusRepo, mocks.EventPublisher)

	bonus := &entities.Bonus{
		ID: 31, UserID: TestPlayerID, Amount: 2500, Currency: TestCurrency,
		WageringRequirement: 10000, WageringProgress: 12000,
		Status: entities.BonusStatusPending, Reason: "reload", GrantedBy: TestAdminID,
	}
	claimed := *bonus
	claimed.Status = entities.BonusStatusClaimed
	wallet := newTestWallet(TestPlayerID, 500)

	mocks.BonusRepo.On("GetByID", ctx, int64(31)).Return(bonus, nil)
	mocks.ExpectLockWallet(ctx, wallet)
	mocks.BonusRepo.On("MarkClaimed", ctx, int64(31), mock.AnythingOfType("time.Time")).Return(&claimed, nil)
	mocks.ExpectCredit(ctx, wallet, 2500, 3000)
	mocks.ExpectAppend(ctx, 42, func(tx *entities.Transaction) bool {
		return tx.Kind == entities.TransactionKindBonus && tx.BonusID != nil && *tx.BonusID == 31
	})
	mocks.AllowEvents()

	result, err := service.ClaimBonus(ctx, testPlayer, 31)
	require.NoError(t, err)

	assert.Equal(t, entities.BonusStatusClaimed, result.Bonus.Status)
	assert.Equal(t, int64(3000), result.Balance)
	mocks.AssertAllExpectations(t)
}

func TestBonusService_ClaimBonus_Rejections(t *testing.T) {
	t.Parallel()

	expired := time.Now().Add(-time.Minute)

	tests := []struct {
		name     string
		actor    entities.Actor
		bonus    *entities.Bonus
		wantKind types.ErrorKind
	}{
		{
			name:     "missing",
			actor:    testPlayer,
			bonus:    nil,
			wantKind: types.KindNotFound,
		},
		{
			name:     "someone else's bonus",
			actor:    testOther,
			bonus:    &entities.Bonus{ID: 31, UserID: TestPlayerID, Status: entities.BonusStatusPending},
			wantKind: types.KindForbidden,
		},
		{
			name:     "already claimed",
			actor:    testPlayer,
			bonus:    &entities.Bonus{ID: 31, UserID: TestPlayerID, Status: entities.BonusStatusClaimed},
			wantKind: types.KindAlreadyProcessed,
		},
		{
			name:     "requirement not met",
			actor:    testPlayer,
			bonus:    &entities.Bonus{ID: 31, UserID: TestPlayerID, Status: entities.BonusStatusPending, WageringRequirement: 100, WageringProgress: 99},
			wantKind: types.KindValidation,
		},
		{
			name:     "expired",
			actor:    testPlayer,
			bonus:    &entities.Bonus{ID: 31, UserID: TestPlayerID, Status: entities.BonusStatusPending, ExpiresAt: &expired},
			wantKind: types.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			mocks := NewTestMocks()
			service := NewBonusService(mocks.WalletRepo, mocks.TransactionRepo, mocks.BonusRepo, mocks.EventPublisher)
			if tt.bonus == nil {
				mocks.BonusRepo.On("GetByID", ctx, int64(31)).Return(nil, nil)
			} else {
				mocks.BonusRepo.On("GetByID", ctx, int64(31)).Return(tt.bonus, nil)
			}

			_, err := service.ClaimBonus(ctx, tt.actor, 31)

			assert.Equal(t, tt.wantKind, types.KindOf(err))
			mocks.BonusRepo.AssertNotCalled(t, "MarkClaimed", mock.Anything, mock.Anything, mock.Anything)
			mocks.AssertNoMoneyMoved(t)
		})
	}
}

func TestBonusService_ExpireDue(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := NewBonusService(mocks.WalletRepo, mocks.TransactionRepo, mocks.BonusRepo, mocks.EventPublisher)

	now := time.Now().UTC()
	expired := []*entities.Bonus{
		{ID: 1, UserID: TestPlayerID, Amount: 100, Status: entities.BonusStatusExpired},
		{ID: 2, UserID: TestOtherID, Amount: 200, Status: entities.BonusStatusExpired},
	}
	mocks.BonusRepo.On("ExpireDue", ctx, now, 100).Return(expired, nil)
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BonusExpiredEvent")).Return(nil).Twice()

	got, err := service.ExpireDue(ctx, now, 100)
	require.NoError(t, err)

	assert.Len(t, got, 2)
	mocks.AssertAllExpectations(t)
}
