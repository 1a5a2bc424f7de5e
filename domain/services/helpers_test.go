package services

import (
	"context"
	"testing"

	"casino/domain/entities"
	"casino/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

// Test constants for consistent test data
const (
	TestPlayerID = int64(100)
	TestOtherID  = int64(200)
	TestAdminID  = int64(900)
	TestWalletID = int64(1)
	TestCurrency = entities.Currency("USD")
)

var (
	testPlayer = entities.Actor{UserID: TestPlayerID, Role: entities.RolePlayer}
	testOther  = entities.Actor{UserID: TestOtherID, Role: entities.RolePlayer}
	testAdmin  = entities.Actor{UserID: TestAdminID, Role: entities.RoleAdmin}
)

// TestMocks aggregates all repository mocks for testing
type TestMocks struct {
	WalletRepo      *testhelpers.MockWalletRepository
	TransactionRepo *testhelpers.MockTransactionRepository
	BetRepo         *testhelpers.MockBetRepository
	BonusRepo       *testhelpers.MockBonusRepository
	EventPublisher  *testhelpers.MockEventPublisher
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		WalletRepo:      &testhelpers.MockWalletRepository{},
		TransactionRepo: &testhelpers.MockTransactionRepository{},
		BetRepo:         &testhelpers.MockBetRepository{},
		BonusRepo:       &testhelpers.MockBonusRepository{},
		EventPublisher:  &testhelpers.MockEventPublisher{},
	}
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.WalletRepo.AssertExpectations(t)
	m.TransactionRepo.AssertExpectations(t)
	m.BetRepo.AssertExpectations(t)
	m.BonusRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

// AssertNoMoneyMoved verifies no wallet mutation or ledger append happened
func (m *TestMocks) AssertNoMoneyMoved(t *testing.T) {
	m.WalletRepo.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything)
	m.WalletRepo.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
	m.TransactionRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

// AllowEvents accepts any published event
func (m *TestMocks) AllowEvents() {
	m.EventPublisher.On("Publish", mock.Anything).Return(nil).Maybe()
}

// ExpectLockWallet returns the given wallet from GetOrCreate
func (m *TestMocks) ExpectLockWallet(ctx context.Context, wallet *entities.Wallet) {
	m.WalletRepo.On("GetOrCreate", ctx, wallet.UserID, wallet.Currency).Return(wallet, false, nil).Once()
}

// ExpectDebit expects a debit that leaves the wallet at newBalance
func (m *TestMocks) ExpectDebit(ctx context.Context, wallet *entities.Wallet, amount, newBalance int64) {
	m.WalletRepo.On("Debit", ctx, wallet.ID, amount).Return(walletWithBalance(wallet, newBalance), nil).Once()
}

// ExpectCredit expects a credit that leaves the wallet at newBalance
func (m *TestMocks) ExpectCredit(ctx context.Context, wallet *entities.Wallet, amount, newBalance int64) {
	m.WalletRepo.On("Credit", ctx, wallet.ID, amount).Return(walletWithBalance(wallet, newBalance), nil).Once()
}

// ExpectAppend expects one ledger entry matching the predicate and assigns it an ID
func (m *TestMocks) ExpectAppend(ctx context.Context, id int64, match func(*entities.Transaction) bool) {
	m.TransactionRepo.On("Append", ctx, mock.MatchedBy(match)).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Transaction).ID = id
	}).Return(nil).Once()
}

func newTestWallet(userID int64, balance int64) *entities.Wallet {
	return &entities.Wallet{
		ID:       TestWalletID,
		UserID:   userID,
		Currency: TestCurrency,
		Balance:  balance,
	}
}

func walletWithBalance(wallet *entities.Wallet, balance int64) *entities.Wallet {
	updated := *wallet
	updated.Balance = balance
	updated.Version++
	return &updated
}
