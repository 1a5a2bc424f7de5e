package testhelpers

import (
	"context"
	"time"

	"casino/domain/entities"
	"casino/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetOrCreate(ctx context.Context, userID int64, currency entities.Currency) (*entities.Wallet, bool, error) {
	args := m.Called(ctx, userID, currency)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.Wallet), args.Bool(1), args.Error(2)
}

func (m *MockWalletRepository) GetByID(ctx context.Context, id int64) (*entities.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByUserAndCurrency(ctx context.Context, userID int64, currency entities.Currency) (*entities.Wallet, error) {
	args := m.Called(ctx, userID, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ListByUser(ctx context.Context, userID int64) ([]*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Debit(ctx context.Context, walletID int64, amount int64) (*entities.Wallet, error) {
	args := m.Called(ctx, walletID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Credit(ctx context.Context, walletID int64, amount int64) (*entities.Wallet, error) {
	args := m.Called(ctx, walletID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Append(ctx context.Context, entry *entities.Transaction) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id int64) (*entities.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, id int64, from, to entities.TransactionStatus, processedBy int64, processedAt time.Time) (*entities.Transaction, error) {
	args := m.Called(ctx, id, from, to, processedBy, processedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Query(ctx context.Context, filter entities.LedgerFilter) ([]*entities.Transaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SumEffectiveByWallet(ctx context.Context, walletID int64) (int64, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).(int64), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *entities.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByID(ctx context.Context, id int64) (*entities.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) Settle(ctx context.Context, settlement entities.Settlement, settledAt time.Time) (*entities.Bet, error) {
	args := m.Called(ctx, settlement, settledAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Bet, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

// MockBonusRepository is a mock implementation of BonusRepository
type MockBonusRepository struct {
	mock.Mock
}

func (m *MockBonusRepository) Create(ctx context.Context, bonus *entities.Bonus) error {
	args := m.Called(ctx, bonus)
	return args.Error(0)
}

func (m *MockBonusRepository) GetByID(ctx context.Context, id int64) (*entities.Bonus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bonus), args.Error(1)
}

func (m *MockBonusRepository) MarkClaimed(ctx context.Context, id int64, claimedAt time.Time) (*entities.Bonus, error) {
	args := m.Called(ctx, id, claimedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bonus), args.Error(1)
}

func (m *MockBonusRepository) AddWageringProgress(ctx context.Context, userID int64, currency entities.Currency, amount int64, now time.Time) (int64, error) {
	args := m.Called(ctx, userID, currency, amount, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBonusRepository) ExpireDue(ctx context.Context, now time.Time, limit int) ([]*entities.Bonus, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bonus), args.Error(1)
}

func (m *MockBonusRepository) ListByUser(ctx context.Context, userID int64, status *entities.BonusStatus) ([]*entities.Bonus, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bonus), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
