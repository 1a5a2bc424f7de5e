package interfaces

import (
	"context"
	"time"

	"casino/domain/entities"
	"casino/domain/events"
)

// WalletRepository defines the interface for wallet data access.
// Mutators must run inside a unit of work; the wallet row stays locked until it ends.
type WalletRepository interface {
	// GetOrCreate returns the wallet for (user, currency), creating it with a zero balance
	// if it does not exist. The row is locked for update. created reports whether it was inserted.
	GetOrCreate(ctx context.Context, userID int64, currency entities.Currency) (wallet *entities.Wallet, created bool, err error)

	// GetByID retrieves a wallet by its ID
	GetByID(ctx context.Context, id int64) (*entities.Wallet, error)

	// GetByIDForUpdate retrieves a wallet by its ID and locks the row
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Wallet, error)

	// GetByUserAndCurrency retrieves a wallet without creating it
	GetByUserAndCurrency(ctx context.Context, userID int64, currency entities.Currency) (*entities.Wallet, error)

	// ListByUser returns all wallets owned by a user
	ListByUser(ctx context.Context, userID int64) ([]*entities.Wallet, error)

	// Debit decrements the balance if it covers the amount.
	// Returns nil when the balance is insufficient.
	Debit(ctx context.Context, walletID int64, amount int64) (*entities.Wallet, error)

	// Credit increments the balance
	Credit(ctx context.Context, walletID int64, amount int64) (*entities.Wallet, error)
}

// TransactionRepository defines the interface for the append-only ledger
type TransactionRepository interface {
	// Append writes a new ledger entry and fills its ID and CreatedAt
	Append(ctx context.Context, entry *entities.Transaction) error

	// GetByID retrieves a ledger entry by its ID
	GetByID(ctx context.Context, id int64) (*entities.Transaction, error)

	// UpdateStatus moves an entry from one status to another.
	// Returns nil if the entry was not in the expected status.
	UpdateStatus(ctx context.Context, id int64, from, to entities.TransactionStatus, processedBy int64, processedAt time.Time) (*entities.Transaction, error)

	// Query returns ledger entries matching the filter, newest first
	Query(ctx context.Context, filter entities.LedgerFilter) ([]*entities.Transaction, error)

	// SumEffectiveByWallet returns the sum of completed and pending entries for a wallet
	SumEffectiveByWallet(ctx context.Context, walletID int64) (int64, error)
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	// Create creates a new bet record
	Create(ctx context.Context, bet *entities.Bet) error

	// GetByID retrieves a bet by its ID
	GetByID(ctx context.Context, id int64) (*entities.Bet, error)

	// Settle stamps the outcome on a pending bet.
	// Returns nil if the bet was no longer pending.
	Settle(ctx context.Context, settlement entities.Settlement, settledAt time.Time) (*entities.Bet, error)

	// ListByUser returns the most recent bets for a user
	ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Bet, error)
}

// BonusRepository defines the interface for bonus data access
type BonusRepository interface {
	// Create creates a new bonus record
	Create(ctx context.Context, bonus *entities.Bonus) error

	// GetByID retrieves a bonus by its ID
	GetByID(ctx context.Context, id int64) (*entities.Bonus, error)

	// MarkClaimed moves a pending bonus to claimed.
	// Returns nil if the bonus was no longer pending.
	MarkClaimed(ctx context.Context, id int64, claimedAt time.Time) (*entities.Bonus, error)

	// AddWageringProgress adds a stake to every pending, unexpired bonus of the user in that currency
	AddWageringProgress(ctx context.Context, userID int64, currency entities.Currency, amount int64, now time.Time) (int64, error)

	// ExpireDue marks pending bonuses whose expiry has passed as expired and returns them
	ExpireDue(ctx context.Context, now time.Time, limit int) ([]*entities.Bonus, error)

	// ListByUser returns a user's bonuses, optionally filtered by status
	ListByUser(ctx context.Context, userID int64, status *entities.BonusStatus) ([]*entities.Bonus, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher queues events until the surrounding unit of work commits
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}
