package interfaces

import (
	"context"
	"time"

	"casino/domain/entities"
)

// WalletService defines the interface for wallet operations
type WalletService interface {
	// GetOrCreate returns the locked wallet for (user, currency), creating it if needed
	GetOrCreate(ctx context.Context, userID int64, currency entities.Currency) (*entities.Wallet, error)

	// GetWallet returns a user's wallet in one currency
	GetWallet(ctx context.Context, actor entities.Actor, userID int64, currency entities.Currency) (*entities.Wallet, error)

	// ListWallets returns all wallets of a user
	ListWallets(ctx context.Context, actor entities.Actor, userID int64) ([]*entities.Wallet, error)

	// Deposit credits funds confirmed by the payment collaborator
	Deposit(ctx context.Context, actor entities.Actor, userID int64, currency entities.Currency, amount int64, reference string) (*entities.Transaction, error)
}

// LedgerService defines the interface for read-only ledger operations
type LedgerService interface {
	// Query returns ledger entries visible to the actor
	Query(ctx context.Context, actor entities.Actor, filter entities.LedgerFilter) ([]*entities.Transaction, error)

	// Reconcile compares a wallet's balance with the sum of its effective ledger entries
	Reconcile(ctx context.Context, actor entities.Actor, walletID int64) (*entities.Reconciliation, error)
}

// BetService defines the interface for the bet lifecycle
type BetService interface {
	// PlaceBet debits the stake and records a pending bet
	PlaceBet(ctx context.Context, actor entities.Actor, gameID string, stake int64, currency entities.Currency) (*entities.BetResult, error)

	// SettleBet resolves a pending bet exactly once and pays out any winnings
	SettleBet(ctx context.Context, actor entities.Actor, settlement entities.Settlement) (*entities.BetResult, error)

	// GetBet retrieves a bet visible to the actor
	GetBet(ctx context.Context, actor entities.Actor, betID int64) (*entities.Bet, error)

	// ListBets returns a user's most recent bets
	ListBets(ctx context.Context, actor entities.Actor, userID int64, limit int) ([]*entities.Bet, error)
}

// WithdrawalService defines the interface for the withdrawal workflow
type WithdrawalService interface {
	// RequestWithdrawal holds the funds and records a pending withdrawal
	RequestWithdrawal(ctx context.Context, actor entities.Actor, amount int64, currency entities.Currency, destination string) (*entities.WithdrawalResult, error)

	// ProcessWithdrawal approves or rejects a pending withdrawal
	ProcessWithdrawal(ctx context.Context, actor entities.Actor, transactionID int64, action entities.WithdrawalAction) (*entities.WithdrawalResult, error)
}

// BonusService defines the interface for bonus issuance
type BonusService interface {
	// GrantBonus issues a bonus, crediting it immediately if it has no wagering requirement
	GrantBonus(ctx context.Context, actor entities.Actor, grant entities.BonusGrant) (*entities.BonusResult, error)

	// ClaimBonus credits a pending bonus whose wagering requirement has been met
	ClaimBonus(ctx context.Context, actor entities.Actor, bonusID int64) (*entities.BonusResult, error)

	// ListBonuses returns a user's bonuses, optionally filtered by status
	ListBonuses(ctx context.Context, actor entities.Actor, userID int64, status *entities.BonusStatus) ([]*entities.Bonus, error)

	// ExpireDue expires pending bonuses past their expiry
	ExpireDue(ctx context.Context, now time.Time, limit int) ([]*entities.Bonus, error)
}

// AdjustmentService defines the interface for manual balance corrections
type AdjustmentService interface {
	// AdjustBalance applies a signed correction to a wallet on behalf of an administrator
	AdjustBalance(ctx context.Context, actor entities.Actor, walletID int64, amount int64, reason string) (*entities.Transaction, error)
}
