package testutil

import (
	"context"
	"testing"
	"time"

	"casino/database"
	"casino/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// SeedWallet creates a wallet holding balance, backed by a matching deposit
// entry so the ledger reconciles from the start
func SeedWallet(t *testing.T, db *database.DB, userID int64, currency entities.Currency, balance int64) *entities.Wallet {
	t.Helper()

	var wallet entities.Wallet
	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		err := tx.QueryRow(context.Background(), `
			INSERT INTO wallets (user_id, currency, balance)
			VALUES ($1, $2, $3)
			RETURNING id, user_id, currency, balance, version, created_at, updated_at`,
			userID, currency, balance,
		).Scan(&wallet.ID, &wallet.UserID, &wallet.Currency, &wallet.Balance, &wallet.Version, &wallet.CreatedAt, &wallet.UpdatedAt)
		if err != nil {
			return err
		}

		if balance == 0 {
			return nil
		}

		_, err = tx.Exec(context.Background(), `
			INSERT INTO transactions (user_id, wallet_id, amount, currency, kind, status, balance_after, metadata)
			VALUES ($1, $2, $3, $4, 'deposit', 'completed', $3, '{"reference":"seed"}'::jsonb)`,
			userID, wallet.ID, balance, currency,
		)
		return err
	})
	require.NoError(t, err)

	return &wallet
}

// CreateTestBet returns a pending bet with default values
func CreateTestBet(userID int64, stake int64) *entities.Bet {
	return &entities.Bet{
		UserID:   userID,
		GameID:   "slots-classic",
		Stake:    stake,
		Currency: "USD",
		Outcome:  entities.BetOutcomePending,
	}
}

// CreateTestBonus returns a pending bonus with default values
func CreateTestBonus(userID int64, amount, requirement int64) *entities.Bonus {
	expiresAt := time.Now().Add(24 * time.Hour)
	return &entities.Bonus{
		UserID:              userID,
		Amount:              amount,
		Currency:            "USD",
		WageringRequirement: requirement,
		Status:              entities.BonusStatusPending,
		Reason:              "welcome offer",
		GrantedBy:           900,
		ExpiresAt:           &expiresAt,
	}
}

// CreateTestLedgerEntry returns a completed ledger entry for a wallet
func CreateTestLedgerEntry(wallet *entities.Wallet, kind entities.TransactionKind, amount int64) *entities.Transaction {
	return &entities.Transaction{
		UserID:       wallet.UserID,
		WalletID:     wallet.ID,
		Amount:       amount,
		Currency:     wallet.Currency,
		Kind:         kind,
		Status:       entities.TransactionStatusCompleted,
		BalanceAfter: wallet.Balance + amount,
		Metadata: map[string]any{
			"test": true,
		},
	}
}
