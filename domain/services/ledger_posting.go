package services

import (
	"context"
	"fmt"

	"casino/domain/entities"
	"casino/domain/events"
	"casino/domain/interfaces"
	"casino/domain/types"
	"casino/domain/utils"

	log "github.com/sirupsen/logrus"
)

// lockWallet loads or creates the wallet for (user, currency) with its row locked
// for the rest of the unit of work.
func lockWallet(ctx context.Context, walletRepo interfaces.WalletRepository, eventPublisher interfaces.EventPublisher, userID int64, currency entities.Currency) (*entities.Wallet, error) {
	if currency == "" {
		return nil, types.Validation("currency is required")
	}

	wallet, created, err := walletRepo.GetOrCreate(ctx, userID, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create wallet: %w", err)
	}

	if created {
		log.WithFields(log.Fields{
			"userID":   userID,
			"walletID": wallet.ID,
			"currency": currency,
		}).Info("Created wallet")
		if err := eventPublisher.Publish(events.WalletCreatedEvent{
			UserID:   userID,
			WalletID: wallet.ID,
			Currency: currency,
		}); err != nil {
			log.WithError(err).Error("Failed to publish wallet created event")
		}
	}

	return wallet, nil
}

// postEntry applies the entry's signed amount to a locked wallet and appends the
// entry to the ledger. The wallet mutation and the entry share the caller's unit
// of work, so either both land or neither does.
func postEntry(ctx context.Context, walletRepo interfaces.WalletRepository, transactionRepo interfaces.TransactionRepository, eventPublisher interfaces.EventPublisher, wallet *entities.Wallet, entry *entities.Transaction) (*entities.Wallet, error) {
	var (
		updated *entities.Wallet
		err     error
	)

	switch {
	case entry.Amount < 0:
		updated, err = walletRepo.Debit(ctx, wallet.ID, -entry.Amount)
		if err != nil {
			return nil, fmt.Errorf("failed to debit wallet: %w", err)
		}
		if updated == nil {
			return nil, types.InsufficientFunds(wallet.Balance, -entry.Amount)
		}
	case entry.Amount > 0:
		updated, err = walletRepo.Credit(ctx, wallet.ID, entry.Amount)
		if err != nil {
			return nil, fmt.Errorf("failed to credit wallet: %w", err)
		}
		if updated == nil {
			return nil, types.NotFound("wallet %d not found", wallet.ID)
		}
	default:
		return nil, types.Validation("amount cannot be zero")
	}

	entry.UserID = updated.UserID
	entry.WalletID = updated.ID
	entry.Currency = updated.Currency
	entry.BalanceAfter = updated.Balance
	if entry.Status == "" {
		entry.Status = entities.TransactionStatusCompleted
	}

	if err := utils.RecordLedgerEntry(ctx, transactionRepo, eventPublisher, entry); err != nil {
		return nil, err
	}

	return updated, nil
}

// currentBalance returns the user's balance in a currency without creating a wallet
func currentBalance(ctx context.Context, walletRepo interfaces.WalletRepository, userID int64, currency entities.Currency) (int64, error) {
	wallet, err := walletRepo.GetByUserAndCurrency(ctx, userID, currency)
	if err != nil {
		return 0, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return 0, nil
	}
	return wallet.Balance, nil
}
