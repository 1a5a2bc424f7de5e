package utils

import (
	"context"
	"fmt"

	"casino/domain/entities"
	"casino/domain/events"
	"casino/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// RecordLedgerEntry appends a ledger entry and emits a balance change event.
// This is the single entry point for writing to the ledger; callers must have
// already applied the matching wallet mutation in the same unit of work.
func RecordLedgerEntry(ctx context.Context, transactionRepo interfaces.TransactionRepository, eventPublisher interfaces.EventPublisher, entry *entities.Transaction) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid ledger entry: %w", err)
	}

	if err := transactionRepo.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	event := events.BalanceChangeEvent{
		UserID:        entry.UserID,
		WalletID:      entry.WalletID,
		TransactionID: entry.ID,
		Currency:      entry.Currency,
		OldBalance:    entry.BalanceAfter - entry.Amount,
		NewBalance:    entry.BalanceAfter,
		ChangeAmount:  entry.Amount,
		Kind:          entry.Kind,
	}
	log.WithFields(log.Fields{
		"userID":        event.UserID,
		"walletID":      event.WalletID,
		"transactionID": event.TransactionID,
		"oldBalance":    event.OldBalance,
		"newBalance":    event.NewBalance,
		"kind":          event.Kind,
		"changeAmount":  event.ChangeAmount,
	}).Debug("Publishing BalanceChangeEvent")
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	return nil
}
