package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"casino/domain/entities"
	"casino/domain/events"
	"casino/domain/interfaces"
	"casino/domain/types"

	log "github.com/sirupsen/logrus"
)

type withdrawalService struct {
	walletRepo      interfaces.WalletRepository
	transactionRepo interfaces.TransactionRepository
	eventPublisher  interfaces.EventPublisher
}

// NewWithdrawalService creates a new withdrawal workflow service
func NewWithdrawalService(walletRepo interfaces.WalletRepository, transactionRepo interfaces.TransactionRepository, eventPublisher interfaces.EventPublisher) interfaces.WithdrawalService {
	return &withdrawalService{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		eventPublisher:  eventPublisher,
	}
}

// RequestWithdrawal debits the wallet immediately and leaves a pending withdrawal
// entry for an administrator to approve or reject.
func (s *withdrawalService) RequestWithdrawal(ctx context.Context, actor entities.Actor, amount int64, currency entities.Currency, destination string) (*entities.WithdrawalResult, error) {
	if amount <= 0 {
		return nil, types.Validation("withdrawal amount must be positive")
	}
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, types.Validation("withdrawal destination is required")
	}

	wallet, err := lockWallet(ctx, s.walletRepo, s.eventPublisher, actor.UserID, currency)
	if err != nil {
		return nil, err
	}
	if !wallet.CanDebit(amount) {
		return nil, types.InsufficientFunds(wallet.Balance, amount)
	}

	entry := &entities.Transaction{
		Amount: -amount,
		Kind:   entities.TransactionKindWithdrawal,
		Status: entities.TransactionStatusPending,
		Metadata: map[string]any{
			entities.MetadataDestination: destination,
		},
	}
	updated, err := postEntry(ctx, s.walletRepo, s.transactionRepo, s.eventPublisher, wallet, entry)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"userID":        actor.UserID,
		"transactionID": entry.ID,
		"amount":        amount,
		"currency":      currency,
		"newBalance":    updated.Balance,
	}).Info("Withdrawal requested")

	if err := s.eventPublisher.Publish(events.WithdrawalRequestedEvent{
		UserID:        actor.UserID,
		TransactionID: entry.ID,
		Amount:        amount,
		Currency:      currency,
	}); err != nil {
		log.WithError(err).Error("Failed to publish withdrawal requested event")
	}

	return &entities.WithdrawalResult{Transaction: entry, Balance: updated.Balance}, nil
}

// ProcessWithdrawal approves or rejects a pending withdrawal. A rejection credits the
// held amount back; the status CAS makes duplicate processing calls fail.
func (s *withdrawalService) ProcessWithdrawal(ctx context.Context, actor entities.Actor, transactionID int64, action entities.WithdrawalAction) (*entities.WithdrawalResult, error) {
	if !actor.IsAdmin() {
		return nil, types.Forbidden("only administrators can process withdrawals")
	}
	target, ok := action.TargetStatus()
	if !ok {
		return nil, types.Validation("action must be approve or reject")
	}

	entry, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if entry == nil || entry.Kind != entities.TransactionKindWithdrawal {
		return nil, types.NotFound("withdrawal %d not found", transactionID)
	}
	if !entry.IsPendingWithdrawal() {
		return nil, types.AlreadyProcessed("withdrawal %d is already %s", transactionID, entry.Status)
	}

	// Lock the wallet before the status row, same order as RequestWithdrawal
	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, entry.WalletID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	if wallet == nil {
		return nil, types.NotFound("wallet %d not found", entry.WalletID)
	}

	processed, err := s.transactionRepo.UpdateStatus(ctx, transactionID, entities.TransactionStatusPending, target, actor.UserID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to update withdrawal status: %w", err)
	}
	if processed == nil {
		return nil, types.AlreadyProcessed("withdrawal %d was processed concurrently", transactionID)
	}

	balance := wallet.Balance
	if target == entities.TransactionStatusRejected {
		// The rejected entry drops out of the effective ledger sum, so the
		// refund needs no entry of its own.
		refunded, err := s.walletRepo.Credit(ctx, wallet.ID, -processed.Amount)
		if err != nil {
			return nil, fmt.Errorf("failed to refund withdrawal: %w", err)
		}
		if refunded == nil {
			return nil, types.NotFound("wallet %d not found", wallet.ID)
		}
		balance = refunded.Balance

		if err := s.eventPublisher.Publish(events.BalanceChangeEvent{
			UserID:        refunded.UserID,
			WalletID:      refunded.ID,
			TransactionID: processed.ID,
			Currency:      refunded.Currency,
			OldBalance:    wallet.Balance,
			NewBalance:    refunded.Balance,
			ChangeAmount:  -processed.Amount,
			Kind:          entities.TransactionKindWithdrawal,
		}); err != nil {
			log.WithError(err).Error("Failed to publish balance change event")
		}
	}

	log.WithFields(log.Fields{
		"transactionID": processed.ID,
		"userID":        processed.UserID,
		"adminID":       actor.UserID,
		"status":        processed.Status,
		"newBalance":    balance,
	}).Info("Withdrawal processed")

	if err := s.eventPublisher.Publish(events.WithdrawalProcessedEvent{
		UserID:        processed.UserID,
		TransactionID: processed.ID,
		Amount:        -processed.Amount,
		Currency:      processed.Currency,
		Status:        processed.Status,
		ProcessedBy:   actor.UserID,
	}); err != nil {
		log.WithError(err).Error("Failed to publish withdrawal processed event")
	}

	return &entities.WithdrawalResult{Transaction: processed, Balance: balance}, nil
}
