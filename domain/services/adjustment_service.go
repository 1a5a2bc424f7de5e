package services

import (
	"context"
	"fmt"
	"strings"

	"casino/domain/entities"
	"casino/domain/events"
	"casino/domain/interfaces"
	"casino/domain/types"

	log "github.com/sirupsen/logrus"
)

type adjustmentService struct {
	walletRepo      interfaces.WalletRepository
	transactionRepo interfaces.TransactionRepository
	eventPublisher  interfaces.EventPublisher
}

// NewAdjustmentService creates a new balance adjustment service
func NewAdjustmentService(walletRepo interfaces.WalletRepository, transactionRepo interfaces.TransactionRepository, eventPublisher interfaces.EventPublisher) interfaces.AdjustmentService {
	return &adjustmentService{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		eventPublisher:  eventPublisher,
	}
}

func (s *adjustmentService) AdjustBalance(ctx context.Context, actor entities.Actor, walletID int64, amount int64, reason string) (*entities.Transaction, error) {
	if !actor.IsAdmin() {
		return nil, types.Forbidden("only administrators can adjust balances")
	}
	if amount == 0 {
		return nil, types.Validation("adjustment amount cannot be zero")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, types.Validation("adjustment reason is required")
	}

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	if wallet == nil {
		return nil, types.NotFound("wallet %d not found", walletID)
	}
	if wallet.Balance+amount < 0 {
		return nil, types.InsufficientFunds(wallet.Balance, -amount)
	}

	adminID := actor.UserID
	entry := &entities.Transaction{
		Amount:  amount,
		Kind:    entities.TransactionKindAdjustment,
		Status:  entities.TransactionStatusCompleted,
		AdminID: &adminID,
		Reason:  &reason,
	}
	updated, err := postEntry(ctx, s.walletRepo, s.transactionRepo, s.eventPublisher, wallet, entry)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"walletID":   walletID,
		"userID":     wallet.UserID,
		"adminID":    adminID,
		"amount":     amount,
		"reason":     reason,
		"newBalance": updated.Balance,
	}).Warn("Balance adjusted manually")

	if err := s.eventPublisher.Publish(events.BalanceAdjustedEvent{
		UserID:        wallet.UserID,
		WalletID:      walletID,
		TransactionID: entry.ID,
		Amount:        amount,
		Currency:      wallet.Currency,
		Reason:        reason,
		AdminID:       adminID,
	}); err != nil {
		log.WithError(err).Error("Failed to publish balance adjusted event")
	}

	return entry, nil
}
