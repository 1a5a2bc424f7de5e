package services

import (
	"context"
	"fmt"
	"strings"

	"casino/domain/entities"
	"casino/domain/interfaces"
	"casino/domain/types"

	log "github.com/sirupsen/logrus"
)

type walletService struct {
	walletRepo      interfaces.WalletRepository
	transactionRepo interfaces.TransactionRepository
	eventPublisher  interfaces.EventPublisher
}

// NewWalletService creates a new wallet service
func NewWalletService(walletRepo interfaces.WalletRepository, transactionRepo interfaces.TransactionRepository, eventPublisher interfaces.EventPublisher) interfaces.WalletService {
	return &walletService{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		eventPublisher:  eventPublisher,
	}
}

func (s *walletService) GetOrCreate(ctx context.Context, userID int64, currency entities.Currency) (*entities.Wallet, error) {
	return lockWallet(ctx, s.walletRepo, s.eventPublisher, userID, currency)
}

func (s *walletService) GetWallet(ctx context.Context, actor entities.Actor, userID int64, currency entities.Currency) (*entities.Wallet, error) {
	if !actor.CanAccess(userID) {
		return nil, types.Forbidden("cannot view wallets of user %d", userID)
	}

	wallet, err := s.walletRepo.GetByUserAndCurrency(ctx, userID, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, types.NotFound("no %s wallet for user %d", currency, userID)
	}
	return wallet, nil
}

func (s *walletService) ListWallets(ctx context.Context, actor entities.Actor, userID int64) ([]*entities.Wallet, error) {
	if !actor.CanAccess(userID) {
		return nil, types.Forbidden("cannot view wallets of user %d", userID)
	}

	wallets, err := s.walletRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

func (s *walletService) Deposit(ctx context.Context, actor entities.Actor, userID int64, currency entities.Currency, amount int64, reference string) (*entities.Transaction, error) {
	if !actor.IsAdmin() {
		return nil, types.Forbidden("only the payment service may record deposits")
	}
	if amount <= 0 {
		return nil, types.Validation("deposit amount must be positive")
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, types.Validation("deposit reference is required")
	}

	wallet, err := lockWallet(ctx, s.walletRepo, s.eventPublisher, userID, currency)
	if err != nil {
		return nil, err
	}

	entry := &entities.Transaction{
		Amount: amount,
		Kind:   entities.TransactionKindDeposit,
		Status: entities.TransactionStatusCompleted,
		Metadata: map[string]any{
			entities.MetadataReference: reference,
		},
	}
	if _, err := postEntry(ctx, s.walletRepo, s.transactionRepo, s.eventPublisher, wallet, entry); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"userID":    userID,
		"walletID":  wallet.ID,
		"amount":    amount,
		"currency":  currency,
		"reference": reference,
	}).Info("Deposit recorded")

	return entry, nil
}
