package services

import (
	"context"
	"fmt"

	"casino/domain/entities"
	"casino/domain/interfaces"
	"casino/domain/types"
)

type ledgerService struct {
	walletRepo      interfaces.WalletRepository
	transactionRepo interfaces.TransactionRepository
}

// NewLedgerService creates a new read-only ledger service
func NewLedgerService(walletRepo interfaces.WalletRepository, transactionRepo interfaces.TransactionRepository) interfaces.LedgerService {
	return &ledgerService{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
	}
}

// Query returns ledger entries. Players only ever see their own entries.
func (s *ledgerService) Query(ctx context.Context, actor entities.Actor, filter entities.LedgerFilter) ([]*entities.Transaction, error) {
	if !actor.IsAdmin() {
		if filter.UserID != nil && *filter.UserID != actor.UserID {
			return nil, types.Forbidden("cannot view ledger of user %d", *filter.UserID)
		}
		userID := actor.UserID
		filter.UserID = &userID
	}
	if filter.Kind != nil && !filter.Kind.Valid() {
		return nil, types.Validation("unknown transaction kind %q", *filter.Kind)
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, types.Validation("from must be before to")
	}
	filter.Normalize()

	entries, err := s.transactionRepo.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	return entries, nil
}

func (s *ledgerService) Reconcile(ctx context.Context, actor entities.Actor, walletID int64) (*entities.Reconciliation, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, types.NotFound("wallet %d not found", walletID)
	}
	if !actor.CanAccess(wallet.UserID) {
		return nil, types.Forbidden("cannot reconcile wallet %d", walletID)
	}

	sum, err := s.transactionRepo.SumEffectiveByWallet(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum ledger entries: %w", err)
	}

	return &entities.Reconciliation{
		WalletID:  walletID,
		Balance:   wallet.Balance,
		LedgerSum: sum,
	}, nil
}
