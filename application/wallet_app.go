package application

import (
	"context"
	"errors"
	"time"

	"casino/config"
	"casino/database"
	"casino/domain/entities"
	"casino/domain/services"
	"casino/domain/types"

	log "github.com/sirupsen/logrus"
)

// OperationRecorder receives per-operation metrics
type OperationRecorder interface {
	RecordOperation(operation string, err error, duration time.Duration)
	RecordLedgerEntry(kind string)
	RecordBonusesExpired(count int)
}

const defaultExpiryBatchSize = 500

type noopRecorder struct{}

func (noopRecorder) RecordOperation(string, error, time.Duration) {}
func (noopRecorder) RecordLedgerEntry(string)                     {}
func (noopRecorder) RecordBonusesExpired(int)                     {}

// WalletApp runs every wallet operation as one unit of work under a deadline
type WalletApp struct {
	uowFactory UnitOfWorkFactory
	metrics    OperationRecorder
}

// NewWalletApp creates a new WalletApp. A nil recorder disables metrics.
func NewWalletApp(uowFactory UnitOfWorkFactory, metrics OperationRecorder) *WalletApp {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &WalletApp{
		uowFactory: uowFactory,
		metrics:    metrics,
	}
}

// run executes fn inside a fresh unit of work. Any error rolls the unit back
// and is classified into a domain error before it is returned.
func (a *WalletApp) run(ctx context.Context, operation string, fn func(ctx context.Context, uow UnitOfWork) error) (err error) {
	start := time.Now()
	defer func() {
		a.metrics.RecordOperation(operation, err, time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(ctx, config.Get().OperationTimeout)
	defer cancel()

	uow := a.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return classifyError(ctx, operation, err)
	}
	defer uow.Rollback()

	if err := fn(ctx, uow); err != nil {
		return classifyError(ctx, operation, err)
	}

	if err := uow.Commit(); err != nil {
		return classifyError(ctx, operation, err)
	}

	return nil
}

// classifyError turns storage and deadline errors into retryable STORAGE_FAILURE errors.
// Domain errors are returned unchanged.
func classifyError(ctx context.Context, operation string, err error) error {
	if types.KindOf(err) != "" {
		log.WithFields(log.Fields{
			"operation": operation,
			"kind":      types.KindOf(err),
		}).Debugf("Wallet operation refused: %v", err)
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = types.StorageFailure("operation timed out", err)
	} else {
		err = database.ClassifyError(err)
	}

	fields := log.Fields{
		"operation": operation,
		"kind":      types.KindOf(err),
		"error":     err,
	}
	if types.IsRetryable(err) {
		fields["transient"] = database.IsRetryablePgError(err)
		log.WithFields(fields).Error("Wallet operation failed")
	} else {
		log.WithFields(fields).Debug("Wallet operation refused by storage constraint")
	}
	return err
}

// GetWallet returns a user's wallet in one currency
func (a *WalletApp) GetWallet(ctx context.Context, actor entities.Actor, userID int64, currency entities.Currency) (wallet *entities.Wallet, err error) {
	err = a.run(ctx, "GetWallet", func(ctx context.Context, uow UnitOfWork) error {
		svc := services.NewWalletService(uow.WalletRepository(), uow.TransactionRepository(), uow.EventBus())
		wallet, err = svc.GetWallet(ctx, actor, userID, currency)
		return err
	})
	return wallet, err
}

// ListWallets returns all wallets of a user
func (a *WalletApp) ListWallets(ctx context.Context, actor entities.Actor, userID int64) (wallets []*entities.Wallet, err error) {
	err = a.run(ctx, "ListWallets", func(ctx context.Context, uow UnitOfWork) error {
		svc := services.NewWalletService(uow.WalletRepository(), uow.TransactionRepository(), uow.EventBus())
		wallets, err = svc.ListWallets(ctx, actor, userID)
		return err
	})
	return wallets, err
}

// Deposit records funds confirmed by the payment collaborator
func (a *WalletApp) Deposit(ctx context.Context, actor entities.Actor, userID int64, currency entities.Currency, amount int64, reference string) (entry *entities.Transaction, err error) {
	err = a.run(ctx, "Deposit", func(ctx context.Context, uow UnitOfWork) error {
		svc := services.NewWalletService(uow.WalletRepository(), uow.TransactionRepository(), uow.EventBus())
		entry, err = svc.Deposit(ctx, actor, userID, currency, amount, reference)
		return err
	})
	if err == nil {
		a.metrics.RecordLedgerEntry(string(entities.TransactionKindDeposit))
	}
	return entry, err
}

// PlaceBet debits the stake and opens a pending bet
func (a *WalletApp) PlaceBet(ctx context.Context, actor entities.Actor, gameID string, stake int64, currency entities.Currency) (result *entities.BetResult, err error) {
	err = a.run(ctx, "PlaceBet", func(ctx context.Context, uow UnitOfWork) error {
		svc := services.NewBetService(uow.WalletRepository(), uow.TransactionRepository(), uow.BetRepository(), uow.BonusRepository(), uow.EventBus())
		result, err = svc.PlaceBet(ctx, actor, gameID, stake, currency)
		return err
	})
	if err == nil {
		a.metrics.RecordLedgerEntry(string(entities.TransactionKindBet))
	}
	return result, err
}

// SettleBet resolves a pending bet exactly once
func (a *WalletApp) SettleBet(ctx context.Context, actor entities.Actor, settlement entities.Settlement) (result *entities.BetResult, err error) {
	err = a.run(ctx, "SettleBet", func(ctx context.Context, uow UnitOfWork) error {
		svc := services.NewBetService(uow.WalletRepository(), uow.TransactionRepository(), uow.BetRepository(), uow.BonusRepository(), uow.EventBus())
		result, err = svc.SettleBet(ctx, actor, settlement)
		return err
	})
	if err == nil && result.Bet.WinAmount > 0 {
		a.metrics.RecordLedgerEntry(string(entities.TransactionKindWin))
	}
	return result, err
}

// GetBet returns a bet visible to the actor
func (a *WalletApp) GetBet(ctx context.Context, actor entities.Actor, betID int64) (bet *entities.Bet, err error) {
	err = a.run(ctx, "GetBet", func(ctx context.Context, uow UnitOfWork) error {
		svc := services.NewBetService(uow.WalletRepository(), uow.TransactionRepository(), uow.BetRepository(), uow.BonusRepository(), uow.EventBus())
		bet, err = svc.GetBet(ctx, actor, betID)
		return err
	})
	return bet, err
}

// ListBets returns a user's most recent bets
func (a *WalletApp) ListBets(ctx context.Context, actor entities.Actor, userID int64, limit int) (bets []*entities.Bet, err error) {
	err = a.run(ctx, "ListBets", func(ctx context.Context, uow UnitOfWork) error {
		svc := services.NewBetService(uow.WalletRepository(), uow.TransactionRepository(), uow.BetRepository(), uow.BonusRepository(), uow.EventBus())
		bets, err = svc.ListBets(ctx, actor, userID, limit)
		return err
	})
	return bets, err
}

// RequestWithdrawal holds funds for a withdrawal awaiting review
func (a *WalletApp) RequestWithdrawal(ctx context.Context, actor entities.Actor, amount int64, currency entities.Currency, destination string) (result *entities.WithdrawalResult, err error) {
	err = a.run(ctx, "RequestWithdrawal", func(ctx context.Context, uow UnitOfWork) error {
		svc := services.NewWithdrawalService(uow.WalletRepository(), uow.TransactionRepository(), uow.EventBus())
		result, err = svc.RequestWithdrawal(ctx, actor, amount, currency, destination)
		return err
	})
	if err == nil {
		a.metrics.RecordLedgerEntry(string(entities.TransactionKindWithdrawal))
	}
	return result, err
}

// ProcessWithdrawal approves or rejects a pending withdrawal
func (a *WalletApp) ProcessWithdrawal(ctx context.Context, actor entities.Actor, transactionID int64, action entities.WithdrawalAction) (result *entities.WithdrawalResult, err error) {
	err = a.run(ctx, "ProcessWithdrawal", func(ctx context.Context, uow UnitOfWork) error {
		svc := services.NewWithdrawalService(uow.WalletRepository(), uow.TransactionRepository(), uow.EventBus())
		result, err = svc.ProcessWithdrawal(ctx, actor, transactionID, action)
		return err
	})
	return result, err
}

// GrantBonus issues a bonus, crediting it immediately when it has no wagering requirement
func (a *WalletApp) GrantBonus(ctx context.Context, actor entities.Actor, grant entities.BonusGrant) (result *entities.BonusResult, err error) {
	err = a.run(ctx, "GrantBonus", func(ctx context.Context, uow UnitOfWork) error {
		svc := services.NewBonusService(uow.WalletRepository(), uow.TransactionRepository(), uow.BonusRepository(), uow.EventBus())
		result, err = svc.GrantBonus(ctx, actor, grant)
		return err
	})
	if err == nil && result.Bonus.Status == entities.BonusStatusClaimed {
		a.metrics.RecordLedgerEntry(string(entities.TransactionKindBonus))
	}
	return result, err
}

// ClaimBonus credits a pending bonus whose wagering requirement is met
func (a *WalletApp) ClaimBonus(ctx context.Context, actor entities.Actor, bonusID int64) (result *entities.BonusResult, err error) {
	err = a.run(ctx, "ClaimBonus", func(ctx context.Context, uow UnitOfWork) error {
		svc := services.NewBonusService(uow.WalletRepository(), uow.TransactionRepository(), uow.BonusRepository(), uow.EventBus())
		result, err = svc.ClaimBonus(ctx, actor, bonusID)
		return err
	})
	if err == nil {
		a.metrics.RecordLedgerEntry(string(entities.TransactionKindBonus))
	}
	return result, err
}

// ListBonuses returns a user's bonuses, optionally filtered by status
func (a *WalletApp) ListBonuses(ctx context.Context, actor entities.Actor, userID int64, status *entities.BonusStatus) (bonuses []*entities.Bonus, err error) {
	err = a.run(ctx, "ListBonuses", func(ctx context.Context, uow UnitOfWork) error {
		svc := services.NewBonusService(uow.WalletRepository(), uow.TransactionRepository(), uow.BonusRepository(), uow.EventBus())
		bonuses, err = svc.ListBonuses(ctx, actor, userID, status)
		return err
	})
	return bonuses, err
}

// AdjustBalance applies a manual, audited correction to a wallet
func (a *WalletApp) AdjustBalance(ctx context.Context, actor entities.Actor, walletID int64, amount int64, reason string) (entry *entities.Transaction, err error) {
	err = a.run(ctx, "AdjustBalance", func(ctx context.Context, uow UnitOfWork) error {
		svc := services.NewAdjustmentService(uow.WalletRepository(), uow.TransactionRepository(), uow.EventBus())
		entry, err = svc.AdjustBalance(ctx, actor, walletID, amount, reason)
		return err
	})
	if err == nil {
		a.metrics.RecordLedgerEntry(string(entities.TransactionKindAdjustment))
	}
	return entry, err
}

// QueryLedger returns ledger entries visible to the actor
func (a *WalletApp) QueryLedger(ctx context.Context, actor entities.Actor, filter entities.LedgerFilter) (entries []*entities.Transaction, err error) {
	err = a.run(ctx, "QueryLedger", func(ctx context.Context, uow UnitOfWork) error {
		svc := services.NewLedgerService(uow.WalletRepository(), uow.TransactionRepository())
		entries, err = svc.Query(ctx, actor, filter)
		return err
	})
	return entries, err
}

// ReconcileWallet compares a wallet's balance with its effective ledger sum
func (a *WalletApp) ReconcileWallet(ctx context.Context, actor entities.Actor, walletID int64) (result *entities.Reconciliation, err error) {
	err = a.run(ctx, "ReconcileWallet", func(ctx context.Context, uow UnitOfWork) error {
		svc := services.NewLedgerService(uow.WalletRepository(), uow.TransactionRepository())
		result, err = svc.Reconcile(ctx, actor, walletID)
		return err
	})
	if err == nil && !result.Balanced() {
		log.WithFields(log.Fields{
			"walletID":   walletID,
			"balance":    result.Balance,
			"ledgerSum":  result.LedgerSum,
			"difference": result.Difference(),
		}).Error("Wallet does not reconcile with its ledger")
	}
	return result, err
}

// ExpireBonuses expires every pending bonus that is past its expiry, one batch per unit of work
func (a *WalletApp) ExpireBonuses(ctx context.Context, now time.Time) (int, error) {
	batchSize := config.Get().BonusExpiryBatchSize
	if batchSize <= 0 {
		batchSize = defaultExpiryBatchSize
	}
	total := 0

	for {
		var expired []*entities.Bonus
		err := a.run(ctx, "ExpireBonuses", func(ctx context.Context, uow UnitOfWork) error {
			svc := services.NewBonusService(uow.WalletRepository(), uow.TransactionRepository(), uow.BonusRepository(), uow.EventBus())
			var err error
			expired, err = svc.ExpireDue(ctx, now, batchSize)
			return err
		})
		if err != nil {
			return total, err
		}

		total += len(expired)
		a.metrics.RecordBonusesExpired(len(expired))

		if len(expired) < batchSize || ctx.Err() != nil {
			return total, nil
		}
	}
}
