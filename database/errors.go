package database

import (
	"errors"

	"casino/domain/types"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Constraint names the schema uses to back up the service-level checks
const (
	constraintBalanceNonNegative = "wallets_balance_non_negative"
	constraintBetStake           = "uq_transactions_bet_stake"
	constraintBetWin             = "uq_transactions_bet_win"
	constraintBonusCredit        = "uq_transactions_bonus_credit"
)

// ClassifyError maps a storage error onto a domain error.
// Domain errors pass through unchanged. Constraint violations that mirror a
// domain rule become that rule's error, data exceptions are validation errors,
// and everything else is a retryable storage failure.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if types.KindOf(err) != "" {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.CheckViolation:
			if pgErr.ConstraintName == constraintBalanceNonNegative {
				return types.Wrap(types.KindInsufficientFunds, "balance cannot go negative", err)
			}
			return types.Wrap(types.KindValidation, "rejected by storage constraint "+pgErr.ConstraintName, err)
		case pgerrcode.UniqueViolation:
			switch pgErr.ConstraintName {
			case constraintBetStake, constraintBetWin:
				return types.Wrap(types.KindAlreadySettled, "bet already has a ledger entry of this kind", err)
			case constraintBonusCredit:
				return types.Wrap(types.KindAlreadyProcessed, "bonus already credited", err)
			}
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
			return types.StorageFailure("concurrent update, retry the operation", err)
		}

		// Values the column types cannot hold (too long, out of range) fail the same way on every retry
		if pgerrcode.IsDataException(pgErr.Code) {
			return types.Wrap(types.KindValidation, "value rejected by storage: "+pgErr.Message, err)
		}
	}

	return types.StorageFailure("storage operation failed", err)
}

// IsRetryablePgError reports whether err is a transient PostgreSQL error
func IsRetryablePgError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgerrcode.IsTransactionRollback(pgErr.Code) ||
		pgerrcode.IsConnectionException(pgErr.Code) ||
		pgErr.Code == pgerrcode.LockNotAvailable
}
