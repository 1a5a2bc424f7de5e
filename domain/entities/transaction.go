package entities

import (
	"errors"
	"time"
)

// Transaction is an immutable, signed ledger entry against one wallet.
// Only the status of a pending withdrawal may change after it is written.
type Transaction struct {
	ID           int64             `db:"id"`
	UserID       int64             `db:"user_id"`
	WalletID     int64             `db:"wallet_id"`
	Amount       int64             `db:"amount"`
	Currency     Currency          `db:"currency"`
	Kind         TransactionKind   `db:"kind"`
	Status       TransactionStatus `db:"status"`
	BetID        *int64            `db:"bet_id"`
	BonusID      *int64            `db:"bonus_id"`
	BalanceAfter int64             `db:"balance_after"`
	Metadata     map[string]any    `db:"metadata"`
	AdminID      *int64            `db:"admin_id"`
	Reason       *string           `db:"reason"`
	ProcessedBy  *int64            `db:"processed_by"`
	ProcessedAt  *time.Time        `db:"processed_at"`
	CreatedAt    time.Time         `db:"created_at"`
}

// IsCredit returns true if the entry increases the balance
func (t *Transaction) IsCredit() bool {
	return t.Amount > 0
}

// IsDebit returns true if the entry decreases the balance
func (t *Transaction) IsDebit() bool {
	return t.Amount < 0
}

// IsPendingWithdrawal returns true if the entry is a withdrawal awaiting review
func (t *Transaction) IsPendingWithdrawal() bool {
	return t.Kind == TransactionKindWithdrawal && t.Status == TransactionStatusPending
}

// Validate performs basic validation on the entry before it is appended
func (t *Transaction) Validate() error {
	if t.Amount == 0 {
		return errors.New("ledger entry amount cannot be zero")
	}
	if !t.Kind.Valid() {
		return errors.New("unknown ledger entry kind")
	}
	if t.WalletID == 0 {
		return errors.New("ledger entry must reference a wallet")
	}
	if t.BalanceAfter < 0 {
		return errors.New("ledger entry would leave a negative balance")
	}
	if t.Kind.IsAdministrative() && t.AdminID == nil {
		return errors.New("administrative ledger entry requires an admin")
	}
	if t.Kind == TransactionKindAdjustment && (t.Reason == nil || *t.Reason == "") {
		return errors.New("adjustment requires a reason")
	}
	return nil
}

// LedgerFilter selects ledger entries for read-only queries
type LedgerFilter struct {
	WalletID *int64
	UserID   *int64
	Kind     *TransactionKind
	From     *time.Time // inclusive
	To       *time.Time // exclusive
	Limit    int
}

const (
	DefaultLedgerLimit = 100
	MaxLedgerLimit     = 1000
)

// Normalize clamps the limit to sane bounds
func (f *LedgerFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultLedgerLimit
	}
	if f.Limit > MaxLedgerLimit {
		f.Limit = MaxLedgerLimit
	}
}
