package entities

import "time"

// Wallet holds one balance for a (user, currency) pair
type Wallet struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Currency  Currency  `db:"currency"`
	Balance   int64     `db:"balance"`
	Version   int64     `db:"version"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CanDebit returns true if the wallet can cover the amount without going negative
func (w *Wallet) CanDebit(amount int64) bool {
	return amount >= 0 && w.Balance >= amount
}

// Reconciliation compares a wallet's balance with the sum of its effective ledger entries
type Reconciliation struct {
	WalletID  int64
	Balance   int64
	LedgerSum int64
}

// Balanced returns true if the balance matches the ledger
func (r *Reconciliation) Balanced() bool {
	return r.Balance == r.LedgerSum
}

// Difference returns balance minus ledger sum
func (r *Reconciliation) Difference() int64 {
	return r.Balance - r.LedgerSum
}
