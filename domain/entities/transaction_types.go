package entities

// TransactionKind represents the type of money movement
type TransactionKind string

// All transaction kinds supported by the ledger
const (
	// Gambling-related transactions
	TransactionKindBet TransactionKind = "bet"
	TransactionKindWin TransactionKind = "win"

	// Cashier transactions
	TransactionKindDeposit    TransactionKind = "deposit"
	TransactionKindWithdrawal TransactionKind = "withdrawal"

	// Promotional and administrative transactions
	TransactionKindBonus      TransactionKind = "bonus"
	TransactionKindAdjustment TransactionKind = "adjustment"
)

// Valid returns true if the kind is one of the known kinds
func (k TransactionKind) Valid() bool {
	switch k {
	case TransactionKindBet, TransactionKindWin, TransactionKindDeposit,
		TransactionKindWithdrawal, TransactionKindBonus, TransactionKindAdjustment:
		return true
	}
	return false
}

// IsGamblingRelated returns true if the kind is a stake or a payout
func (k TransactionKind) IsGamblingRelated() bool {
	return k == TransactionKindBet || k == TransactionKindWin
}

// IsAdministrative returns true if the kind requires an acting administrator
func (k TransactionKind) IsAdministrative() bool {
	return k == TransactionKindBonus || k == TransactionKindAdjustment
}

func (k TransactionKind) String() string {
	return string(k)
}

// TransactionStatus represents the lifecycle state of a ledger entry
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusRejected  TransactionStatus = "rejected"
)

// IsEffective returns true if entries with this status count towards the wallet balance.
// Pending withdrawals are held funds and already debited; rejected entries were reversed.
func (s TransactionStatus) IsEffective() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusPending
}

func (s TransactionStatus) String() string {
	return string(s)
}
