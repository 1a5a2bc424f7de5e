package entities

// WithdrawalAction is an administrator's decision on a pending withdrawal
type WithdrawalAction string

const (
	WithdrawalActionApprove WithdrawalAction = "approve"
	WithdrawalActionReject  WithdrawalAction = "reject"
)

// TargetStatus maps the action to the status the withdrawal moves into
func (a WithdrawalAction) TargetStatus() (TransactionStatus, bool) {
	switch a {
	case WithdrawalActionApprove:
		return TransactionStatusCompleted, true
	case WithdrawalActionReject:
		return TransactionStatusRejected, true
	}
	return "", false
}

// Metadata keys stored on ledger entries
const (
	MetadataDestination = "destination"
	MetadataReference   = "reference"
	MetadataGameID      = "game_id"
)

// WithdrawalResult is returned by the withdrawal workflow
type WithdrawalResult struct {
	Transaction *Transaction
	Balance     int64
}
