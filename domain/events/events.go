package events

import "casino/domain/entities"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange       EventType = "balance_change"
	EventTypeWalletCreated       EventType = "wallet_created"
	EventTypeBetPlaced           EventType = "bet_placed"
	EventTypeBetSettled          EventType = "bet_settled"
	EventTypeWithdrawalRequested EventType = "withdrawal_requested"
	EventTypeWithdrawalProcessed EventType = "withdrawal_processed"
	EventTypeBonusGranted        EventType = "bonus_granted"
	EventTypeBonusClaimed        EventType = "bonus_claimed"
	EventTypeBonusExpired        EventType = "bonus_expired"
	EventTypeBalanceAdjusted     EventType = "balance_adjusted"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent is emitted for every ledger entry that moves a balance
type BalanceChangeEvent struct {
	UserID        int64                    `json:"user_id"`
	WalletID      int64                    `json:"wallet_id"`
	TransactionID int64                    `json:"transaction_id"`
	Currency      entities.Currency        `json:"currency"`
	OldBalance    int64                    `json:"old_balance"`
	NewBalance    int64                    `json:"new_balance"`
	ChangeAmount  int64                    `json:"change_amount"`
	Kind          entities.TransactionKind `json:"kind"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// WalletCreatedEvent represents the first use of a (user, currency) pair
type WalletCreatedEvent struct {
	UserID   int64             `json:"user_id"`
	WalletID int64             `json:"wallet_id"`
	Currency entities.Currency `json:"currency"`
}

func (e WalletCreatedEvent) Type() EventType {
	return EventTypeWalletCreated
}

// BetPlacedEvent represents a stake that was debited
type BetPlacedEvent struct {
	UserID   int64             `json:"user_id"`
	BetID    int64             `json:"bet_id"`
	GameID   string            `json:"game_id"`
	Stake    int64             `json:"stake"`
	Currency entities.Currency `json:"currency"`
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// BetSettledEvent represents a bet reaching its final outcome
type BetSettledEvent struct {
	UserID    int64               `json:"user_id"`
	BetID     int64               `json:"bet_id"`
	Outcome   entities.BetOutcome `json:"outcome"`
	Stake     int64               `json:"stake"`
	WinAmount int64               `json:"win_amount"`
	Currency  entities.Currency   `json:"currency"`
}

func (e BetSettledEvent) Type() EventType {
	return EventTypeBetSettled
}

// WithdrawalRequestedEvent represents funds placed on hold for review
type WithdrawalRequestedEvent struct {
	UserID        int64             `json:"user_id"`
	TransactionID int64             `json:"transaction_id"`
	Amount        int64             `json:"amount"`
	Currency      entities.Currency `json:"currency"`
}

func (e WithdrawalRequestedEvent) Type() EventType {
	return EventTypeWithdrawalRequested
}

// WithdrawalProcessedEvent represents an administrator's decision on a withdrawal
type WithdrawalProcessedEvent struct {
	UserID        int64                      `json:"user_id"`
	TransactionID int64                      `json:"transaction_id"`
	Amount        int64                      `json:"amount"`
	Currency      entities.Currency          `json:"currency"`
	Status        entities.TransactionStatus `json:"status"`
	ProcessedBy   int64                      `json:"processed_by"`
}

func (e WithdrawalProcessedEvent) Type() EventType {
	return EventTypeWithdrawalProcessed
}

// BonusGrantedEvent represents a bonus issued by an administrator
type BonusGrantedEvent struct {
	UserID              int64                `json:"user_id"`
	BonusID             int64                `json:"bonus_id"`
	Amount              int64                `json:"amount"`
	Currency            entities.Currency    `json:"currency"`
	WageringRequirement int64                `json:"wagering_requirement"`
	Status              entities.BonusStatus `json:"status"`
	GrantedBy           int64                `json:"granted_by"`
}

func (e BonusGrantedEvent) Type() EventType {
	return EventTypeBonusGranted
}

// BonusClaimedEvent represents a bonus credited to the wallet
type BonusClaimedEvent struct {
	UserID   int64             `json:"user_id"`
	BonusID  int64             `json:"bonus_id"`
	Amount   int64             `json:"amount"`
	Currency entities.Currency `json:"currency"`
}

func (e BonusClaimedEvent) Type() EventType {
	return EventTypeBonusClaimed
}

// BonusExpiredEvent represents a pending bonus that lapsed unclaimed
type BonusExpiredEvent struct {
	UserID  int64 `json:"user_id"`
	BonusID int64 `json:"bonus_id"`
	Amount  int64 `json:"amount"`
}

func (e BonusExpiredEvent) Type() EventType {
	return EventTypeBonusExpired
}

// BalanceAdjustedEvent is the audit trail of a manual correction
type BalanceAdjustedEvent struct {
	UserID        int64             `json:"user_id"`
	WalletID      int64             `json:"wallet_id"`
	TransactionID int64             `json:"transaction_id"`
	Amount        int64             `json:"amount"`
	Currency      entities.Currency `json:"currency"`
	Reason        string            `json:"reason"`
	AdminID       int64             `json:"admin_id"`
}

func (e BalanceAdjustedEvent) Type() EventType {
	return EventTypeBalanceAdjusted
}
