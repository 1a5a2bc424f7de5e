package entities

import "time"

// BonusStatus is the lifecycle state of a bonus
type BonusStatus string

const (
	BonusStatusPending BonusStatus = "pending"
	BonusStatusClaimed BonusStatus = "claimed"
	BonusStatusExpired BonusStatus = "expired"
)

// Bonus is promotional credit, granted immediately or behind a wagering requirement
type Bonus struct {
	ID                  int64       `db:"id"`
	UserID              int64       `db:"user_id"`
	Amount              int64       `db:"amount"`
	Currency            Currency    `db:"currency"`
	WageringRequirement int64       `db:"wagering_requirement"`
	WageringProgress    int64       `db:"wagering_progress"`
	Status              BonusStatus `db:"status"`
	Reason              string      `db:"reason"`
	GrantedBy           int64       `db:"granted_by"`
	ExpiresAt           *time.Time  `db:"expires_at"`
	CreatedAt           time.Time   `db:"created_at"`
	ClaimedAt           *time.Time  `db:"claimed_at"`
}

// IsExpired returns true if the bonus has an expiry that has passed
func (b *Bonus) IsExpired(now time.Time) bool {
	return b.ExpiresAt != nil && !now.Before(*b.ExpiresAt)
}

// WageringMet returns true if enough has been staked to release the bonus
func (b *Bonus) WageringMet() bool {
	return b.WageringProgress >= b.WageringRequirement
}

// RemainingWagering returns how much still has to be staked
func (b *Bonus) RemainingWagering() int64 {
	remaining := b.WageringRequirement - b.WageringProgress
	if remaining < 0 {
		return 0
	}
	return remaining
}

// BonusGrant describes a bonus an administrator wants to issue
type BonusGrant struct {
	UserID              int64
	Amount              int64
	Currency            Currency
	WageringRequirement int64
	Reason              string
	ExpiresAt           *time.Time
}

// BonusResult is returned by bonus operations. Balance is the wallet balance
// after the operation (0 when the user has no wallet in that currency yet).
type BonusResult struct {
	Bonus   *Bonus
	Balance int64
}
