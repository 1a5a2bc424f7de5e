package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetOutcome is the settlement state of a bet
type BetOutcome string

const (
	BetOutcomePending BetOutcome = "pending"
	BetOutcomeWin     BetOutcome = "win"
	BetOutcomeLoss    BetOutcome = "loss"
)

// IsFinal returns true if the outcome is a settled outcome
func (o BetOutcome) IsFinal() bool {
	return o == BetOutcomeWin || o == BetOutcomeLoss
}

// Bet is a wager whose stake is debited at creation and resolved exactly once
type Bet struct {
	ID         int64           `db:"id"`
	UserID     int64           `db:"user_id"`
	GameID     string          `db:"game_id"`
	Stake      int64           `db:"stake"`
	Currency   Currency        `db:"currency"`
	Outcome    BetOutcome      `db:"outcome"`
	WinAmount  int64           `db:"win_amount"`
	Multiplier decimal.Decimal `db:"multiplier"`
	CreatedAt  time.Time       `db:"created_at"`
	SettledAt  *time.Time      `db:"settled_at"`
}

// IsPending returns true if the bet has not been settled yet
func (b *Bet) IsPending() bool {
	return b.Outcome == BetOutcomePending
}

// GetNetProfit returns the player's net result once settled
func (b *Bet) GetNetProfit() int64 {
	if b.IsPending() {
		return 0
	}
	return b.WinAmount - b.Stake
}

// ImpliedMultiplier returns win/stake rounded to the precision stored for bets
func ImpliedMultiplier(stake, winAmount int64) decimal.Decimal {
	if stake <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(winAmount).DivRound(decimal.NewFromInt(stake), MultiplierScale)
}

// MultiplierScale is the number of decimal places kept for multipliers
const MultiplierScale = 4

// MaxGameIDLength is the longest game id a bet can carry, in characters
const MaxGameIDLength = 128

// maxMultiplier is the exclusive upper bound of a stored multiplier (NUMERIC(12,4))
var maxMultiplier = decimal.New(1, 12-MultiplierScale)

// MultiplierStorable reports whether m fits the stored multiplier precision
func MultiplierStorable(m decimal.Decimal) bool {
	return !m.IsNegative() && m.Round(MultiplierScale).LessThan(maxMultiplier)
}

// BetResult is returned by bet lifecycle operations
type BetResult struct {
	Bet     *Bet
	Balance int64
}

// Settlement carries the outcome reported for a pending bet
type Settlement struct {
	BetID      int64
	Outcome    BetOutcome
	WinAmount  int64
	Multiplier decimal.Decimal
}
