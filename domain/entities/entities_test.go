package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_Validate(t *testing.T) {
	t.Parallel()

	adminID := int64(900)
	reason := "correction"
	empty := ""

	tests := []struct {
		name    string
		entry   Transaction
		wantErr string
	}{
		{
			name:  "valid bet",
			entry: Transaction{WalletID: 1, Amount: -100, Kind: TransactionKindBet, BalanceAfter: 0},
		},
		{
			name:    "zero amount",
			entry:   Transaction{WalletID: 1, Amount: 0, Kind: TransactionKindDeposit},
			wantErr: "cannot be zero",
		},
		{
			name:    "unknown kind",
			entry:   Transaction{WalletID: 1, Amount: 10, Kind: "refund"},
			wantErr: "unknown ledger entry kind",
		},
		{
			name:    "no wallet",
			entry:   Transaction{Amount: 10, Kind: TransactionKindDeposit},
			wantErr: "must reference a wallet",
		},
		{
			name:    "negative balance after",
			entry:   Transaction{WalletID: 1, Amount: -10, Kind: TransactionKindWithdrawal, BalanceAfter: -5},
			wantErr: "negative balance",
		},
		{
			name:    "bonus without admin",
			entry:   Transaction{WalletID: 1, Amount: 10, Kind: TransactionKindBonus},
			wantErr: "requires an admin",
		},
		{
			name:    "adjustment without reason",
			entry:   Transaction{WalletID: 1, Amount: 10, Kind: TransactionKindAdjustment, AdminID: &adminID, Reason: &empty},
			wantErr: "requires a reason",
		},
		{
			name:  "valid adjustment",
			entry: Transaction{WalletID: 1, Amount: -10, Kind: TransactionKindAdjustment, AdminID: &adminID, Reason: &reason, BalanceAfter: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestTransactionStatus_IsEffective(t *testing.T) {
	t.Parallel()

	assert.True(t, TransactionStatusCompleted.IsEffective())
	assert.True(t, TransactionStatusPending.IsEffective())
	assert.False(t, TransactionStatusRejected.IsEffective())
}

func TestLedgerFilter_Normalize(t *testing.T) {
	t.Parallel()

	f := LedgerFilter{}
	f.Normalize()
	assert.Equal(t, DefaultLedgerLimit, f.Limit)

	f = LedgerFilter{Limit: 5000}
	f.Normalize()
	assert.Equal(t, MaxLedgerLimit, f.Limit)

	f = LedgerFilter{Limit: 20}
	f.Normalize()
	assert.Equal(t, 20, f.Limit)
}

func TestBet_NetProfit(t *testing.T) {
	t.Parallel()

	pending := &Bet{Stake: 3000, Outcome: BetOutcomePending}
	assert.True(t, pending.IsPending())
	assert.Equal(t, int64(0), pending.GetNetProfit())

	won := &Bet{Stake: 3000, WinAmount: 9000, Outcome: BetOutcomeWin}
	assert.Equal(t, int64(6000), won.GetNetProfit())

	lost := &Bet{Stake: 3000, Outcome: BetOutcomeLoss}
	assert.Equal(t, int64(-3000), lost.GetNetProfit())
	assert.True(t, lost.Outcome.IsFinal())
}

func TestImpliedMultiplier(t *testing.T) {
	t.Parallel()

	assert.True(t, decimal.NewFromInt(3).Equal(ImpliedMultiplier(3000, 9000)))
	assert.Equal(t, "0.3333", ImpliedMultiplier(3000, 1000).String())
	assert.True(t, ImpliedMultiplier(0, 1000).IsZero())
}

func TestMultiplierStorable(t *testing.T) {
	t.Parallel()

	assert.True(t, MultiplierStorable(decimal.Zero))
	assert.True(t, MultiplierStorable(decimal.RequireFromString("99999999.9999")))
	assert.False(t, MultiplierStorable(decimal.New(1, 8)))
	assert.False(t, MultiplierStorable(decimal.RequireFromString("99999999.99995")), "rounds up past the column precision")
	assert.False(t, MultiplierStorable(decimal.NewFromInt(-1)))
	assert.False(t, MultiplierStorable(ImpliedMultiplier(1, 1_000_000_000)))
}

func TestBonus_Wagering(t *testing.T) {
	t.Parallel()

	now := time.Now()
	past := now.Add(-time.Minute)
	bonus := &Bonus{WageringRequirement: 10000, WageringProgress: 2500, ExpiresAt: &past}

	assert.False(t, bonus.WageringMet())
	assert.Equal(t, int64(7500), bonus.RemainingWagering())
	assert.True(t, bonus.IsExpired(now))

	bonus.WageringProgress = 12000
	bonus.ExpiresAt = nil
	assert.True(t, bonus.WageringMet())
	assert.Equal(t, int64(0), bonus.RemainingWagering())
	assert.False(t, bonus.IsExpired(now))
}

func TestActor_CanAccess(t *testing.T) {
	t.Parallel()

	player := Actor{UserID: 1, Role: RolePlayer}
	admin := Actor{UserID: 900, Role: RoleAdmin}

	assert.True(t, player.CanAccess(1))
	assert.False(t, player.CanAccess(2))
	assert.True(t, admin.CanAccess(2))
}

func TestWithdrawalAction_TargetStatus(t *testing.T) {
	t.Parallel()

	status, ok := WithdrawalActionApprove.TargetStatus()
	assert.True(t, ok)
	assert.Equal(t, TransactionStatusCompleted, status)

	status, ok = WithdrawalActionReject.TargetStatus()
	assert.True(t, ok)
	assert.Equal(t, TransactionStatusRejected, status)

	_, ok = WithdrawalAction("cancel").TargetStatus()
	assert.False(t, ok)
}
