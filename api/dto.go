package api

import (
	"time"

	"casino/domain/entities"
)

// Amounts cross the API as decimal strings in the currency's major unit ("70.00").
// The *_minor fields carry the same value in minor units.

type walletResponse struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Currency     string    `json:"currency"`
	Balance      string    `json:"balance"`
	BalanceMinor int64     `json:"balance_minor"`
	Version      int64     `json:"version"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toWalletResponse(w *entities.Wallet) walletResponse {
	return walletResponse{
		ID:           w.ID,
		UserID:       w.UserID,
		Currency:     w.Currency.String(),
		Balance:      entities.FormatAmount(w.Balance, w.Currency),
		BalanceMinor: w.Balance,
		Version:      w.Version,
		UpdatedAt:    w.UpdatedAt,
	}
}

type transactionResponse struct {
	ID           int64          `json:"id"`
	UserID       int64          `json:"user_id"`
	WalletID     int64          `json:"wallet_id"`
	Amount       string         `json:"amount"`
	AmountMinor  int64          `json:"amount_minor"`
	Currency     string         `json:"currency"`
	Kind         string         `json:"kind"`
	Status       string         `json:"status"`
	BetID        *int64         `json:"bet_id,omitempty"`
	BonusID      *int64         `json:"bonus_id,omitempty"`
	BalanceAfter string         `json:"balance_after"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	AdminID      *int64         `json:"admin_id,omitempty"`
	Reason       *string        `json:"reason,omitempty"`
	ProcessedBy  *int64         `json:"processed_by,omitempty"`
	ProcessedAt  *time.Time     `json:"processed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

func toTransactionResponse(t *entities.Transaction) transactionResponse {
	return transactionResponse{
		ID:           t.ID,
		UserID:       t.UserID,
		WalletID:     t.WalletID,
		Amount:       entities.FormatAmount(t.Amount, t.Currency),
		AmountMinor:  t.Amount,
		Currency:     t.Currency.String(),
		Kind:         t.Kind.String(),
		Status:       t.Status.String(),
		BetID:        t.BetID,
		BonusID:      t.BonusID,
		BalanceAfter: entities.FormatAmount(t.BalanceAfter, t.Currency),
		Metadata:     t.Metadata,
		AdminID:      t.AdminID,
		Reason:       t.Reason,
		ProcessedBy:  t.ProcessedBy,
		ProcessedAt:  t.ProcessedAt,
		CreatedAt:    t.CreatedAt,
	}
}

func toTransactionResponses(entries []*entities.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toTransactionResponse(entry))
	}
	return out
}

type betResponse struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	GameID     string     `json:"game_id"`
	Stake      string     `json:"stake"`
	Currency   string     `json:"currency"`
	Outcome    string     `json:"outcome"`
	WinAmount  string     `json:"win_amount"`
	Multiplier string     `json:"multiplier"`
	CreatedAt  time.Time  `json:"created_at"`
	SettledAt  *time.Time `json:"settled_at,omitempty"`
}

func toBetResponse(b *entities.Bet) betResponse {
	return betResponse{
		ID:         b.ID,
		UserID:     b.UserID,
		GameID:     b.GameID,
		Stake:      entities.FormatAmount(b.Stake, b.Currency),
		Currency:   b.Currency.String(),
		Outcome:    string(b.Outcome),
		WinAmount:  entities.FormatAmount(b.WinAmount, b.Currency),
		Multiplier: b.Multiplier.StringFixed(entities.MultiplierScale),
		CreatedAt:  b.CreatedAt,
		SettledAt:  b.SettledAt,
	}
}

type betResultResponse struct {
	Bet     betResponse `json:"bet"`
	Balance string      `json:"balance"`
}

func toBetResultResponse(r *entities.BetResult) betResultResponse {
	return betResultResponse{
		Bet:     toBetResponse(r.Bet),
		Balance: entities.FormatAmount(r.Balance, r.Bet.Currency),
	}
}

type bonusResponse struct {
	ID                  int64      `json:"id"`
	UserID              int64      `json:"user_id"`
	Amount              string     `json:"amount"`
	Currency            string     `json:"currency"`
	WageringRequirement string     `json:"wagering_requirement"`
	WageringProgress    string     `json:"wagering_progress"`
	Status              string     `json:"status"`
	Reason              string     `json:"reason"`
	GrantedBy           int64      `json:"granted_by"`
	ExpiresAt           *time.Time `json:"expires_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	ClaimedAt           *time.Time `json:"claimed_at,omitempty"`
}

func toBonusResponse(b *entities.Bonus) bonusResponse {
	return bonusResponse{
		ID:                  b.ID,
		UserID:              b.UserID,
		Amount:              entities.FormatAmount(b.Amount, b.Currency),
		Currency:            b.Currency.String(),
		WageringRequirement: entities.FormatAmount(b.WageringRequirement, b.Currency),
		WageringProgress:    entities.FormatAmount(b.WageringProgress, b.Currency),
		Status:              string(b.Status),
		Reason:              b.Reason,
		GrantedBy:           b.GrantedBy,
		ExpiresAt:           b.ExpiresAt,
		CreatedAt:           b.CreatedAt,
		ClaimedAt:           b.ClaimedAt,
	}
}

type bonusResultResponse struct {
	Bonus   bonusResponse `json:"bonus"`
	Balance string        `json:"balance"`
}

type withdrawalResultResponse struct {
	Transaction transactionResponse `json:"transaction"`
	Balance     string              `json:"balance"`
}

type reconciliationResponse struct {
	WalletID   int64 `json:"wallet_id"`
	Balance    int64 `json:"balance_minor"`
	LedgerSum  int64 `json:"ledger_sum_minor"`
	Difference int64 `json:"difference_minor"`
	Balanced   bool  `json:"balanced"`
}

// Requests

type depositRequest struct {
	UserID    int64  `json:"user_id"`
	Currency  string `json:"currency"`
	Amount    string `json:"amount"`
	Reference string `json:"reference"`
}

type placeBetRequest struct {
	GameID   string `json:"game_id"`
	Stake    string `json:"stake"`
	Currency string `json:"currency"`
}

type settleBetRequest struct {
	Outcome    string `json:"outcome"`
	WinAmount  string `json:"win_amount"`
	Multiplier string `json:"multiplier"`
}

type withdrawalRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Destination string `json:"destination"`
}

type processWithdrawalRequest struct {
	Action string `json:"action"`
}

type grantBonusRequest struct {
	UserID              int64      `json:"user_id"`
	Amount              string     `json:"amount"`
	Currency            string     `json:"currency"`
	WageringRequirement string     `json:"wagering_requirement"`
	Reason              string     `json:"reason"`
	ExpiresAt           *time.Time `json:"expires_at"`
}

// adjustmentRequest carries a signed amount in minor units of the wallet's currency
type adjustmentRequest struct {
	WalletID    int64  `json:"wallet_id"`
	AmountMinor int64  `json:"amount_minor"`
	Reason      string `json:"reason"`
}
