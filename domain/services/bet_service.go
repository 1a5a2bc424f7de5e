package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"casino/config"
	"casino/domain/entities"
	"casino/domain/events"
	"casino/domain/interfaces"
	"casino/domain/types"

	log "github.com/sirupsen/logrus"
)

const (
	defaultBetListLimit = 50
	maxBetListLimit     = 500
)

type betService struct {
	walletRepo      interfaces.WalletRepository
	transactionRepo interfaces.TransactionRepository
	betRepo         interfaces.BetRepository
	bonusRepo       interfaces.BonusRepository
	eventPublisher  interfaces.EventPublisher
}

// NewBetService creates a new bet lifecycle service
func NewBetService(walletRepo interfaces.WalletRepository, transactionRepo interfaces.TransactionRepository, betRepo interfaces.BetRepository, bonusRepo interfaces.BonusRepository, eventPublisher interfaces.EventPublisher) interfaces.BetService {
	return &betService{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		betRepo:         betRepo,
		bonusRepo:       bonusRepo,
		eventPublisher:  eventPublisher,
	}
}

// PlaceBet debits the stake from the actor's wallet and records a pending bet.
// The stake is at risk from this point on, whether or not the bet is ever settled.
func (s *betService) PlaceBet(ctx context.Context, actor entities.Actor, gameID string, stake int64, currency entities.Currency) (*entities.BetResult, error) {
	if stake <= 0 {
		return nil, types.Validation("stake must be positive")
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, types.Validation("game id is required")
	}
	if utf8.RuneCountInString(gameID) > entities.MaxGameIDLength {
		return nil, types.Validation("game id cannot exceed %d characters", entities.MaxGameIDLength)
	}

	wallet, err := lockWallet(ctx, s.walletRepo, s.eventPublisher, actor.UserID, currency)
	if err != nil {
		return nil, err
	}
	if !wallet.CanDebit(stake) {
		return nil, types.InsufficientFunds(wallet.Balance, stake)
	}

	now := time.Now().UTC()
	bet := &entities.Bet{
		UserID:    actor.UserID,
		GameID:    gameID,
		Stake:     stake,
		Currency:  currency,
		Outcome:   entities.BetOutcomePending,
		CreatedAt: now,
	}
	if err := s.betRepo.Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	betID := bet.ID
	entry := &entities.Transaction{
		Amount: -stake,
		Kind:   entities.TransactionKindBet,
		Status: entities.TransactionStatusCompleted,
		BetID:  &betID,
		Metadata: map[string]any{
			entities.MetadataGameID: gameID,
		},
	}
	updated, err := postEntry(ctx, s.walletRepo, s.transactionRepo, s.eventPublisher, wallet, entry)
	if err != nil {
		return nil, err
	}

	// Stakes count towards wagering requirements of pending bonuses
	progressed, err := s.bonusRepo.AddWageringProgress(ctx, actor.UserID, currency, stake, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update wagering progress: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":          actor.UserID,
		"betID":           bet.ID,
		"gameID":          gameID,
		"stake":           stake,
		"currency":        currency,
		"newBalance":      updated.Balance,
		"bonusesProgress": progressed,
	}).Info("Bet placed")

	if err := s.eventPublisher.Publish(events.BetPlacedEvent{
		UserID:   actor.UserID,
		BetID:    bet.ID,
		GameID:   gameID,
		Stake:    stake,
		Currency: currency,
	}); err != nil {
		log.WithError(err).Error("Failed to publish bet placed event")
	}

	return &entities.BetResult{Bet: bet, Balance: updated.Balance}, nil
}

// SettleBet resolves a pending bet. The outcome CAS in the repository is what
// guarantees a single winner when two settlements race.
func (s *betService) SettleBet(ctx context.Context, actor entities.Actor, settlement entities.Settlement) (*entities.BetResult, error) {
	if err := validateSettlement(settlement); err != nil {
		return nil, err
	}

	bet, err := s.betRepo.GetByID(ctx, settlement.BetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, types.NotFound("bet %d not found", settlement.BetID)
	}

	// Admins can always settle; owners only while player settlement is enabled
	ownerMaySettle := config.Get().PlayerSettlementEnabled && actor.UserID == bet.UserID
	if !actor.IsAdmin() && !ownerMaySettle {
		return nil, types.Forbidden("not allowed to settle bet %d", bet.ID)
	}
	if !bet.IsPending() {
		return nil, types.AlreadySettled(bet.ID)
	}

	if settlement.Multiplier.IsZero() && settlement.WinAmount > 0 {
		settlement.Multiplier = entities.ImpliedMultiplier(bet.Stake, settlement.WinAmount)
		if !entities.MultiplierStorable(settlement.Multiplier) {
			return nil, types.Validation("win amount %d on stake %d implies a multiplier above the supported range", settlement.WinAmount, bet.Stake)
		}
	}

	settled, err := s.betRepo.Settle(ctx, settlement, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to settle bet: %w", err)
	}
	if settled == nil {
		return nil, types.AlreadySettled(bet.ID)
	}

	var balance int64
	if settled.WinAmount > 0 {
		wallet, err := lockWallet(ctx, s.walletRepo, s.eventPublisher, settled.UserID, settled.Currency)
		if err != nil {
			return nil, err
		}
		betID := settled.ID
		entry := &entities.Transaction{
			Amount: settled.WinAmount,
			Kind:   entities.TransactionKindWin,
			Status: entities.TransactionStatusCompleted,
			BetID:  &betID,
			Metadata: map[string]any{
				entities.MetadataGameID: settled.GameID,
				"multiplier":            settled.Multiplier.String(),
			},
		}
		updated, err := postEntry(ctx, s.walletRepo, s.transactionRepo, s.eventPublisher, wallet, entry)
		if err != nil {
			return nil, err
		}
		balance = updated.Balance
	} else {
		balance, err = currentBalance(ctx, s.walletRepo, settled.UserID, settled.Currency)
		if err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"betID":      settled.ID,
		"userID":     settled.UserID,
		"settledBy":  actor.UserID,
		"outcome":    settled.Outcome,
		"winAmount":  settled.WinAmount,
		"newBalance": balance,
	}).Info("Bet settled")

	if err := s.eventPublisher.Publish(events.BetSettledEvent{
		UserID:    settled.UserID,
		BetID:     settled.ID,
		Outcome:   settled.Outcome,
		Stake:     settled.Stake,
		WinAmount: settled.WinAmount,
		Currency:  settled.Currency,
	}); err != nil {
		log.WithError(err).Error("Failed to publish bet settled event")
	}

	return &entities.BetResult{Bet: settled, Balance: balance}, nil
}

func (s *betService) GetBet(ctx context.Context, actor entities.Actor, betID int64) (*entities.Bet, error) {
	bet, err := s.betRepo.GetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil || !actor.CanAccess(bet.UserID) {
		// Other players' bets read as missing
		return nil, types.NotFound("bet %d not found", betID)
	}
	return bet, nil
}

func (s *betService) ListBets(ctx context.Context, actor entities.Actor, userID int64, limit int) ([]*entities.Bet, error) {
	if !actor.CanAccess(userID) {
		return nil, types.Forbidden("cannot view bets of user %d", userID)
	}
	if limit <= 0 {
		limit = defaultBetListLimit
	}
	if limit > maxBetListLimit {
		limit = maxBetListLimit
	}

	bets, err := s.betRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	return bets, nil
}

func validateSettlement(settlement entities.Settlement) error {
	if !settlement.Outcome.IsFinal() {
		return types.Validation("outcome must be win or loss")
	}
	if settlement.WinAmount < 0 {
		return types.Validation("win amount cannot be negative")
	}
	if settlement.Outcome == entities.BetOutcomeLoss && settlement.WinAmount != 0 {
		return types.Validation("a lost bet cannot pay out")
	}
	if settlement.Multiplier.IsNegative() {
		return types.Validation("multiplier cannot be negative")
	}
	if !entities.MultiplierStorable(settlement.Multiplier) {
		return types.Validation("multiplier %s is above the supported range", settlement.Multiplier.String())
	}
	return nil
}
