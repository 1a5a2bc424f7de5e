package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"casino/domain/entities"
	"casino/domain/events"
	"casino/domain/interfaces"
	"casino/domain/types"

	log "github.com/sirupsen/logrus"
)

type bonusService struct {
	walletRepo      interfaces.WalletRepository
	transactionRepo interfaces.TransactionRepository
	bonusRepo       interfaces.BonusRepository
	eventPublisher  interfaces.EventPublisher
}

// NewBonusService creates a new bonus issuance service
func NewBonusService(walletRepo interfaces.WalletRepository, transactionRepo interfaces.TransactionRepository, bonusRepo interfaces.BonusRepository, eventPublisher interfaces.EventPublisher) interfaces.BonusService {
	return &bonusService{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		bonusRepo:       bonusRepo,
		eventPublisher:  eventPublisher,
	}
}

// GrantBonus issues a bonus. Without a wagering requirement it is credited and
// claimed in the same unit of work; otherwise it waits as pending.
func (s *bonusService) GrantBonus(ctx context.Context, actor entities.Actor, grant entities.BonusGrant) (*entities.BonusResult, error) {
	if !actor.IsAdmin() {
		return nil, types.Forbidden("only administrators can grant bonuses")
	}
	if grant.Amount <= 0 {
		return nil, types.Validation("bonus amount must be positive")
	}
	if grant.WageringRequirement < 0 {
		return nil, types.Validation("wagering requirement cannot be negative")
	}
	grant.Reason = strings.TrimSpace(grant.Reason)
	if grant.Reason == "" {
		return nil, types.Validation("bonus reason is required")
	}
	if grant.Currency == "" {
		return nil, types.Validation("currency is required")
	}

	now := time.Now().UTC()
	if grant.ExpiresAt != nil && !grant.ExpiresAt.After(now) {
		return nil, types.Validation("bonus expiry must be in the future")
	}

	bonus := &entities.Bonus{
		UserID:              grant.UserID,
		Amount:              grant.Amount,
		Currency:            grant.Currency,
		WageringRequirement: grant.WageringRequirement,
		Status:              entities.BonusStatusPending,
		Reason:              grant.Reason,
		GrantedBy:           actor.UserID,
		ExpiresAt:           grant.ExpiresAt,
		CreatedAt:           now,
	}
	immediate := grant.WageringRequirement == 0
	if immediate {
		bonus.Status = entities.BonusStatusClaimed
		bonus.ClaimedAt = &now
	}

	if err := s.bonusRepo.Create(ctx, bonus); err != nil {
		return nil, fmt.Errorf("failed to create bonus: %w", err)
	}

	var (
		balance int64
		err     error
	)
	if immediate {
		balance, err = s.creditBonus(ctx, bonus)
	} else {
		balance, err = currentBalance(ctx, s.walletRepo, bonus.UserID, bonus.Currency)
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"bonusID":             bonus.ID,
		"userID":              bonus.UserID,
		"adminID":             actor.UserID,
		"amount":              bonus.Amount,
		"wageringRequirement": bonus.WageringRequirement,
		"status":              bonus.Status,
	}).Info("Bonus granted")

	if err := s.eventPublisher.Publish(events.BonusGrantedEvent{
		UserID:              bonus.UserID,
		BonusID:             bonus.ID,
		Amount:              bonus.Amount,
		Currency:            bonus.Currency,
		WageringRequirement: bonus.WageringRequirement,
		Status:              bonus.Status,
		GrantedBy:           actor.UserID,
	}); err != nil {
		log.WithError(err).Error("Failed to publish bonus granted event")
	}

	return &entities.BonusResult{Bonus: bonus, Balance: balance}, nil
}

func (s *bonusService) ClaimBonus(ctx context.Context, actor entities.Actor, bonusID int64) (*entities.BonusResult, error) {
	bonus, err := s.bonusRepo.GetByID(ctx, bonusID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bonus: %w", err)
	}
	if bonus == nil {
		return nil, types.NotFound("bonus %d not found", bonusID)
	}
	if !actor.CanAccess(bonus.UserID) {
		return nil, types.Forbidden("cannot claim bonus %d", bonusID)
	}
	if bonus.Status != entities.BonusStatusPending {
		return nil, types.AlreadyProcessed("bonus %d is already %s", bonusID, bonus.Status)
	}

	now := time.Now().UTC()
	if bonus.IsExpired(now) {
		return nil, types.Validation("bonus %d has expired", bonusID)
	}
	if !bonus.WageringMet() {
		return nil, types.Validation("wagering requirement not met: %d remaining", bonus.RemainingWagering())
	}

	// Wallet lock first, then the bonus row
	wallet, err := lockWallet(ctx, s.walletRepo, s.eventPublisher, bonus.UserID, bonus.Currency)
	if err != nil {
		return nil, err
	}

	claimed, err := s.bonusRepo.MarkClaimed(ctx, bonusID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to claim bonus: %w", err)
	}
	if claimed == nil {
		return nil, types.AlreadyProcessed("bonus %d was claimed concurrently", bonusID)
	}

	updated, err := postEntry(ctx, s.walletRepo, s.transactionRepo, s.eventPublisher, wallet, bonusEntry(claimed))
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"bonusID":    claimed.ID,
		"userID":     claimed.UserID,
		"claimedBy":  actor.UserID,
		"amount":     claimed.Amount,
		"newBalance": updated.Balance,
	}).Info("Bonus claimed")

	if err := s.eventPublisher.Publish(events.BonusClaimedEvent{
		UserID:   claimed.UserID,
		BonusID:  claimed.ID,
		Amount:   claimed.Amount,
		Currency: claimed.Currency,
	}); err != nil {
		log.WithError(err).Error("Failed to publish bonus claimed event")
	}

	return &entities.BonusResult{Bonus: claimed, Balance: updated.Balance}, nil
}

func (s *bonusService) ListBonuses(ctx context.Context, actor entities.Actor, userID int64, status *entities.BonusStatus) ([]*entities.Bonus, error) {
	if !actor.CanAccess(userID) {
		return nil, types.Forbidden("cannot view bonuses of user %d", userID)
	}

	bonuses, err := s.bonusRepo.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list bonuses: %w", err)
	}
	return bonuses, nil
}

func (s *bonusService) ExpireDue(ctx context.Context, now time.Time, limit int) ([]*entities.Bonus, error) {
	expired, err := s.bonusRepo.ExpireDue(ctx, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to expire bonuses: %w", err)
	}

	for _, bonus := range expired {
		if err := s.eventPublisher.Publish(events.BonusExpiredEvent{
			UserID:  bonus.UserID,
			BonusID: bonus.ID,
			Amount:  bonus.Amount,
		}); err != nil {
			log.WithError(err).Error("Failed to publish bonus expired event")
		}
	}

	if len(expired) > 0 {
		log.WithField("count", len(expired)).Info("Expired pending bonuses")
	}
	return expired, nil
}

func (s *bonusService) creditBonus(ctx context.Context, bonus *entities.Bonus) (int64, error) {
	wallet, err := lockWallet(ctx, s.walletRepo, s.eventPublisher, bonus.UserID, bonus.Currency)
	if err != nil {
		return 0, err
	}
	updated, err := postEntry(ctx, s.walletRepo, s.transactionRepo, s.eventPublisher, wallet, bonusEntry(bonus))
	if err != nil {
		return 0, err
	}
	return updated.Balance, nil
}

// bonusEntry builds the ledger entry that credits a bonus, attributed to the granting admin
func bonusEntry(bonus *entities.Bonus) *entities.Transaction {
	bonusID := bonus.ID
	adminID := bonus.GrantedBy
	reason := bonus.Reason
	return &entities.Transaction{
		Amount:  bonus.Amount,
		Kind:    entities.TransactionKindBonus,
		Status:  entities.TransactionStatusCompleted,
		BonusID: &bonusID,
		AdminID: &adminID,
		Reason:  &reason,
	}
}
