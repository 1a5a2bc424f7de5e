package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casino/database"
	"casino/domain/entities"
	"casino/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const bonusColumns = `id, user_id, amount, currency, wagering_requirement, wagering_progress, status,
	reason, granted_by, expires_at, created_at, claimed_at`

type bonusRepository struct {
	q Queryable
}

// NewBonusRepository creates a new bonus repository
func NewBonusRepository(db *database.DB) interfaces.BonusRepository {
	return &bonusRepository{q: db.Pool}
}

func newBonusRepositoryWithTx(tx Queryable) interfaces.BonusRepository {
	return &bonusRepository{q: tx}
}

func scanBonus(row pgx.Row) (*entities.Bonus, error) {
	var bonus entities.Bonus
	err := row.Scan(
		&bonus.ID,
		&bonus.UserID,
		&bonus.Amount,
		&bonus.Currency,
		&bonus.WageringRequirement,
		&bonus.WageringProgress,
		&bonus.Status,
		&bonus.Reason,
		&bonus.GrantedBy,
		&bonus.ExpiresAt,
		&bonus.CreatedAt,
		&bonus.ClaimedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bonus, nil
}

func (r *bonusRepository) Create(ctx context.Context, bonus *entities.Bonus) error {
	if bonus.Status == "" {
		bonus.Status = entities.BonusStatusPending
	}

	query := `
		INSERT INTO bonuses
		(user_id, amount, currency, wagering_requirement, wagering_progress, status, reason, granted_by, expires_at, claimed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query,
		bonus.UserID,
		bonus.Amount,
		bonus.Currency,
		bonus.WageringRequirement,
		bonus.WageringProgress,
		bonus.Status,
		bonus.Reason,
		bonus.GrantedBy,
		bonus.ExpiresAt,
		bonus.ClaimedAt,
	).Scan(&bonus.ID, &bonus.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bonus for user %d: %w", bonus.UserID, err)
	}

	return nil
}

func (r *bonusRepository) GetByID(ctx context.Context, id int64) (*entities.Bonus, error) {
	query := `SELECT ` + bonusColumns + ` FROM bonuses WHERE id = $1`

	bonus, err := scanBonus(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bonus %d: %w", id, err)
	}
	return bonus, nil
}

func (r *bonusRepository) MarkClaimed(ctx context.Context, id int64, claimedAt time.Time) (*entities.Bonus, error) {
	query := `
		UPDATE bonuses
		SET status = 'claimed', claimed_at = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + bonusColumns

	bonus, err := scanBonus(r.q.QueryRow(ctx, query, id, claimedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim bonus %d: %w", id, err)
	}
	return bonus, nil
}

// AddWageringProgress returns the number of bonuses that were advanced
func (r *bonusRepository) AddWageringProgress(ctx context.Context, userID int64, currency entities.Currency, amount int64, now time.Time) (int64, error) {
	query := `
		UPDATE bonuses
		SET wagering_progress = wagering_progress + $3
		WHERE user_id = $1
		  AND currency = $2
		  AND status = 'pending'
		  AND wagering_requirement > 0
		  AND (expires_at IS NULL OR expires_at > $4)`

	result, err := r.q.Exec(ctx, query, userID, currency, amount, now)
	if err != nil {
		return 0, fmt.Errorf("failed to add wagering progress for user %d: %w", userID, err)
	}

	return result.RowsAffected(), nil
}

// ExpireDue flips a batch of overdue pending bonuses to expired.
// SKIP LOCKED keeps concurrent workers and in-flight claims from blocking each other.
func (r *bonusRepository) ExpireDue(ctx context.Context, now time.Time, limit int) ([]*entities.Bonus, error) {
	query := `
		UPDATE bonuses
		SET status = 'expired'
		WHERE status = 'pending'
		  AND id IN (
			SELECT id FROM bonuses
			WHERE status = 'pending' AND expires_at IS NOT NULL AND expires_at <= $1
			ORDER BY expires_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		  )
		RETURNING ` + bonusColumns

	rows, err := r.q.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to expire bonuses: %w", err)
	}
	defer rows.Close()

	var expired []*entities.Bonus
	for rows.Next() {
		bonus, err := scanBonus(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bonus: %w", err)
		}
		expired = append(expired, bonus)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expired bonuses: %w", err)
	}

	return expired, nil
}

func (r *bonusRepository) ListByUser(ctx context.Context, userID int64, status *entities.BonusStatus) ([]*entities.Bonus, error) {
	query := `
		SELECT ` + bonusColumns + `
		FROM bonuses
		WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC, id DESC`

	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}

	rows, err := r.q.Query(ctx, query, userID, statusArg)
	if err != nil {
		return nil, fmt.Errorf("failed to list bonuses for user %d: %w", userID, err)
	}
	defer rows.Close()

	var bonuses []*entities.Bonus
	for rows.Next() {
		bonus, err := scanBonus(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bonus: %w", err)
		}
		bonuses = append(bonuses, bonus)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bonuses: %w", err)
	}

	return bonuses, nil
}
