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

const betColumns = `id, user_id, game_id, stake, currency, outcome, win_amount, multiplier, created_at, settled_at`

type betRepository struct {
	q Queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) interfaces.BetRepository {
	return &betRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx Queryable) interfaces.BetRepository {
	return &betRepository{q: tx}
}

func scanBet(row pgx.Row) (*entities.Bet, error) {
	var bet entities.Bet
	err := row.Scan(
		&bet.ID,
		&bet.UserID,
		&bet.GameID,
		&bet.Stake,
		&bet.Currency,
		&bet.Outcome,
		&bet.WinAmount,
		&bet.Multiplier,
		&bet.CreatedAt,
		&bet.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

func (r *betRepository) Create(ctx context.Context, bet *entities.Bet) error {
	if bet.Outcome == "" {
		bet.Outcome = entities.BetOutcomePending
	}

	query := `
		INSERT INTO bets (user_id, game_id, stake, currency, outcome, win_amount, multiplier)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query,
		bet.UserID,
		bet.GameID,
		bet.Stake,
		bet.Currency,
		bet.Outcome,
		bet.WinAmount,
		bet.Multiplier,
	).Scan(&bet.ID, &bet.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}

	return nil
}

func (r *betRepository) GetByID(ctx context.Context, id int64) (*entities.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1`

	bet, err := scanBet(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}

	return bet, nil
}

// Settle is the compare-and-set on outcome = 'pending'; only one caller can win it
func (r *betRepository) Settle(ctx context.Context, settlement entities.Settlement, settledAt time.Time) (*entities.Bet, error) {
	query := `
		UPDATE bets
		SET outcome = $2, win_amount = $3, multiplier = $4, settled_at = $5
		WHERE id = $1 AND outcome = 'pending'
		RETURNING ` + betColumns

	bet, err := scanBet(r.q.QueryRow(ctx, query,
		settlement.BetID,
		settlement.Outcome,
		settlement.WinAmount,
		settlement.Multiplier,
		settledAt,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to settle bet %d: %w", settlement.BetID, err)
	}

	return bet, nil
}

func (r *betRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets: %w", err)
	}
	defer rows.Close()

	var bets []*entities.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}

	return bets, nil
}
