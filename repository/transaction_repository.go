package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"casino/database"
	"casino/domain/entities"
	"casino/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, user_id, wallet_id, amount, currency, kind, status, bet_id, bonus_id,
	balance_after, metadata, admin_id, reason, processed_by, processed_at, created_at`

// transactionRepository implements interfaces.TransactionRepository
type transactionRepository struct {
	q Queryable
}

// NewTransactionRepository creates a new ledger repository
func NewTransactionRepository(db *database.DB) interfaces.TransactionRepository {
	return &transactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new ledger repository bound to a transaction
func newTransactionRepositoryWithTx(tx Queryable) interfaces.TransactionRepository {
	return &transactionRepository{q: tx}
}

func scanTransaction(row pgx.Row) (*entities.Transaction, error) {
	var entry entities.Transaction
	var metadataJSON []byte

	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.WalletID,
		&entry.Amount,
		&entry.Currency,
		&entry.Kind,
		&entry.Status,
		&entry.BetID,
		&entry.BonusID,
		&entry.BalanceAfter,
		&metadataJSON,
		&entry.AdminID,
		&entry.Reason,
		&entry.ProcessedBy,
		&entry.ProcessedAt,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Unmarshal metadata
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
		}
	}

	return &entry, nil
}

// Append writes a new ledger entry
func (r *transactionRepository) Append(ctx context.Context, entry *entities.Transaction) error {
	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction metadata: %w", err)
	}

	status := entry.Status
	if status == "" {
		status = entities.TransactionStatusCompleted
	}

	query := `
		INSERT INTO transactions
		(user_id, wallet_id, amount, currency, kind, status, bet_id, bonus_id, balance_after, metadata, admin_id, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	err = r.q.QueryRow(ctx, query,
		entry.UserID,
		entry.WalletID,
		entry.Amount,
		entry.Currency,
		entry.Kind,
		status,
		entry.BetID,
		entry.BonusID,
		entry.BalanceAfter,
		metadataJSON,
		entry.AdminID,
		entry.Reason,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append %s entry for wallet %d: %w", entry.Kind, entry.WalletID, err)
	}

	entry.Status = status
	entry.Metadata = metadata
	return nil
}

// GetByID retrieves a ledger entry by its ID
func (r *transactionRepository) GetByID(ctx context.Context, id int64) (*entities.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	entry, err := scanTransaction(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %d: %w", id, err)
	}
	return entry, nil
}

// UpdateStatus moves an entry from one status to another in a single conditional update
func (r *transactionRepository) UpdateStatus(ctx context.Context, id int64, from, to entities.TransactionStatus, processedBy int64, processedAt time.Time) (*entities.Transaction, error) {
	query := `
		UPDATE transactions
		SET status = $3, processed_by = $4, processed_at = $5
		WHERE id = $1 AND status = $2
		RETURNING ` + transactionColumns

	entry, err := scanTransaction(r.q.QueryRow(ctx, query, id, from, to, processedBy, processedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update status of transaction %d: %w", id, err)
	}
	return entry, nil
}

// Query returns ledger entries matching the filter, newest first
func (r *transactionRepository) Query(ctx context.Context, filter entities.LedgerFilter) ([]*entities.Transaction, error) {
	filter.Normalize()

	var conditions []string
	var args []any
	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.WalletID != nil {
		addCondition("wallet_id = $%d", *filter.WalletID)
	}
	if filter.UserID != nil {
		addCondition("user_id = $%d", *filter.UserID)
	}
	if filter.Kind != nil {
		addCondition("kind = $%d", *filter.Kind)
	}
	if filter.From != nil {
		addCondition("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		addCondition("created_at < $%d", *filter.To)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var entries []*entities.Transaction
	for rows.Next() {
		entry, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger: %w", err)
	}

	return entries, nil
}

// SumEffectiveByWallet sums the entries that currently count towards the balance
func (r *transactionRepository) SumEffectiveByWallet(ctx context.Context, walletID int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)::BIGINT
		FROM transactions
		WHERE wallet_id = $1 AND status IN ('completed', 'pending')`

	var sum int64
	if err := r.q.QueryRow(ctx, query, walletID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum ledger for wallet %d: %w", walletID, err)
	}
	return sum, nil
}
