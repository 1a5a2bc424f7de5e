package repository

import (
	"context"
	"errors"
	"fmt"

	"casino/database"
	"casino/domain/entities"
	"casino/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const walletColumns = `id, user_id, currency, balance, version, created_at, updated_at`

// walletRepository implements interfaces.WalletRepository
type walletRepository struct {
	q Queryable
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) interfaces.WalletRepository {
	return &walletRepository{q: db.Pool}
}

// newWalletRepositoryWithTx creates a new wallet repository bound to a transaction
func newWalletRepositoryWithTx(tx Queryable) interfaces.WalletRepository {
	return &walletRepository{q: tx}
}

func scanWallet(row pgx.Row) (*entities.Wallet, error) {
	var wallet entities.Wallet
	err := row.Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.Currency,
		&wallet.Balance,
		&wallet.Version,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// GetOrCreate inserts the wallet if missing and then locks it.
// ON CONFLICT DO NOTHING makes concurrent first use of a pair safe.
func (r *walletRepository) GetOrCreate(ctx context.Context, userID int64, currency entities.Currency) (*entities.Wallet, bool, error) {
	insert := `
		INSERT INTO wallets (user_id, currency)
		VALUES ($1, $2)
		ON CONFLICT (user_id, currency) DO NOTHING
		RETURNING id`

	created := true
	var insertedID int64
	err := r.q.QueryRow(ctx, insert, userID, currency).Scan(&insertedID)
	if errors.Is(err, pgx.ErrNoRows) {
		created = false
	} else if err != nil {
		return nil, false, fmt.Errorf("failed to create wallet for user %d (%s): %w", userID, currency, err)
	}

	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE user_id = $1 AND currency = $2
		FOR UPDATE`

	wallet, err := scanWallet(r.q.QueryRow(ctx, query, userID, currency))
	if err != nil {
		return nil, false, fmt.Errorf("failed to lock wallet for user %d (%s): %w", userID, currency, err)
	}

	return wallet, created, nil
}

// GetByID retrieves a wallet by its ID
func (r *walletRepository) GetByID(ctx context.Context, id int64) (*entities.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`

	wallet, err := scanWallet(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet %d: %w", id, err)
	}
	return wallet, nil
}

// GetByIDForUpdate retrieves a wallet and holds its row lock until the transaction ends
func (r *walletRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`

	wallet, err := scanWallet(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet %d: %w", id, err)
	}
	return wallet, nil
}

// GetByUserAndCurrency retrieves a wallet without creating it
func (r *walletRepository) GetByUserAndCurrency(ctx context.Context, userID int64, currency entities.Currency) (*entities.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND currency = $2`

	wallet, err := scanWallet(r.q.QueryRow(ctx, query, userID, currency))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet for user %d (%s): %w", userID, currency, err)
	}
	return wallet, nil
}

// ListByUser returns all wallets of a user ordered by currency
func (r *walletRepository) ListByUser(ctx context.Context, userID int64) ([]*entities.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 ORDER BY currency`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets for user %d: %w", userID, err)
	}
	defer rows.Close()

	var wallets []*entities.Wallet
	for rows.Next() {
		wallet, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, wallet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallets: %w", err)
	}

	return wallets, nil
}

// Debit decrements the balance only if it covers the amount
func (r *walletRepository) Debit(ctx context.Context, walletID int64, amount int64) (*entities.Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	query := `
		UPDATE wallets
		SET balance = balance - $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
		RETURNING ` + walletColumns

	wallet, err := scanWallet(r.q.QueryRow(ctx, query, amount, walletID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to debit wallet %d: %w", walletID, err)
	}
	return wallet, nil
}

// Credit increments the balance
func (r *walletRepository) Credit(ctx context.Context, walletID int64, amount int64) (*entities.Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	query := `
		UPDATE wallets
		SET balance = balance + $1, version = version + 1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + walletColumns

	wallet, err := scanWallet(r.q.QueryRow(ctx, query, amount, walletID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to credit wallet %d: %w", walletID, err)
	}
	return wallet, nil
}
