package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation        = "23505"
	walletVersionUniqueKey = "wallet_id_version_unique"
)

// TransactionRepo implements ports.TransactionStore on wallet.transactions.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// GetLatestTransaction fetches the highest-version row for the wallet.
func (r *TransactionRepo) GetLatestTransaction(ctx context.Context, walletID uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT wallet_id, transaction_id, type::text, amount, balance, version, created, metadata
		FROM wallet.transactions WHERE wallet_id = $1
		ORDER BY version DESC LIMIT 1`

	return r.scanTransaction(r.pool.QueryRow(ctx, query, walletID))
}

// AppendTransaction inserts a new ledger row. A duplicate (wallet_id, version)
// is reported as *domain.ConcurrentModificationError.
func (r *TransactionRepo) AppendTransaction(ctx context.Context, t *domain.Transaction) error {
	metadata, err := json.Marshal(nonNilMetadata(t.Metadata))
	if err != nil {
		return fmt.Errorf("marshal transaction metadata: %w", err)
	}

	query := `INSERT INTO wallet.transactions (wallet_id, transaction_id, type, amount, balance, version, created, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.pool.Exec(ctx, query,
		t.WalletID, t.TransactionID, string(t.TransactionType),
		domain.RoundMoney(t.Amount), domain.RoundMoney(t.Balance),
		t.Version, t.CreatedAt, metadata,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == walletVersionUniqueKey {
			return &domain.ConcurrentModificationError{WalletID: t.WalletID, Version: t.Version}
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// scanTransaction is a helper to scan a single row into a Transaction.
func (r *TransactionRepo) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	var (
		txType   string
		metadata []byte
	)
	err := row.Scan(
		&t.WalletID, &t.TransactionID, &txType,
		&t.Amount, &t.Balance, &t.Version, &t.CreatedAt, &metadata,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	t.TransactionType = domain.TransactionType(txType)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal transaction metadata: %w", err)
		}
	}
	return t, nil
}

func nonNilMetadata(md domain.Metadata) domain.Metadata {
	if md == nil {
		return domain.Metadata{}
	}
	return md
}
