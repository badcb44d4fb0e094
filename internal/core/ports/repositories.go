package ports

import (
	"context"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// TransactionStore is the append-only persistence contract for the ledger.
type TransactionStore interface {
	// GetLatestTransaction returns the highest-version transaction for the
	// wallet, or nil, nil if the wallet has no history.
	GetLatestTransaction(ctx context.Context, walletID uuid.UUID) (*domain.Transaction, error)
	// AppendTransaction atomically inserts the transaction. It returns a
	// *domain.ConcurrentModificationError if (wallet id, version) already exists.
	AppendTransaction(ctx context.Context, txn *domain.Transaction) error
}
