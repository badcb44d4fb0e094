// Package memory provides an in-process TransactionStore used for local
// runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// TransactionStore keeps every wallet's log as an ordered slice. The slice
// index i holds version i+1, so versions stay gapless by construction.
type TransactionStore struct {
	mu   sync.RWMutex
	logs map[uuid.UUID][]domain.Transaction
}

// NewTransactionStore creates an empty store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{logs: make(map[uuid.UUID][]domain.Transaction)}
}

// GetLatestTransaction returns a copy of the highest-version transaction,
// or nil, nil if the wallet has none.
func (s *TransactionStore) GetLatestTransaction(ctx context.Context, walletID uuid.UUID) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.logs[walletID]
	if len(log) == 0 {
		return nil, nil
	}
	latest := clone(log[len(log)-1])
	return &latest, nil
}

// AppendTransaction adds txn if its version is exactly one past the latest.
func (s *TransactionStore) AppendTransaction(ctx context.Context, txn *domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logs[txn.WalletID]
	next := int64(len(log)) + 1
	switch {
	case txn.Version < 1:
		return fmt.Errorf("invalid version %d for wallet %s", txn.Version, txn.WalletID)
	case txn.Version < next:
		return &domain.ConcurrentModificationError{WalletID: txn.WalletID, Version: txn.Version}
	case txn.Version > next:
		return fmt.Errorf("version gap for wallet %s: expected %d, got %d", txn.WalletID, next, txn.Version)
	}

	s.logs[txn.WalletID] = append(log, clone(*txn))
	return nil
}

// History returns a copy of the wallet's transactions in version order.
func (s *TransactionStore) History(walletID uuid.UUID) []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.logs[walletID]
	out := make([]domain.Transaction, len(log))
	for i := range log {
		out[i] = clone(log[i])
	}
	return out
}

// Name implements ports.HealthChecker.
func (s *TransactionStore) Name() string { return "memory" }

// Ping implements ports.HealthChecker; the memory store is always reachable.
func (s *TransactionStore) Ping(_ context.Context) error { return nil }

func clone(txn domain.Transaction) domain.Transaction {
	if txn.Metadata != nil {
		md := make(domain.Metadata, len(txn.Metadata))
		for k, v := range txn.Metadata {
			md[k] = v
		}
		txn.Metadata = md
	}
	return txn
}
