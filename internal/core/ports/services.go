package ports

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletService defines the wallet business logic.
type WalletService interface {
	GetWallet(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error)
	Debit(ctx context.Context, req DebitRequest) (*domain.Transaction, error)
	Credit(ctx context.Context, req CreditRequest) (*CreditResult, error)
}

// DebitRequest holds validated input for a debit.
type DebitRequest struct {
	WalletID uuid.UUID
	Amount   decimal.Decimal
	Metadata domain.Metadata
}

// CreditRequest holds validated input for a credit.
type CreditRequest struct {
	WalletID uuid.UUID
	Amount   decimal.Decimal
	Metadata domain.Metadata
}

// CreditResult reports the appended transaction and whether it opened the wallet.
type CreditResult struct {
	Transaction *domain.Transaction
	Created     bool
}

// TransactionPublisher announces appended transactions to downstream consumers.
type TransactionPublisher interface {
	Publish(ctx context.Context, txn *domain.Transaction) error
}

// IdempotencyCache stores serialized responses keyed by idempotency key.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// RateLimitStore counts requests per key in fixed windows.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}
