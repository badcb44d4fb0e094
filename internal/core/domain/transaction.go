package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a balance change.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// Metadata holds caller-supplied scalar values attached to a transaction.
type Metadata map[string]any

// Transaction is an immutable ledger entry. Balance is the wallet balance
// after this entry was applied; Version is the per-wallet sequence number.
type Transaction struct {
	WalletID        uuid.UUID       `json:"walletId"`
	TransactionID   uuid.UUID       `json:"transactionId"`
	TransactionType TransactionType `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Balance         decimal.Decimal `json:"balance"`
	Version         int64           `json:"version"`
	CreatedAt       time.Time       `json:"createdAt"`
	Metadata        Metadata        `json:"metadata,omitempty"`
}

// Wallet projects the transaction onto the wallet state it produced.
func (t *Transaction) Wallet() *Wallet {
	return &Wallet{
		ID:        t.WalletID,
		Balance:   t.Balance,
		Version:   t.Version,
		UpdatedAt: t.CreatedAt,
	}
}

// IsCredit returns true if the transaction added funds.
func (t *Transaction) IsCredit() bool {
	return t.TransactionType == TransactionTypeCredit
}
