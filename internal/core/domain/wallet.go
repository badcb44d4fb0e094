package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet is a read projection over the transaction log: the balance and
// version of the latest transaction recorded for the wallet id.
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updated"`
}

// NewWallet returns the implicit state of a wallet with no transactions.
func NewWallet(id uuid.UUID) *Wallet {
	return &Wallet{
		ID:        id,
		Balance:   decimal.Zero,
		Version:   0,
		UpdatedAt: time.Now().UTC(),
	}
}

// NextVersion is the version the next appended transaction must carry.
func (w *Wallet) NextVersion() int64 {
	return w.Version + 1
}
