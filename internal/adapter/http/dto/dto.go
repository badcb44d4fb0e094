package dto

import (
	"errors"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// ErrAmountNotNumber is returned when the amount arrives as a JSON string.
var ErrAmountNotNumber = errors.New("amount must be a JSON number")

// Amount is a request amount. Only JSON numbers are accepted; quoted values
// such as "12.34" are rejected.
type Amount struct {
	decimal.Decimal
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return ErrAmountNotNumber
	}
	return a.Decimal.UnmarshalJSON(b)
}

// AmountRequest is the request body for credit and debit.
type AmountRequest struct {
	Amount   Amount         `json:"amount" binding:"money"`
	Metadata map[string]any  `json:"metadata,omitempty" binding:"omitempty,scalar_map"`
}

// WalletResponse is the response body for GET /wallet/:id.
type WalletResponse struct {
	ID      string      `json:"id"`
	Balance string    `json:"balance"`
	Version int64     `json:"version"`
	Updated time.Time `json:"updated"`
}

// TransactionResponse is the response body for credit and debit.
type TransactionResponse struct {
	Balance       string `json:"balance"`
	TransactionID string `json:"transactionId"`
	RequestID     string `json:"requestId"`
}

// NewWalletResponse maps a wallet projection to its response body.
func NewWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:      w.ID.String(),
		Balance: domain.FormatMoney(w.Balance),
		Version: w.Version,
		Updated: w.UpdatedAt,
	}
}

// NewTransactionResponse maps an appended transaction to its response body.
func NewTransactionResponse(t *domain.Transaction, requestID string) TransactionResponse {
	return TransactionResponse{
		Balance:       domain.FormatMoney(t.Balance),
		TransactionID: t.TransactionID.String(),
		RequestID:     requestID,
	}
}
