package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvalidDebitAmountError is returned when a debit amount is negative.
type InvalidDebitAmountError struct {
	Amount decimal.Decimal
}

func (e *InvalidDebitAmountError) Error() string {
	return fmt.Sprintf("debit amount cannot be less than 0: %s", FormatMoney(e.Amount))
}

// InvalidAmountError is returned when an amount rounds below the one-cent
// minimum a transaction may carry.
type InvalidAmountError struct {
	Amount decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("amount must be at least %s: %s", FormatMoney(MinAmount), e.Amount.String())
}

// InsufficientFundsError is returned when a debit exceeds the wallet balance.
type InsufficientFundsError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %s, requested %s",
		FormatMoney(e.Available), FormatMoney(e.Requested))
}

// WalletNotFoundError is returned when debiting a wallet with no history.
type WalletNotFoundError struct {
	WalletID uuid.UUID
}

func (e *WalletNotFoundError) Error() string {
	return fmt.Sprintf("wallet not found: %s", e.WalletID)
}

// ConcurrentModificationError is returned by a TransactionStore when another
// writer already appended the same (wallet id, version) pair.
type ConcurrentModificationError struct {
	WalletID uuid.UUID
	Version  int64
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("wallet %s was modified by another transaction (version %d)", e.WalletID, e.Version)
}
