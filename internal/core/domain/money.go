package domain

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places carried by every amount.
const MoneyPlaces = 2

// MinAmount is the smallest amount accepted for a credit or debit request.
var MinAmount = decimal.New(1, -MoneyPlaces)

// RoundMoney rounds to cents, half away from zero (half-up for the
// non-negative amounts the ledger stores).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// FormatMoney renders an amount with exactly two decimal places.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyPlaces)
}

// CheckAmount rejects amounts that would record less than one cent.
func CheckAmount(amount decimal.Decimal) error {
	if RoundMoney(amount).LessThan(MinAmount) {
		return &InvalidAmountError{Amount: amount}
	}
	return nil
}

// Credit returns balance + amount with both operands rounded to cents first.
func Credit(balance, amount decimal.Decimal) decimal.Decimal {
	return RoundMoney(balance).Add(RoundMoney(amount))
}

// Debit returns balance - amount with both operands rounded to cents first.
// It fails when amount is negative or exceeds the balance.
func Debit(balance, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, &InvalidDebitAmountError{Amount: amount}
	}

	available := RoundMoney(balance)
	requested := RoundMoney(amount)
	if requested.GreaterThan(available) {
		return decimal.Zero, &InsufficientFundsError{
			Available: available,
			Requested: requested,
		}
	}

	return available.Sub(requested), nil
}
