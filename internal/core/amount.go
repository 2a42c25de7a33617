package core

import "github.com/shopspring/decimal"

// MaxAmount bounds the magnitude of every stored amount and balance.
var MaxAmount = decimal.New(1, 15)

// maxAmountScale bounds the decimal exponent of a stored amount in either direction.
const maxAmountScale = 18

// AmountInRange reports whether d is small enough to store and sum. The exponent is
// checked before the magnitude so that a value like 1e20000000 is never rescaled.
func AmountInRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp < -maxAmountScale || exp > maxAmountScale {
		return false
	}
	return d.Abs().LessThan(MaxAmount)
}
