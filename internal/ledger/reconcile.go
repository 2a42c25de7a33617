package ledger

import (
	"time"

	"git.sr.ht/~jakintosh/cspledger/internal/core"
	"git.sr.ht/~jakintosh/cspledger/internal/util"
	"github.com/shopspring/decimal"
)

// BalanceUpdate carries the current balances the operator wants to see. A nil field
// is left alone.
type BalanceUpdate struct {
	NewBankBalance *decimal.Decimal
	NewCashInHand  *decimal.Decimal
}

// IsEmpty reports whether the update asks for nothing.
func (u BalanceUpdate) IsEmpty() bool {
	return u.NewBankBalance == nil && u.NewCashInHand == nil
}

// ParseBalanceUpdate builds an update from free-text form fields. A field that is
// blank or does not evaluate to a number is dropped.
func ParseBalanceUpdate(bankText, cashText string) BalanceUpdate {
	var update BalanceUpdate
	if d, ok := util.ParseAmount(bankText); ok {
		update.NewBankBalance = &d
	}
	if d, ok := util.ParseAmount(cashText); ok {
		update.NewCashInHand = &d
	}
	return update
}

// Reconcile returns the initial balances that make initial + computed change equal
// the requested current balances. Transactions are only read.
func Reconcile(transactions []core.Transaction, initialBank, initialCash decimal.Decimal, update BalanceUpdate) (bank, cash decimal.Decimal) {
	bank, cash = initialBank, initialCash
	if update.IsEmpty() {
		return bank, cash
	}

	// The daily buckets do not matter here, so any instant will do for "now".
	totals := Compute(transactions, time.Time{})
	if update.NewBankBalance != nil {
		bank = update.NewBankBalance.Sub(totals.BankChange)
	}
	if update.NewCashInHand != nil {
		cash = update.NewCashInHand.Sub(totals.CashChange)
	}
	return bank, cash
}
