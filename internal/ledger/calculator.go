// Package ledger turns the stored transactions and initial balances into current
// bank and cash figures, and back-solves initial balances when the operator corrects
// a current figure by hand.
//
// Every movement is seen from the CSP's side of the counter. A customer deposit, for
// example, takes the customer's cash into the drawer and pays the same amount out of
// the CSP's bank account into the customer's, so bank goes down and cash goes up.
package ledger

import (
	"time"

	"git.sr.ht/~jakintosh/cspledger/internal/core"
	"github.com/shopspring/decimal"
)

type bucket int

const (
	bucketNone bucket = iota
	bucketDebited
	bucketDeposited
	bucketDepositToday
	bucketWithdrawalToday
)

// effect is the per-type contribution of one unit of amount.
type effect struct {
	bank     int64
	cash     int64
	lifetime bucket
	today    bucket
}

// CustomerTransfer books exactly like CustomerDeposit but reports under
// withdrawals for the day.
var effects = map[core.TransactionType]effect{
	core.TypeCustomerDeposit:       {bank: -1, cash: +1, lifetime: bucketDebited, today: bucketDepositToday},
	core.TypeCustomerWithdrawal:    {bank: +1, cash: -1, lifetime: bucketDeposited, today: bucketWithdrawalToday},
	core.TypeCustomerTransfer:      {bank: -1, cash: +1, lifetime: bucketDebited, today: bucketWithdrawalToday},
	core.TypeCSPDepositToBank:      {bank: +1, cash: -1, lifetime: bucketDeposited, today: bucketNone},
	core.TypeCSPWithdrawalFromBank: {bank: -1, cash: +1, lifetime: bucketDebited, today: bucketNone},
}

// Totals are the aggregates derived from a transaction list alone, before the
// initial balances are applied.
type Totals struct {
	BankChange      decimal.Decimal
	CashChange      decimal.Decimal
	WithdrawalToday decimal.Decimal
	DepositToday    decimal.Decimal
	TotalDebited    decimal.Decimal
	TotalDeposited  decimal.Decimal
}

// Compute folds the transactions into Totals. Transactions dated on now's calendar
// day (in now's location) also count toward the daily figures. Unknown types are
// skipped; amounts are summed as stored, whatever their sign.
func Compute(transactions []core.Transaction, now time.Time) Totals {
	totals := Totals{
		BankChange:      decimal.Zero,
		CashChange:      decimal.Zero,
		WithdrawalToday: decimal.Zero,
		DepositToday:    decimal.Zero,
		TotalDebited:    decimal.Zero,
		TotalDeposited:  decimal.Zero,
	}

	for _, tx := range transactions {
		e, ok := effects[tx.Type]
		if !ok {
			continue
		}

		totals.BankChange = totals.BankChange.Add(tx.Amount.Mul(decimal.NewFromInt(e.bank)))
		totals.CashChange = totals.CashChange.Add(tx.Amount.Mul(decimal.NewFromInt(e.cash)))
		totals.add(e.lifetime, tx.Amount)
		if SameDay(tx.Date, now) {
			totals.add(e.today, tx.Amount)
		}
	}

	return totals
}

func (t *Totals) add(b bucket, amount decimal.Decimal) {
	switch b {
	case bucketDebited:
		t.TotalDebited = t.TotalDebited.Add(amount)
	case bucketDeposited:
		t.TotalDeposited = t.TotalDeposited.Add(amount)
	case bucketDepositToday:
		t.DepositToday = t.DepositToday.Add(amount)
	case bucketWithdrawalToday:
		t.WithdrawalToday = t.WithdrawalToday.Add(amount)
	}
}

// Summarize applies the computed totals to the initial balances.
func Summarize(transactions []core.Transaction, initialBank, initialCash decimal.Decimal, now time.Time) core.LedgerSummary {
	totals := Compute(transactions, now)
	return core.LedgerSummary{
		RemainingBalance: initialBank.Add(totals.BankChange),
		CashInHand:       initialCash.Add(totals.CashChange),
		WithdrawalToday:  totals.WithdrawalToday,
		DepositToday:     totals.DepositToday,
		TotalDebited:     totals.TotalDebited,
		TotalDeposited:   totals.TotalDeposited,
	}
}

// SummarizeState is Summarize over a whole ledger state.
func SummarizeState(state core.State, now time.Time) core.LedgerSummary {
	return Summarize(state.Transactions, state.InitialBankBalance, state.InitialCashInHand, now)
}

// SameDay reports whether t falls on the same calendar day as now, judged in now's
// location.
func SameDay(t, now time.Time) bool {
	ty, tm, td := t.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	return ty == ny && tm == nm && td == nd
}
