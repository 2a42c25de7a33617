package core

import "github.com/shopspring/decimal"

// LedgerSummary is the derived view of the ledger. It is recomputed on every read
// and never stored.
type LedgerSummary struct {
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	CashInHand       decimal.Decimal `json:"cashInHand"`
	WithdrawalToday  decimal.Decimal `json:"withdrawalToday"`
	DepositToday     decimal.Decimal `json:"depositToday"`
	TotalDebited     decimal.Decimal `json:"totalDebited"`
	TotalDeposited   decimal.Decimal `json:"totalDeposited"`
}

// LoadIssue describes a non-fatal problem encountered while reading persisted data.
type LoadIssue struct {
	Stage   string
	Message string
}

// LoadSummary aggregates what was read from the data directory at startup.
type LoadSummary struct {
	Transactions int
	Customers    int
	Initialized  bool
	Issues       []LoadIssue
}

// HasIssues reports whether any issues were recorded during startup processing.
func (s LoadSummary) HasIssues() bool {
	return len(s.Issues) > 0
}
