// Package export renders the ledger as a CSV report.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"git.sr.ht/~jakintosh/cspledger/internal/core"
)

const (
	reportTitle      = "CSP Ledger Pro - Data Report"
	reportDateFormat = "02/01/2006, 3:04:05 pm"
	fileDateFormat   = "2006-01-02"
)

var ErrNothingToExport = errors.New("no data to export")

var header = []string{
	"ID",
	"Date & Time",
	"Transaction Type",
	"Amount (INR)",
	"Customer Name",
	"Customer Aadhaar / Account No.",
	"Customer Mobile",
	"Description",
}

// IsEmpty reports whether there is nothing worth exporting: no transactions and both
// initial balances zero.
func IsEmpty(state core.State) bool {
	return len(state.Transactions) == 0 &&
		state.InitialBankBalance.IsZero() &&
		state.InitialCashInHand.IsZero()
}

// WriteCSV writes the account summary followed by the transaction history, oldest
// first. Times are shown in generatedAt's location.
func WriteCSV(w io.Writer, state core.State, summary core.LedgerSummary, generatedAt time.Time) error {
	if IsEmpty(state) {
		return ErrNothingToExport
	}

	loc := generatedAt.Location()
	cw := csv.NewWriter(w)

	rows := [][]string{
		{reportTitle},
		{"Report Generated On", generatedAt.Format(reportDateFormat)},
		{},
		{"ACCOUNT SUMMARY"},
		{"Initial Bank Balance", state.InitialBankBalance.String()},
		{"Initial Cash In Hand", state.InitialCashInHand.String()},
		{"Current Bank Balance", summary.RemainingBalance.String()},
		{"Current Cash In Hand", summary.CashInHand.String()},
		{"Total Debited from Bank (Since Start)", summary.TotalDebited.String()},
		{"Total Deposited to Bank (Since Start)", summary.TotalDeposited.String()},
		{},
		{fmt.Sprintf("TRANSACTION HISTORY (%d entries)", len(state.Transactions))},
		header,
	}

	for i := len(state.Transactions) - 1; i >= 0; i-- {
		tx := state.Transactions[i]
		rows = append(rows, []string{
			tx.ID,
			tx.Date.In(loc).Format(reportDateFormat),
			string(tx.Type),
			tx.Amount.String(),
			core.Value(tx.CustomerName),
			core.Value(tx.CustomerIdentifier),
			core.Value(tx.CustomerMobile),
			core.Value(tx.Description),
		})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// Filename is the report file name for a report made at now.
func Filename(now time.Time) string {
	return "csp-ledger-report-" + now.Format(fileDateFormat) + ".csv"
}

// BackupFilename is the backup file name for a backup downloaded at now.
func BackupFilename(now time.Time) string {
	return "csp-ledger-backup-" + now.Format(fileDateFormat) + ".json"
}
