package session

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"git.sr.ht/~jakintosh/cspledger/internal/backup"
	"git.sr.ht/~jakintosh/cspledger/internal/core"
	"git.sr.ht/~jakintosh/cspledger/internal/entry"
	"git.sr.ht/~jakintosh/cspledger/internal/export"
	"git.sr.ht/~jakintosh/cspledger/internal/ledger"
	"git.sr.ht/~jakintosh/cspledger/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataDir = "/ledger"

var clock = time.Date(2025, 6, 14, 10, 30, 0, 0, time.UTC)

func openTestSession(t *testing.T, fs afero.Fs) *Session {
	t.Helper()
	n := 0
	s, err := Open(Options{
		Fs:      fs,
		DataDir: dataDir,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Limits:  entry.DefaultLimits(),
		Now:     func() time.Time { return clock },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
	require.NoError(t, err)
	return s
}

func always(answer bool) ConfirmFunc {
	return func(string) bool { return answer }
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestOpen_FreshDirectoryNeedsSetup(t *testing.T) {
	s := openTestSession(t, afero.NewMemMapFs())

	assert.False(t, s.Initialized())
	assert.False(t, s.LoadSummary().Initialized)
	assert.Empty(t, s.State().Transactions)

	_, err := s.BackupJSON()
	assert.Error(t, err)
}

func TestInitializeAndReopen(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := openTestSession(t, fs)

	bank, cash, err := ParseInitialBalances("1,00,000", "50000")
	require.NoError(t, err)
	require.NoError(t, s.Initialize(bank, cash))
	assert.True(t, s.Initialized())

	reopened := openTestSession(t, fs)
	assert.True(t, reopened.Initialized())
	state := reopened.State()
	assert.True(t, state.InitialBankBalance.Equal(dec("100000")))
	assert.True(t, state.InitialCashInHand.Equal(dec("50000")))

	_, _, err = ParseInitialBalances("abc", "1")
	assert.ErrorIs(t, err, ErrInvalidBalance)
}

func TestAddTransaction_UpdatesSummaryAndSavesCustomer(t *testing.T) {
	s := openTestSession(t, afero.NewMemMapFs())
	require.NoError(t, s.Initialize(dec("100000"), dec("50000")))

	tx, err := s.AddTransaction(entry.TransactionInput{
		Type:               core.TypeCustomerDeposit,
		Amount:             "5000",
		CustomerName:       "Ramesh Kumar",
		CustomerIdentifier: "1234",
		CustomerMobile:     "9876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, "id-2", tx.ID) // id-1 went to the auto-saved customer
	assert.True(t, tx.Date.Equal(clock))

	summary := s.Summary()
	assert.True(t, summary.RemainingBalance.Equal(dec("95000")))
	assert.True(t, summary.CashInHand.Equal(dec("55000")))
	assert.True(t, summary.TotalDebited.Equal(dec("5000")))
	assert.True(t, summary.DepositToday.Equal(dec("5000")))

	customers := s.Customers("")
	require.Len(t, customers, 1)
	assert.Equal(t, "Ramesh Kumar", customers[0].Name)
	assert.Equal(t, "9876543210", core.Value(customers[0].Mobile))

	assert.Equal(t, []string{"Ramesh Kumar"}, s.SuggestCustomers("ram", 5))
	found, ok := s.LookupCustomer("Ramesh Kumar")
	require.True(t, ok)
	assert.Equal(t, "1234", found.Identifier)
	byID, ok := s.LookupIdentifier(" 1234 ")
	require.True(t, ok)
	assert.Equal(t, "Ramesh Kumar", byID.Name)

	// A second transaction for the same name does not add another customer
	_, err = s.AddTransaction(entry.TransactionInput{
		Type:               core.TypeCustomerWithdrawal,
		Amount:             "100",
		CustomerName:       "ramesh kumar",
		CustomerIdentifier: "1234",
	})
	require.NoError(t, err)
	assert.Len(t, s.Customers(""), 1)
}

func TestAddTransaction_ValidationErrorsLeaveStateAlone(t *testing.T) {
	s := openTestSession(t, afero.NewMemMapFs())
	require.NoError(t, s.Initialize(dec("0"), dec("0")))

	_, err := s.AddTransaction(entry.TransactionInput{Type: core.TypeCustomerWithdrawal, Amount: "15000", CustomerName: "A", CustomerIdentifier: "1"})
	var limitErr *entry.LimitError
	assert.ErrorAs(t, err, &limitErr)

	_, err = s.AddTransaction(entry.TransactionInput{Type: core.TypeCustomerDeposit, Amount: "100"})
	assert.ErrorIs(t, err, entry.ErrCustomerNameRequired)

	assert.Empty(t, s.State().Transactions)
	assert.Empty(t, s.State().Customers)
}

func TestEditHighlightAndDeleteTransaction(t *testing.T) {
	s := openTestSession(t, afero.NewMemMapFs())
	require.NoError(t, s.Initialize(dec("0"), dec("0")))

	tx, err := s.AddTransaction(entry.TransactionInput{Type: core.TypeCSPDepositToBank, Amount: "2000"})
	require.NoError(t, err)

	in := entry.InputFor(tx)
	in.Amount = "2500"
	in.Description = "recount"
	edited, err := s.UpdateTransaction(tx.ID, in)
	require.NoError(t, err)
	assert.True(t, edited.Amount.Equal(dec("2500")))
	assert.True(t, s.Summary().RemainingBalance.Equal(dec("2500")))

	_, err = s.UpdateTransaction("missing", in)
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	require.NoError(t, s.ToggleHighlight(tx.ID))
	got, err := s.Transaction(tx.ID)
	require.NoError(t, err)
	assert.True(t, got.IsHighlighted)

	require.NoError(t, s.DeleteTransaction(tx.ID))
	assert.Empty(t, s.State().Transactions)
	require.NoError(t, s.DeleteTransaction(tx.ID))
}

func TestCustomerLifecycle(t *testing.T) {
	s := openTestSession(t, afero.NewMemMapFs())
	require.NoError(t, s.Initialize(dec("0"), dec("0")))

	asha, err := s.AddCustomer(entry.CustomerInput{Name: "Asha", Identifier: "A1"})
	require.NoError(t, err)
	assert.NotEmpty(t, asha.ID)

	_, err = s.AddCustomer(entry.CustomerInput{Name: "Other", Identifier: " a1 "})
	var dupErr *entry.DuplicateIdentifierError
	assert.ErrorAs(t, err, &dupErr)

	updated, err := s.UpdateCustomer(asha.ID, entry.CustomerInput{Name: "Asha Rao", Identifier: "A1", Mobile: "900"})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", updated.Name)

	_, err = s.AddTransaction(entry.TransactionInput{Type: core.TypeCustomerDeposit, Amount: "300", CustomerName: "Asha Rao", CustomerIdentifier: "A1"})
	require.NoError(t, err)

	history, err := s.CustomerHistory(asha.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	deleted, err := s.DeleteCustomer(asha.ID, always(false))
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Len(t, s.Customers(""), 1)

	deleted, err = s.DeleteCustomer(asha.ID, always(true))
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, s.Customers(""))

	// Transactions keep their customer fields
	tx := s.State().Transactions[0]
	assert.Equal(t, "Asha Rao", core.Value(tx.CustomerName))
	assert.Equal(t, "A1", core.Value(tx.CustomerIdentifier))
}

func TestUpdateCurrentBalances(t *testing.T) {
	s := openTestSession(t, afero.NewMemMapFs())
	require.NoError(t, s.Initialize(dec("100000"), dec("50000")))
	_, err := s.AddTransaction(entry.TransactionInput{Type: core.TypeCustomerDeposit, Amount: "5000", CustomerName: "A", CustomerIdentifier: "1"})
	require.NoError(t, err)
	before := s.State().Transactions

	require.NoError(t, s.UpdateCurrentBalances(ledger.ParseBalanceUpdate("90000", "not a number")))

	summary := s.Summary()
	assert.True(t, summary.RemainingBalance.Equal(dec("90000")))
	assert.True(t, summary.CashInHand.Equal(dec("55000")))
	assert.True(t, s.State().InitialBankBalance.Equal(dec("95000")))
	assert.Equal(t, before, s.State().Transactions)

	require.NoError(t, s.UpdateCurrentBalances(ledger.BalanceUpdate{}))
	assert.True(t, s.Summary().RemainingBalance.Equal(dec("90000")))
}

func TestRestore_RoundTrip(t *testing.T) {
	source := openTestSession(t, afero.NewMemMapFs())
	require.NoError(t, source.Initialize(dec("100000"), dec("50000")))
	_, err := source.AddTransaction(entry.TransactionInput{Type: core.TypeCustomerTransfer, Amount: "750.25", CustomerName: "Rani", CustomerIdentifier: "R1", Description: `rent, "June"`})
	require.NoError(t, err)

	data, err := source.BackupJSON()
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	target := openTestSession(t, fs)
	result := target.Restore(data, always(true))
	assert.True(t, result.Success)
	assert.Equal(t, "Data restored successfully.", result.Message)
	assert.True(t, target.Initialized())

	assert.Equal(t, source.State().Customers, target.State().Customers)
	require.Len(t, target.State().Transactions, 1)
	assert.Equal(t, source.State().Transactions[0].ID, target.State().Transactions[0].ID)
	assert.True(t, source.Summary().RemainingBalance.Equal(target.Summary().RemainingBalance))

	// Restored data is persisted
	reopened := openTestSession(t, fs)
	assert.Len(t, reopened.State().Transactions, 1)
}

func TestRestore_MalformedLeavesStateUntouched(t *testing.T) {
	s := openTestSession(t, afero.NewMemMapFs())
	require.NoError(t, s.Initialize(dec("10"), dec("20")))
	before := s.State()

	asked := false
	confirm := func(string) bool {
		asked = true
		return true
	}

	for _, text := range []string{
		`not json`,
		`{"transactions": {}, "initialBankBalance": 1, "initialCashInHand": 1}`,
		`{"transactions": [], "initialBankBalance": "1", "initialCashInHand": 1}`,
	} {
		result := s.Restore([]byte(text), confirm)
		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "Failed to restore backup: ")
	}

	assert.False(t, asked, "confirmation must not be requested for invalid backups")
	assert.Equal(t, before, s.State())
}

func TestRestore_Cancelled(t *testing.T) {
	s := openTestSession(t, afero.NewMemMapFs())
	require.NoError(t, s.Initialize(dec("10"), dec("20")))
	before := s.State()

	result := s.Restore([]byte(`{"transactions": [], "initialBankBalance": 1, "initialCashInHand": 2}`), always(false))

	assert.False(t, result.Success)
	assert.Equal(t, "Restore operation cancelled.", result.Message)
	assert.Equal(t, before, s.State())
}

func TestPrepareRestore_TwoStep(t *testing.T) {
	s := openTestSession(t, afero.NewMemMapFs())

	pending, result := s.PrepareRestore([]byte(`{"transactions": [], "customers": [{"id": "c", "name": "N", "identifier": "I"}], "initialBankBalance": 1, "initialCashInHand": 2}`))
	require.NotNil(t, pending)
	assert.True(t, result.Success)
	assert.Equal(t, 0, pending.Transactions())
	assert.Equal(t, 1, pending.Customers())

	assert.True(t, pending.Apply().Success)
	assert.False(t, pending.Apply().Success, "a pending restore applies once")
	assert.Len(t, s.State().Customers, 1)
}

func TestExportCSV(t *testing.T) {
	s := openTestSession(t, afero.NewMemMapFs())

	var buf bytes.Buffer
	assert.ErrorIs(t, s.ExportCSV(&buf), export.ErrNothingToExport)

	require.NoError(t, s.Initialize(dec("100"), dec("0")))
	_, err := s.AddTransaction(entry.TransactionInput{Type: core.TypeCustomerDeposit, Amount: "10", CustomerName: "Kumar, Ramu", CustomerIdentifier: "1"})
	require.NoError(t, err)

	require.NoError(t, s.ExportCSV(&buf))
	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	last := records[len(records)-1]
	assert.Equal(t, "Kumar, Ramu", last[4])
}

func TestLastAutoBackupFollowsMutations(t *testing.T) {
	s := openTestSession(t, afero.NewMemMapFs())
	_, ok := s.LastAutoBackup()
	assert.False(t, ok)

	require.NoError(t, s.Initialize(dec("1"), dec("1")))
	at, ok := s.LastAutoBackup()
	require.True(t, ok)
	assert.True(t, at.Equal(clock))
}

func TestOpenRefreshesAutomaticBackup(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := openTestSession(t, fs)
	require.NoError(t, s.Initialize(dec("100"), dec("50")))
	_, err := s.AddTransaction(entry.TransactionInput{Type: core.TypeCSPDepositToBank, Amount: "20"})
	require.NoError(t, err)

	autoBackup := filepath.Join(dataDir, storage.KeyAutoBackup+".json")
	require.NoError(t, fs.Remove(autoBackup))

	openTestSession(t, fs)
	data, err := afero.ReadFile(fs, autoBackup)
	require.NoError(t, err)
	restored, err := backup.Parse(data)
	require.NoError(t, err)
	assert.Len(t, restored.Transactions, 1)
	assert.True(t, restored.InitialBankBalance.Equal(dec("100")))
}

func TestOpenKeepsAutomaticBackupAfterPartialLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := openTestSession(t, fs)
	require.NoError(t, s.Initialize(dec("100"), dec("50")))
	_, err := s.AddTransaction(entry.TransactionInput{Type: core.TypeCSPDepositToBank, Amount: "20"})
	require.NoError(t, err)

	autoBackup := filepath.Join(dataDir, storage.KeyAutoBackup+".json")
	before, err := afero.ReadFile(fs, autoBackup)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dataDir, storage.KeyTransactions+".json"), []byte("{broken"), 0o644))

	reopened := openTestSession(t, fs)
	require.True(t, reopened.LoadSummary().HasIssues())
	after, err := afero.ReadFile(fs, autoBackup)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestBackupJSONServesLiveState(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := openTestSession(t, fs)
	require.NoError(t, s.Initialize(dec("100"), dec("50")))
	_, err := s.AddTransaction(entry.TransactionInput{Type: core.TypeCSPDepositToBank, Amount: "20"})
	require.NoError(t, err)

	require.NoError(t, fs.Remove(filepath.Join(dataDir, storage.KeyAutoBackup+".json")))

	data, err := s.BackupJSON()
	require.NoError(t, err)
	restored, err := backup.Parse(data)
	require.NoError(t, err)
	assert.Len(t, restored.Transactions, 1)
	assert.True(t, restored.InitialCashInHand.Equal(dec("50")))
}
