// Package storage keeps the ledger in a data directory, one JSON document per key.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.sr.ht/~jakintosh/cspledger/internal/core"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
)

const (
	KeyTransactions       = "csp-ledger-transactions"
	KeyCustomers          = "csp-ledger-customers"
	KeyInitialBankBalance = "csp-ledger-initial-bank-balance"
	KeyInitialCashInHand  = "csp-ledger-initial-cash-in-hand"
	KeyLastAutoBackupInfo = "csp-ledger-last-autobackup-info"
	KeyAutoBackup         = "csp-ledger-autobackup"
)

var ErrNoBackup = errors.New("no backup data found")

// autoBackupInfo is the document stored under KeyLastAutoBackupInfo.
type autoBackupInfo struct {
	Timestamp *time.Time `json:"timestamp"`
}

// Repository reads and writes ledger keys under a directory.
type Repository struct {
	fs     afero.Fs
	dir    string
	logger *slog.Logger
}

// New creates a Repository rooted at dir on fs.
func New(fs afero.Fs, dir string, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{fs: fs, dir: dir, logger: logger}
}

// Dir returns the data directory.
func (r *Repository) Dir() string {
	return r.dir
}

// Load reads the whole ledger. Missing keys yield defaults; keys that fail to parse
// also yield defaults and are reported in the summary.
func (r *Repository) Load() (core.State, core.LoadSummary) {
	var summary core.LoadSummary

	transactions, _ := load(r, KeyTransactions, []core.Transaction{}, &summary)
	customers, _ := load(r, KeyCustomers, []core.Customer{}, &summary)
	bank, hasBank := load(r, KeyInitialBankBalance, decimal.Zero, &summary)
	cash, hasCash := load(r, KeyInitialCashInHand, decimal.Zero, &summary)

	if transactions == nil {
		transactions = []core.Transaction{}
	}
	if customers == nil {
		customers = []core.Customer{}
	}
	transactions = dropOutOfRange(transactions, &summary)
	bank = balanceInRange(KeyInitialBankBalance, bank, &summary)
	cash = balanceInRange(KeyInitialCashInHand, cash, &summary)

	state := core.State{
		Transactions:       transactions,
		Customers:          customers,
		InitialBankBalance: bank,
		InitialCashInHand:  cash,
	}

	summary.Transactions = len(transactions)
	summary.Customers = len(customers)
	summary.Initialized = hasBank && hasCash

	for _, issue := range summary.Issues {
		r.logger.Warn("ignoring unreadable ledger key", "key", issue.Stage, "error", issue.Message)
	}
	r.logger.Debug("ledger loaded",
		"dir", r.dir,
		"transactions", summary.Transactions,
		"customers", summary.Customers,
		"initialized", summary.Initialized,
	)

	return state, summary
}

// Initialized reports whether both initial balances have been stored.
func (r *Repository) Initialized() bool {
	return r.exists(KeyInitialBankBalance) && r.exists(KeyInitialCashInHand)
}

// Save writes every ledger key from state.
func (r *Repository) Save(state core.State) error {
	transactions := state.Transactions
	if transactions == nil {
		transactions = []core.Transaction{}
	}
	customers := state.Customers
	if customers == nil {
		customers = []core.Customer{}
	}

	writes := []struct {
		key   string
		value any
	}{
		{KeyTransactions, transactions},
		{KeyCustomers, customers},
		{KeyInitialBankBalance, state.InitialBankBalance},
		{KeyInitialCashInHand, state.InitialCashInHand},
	}

	var errs []error
	for _, w := range writes {
		if err := r.writeJSON(w.key, w.value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteAutoBackup stores an encoded backup and records when it was taken.
func (r *Repository) WriteAutoBackup(data []byte, at time.Time) error {
	if err := r.writeRaw(KeyAutoBackup, data); err != nil {
		return err
	}
	ts := at.UTC()
	return r.writeJSON(KeyLastAutoBackupInfo, autoBackupInfo{Timestamp: &ts})
}

// ReadAutoBackup returns the last encoded backup, or ErrNoBackup.
func (r *Repository) ReadAutoBackup() ([]byte, error) {
	data, err := afero.ReadFile(r.fs, r.path(KeyAutoBackup))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoBackup
		}
		return nil, fmt.Errorf("failed to read %s: %w", KeyAutoBackup, err)
	}
	if len(data) == 0 {
		return nil, ErrNoBackup
	}
	return data, nil
}

// LastAutoBackup returns when the last automatic backup was written.
func (r *Repository) LastAutoBackup() (time.Time, bool) {
	var summary core.LoadSummary
	info, _ := load(r, KeyLastAutoBackupInfo, autoBackupInfo{}, &summary)
	if info.Timestamp == nil {
		return time.Time{}, false
	}
	return *info.Timestamp, true
}

func load[T any](r *Repository, key string, fallback T, summary *core.LoadSummary) (T, bool) {
	data, err := afero.ReadFile(r.fs, r.path(key))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			summary.Issues = append(summary.Issues, core.LoadIssue{Stage: key, Message: err.Error()})
		}
		return fallback, false
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		summary.Issues = append(summary.Issues, core.LoadIssue{Stage: key, Message: err.Error()})
		return fallback, true
	}
	return value, true
}

// dropOutOfRange removes transactions whose amount fails core.AmountInRange.
func dropOutOfRange(transactions []core.Transaction, summary *core.LoadSummary) []core.Transaction {
	kept := transactions[:0]
	for _, tx := range transactions {
		if !core.AmountInRange(tx.Amount) {
			summary.Issues = append(summary.Issues, core.LoadIssue{
				Stage:   KeyTransactions,
				Message: fmt.Sprintf("transaction %s skipped: amount out of range", tx.ID),
			})
			continue
		}
		kept = append(kept, tx)
	}
	return kept
}

func balanceInRange(key string, d decimal.Decimal, summary *core.LoadSummary) decimal.Decimal {
	if core.AmountInRange(d) {
		return d
	}
	summary.Issues = append(summary.Issues, core.LoadIssue{Stage: key, Message: "balance out of range"})
	return decimal.Zero
}

func (r *Repository) exists(key string) bool {
	ok, err := afero.Exists(r.fs, r.path(key))
	return err == nil && ok
}

func (r *Repository) path(key string) string {
	return filepath.Join(r.dir, key+".json")
}

func (r *Repository) writeJSON(key string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return r.writeRaw(key, data)
}

// writeRaw replaces the key's file through a temp file and a rename.
func (r *Repository) writeRaw(key string, data []byte) error {
	if err := r.fs.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := afero.TempFile(r.fs, r.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		r.fs.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		r.fs.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := r.fs.Rename(tmpName, r.path(key)); err != nil {
		r.fs.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
