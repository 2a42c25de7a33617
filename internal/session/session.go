// Package session is the ledger as the user interfaces see it. It ties the store to
// persistence and auto-backup, runs form input through entry validation, and owns
// the two-step restore.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"git.sr.ht/~jakintosh/cspledger/internal/backup"
	"git.sr.ht/~jakintosh/cspledger/internal/core"
	"git.sr.ht/~jakintosh/cspledger/internal/entry"
	"git.sr.ht/~jakintosh/cspledger/internal/export"
	"git.sr.ht/~jakintosh/cspledger/internal/intelligence"
	"git.sr.ht/~jakintosh/cspledger/internal/ledger"
	"git.sr.ht/~jakintosh/cspledger/internal/storage"
	"git.sr.ht/~jakintosh/cspledger/internal/store"
	"git.sr.ht/~jakintosh/cspledger/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
)

var (
	ErrNotInitialized      = errors.New("ledger has not been set up yet")
	ErrInvalidBalance      = errors.New("please enter valid numbers for both balances")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCustomerNotFound    = errors.New("customer not found")
)

// ConfirmFunc asks the operator to approve a destructive action.
type ConfirmFunc func(prompt string) bool

const (
	PromptRestore        = "Are you sure you want to restore from this backup? This will overwrite all your current data."
	PromptDeleteCustomer = "Are you sure you want to delete this customer? This will not delete their past transactions."
)

// Options configures Open.
type Options struct {
	Fs      afero.Fs
	DataDir string
	Logger  *slog.Logger
	Limits  entry.Limits
	Now     func() time.Time
	NewID   func() string
}

// Session is an open ledger.
type Session struct {
	repo      *storage.Repository
	store     *store.Store
	validator *entry.Validator
	logger    *slog.Logger
	now       func() time.Time

	mu          sync.RWMutex
	index       *intelligence.Index
	loaded      core.LoadSummary
	initialized bool
}

// Open loads the ledger from the data directory.
func Open(opts Options) (*Session, error) {
	if opts.DataDir == "" {
		return nil, errors.New("data directory is required")
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	if err := opts.Fs.MkdirAll(opts.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := storage.New(opts.Fs, opts.DataDir, opts.Logger)
	state, loaded := repo.Load()

	s := &Session{
		repo:        repo,
		validator:   entry.New(opts.Limits),
		logger:      opts.Logger,
		now:         opts.Now,
		index:       intelligence.NewIndex(state.Customers),
		loaded:      loaded,
		initialized: loaded.Initialized,
	}
	s.store = store.New(state,
		store.WithClock(opts.Now),
		store.WithIDGenerator(opts.NewID),
		store.WithPersister(store.PersisterFunc(s.persist)),
		store.WithLogger(opts.Logger),
	)

	s.logger.Info("ledger opened",
		"dir", opts.DataDir,
		"transactions", loaded.Transactions,
		"customers", loaded.Customers,
		"initialized", loaded.Initialized,
		"issues", len(loaded.Issues),
	)

	// a partial load must not overwrite the last good backup
	if loaded.Initialized && !loaded.HasIssues() {
		if err := s.writeAutoBackup(state); err != nil {
			s.logger.Warn("automatic backup not refreshed", "error", err)
		}
	}
	return s, nil
}

// persist writes every key, then the automatic backup.
func (s *Session) persist(state core.State) error {
	s.mu.Lock()
	s.index.Rebuild(state.Customers)
	s.mu.Unlock()

	if err := s.repo.Save(state); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return s.writeAutoBackup(state)
}

func (s *Session) writeAutoBackup(state core.State) error {
	at := s.now()
	data, err := backup.EncodeAuto(state, at)
	if err != nil {
		return err
	}
	if err := s.repo.WriteAutoBackup(data, at); err != nil {
		return fmt.Errorf("failed to write automatic backup: %w", err)
	}
	return nil
}

// LoadSummary reports what was found in the data directory at Open.
func (s *Session) LoadSummary() core.LoadSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Limits returns the per-transaction ceilings in force.
func (s *Session) Limits() entry.Limits {
	return s.validator.Limits()
}

// Initialized reports whether the initial balances have been captured.
func (s *Session) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Initialize records the starting bank balance and cash on hand.
func (s *Session) Initialize(bank, cash decimal.Decimal) error {
	_, err := s.store.SetInitialBalances(bank, cash)

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.logger.Info("ledger initialized", "bank", bank.String(), "cash", cash.String())
	return nil
}

// ParseInitialBalances reads the setup form. Both fields must evaluate.
func ParseInitialBalances(bankText, cashText string) (bank, cash decimal.Decimal, err error) {
	bank, bankOK := util.ParseAmount(bankText)
	cash, cashOK := util.ParseAmount(cashText)
	if !bankOK || !cashOK {
		return decimal.Zero, decimal.Zero, ErrInvalidBalance
	}
	return bank, cash, nil
}

// State returns a copy of the whole ledger.
func (s *Session) State() core.State {
	return s.store.State()
}

// Summary computes the current balances and aggregates.
func (s *Session) Summary() core.LedgerSummary {
	return ledger.SummarizeState(s.store.State(), s.now())
}

// Transactions lists transactions matching query, highlighted first.
func (s *Session) Transactions(query string) []core.Transaction {
	return intelligence.SearchTransactions(s.store.State().Transactions, query)
}

// Transaction returns the transaction with the given id.
func (s *Session) Transaction(id string) (core.Transaction, error) {
	state := s.store.State()
	i := state.FindTransaction(id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	return state.Transactions[i], nil
}

// Customers lists saved customers matching query.
func (s *Session) Customers(query string) []core.Customer {
	return intelligence.SearchCustomers(s.store.State().Customers, query)
}

// Customer returns the customer with the given id.
func (s *Session) Customer(id string) (core.Customer, error) {
	state := s.store.State()
	i := state.FindCustomer(id)
	if i < 0 {
		return core.Customer{}, fmt.Errorf("%w: %s", ErrCustomerNotFound, id)
	}
	return state.Customers[i], nil
}

// CustomerHistory lists the transactions recorded under the customer's identifier,
// newest first.
func (s *Session) CustomerHistory(customerID string) ([]core.Transaction, error) {
	state := s.store.State()
	i := state.FindCustomer(customerID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrCustomerNotFound, customerID)
	}
	return intelligence.CustomerHistory(state.Transactions, state.Customers[i].Identifier), nil
}

// SuggestCustomers completes a customer name for the entry form.
func (s *Session) SuggestCustomers(prefix string, limit int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Suggest(prefix, limit)
}

// LookupCustomer returns the saved customer with exactly this name, for autofill.
func (s *Session) LookupCustomer(name string) (core.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.LookupByName(name)
}

// LookupIdentifier returns the saved customer with this Aadhaar or account number.
func (s *Session) LookupIdentifier(identifier string) (core.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.LookupByIdentifier(identifier)
}

// AddTransaction validates the form and records the transaction. A customer-facing
// transaction for a name that is not saved yet also saves the customer.
func (s *Session) AddTransaction(in entry.TransactionInput) (core.Transaction, error) {
	state := s.store.State()
	draft, err := s.validator.Transaction(in, state.Customers)
	if err != nil {
		return core.Transaction{}, err
	}

	if c, ok := entry.NewCustomerFor(draft, state.Customers); ok {
		if _, err := s.store.AddCustomer(c); err != nil {
			return core.Transaction{}, err
		}
		s.logger.Info("customer saved from transaction", "name", c.Name)
	}

	state, err = s.store.AddTransaction(draft)
	if len(state.Transactions) == 0 {
		return core.Transaction{}, err
	}
	tx := state.Transactions[0]
	s.logger.Info("transaction added", "id", tx.ID, "type", tx.Type, "amount", tx.Amount.String())
	return tx, err
}

// UpdateTransaction applies an edited form to an existing transaction.
func (s *Session) UpdateTransaction(id string, in entry.TransactionInput) (core.Transaction, error) {
	current, err := s.Transaction(id)
	if err != nil {
		return core.Transaction{}, err
	}
	edited, err := s.validator.Edit(current, in)
	if err != nil {
		return core.Transaction{}, err
	}
	if _, err := s.store.UpdateTransaction(edited); err != nil {
		return edited, err
	}
	s.logger.Info("transaction updated", "id", id)
	return edited, nil
}

// DeleteTransaction removes a transaction. Unknown ids are ignored.
func (s *Session) DeleteTransaction(id string) error {
	_, err := s.store.DeleteTransaction(id)
	if err == nil {
		s.logger.Info("transaction deleted", "id", id)
	}
	return err
}

// ToggleHighlight flips a transaction's highlight. Unknown ids are ignored.
func (s *Session) ToggleHighlight(id string) error {
	_, err := s.store.ToggleHighlight(id)
	return err
}

// AddCustomer validates and saves a new customer.
func (s *Session) AddCustomer(in entry.CustomerInput) (core.Customer, error) {
	before := s.store.State()
	draft, err := s.validator.Customer(in, before.Customers, "")
	if err != nil {
		return core.Customer{}, err
	}

	after, err := s.store.AddCustomer(draft)
	for _, c := range after.Customers {
		if before.FindCustomer(c.ID) < 0 {
			s.logger.Info("customer added", "id", c.ID)
			return c, err
		}
	}
	return core.Customer{}, err
}

// UpdateCustomer validates and saves changes to an existing customer.
func (s *Session) UpdateCustomer(id string, in entry.CustomerInput) (core.Customer, error) {
	state := s.store.State()
	if state.FindCustomer(id) < 0 {
		return core.Customer{}, fmt.Errorf("%w: %s", ErrCustomerNotFound, id)
	}
	draft, err := s.validator.Customer(in, state.Customers, id)
	if err != nil {
		return core.Customer{}, err
	}

	updated := core.Customer{ID: id, Name: draft.Name, Identifier: draft.Identifier, Mobile: draft.Mobile}
	if _, err := s.store.UpdateCustomer(updated); err != nil {
		return updated, err
	}
	s.logger.Info("customer updated", "id", id)
	return updated, nil
}

// DeleteCustomer removes a customer once confirm approves. It reports whether the
// customer was deleted. Their transactions are kept.
func (s *Session) DeleteCustomer(id string, confirm ConfirmFunc) (bool, error) {
	if confirm == nil || !confirm(PromptDeleteCustomer) {
		return false, nil
	}
	before := s.store.State()
	if before.FindCustomer(id) < 0 {
		return false, nil
	}
	if _, err := s.store.DeleteCustomer(id); err != nil {
		return true, err
	}
	s.logger.Info("customer deleted", "id", id)
	return true, nil
}

// UpdateCurrentBalances back-solves the initial balances so the current balances
// match what the operator counted. Transactions are untouched.
func (s *Session) UpdateCurrentBalances(update ledger.BalanceUpdate) error {
	if update.IsEmpty() {
		return nil
	}
	state := s.store.State()
	bank, cash := ledger.Reconcile(state.Transactions, state.InitialBankBalance, state.InitialCashInHand, update)
	if _, err := s.store.SetInitialBalances(bank, cash); err != nil {
		return err
	}
	s.logger.Info("balances reconciled", "initial_bank", bank.String(), "initial_cash", cash.String())
	return nil
}

// ExportCSV writes the CSV report.
func (s *Session) ExportCSV(w io.Writer) error {
	state := s.store.State()
	now := s.now()
	return export.WriteCSV(w, state, ledger.SummarizeState(state, now), now)
}

// BackupJSON returns the file offered for download. Once the ledger is set up it is
// the live state in automatic-backup form; before that it is whatever automatic
// backup is on disk, or storage.ErrNoBackup.
func (s *Session) BackupJSON() ([]byte, error) {
	if !s.Initialized() {
		return s.repo.ReadAutoBackup()
	}
	return backup.EncodeAuto(s.store.State(), s.now())
}

// LastAutoBackup returns when the automatic backup was last written.
func (s *Session) LastAutoBackup() (time.Time, bool) {
	return s.repo.LastAutoBackup()
}

// DataDir returns where the ledger is kept.
func (s *Session) DataDir() string {
	return s.repo.Dir()
}
