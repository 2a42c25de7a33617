// Package store holds the in-memory ledger and applies every mutation to it.
//
// Mutations never fail on bad input: an id that matches nothing is a no-op. The only
// error a mutation can return comes from the Persister, and the in-memory change
// stands even then.
package store

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"git.sr.ht/~jakintosh/cspledger/internal/core"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Persister receives the full state after every mutation.
type Persister interface {
	Persist(state core.State) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(state core.State) error

func (f PersisterFunc) Persist(state core.State) error {
	return f(state)
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used to date new transactions.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the source of new entity ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithPersister sets where state goes after each mutation.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Store is the single source of truth for the ledger while the program runs.
type Store struct {
	mu        sync.RWMutex
	state     core.State
	now       func() time.Time
	newID     func() string
	persister Persister
	logger    *slog.Logger
	collator  *collate.Collator
}

// New creates a Store holding a copy of initial.
func New(initial core.State, opts ...Option) *Store {
	s := &Store{
		state:    initial.Clone(),
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   slog.Default(),
		collator: collate.New(language.English),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a deep copy of the current ledger.
func (s *Store) State() core.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// AddTransaction records a new transaction at the head of the list.
func (s *Store) AddTransaction(draft core.TransactionDraft) (core.State, error) {
	return s.mutate("add transaction", func(state *core.State) bool {
		tx := core.Transaction{
			ID:                 s.newID(),
			Date:               s.now(),
			Type:               draft.Type,
			Amount:             draft.Amount,
			CustomerName:       draft.CustomerName,
			CustomerIdentifier: draft.CustomerIdentifier,
			CustomerMobile:     draft.CustomerMobile,
			Description:        draft.Description,
			IsHighlighted:      false,
		}.Clone()
		state.Transactions = append([]core.Transaction{tx}, state.Transactions...)
		return true
	})
}

// UpdateTransaction replaces the transaction with the same id.
func (s *Store) UpdateTransaction(tx core.Transaction) (core.State, error) {
	return s.mutate("update transaction", func(state *core.State) bool {
		i := state.FindTransaction(tx.ID)
		if i < 0 {
			return false
		}
		state.Transactions[i] = tx.Clone()
		return true
	})
}

// DeleteTransaction removes the transaction with the given id.
func (s *Store) DeleteTransaction(id string) (core.State, error) {
	return s.mutate("delete transaction", func(state *core.State) bool {
		i := state.FindTransaction(id)
		if i < 0 {
			return false
		}
		state.Transactions = append(state.Transactions[:i], state.Transactions[i+1:]...)
		return true
	})
}

// ToggleHighlight flips the highlight flag of the transaction with the given id.
func (s *Store) ToggleHighlight(id string) (core.State, error) {
	return s.mutate("toggle highlight", func(state *core.State) bool {
		i := state.FindTransaction(id)
		if i < 0 {
			return false
		}
		state.Transactions[i].IsHighlighted = !state.Transactions[i].IsHighlighted
		return true
	})
}

// AddCustomer saves a new customer and re-sorts the list by name.
func (s *Store) AddCustomer(draft core.CustomerDraft) (core.State, error) {
	return s.mutate("add customer", func(state *core.State) bool {
		c := core.Customer{
			ID:         s.newID(),
			Name:       draft.Name,
			Identifier: draft.Identifier,
			Mobile:     draft.Mobile,
		}.Clone()
		state.Customers = append(state.Customers, c)
		s.sortCustomers(state.Customers)
		return true
	})
}

// UpdateCustomer replaces the customer with the same id and re-sorts.
func (s *Store) UpdateCustomer(c core.Customer) (core.State, error) {
	return s.mutate("update customer", func(state *core.State) bool {
		i := state.FindCustomer(c.ID)
		if i < 0 {
			return false
		}
		state.Customers[i] = c.Clone()
		s.sortCustomers(state.Customers)
		return true
	})
}

// DeleteCustomer removes the customer with the given id. Transactions that name the
// customer are left as they are.
func (s *Store) DeleteCustomer(id string) (core.State, error) {
	return s.mutate("delete customer", func(state *core.State) bool {
		i := state.FindCustomer(id)
		if i < 0 {
			return false
		}
		state.Customers = append(state.Customers[:i], state.Customers[i+1:]...)
		return true
	})
}

// SetInitialBalances overwrites both initial balances.
func (s *Store) SetInitialBalances(bank, cash decimal.Decimal) (core.State, error) {
	return s.mutate("set initial balances", func(state *core.State) bool {
		state.InitialBankBalance = bank
		state.InitialCashInHand = cash
		return true
	})
}

// Replace swaps in a whole new ledger at once.
func (s *Store) Replace(next core.State) (core.State, error) {
	return s.mutate("replace state", func(state *core.State) bool {
		*state = next.Clone()
		return true
	})
}

// mutate applies change under the write lock and persists the result when change
// reports that something happened.
func (s *Store) mutate(op string, change func(state *core.State) bool) (core.State, error) {
	s.mu.Lock()
	changed := change(&s.state)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	if !changed {
		s.logger.Debug("store mutation matched nothing", "op", op)
		return snapshot, nil
	}
	if s.persister == nil {
		return snapshot, nil
	}
	if err := s.persister.Persist(snapshot.Clone()); err != nil {
		s.logger.Error("failed to persist ledger", "op", op, "error", err)
		return snapshot, err
	}
	return snapshot, nil
}

func (s *Store) sortCustomers(customers []core.Customer) {
	sort.SliceStable(customers, func(i, j int) bool {
		return s.collator.CompareString(customers[i].Name, customers[j].Name) < 0
	})
}
