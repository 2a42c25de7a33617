package session

import (
	"fmt"

	"git.sr.ht/~jakintosh/cspledger/internal/backup"
	"git.sr.ht/~jakintosh/cspledger/internal/core"
)

// PendingRestore is a validated backup waiting for the operator's decision.
type PendingRestore struct {
	session *Session
	state   core.State
	done    bool
}

// Transactions is the number of transactions in the backup.
func (p *PendingRestore) Transactions() int {
	return len(p.state.Transactions)
}

// Customers is the number of customers in the backup.
func (p *PendingRestore) Customers() int {
	return len(p.state.Customers)
}

// Apply replaces the live ledger with the backup.
func (p *PendingRestore) Apply() (result backup.Result) {
	if p.done {
		return backup.Failed(fmt.Errorf("restore already finished"))
	}
	p.done = true

	defer func() {
		if r := recover(); r != nil {
			p.session.logger.Error("restore panicked", "panic", r)
			result = backup.Failed(fmt.Errorf("%v", r))
		}
	}()

	if _, err := p.session.store.Replace(p.state); err != nil {
		// The swap itself succeeded; only writing it out failed.
		p.session.logger.Error("restored ledger could not be saved", "error", err)
	}

	p.session.mu.Lock()
	p.session.initialized = true
	p.session.mu.Unlock()

	p.session.logger.Info("ledger restored",
		"transactions", len(p.state.Transactions),
		"customers", len(p.state.Customers),
	)
	return backup.Restored()
}

// Cancel drops the backup and leaves the ledger as it was.
func (p *PendingRestore) Cancel() backup.Result {
	p.done = true
	p.session.logger.Info("restore cancelled")
	return backup.Cancelled()
}

// PrepareRestore validates backup text. On failure the returned PendingRestore is
// nil and the result carries the reason.
func (s *Session) PrepareRestore(text []byte) (pending *PendingRestore, result backup.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("restore validation panicked", "panic", r)
			pending, result = nil, backup.Failed(fmt.Errorf("%v", r))
		}
	}()

	state, err := backup.Parse(text)
	if err != nil {
		s.logger.Warn("rejected backup", "error", err)
		return nil, backup.Failed(err)
	}
	return &PendingRestore{session: s, state: state}, backup.Result{Success: true}
}

// Restore validates text, asks confirm, and applies the backup if approved.
func (s *Session) Restore(text []byte, confirm ConfirmFunc) backup.Result {
	pending, result := s.PrepareRestore(text)
	if pending == nil {
		return result
	}
	if confirm == nil || !confirm(PromptRestore) {
		return pending.Cancel()
	}
	return pending.Apply()
}
