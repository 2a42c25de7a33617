// Package tui implements the terminal user interface for the CSP ledger: first-run
// setup, a dashboard of balances and transactions, the entry form with customer
// suggestions, saved customers, balance correction and backup, restore and export.
package tui

import (
	"fmt"
	"time"

	"git.sr.ht/~jakintosh/cspledger/internal/session"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
)

// NewModel creates a new TUI model over an open ledger session
func NewModel(sess *session.Session, opts Options) *Model {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	m := &Model{
		session:        sess,
		fs:             opts.Fs,
		outputDir:      opts.OutputDir,
		amounts:        newAmountFormatter(opts.Printer, opts.Currency),
		now:            opts.Now,
		searchInput:    newInput("search name, id or note", 40),
		customerSearch: newInput("search name or id", 40),
		restoreInput:   newInput("path to backup .json", 60),
		setup:          newBalanceForm(),
		balances:       newBalanceForm(),
	}
	m.refreshTransactions()
	m.refreshCustomers()

	if sess.Initialized() {
		m.currentView = viewDashboard
	} else {
		m.currentView = viewSetup
		m.setup.bank.Focus()
	}
	return m
}

// Init initializes the model and returns the initial command
func (m *Model) Init() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return statusTick{} })
}

// Update handles incoming messages and updates the model state
func (m *Model) Update(msg tea.Msg) (updated tea.Model, cmd tea.Cmd) {
	defer func() {
		if recovered := recover(); recovered != nil {
			// every change is already on disk, so only the screen state is lost
			m.err = fmt.Errorf("unexpected internal error: %v", recovered)
			updated = m
			cmd = nil
		}
	}()

	if m.err != nil {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "ctrl+q", "ctrl+c":
				return m, tea.Quit
			}
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowHeight = msg.Height
		m.ensureCursorVisible()
		return m, nil
	case statusTick:
		if !m.statusExpiry.IsZero() && m.now().After(m.statusExpiry) {
			m.statusMessage = ""
			m.statusExpiry = time.Time{}
		}
		return m, tea.Tick(time.Second, func(time.Time) tea.Msg { return statusTick{} })
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// View renders the current view based on the model state
func (m *Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress ctrl+q to quit.", m.err)
	}

	switch m.currentView {
	case viewSetup:
		return m.renderSetupView()
	case viewDashboard:
		return m.renderDashboardView()
	case viewTransaction:
		return m.renderTransactionView()
	case viewCustomers:
		return m.renderCustomersView()
	case viewCustomerForm:
		return m.renderCustomerFormView()
	case viewCustomerHistory:
		return m.renderHistoryView()
	case viewBalances:
		return m.renderBalancesView()
	case viewRestore:
		return m.renderRestoreView()
	case viewConfirm:
		return m.renderConfirmView()
	default:
		return "Unknown view"
	}
}
