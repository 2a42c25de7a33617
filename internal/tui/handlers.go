package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// handleKey routes keyboard input to the appropriate handler based on the current view
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.currentView {
	case viewSetup:
		return m, m.updateSetupView(msg)
	case viewDashboard:
		return m, m.updateDashboardView(msg)
	case viewTransaction:
		return m, m.updateTransactionView(msg)
	case viewCustomers:
		return m, m.updateCustomersView(msg)
	case viewCustomerForm:
		return m, m.updateCustomerFormView(msg)
	case viewCustomerHistory:
		return m, m.updateHistoryView(msg)
	case viewBalances:
		return m, m.updateBalancesView(msg)
	case viewRestore:
		return m, m.updateRestoreView(msg)
	case viewConfirm:
		return m, m.updateConfirmView(msg)
	default:
		return m, nil
	}
}

// updateSetupView handles the first-run balance form
func (m *Model) updateSetupView(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+q", "ctrl+c":
		return tea.Quit
	case "tab", "shift+tab":
		m.setup.toggle()
		return nil
	case "enter":
		if !m.setup.cashActive {
			m.setup.toggle()
			return nil
		}
		m.submitSetup()
		return nil
	case "ctrl+s":
		m.submitSetup()
		return nil
	}
	var cmd tea.Cmd
	input := m.setup.active()
	*input, cmd = input.Update(msg)
	return cmd
}

// updateDashboardView handles keyboard input on the main screen
func (m *Model) updateDashboardView(msg tea.KeyMsg) tea.Cmd {
	if m.searching {
		return m.updateSearch(msg)
	}

	switch msg.String() {
	case "ctrl+q", "ctrl+c":
		return tea.Quit
	case "q":
		m.openConfirm(confirmQuit, viewDashboard)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		m.ensureCursorVisible()
	case "down", "j":
		if m.cursor < len(m.transactions)-1 {
			m.cursor++
		}
		m.ensureCursorVisible()
	case "n":
		m.startNewTransaction()
	case "e", "enter":
		if tx, ok := m.selectedTransaction(); ok {
			m.startEditingTransaction(tx)
		}
	case "h":
		if tx, ok := m.selectedTransaction(); ok {
			if err := m.session.ToggleHighlight(tx.ID); err != nil {
				m.setStatus(fmt.Sprintf("Failed to save: %v", err), statusError, statusDuration)
			}
			m.refreshTransactions()
		}
	case "d":
		if tx, ok := m.selectedTransaction(); ok {
			m.pendingTarget = tx.ID
			m.openConfirm(confirmDeleteTransaction, viewDashboard)
		}
	case "/":
		m.searching = true
		m.searchInput.Focus()
	case "c":
		m.refreshCustomers()
		m.currentView = viewCustomers
	case "b":
		m.startBalanceCorrection()
	case "x":
		m.exportReport()
	case "s":
		m.downloadBackup()
	case "r":
		m.startRestore()
	}
	return nil
}

// updateSearch edits the dashboard search; the list filters as you type
func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+q", "ctrl+c":
		return tea.Quit
	case "esc":
		m.searchInput.SetValue("")
		fallthrough
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		m.refreshTransactions()
		return nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.cursor = 0
	m.offset = 0
	m.refreshTransactions()
	return cmd
}

// updateTransactionView handles keyboard input in the transaction entry view
func (m *Model) updateTransactionView(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+q":
		return tea.Quit
	case "ctrl+s":
		m.leaveField()
		m.saveTransaction()
		return nil
	case "esc":
		m.currentView = viewDashboard
		return nil
	case "shift+tab":
		m.leaveField()
		m.form.move(-1)
		return nil
	case "tab", "enter":
		if !m.tryAcceptSuggestion() {
			m.leaveField()
			m.form.move(1)
		}
		return nil
	}

	if m.form.focused == fieldType {
		switch msg.String() {
		case "left", "h", "up", "k":
			m.form.cycleType(-1)
		case "right", "l", "down", "j", " ":
			m.form.cycleType(1)
		}
		return nil
	}

	input := m.form.input(m.form.focused)
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	if m.form.focused == fieldName {
		m.refreshNameSuggestions()
	}
	return cmd
}

// updateCustomersView handles the saved customer list
func (m *Model) updateCustomersView(msg tea.KeyMsg) tea.Cmd {
	if m.customerSearch.Focused() {
		switch msg.String() {
		case "ctrl+q", "ctrl+c":
			return tea.Quit
		case "esc":
			m.customerSearch.SetValue("")
			fallthrough
		case "enter":
			m.customerSearch.Blur()
			m.refreshCustomers()
			return nil
		}
		var cmd tea.Cmd
		m.customerSearch, cmd = m.customerSearch.Update(msg)
		m.customerCursor = 0
		m.refreshCustomers()
		return cmd
	}

	switch msg.String() {
	case "ctrl+q", "ctrl+c":
		return tea.Quit
	case "esc", "q":
		m.currentView = viewDashboard
	case "up", "k":
		if m.customerCursor > 0 {
			m.customerCursor--
		}
	case "down", "j":
		if m.customerCursor < len(m.customers)-1 {
			m.customerCursor++
		}
	case "/":
		m.customerSearch.Focus()
	case "n":
		m.startNewCustomer()
	case "e", "enter":
		if c, ok := m.selectedCustomer(); ok {
			m.startEditingCustomer(c)
		}
	case "d":
		if c, ok := m.selectedCustomer(); ok {
			m.pendingTarget = c.ID
			m.openConfirm(confirmDeleteCustomer, viewCustomers)
		}
	case "h":
		if c, ok := m.selectedCustomer(); ok {
			history, err := m.session.CustomerHistory(c.ID)
			if err != nil {
				m.setStatus(capitalize(err.Error()), statusError, statusShortDuration)
				return nil
			}
			m.history = history
			m.historyOf = c
			m.currentView = viewCustomerHistory
		}
	}
	return nil
}

// updateCustomerFormView handles adding or editing a customer
func (m *Model) updateCustomerFormView(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+q":
		return tea.Quit
	case "ctrl+s":
		m.saveCustomer()
		return nil
	case "esc":
		m.currentView = viewCustomers
		return nil
	case "shift+tab":
		m.customerForm.move(-1)
		return nil
	case "tab", "enter":
		m.customerForm.move(1)
		return nil
	}
	input := m.customerForm.input(m.customerForm.focused)
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	return cmd
}

func (m *Model) updateHistoryView(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+q", "ctrl+c":
		return tea.Quit
	case "esc", "q", "enter":
		m.currentView = viewCustomers
	}
	return nil
}

// updateBalancesView handles the balance correction form
func (m *Model) updateBalancesView(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+q":
		return tea.Quit
	case "esc":
		m.currentView = viewDashboard
		return nil
	case "tab", "shift+tab":
		m.balances.toggle()
		return nil
	case "ctrl+s":
		m.submitBalances()
		return nil
	case "enter":
		if !m.balances.cashActive {
			m.balances.toggle()
			return nil
		}
		m.submitBalances()
		return nil
	}
	var cmd tea.Cmd
	input := m.balances.active()
	*input, cmd = input.Update(msg)
	return cmd
}

func (m *Model) updateRestoreView(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+q":
		return tea.Quit
	case "esc":
		m.restoreInput.Blur()
		m.currentView = viewDashboard
		return nil
	case "enter":
		m.loadRestore()
		return nil
	}
	var cmd tea.Cmd
	m.restoreInput, cmd = m.restoreInput.Update(msg)
	return cmd
}

// updateConfirmView handles keyboard input in the confirmation view
func (m *Model) updateConfirmView(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+q":
		return tea.Quit
	case "enter", "y":
		return m.confirm()
	case "esc", "n":
		if m.pendingConfirm == confirmRestore {
			m.finishRestore(false)
		}
		m.closeConfirm()
	}
	return nil
}

// confirm carries out the pending action
func (m *Model) confirm() tea.Cmd {
	kind, target := m.pendingConfirm, m.pendingTarget
	m.closeConfirm()
	m.pendingTarget = ""

	switch kind {
	case confirmQuit:
		return tea.Quit
	case confirmDeleteTransaction:
		if err := m.session.DeleteTransaction(target); err != nil {
			m.setStatus(fmt.Sprintf("Deleted, but writing to disk failed: %v", err), statusError, statusDuration)
		} else {
			m.setStatus("Transaction deleted", statusSuccess, statusShortDuration)
		}
		m.refreshTransactions()
	case confirmDeleteCustomer:
		approved := func(string) bool { return true }
		deleted, err := m.session.DeleteCustomer(target, approved)
		switch {
		case err != nil:
			m.setStatus(fmt.Sprintf("Deleted, but writing to disk failed: %v", err), statusError, statusDuration)
		case !deleted:
			m.setStatus("Customer not found; nothing was deleted", statusInfo, statusDuration)
		default:
			m.setStatus("Customer deleted", statusSuccess, statusShortDuration)
		}
		m.refreshCustomers()
	case confirmRestore:
		m.finishRestore(true)
	}
	return nil
}
