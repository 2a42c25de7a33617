package tui

import (
	"time"

	"git.sr.ht/~jakintosh/cspledger/internal/core"
	"github.com/charmbracelet/bubbles/textinput"
)

func newInput(placeholder string, width int) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.Prompt = ""
	input.Width = width
	return input
}

// refreshTransactions reloads the dashboard list for the current search
func (m *Model) refreshTransactions() {
	m.transactions = m.session.Transactions(m.searchInput.Value())
	m.ensureCursorVisible()
}

// refreshCustomers reloads the customer list for the current search
func (m *Model) refreshCustomers() {
	m.customers = m.session.Customers(m.customerSearch.Value())
	if m.customerCursor >= len(m.customers) {
		m.customerCursor = max(len(m.customers)-1, 0)
	}
}

// selectedTransaction returns the transaction under the cursor
func (m *Model) selectedTransaction() (core.Transaction, bool) {
	if m.cursor < 0 || m.cursor >= len(m.transactions) {
		return core.Transaction{}, false
	}
	return m.transactions[m.cursor], true
}

// selectedCustomer returns the customer under the cursor
func (m *Model) selectedCustomer() (core.Customer, bool) {
	if m.customerCursor < 0 || m.customerCursor >= len(m.customers) {
		return core.Customer{}, false
	}
	return m.customers[m.customerCursor], true
}

// openConfirm switches to the confirmation view for the specified action
func (m *Model) openConfirm(kind confirmKind, returnView viewState) {
	m.pendingConfirm = kind
	m.confirmReturnView = returnView
	m.currentView = viewConfirm
}

// closeConfirm returns to the view the confirmation was opened from
func (m *Model) closeConfirm() {
	m.pendingConfirm = confirmNone
	m.currentView = m.confirmReturnView
}

// setStatus sets a temporary status message with the given duration and kind
func (m *Model) setStatus(message string, kind statusKind, duration time.Duration) {
	m.statusMessage = message
	m.statusKind = kind
	m.statusExpiry = m.now().Add(duration)
}

// statusLine returns the current status message if it hasn't expired
func (m *Model) statusLine() string {
	if m.statusMessage == "" {
		return ""
	}
	if !m.statusExpiry.IsZero() && m.now().After(m.statusExpiry) {
		return ""
	}
	return formatStatus(m.statusMessage, m.statusKind)
}

// dashboardHeaderLines is the number of lines drawn above the transaction list
const dashboardHeaderLines = 11

// listRows is how many transactions fit between the dashboard header and footer
func (m *Model) listRows() int {
	if m.windowHeight == 0 {
		return max(len(m.transactions), 1)
	}
	footerSize := 2 // blank line + command hints
	if m.statusLine() != "" {
		footerSize += 2
	}
	// two more for the "more above" and "more below" markers
	return max(m.windowHeight-dashboardHeaderLines-footerSize-2, 1)
}

// ensureCursorVisible adjusts the list offset to keep the cursor visible within the terminal height
func (m *Model) ensureCursorVisible() {
	if len(m.transactions) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	m.cursor = min(max(m.cursor, 0), len(m.transactions)-1)

	rows := m.listRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = min(max(m.offset, 0), max(len(m.transactions)-rows, 0))
}

// visibleRows returns the index range of transactions that fit on screen
func (m *Model) visibleRows() (start, end int) {
	start = m.offset
	end = min(start+m.listRows(), len(m.transactions))
	return start, end
}
