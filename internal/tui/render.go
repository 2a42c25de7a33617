package tui

import (
	"fmt"
	"strings"

	"git.sr.ht/~jakintosh/cspledger/internal/core"
	"git.sr.ht/~jakintosh/cspledger/internal/session"
	"git.sr.ht/~jakintosh/cspledger/internal/util"
	"github.com/charmbracelet/bubbles/textinput"
)

const listDateFormat = "02 Jan 15:04"

// renderSetupView asks for the opening balances on first run
func (m *Model) renderSetupView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("-- Welcome to CSP Ledger --") + "\n\n")
	b.WriteString("Enter your starting balances. Expressions like 50000+2500 are accepted.\n\n")
	fmt.Fprintf(&b, "%s Bank balance  %s\n", marker(!m.setup.cashActive), m.setup.bank.View())
	fmt.Fprintf(&b, "%s Cash in hand  %s\n\n", marker(m.setup.cashActive), m.setup.cash.View())
	m.writeStatus(&b)
	b.WriteString(strings.Join([]string{"[tab]switch field", "[enter]next / start", "[ctrl+q]quit"}, "\n"))
	return b.String()
}

// renderDashboardView displays balances and the transaction list
func (m *Model) renderDashboardView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("-- CSP Ledger --") + "\n")
	b.WriteString(m.renderSummary() + "\n")
	for _, line := range m.loadSummaryLines() {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	if m.searching || m.searchInput.Value() != "" {
		fmt.Fprintf(&b, "Search: %s\n", m.searchInput.View())
	} else {
		b.WriteString(dimmedColor.Render("[/] search") + "\n")
	}
	fmt.Fprintf(&b, "Transactions (%d)\n", len(m.transactions))

	if len(m.transactions) == 0 {
		if m.searchInput.Value() != "" {
			b.WriteString("No transactions match your search.\n")
		} else {
			b.WriteString("No transactions yet. Press n to record one.\n")
		}
	} else {
		start, end := m.visibleRows()
		if start > 0 {
			b.WriteString(dimmedColor.Render(fmt.Sprintf("  ... %d more above", start)) + "\n")
		}
		for i := start; i < end; i++ {
			b.WriteString(m.transactionRow(m.transactions[i], i == m.cursor) + "\n")
		}
		if end < len(m.transactions) {
			b.WriteString(dimmedColor.Render(fmt.Sprintf("  ... %d more below", len(m.transactions)-end)) + "\n")
		}
	}
	b.WriteString("\n")

	m.writeStatus(&b)
	b.WriteString("[n]ew  [e]dit  [h]ighlight  [d]elete  [c]ustomers  [b]alances  e[x]port  [s]ave backup  [r]estore  [q]uit")
	return b.String()
}

// renderSummary draws the balance box
func (m *Model) renderSummary() string {
	s := m.session.Summary()
	lines := []string{
		fmt.Sprintf("Bank balance      %-18s Cash in hand       %s",
			m.amounts.format(s.RemainingBalance), m.amounts.format(s.CashInHand)),
		fmt.Sprintf("Withdrawals today %-18s Deposits today     %s",
			m.amounts.format(s.WithdrawalToday), m.amounts.format(s.DepositToday)),
		fmt.Sprintf("Debited (total)   %-18s Deposited (total)  %s",
			m.amounts.format(s.TotalDebited), m.amounts.format(s.TotalDeposited)),
	}
	return summaryBox.Render(strings.Join(lines, "\n"))
}

// loadSummaryLines describes what was read from disk at startup
func (m *Model) loadSummaryLines() []string {
	loaded := m.session.LoadSummary()
	line := fmt.Sprintf("Data load: %d transactions • %d customers", loaded.Transactions, loaded.Customers)
	if at, ok := m.session.LastAutoBackup(); ok {
		line += " • backed up " + at.In(m.now().Location()).Format(listDateFormat)
	}
	lines := []string{line}
	if loaded.HasIssues() {
		first := loaded.Issues[0]
		stage := strings.ToUpper(first.Stage)
		if stage == "" {
			stage = "GENERAL"
		}
		if len(loaded.Issues) == 1 {
			lines = append(lines, issuesColor.Render(fmt.Sprintf("Load issue: [%s] %s", stage, first.Message)))
		} else {
			lines = append(lines, issuesColor.Render(fmt.Sprintf("Load issues: %d (first: [%s] %s)", len(loaded.Issues), stage, first.Message)))
		}
		return lines
	}
	return append(lines, "Load issues: none")
}

// transactionRow formats one line of the transaction list
func (m *Model) transactionRow(tx core.Transaction, selected bool) string {
	cursor := " "
	if selected {
		cursor = formatCursor(">")
	}
	star := " "
	if tx.IsHighlighted {
		star = highlightColor.Render("*")
	}
	amount := formatFlow(fmt.Sprintf("%14s", m.amounts.format(tx.Amount)), bankInflow(tx.Type))

	row := fmt.Sprintf("%s%s %s  %-25s %s", cursor, star,
		tx.Date.In(m.now().Location()).Format(listDateFormat), tx.Type, amount)
	if name := core.Value(tx.CustomerName); name != "" {
		row += "  " + truncate(name, 24)
		if id := core.Value(tx.CustomerIdentifier); id != "" {
			row += " (" + id + ")"
		}
	}
	if desc := core.Value(tx.Description); desc != "" {
		row += dimmedColor.Render("  ; " + truncate(desc, 30))
	}
	return row
}

// bankInflow reports whether the type adds to the bank balance
func bankInflow(t core.TransactionType) bool {
	return t == core.TypeCustomerWithdrawal || t == core.TypeCSPDepositToBank
}

// renderTransactionView displays the transaction entry form
func (m *Model) renderTransactionView() string {
	var b strings.Builder
	title := "-- New Transaction --"
	if m.form.editingID != "" {
		title = "-- Edit Transaction --"
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	t := m.form.transactionType()
	fmt.Fprintf(&b, "%s Type         < %s >\n", marker(m.form.focused == fieldType), t)
	fmt.Fprintf(&b, "%s Amount       %s%s\n", marker(m.form.focused == fieldAmount), m.form.amount.View(), m.amountPreview())
	if limit, ok := m.session.Limits().For(t); ok && m.form.editingID == "" {
		b.WriteString(dimmedColor.Render("               limit "+m.amounts.format(limit)) + "\n")
	}
	if t.IsCustomerFacing() {
		fmt.Fprintf(&b, "%s Name         %s", marker(m.form.focused == fieldName), m.form.name.View())
		if m.form.focused == fieldName {
			b.WriteString(renderSuggestionList(m.form.name))
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s Aadhaar/A/c  %s\n", marker(m.form.focused == fieldIdentifier), m.form.identifier.View())
		fmt.Fprintf(&b, "%s Mobile       %s\n", marker(m.form.focused == fieldMobile), m.form.mobile.View())
	}
	fmt.Fprintf(&b, "%s Description  %s\n\n", marker(m.form.focused == fieldDescription), m.form.description.View())

	m.writeStatus(&b)
	commands := []string{"[tab]next", "[shift+tab]prev"}
	if m.form.focused == fieldType {
		commands = append(commands, "[←/→]change type")
	}
	commands = append(commands, "[ctrl+s]save", "[esc]cancel", "[ctrl+q]quit")
	b.WriteString(strings.Join(commands, "\n"))
	return b.String()
}

// amountPreview shows what an amount expression evaluates to
func (m *Model) amountPreview() string {
	text := strings.TrimSpace(m.form.amount.Value())
	if text == "" {
		return ""
	}
	d, ok := util.ParseAmount(text)
	if !ok {
		return dimmedColor.Render("  = ?")
	}
	return dimmedColor.Render("  = " + m.amounts.format(d))
}

// renderCustomersView lists saved customers
func (m *Model) renderCustomersView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("-- Customers (%d) --", len(m.customers))) + "\n")
	if m.customerSearch.Focused() || m.customerSearch.Value() != "" {
		fmt.Fprintf(&b, "Search: %s\n", m.customerSearch.View())
	}
	b.WriteString("\n")
	if len(m.customers) == 0 {
		b.WriteString("No customers found.\n")
	}
	for i, c := range m.customers {
		cursor := " "
		if i == m.customerCursor {
			cursor = formatCursor(">")
		}
		fmt.Fprintf(&b, "%s %-28s %-16s %s\n", cursor, truncate(c.Name, 28), c.Identifier, core.Value(c.Mobile))
	}
	b.WriteString("\n")
	m.writeStatus(&b)
	b.WriteString("[n]ew  [e]dit  [d]elete  [h]istory  [/]search  [esc]back")
	return b.String()
}

func (m *Model) renderCustomerFormView() string {
	var b strings.Builder
	title := "-- New Customer --"
	if m.customerForm.editingID != "" {
		title = "-- Edit Customer --"
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")
	f := &m.customerForm
	fmt.Fprintf(&b, "%s Name         %s\n", marker(f.focused == fieldName), f.name.View())
	fmt.Fprintf(&b, "%s Aadhaar/A/c  %s\n", marker(f.focused == fieldIdentifier), f.identifier.View())
	fmt.Fprintf(&b, "%s Mobile       %s\n\n", marker(f.focused == fieldMobile), f.mobile.View())
	m.writeStatus(&b)
	b.WriteString(strings.Join([]string{"[tab]next", "[ctrl+s]save", "[esc]cancel"}, "\n"))
	return b.String()
}

// renderHistoryView shows the most recent transactions for one customer
func (m *Model) renderHistoryView() string {
	var b strings.Builder
	c := m.historyOf
	b.WriteString(titleStyle.Render(fmt.Sprintf("-- History: %s (%s) --", c.Name, c.Identifier)) + "\n\n")
	if len(m.history) == 0 {
		b.WriteString("No transactions for this customer.\n")
	}
	for i, tx := range m.history {
		if i == historyDisplay {
			fmt.Fprintf(&b, "  ... and %d older\n", len(m.history)-historyDisplay)
			break
		}
		b.WriteString(m.transactionRow(tx, false) + "\n")
	}
	b.WriteString("\n[esc]back")
	return b.String()
}

// renderBalancesView lets the operator enter the balances they actually hold
func (m *Model) renderBalancesView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("-- Correct Balances --") + "\n\n")
	b.WriteString("Enter the current balances. Leave a field blank to keep it.\n")
	b.WriteString("Past transactions are not changed; the opening balances are adjusted.\n\n")
	fmt.Fprintf(&b, "%s Bank balance  %s\n", marker(!m.balances.cashActive), m.balances.bank.View())
	fmt.Fprintf(&b, "%s Cash in hand  %s\n\n", marker(m.balances.cashActive), m.balances.cash.View())
	m.writeStatus(&b)
	b.WriteString(strings.Join([]string{"[tab]switch field", "[ctrl+s]save", "[esc]cancel"}, "\n"))
	return b.String()
}

func (m *Model) renderRestoreView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("-- Restore From Backup --") + "\n\n")
	fmt.Fprintf(&b, "File  %s\n", m.restoreInput.View())
	b.WriteString(dimmedColor.Render("Relative paths are read from "+m.outputDir) + "\n\n")
	m.writeStatus(&b)
	b.WriteString("[enter]load  [esc]cancel")
	return b.String()
}

// renderConfirmView displays the confirmation dialog
func (m *Model) renderConfirmView() string {
	var b strings.Builder
	switch m.pendingConfirm {
	case confirmQuit:
		b.WriteString("Quit CSP Ledger?\n\n")
	case confirmDeleteTransaction:
		b.WriteString("Delete this transaction?\n")
		for _, tx := range m.transactions {
			if tx.ID == m.pendingTarget {
				b.WriteString(m.transactionRow(tx, false) + "\n")
			}
		}
		b.WriteString("\n")
	case confirmDeleteCustomer:
		b.WriteString(session.PromptDeleteCustomer + "\n\n")
	case confirmRestore:
		fmt.Fprintf(&b, "Backup %s holds %d transaction(s) and %d customer(s).\n",
			m.pendingTarget, m.pending.Transactions(), m.pending.Customers())
		b.WriteString(session.PromptRestore + "\n\n")
	}
	b.WriteString("[enter]confirm  [esc]cancel  [ctrl+q]quit immediately")
	return b.String()
}

func (m *Model) writeStatus(b *strings.Builder) {
	if msg := m.statusLine(); msg != "" {
		fmt.Fprintf(b, "%s\n\n", msg)
	}
}

func marker(focused bool) string {
	if focused {
		return formatCursor(">")
	}
	return " "
}

// renderSuggestionList displays autocomplete suggestions below an input field
func renderSuggestionList(input textinput.Model) string {
	matches := input.MatchedSuggestions()
	if len(matches) == 0 || (len(matches) == 1 && matches[0] == input.Value()) {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n")
	display := min(len(matches), maxSuggestionDisplay)
	for i := 0; i < display; i++ {
		cursor := " "
		if i == input.CurrentSuggestionIndex() {
			cursor = ">"
		}
		fmt.Fprintf(&b, "               %s %s\n", cursor, matches[i])
	}
	if len(matches) > display {
		fmt.Fprintf(&b, "               ... and %d more\n", len(matches)-display)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
