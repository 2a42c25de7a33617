package tui

import (
	"errors"
	"fmt"
	"strings"

	"git.sr.ht/~jakintosh/cspledger/internal/core"
	"git.sr.ht/~jakintosh/cspledger/internal/entry"
	"git.sr.ht/~jakintosh/cspledger/internal/ledger"
	"git.sr.ht/~jakintosh/cspledger/internal/session"
	"git.sr.ht/~jakintosh/cspledger/internal/util"
	"github.com/charmbracelet/bubbles/textinput"
)

func newTransactionForm() transactionForm {
	form := transactionForm{
		amount:      newInput("e.g. 2*500+250", 20),
		name:        newInput("customer name", 30),
		identifier:  newInput("Aadhaar / account no.", 20),
		mobile:      newInput("optional", 15),
		description: newInput("optional", 40),
		focused:     fieldType,
	}
	form.name.ShowSuggestions = true
	return form
}

func newCustomerForm() customerForm {
	form := customerForm{
		name:       newInput("customer name", 30),
		identifier: newInput("Aadhaar / account no.", 20),
		mobile:     newInput("optional", 15),
		focused:    fieldName,
	}
	form.name.Focus()
	return form
}

func newBalanceForm() balanceForm {
	return balanceForm{
		bank: newInput("bank balance", 20),
		cash: newInput("cash in hand", 20),
	}
}

// transactionType is the type currently selected on the form
func (f *transactionForm) transactionType() core.TransactionType {
	return core.TransactionTypes[f.typeIndex]
}

// focusPath lists the form's fields in visual order. Bank-side types have no
// customer fields.
func (f *transactionForm) focusPath() []field {
	if f.transactionType().IsCustomerFacing() {
		return []field{fieldType, fieldAmount, fieldName, fieldIdentifier, fieldMobile, fieldDescription}
	}
	return []field{fieldType, fieldAmount, fieldDescription}
}

// input returns the text input for a field, or nil for the type selector
func (f *transactionForm) input(which field) *textinput.Model {
	switch which {
	case fieldAmount:
		return &f.amount
	case fieldName:
		return &f.name
	case fieldIdentifier:
		return &f.identifier
	case fieldMobile:
		return &f.mobile
	case fieldDescription:
		return &f.description
	}
	return nil
}

func (f *transactionForm) focus(which field) {
	if current := f.input(f.focused); current != nil {
		current.Blur()
	}
	f.focused = which
	if next := f.input(which); next != nil {
		next.Focus()
	}
}

// move shifts focus by step positions along the focus path, wrapping around
func (f *transactionForm) move(step int) {
	path := f.focusPath()
	at := 0
	for i, candidate := range path {
		if candidate == f.focused {
			at = i
			break
		}
	}
	f.focus(path[(at+step+len(path))%len(path)])
}

// cycleType steps through the transaction types
func (f *transactionForm) cycleType(step int) {
	n := len(core.TransactionTypes)
	f.typeIndex = (f.typeIndex + step + n) % n
}

func (f *transactionForm) values() entry.TransactionInput {
	return entry.TransactionInput{
		Type:               f.transactionType(),
		Amount:             f.amount.Value(),
		CustomerName:       f.name.Value(),
		CustomerIdentifier: f.identifier.Value(),
		CustomerMobile:     f.mobile.Value(),
		Description:        f.description.Value(),
	}
}

// startNewTransaction opens an empty entry form
func (m *Model) startNewTransaction() {
	m.form = newTransactionForm()
	m.currentView = viewTransaction
}

// startEditingTransaction loads an existing transaction into the form for editing
func (m *Model) startEditingTransaction(tx core.Transaction) {
	in := entry.InputFor(tx)
	m.form = newTransactionForm()
	m.form.editingID = tx.ID
	for i, t := range core.TransactionTypes {
		if t == in.Type {
			m.form.typeIndex = i
		}
	}
	setValue(&m.form.amount, in.Amount)
	setValue(&m.form.name, in.CustomerName)
	setValue(&m.form.identifier, in.CustomerIdentifier)
	setValue(&m.form.mobile, in.CustomerMobile)
	setValue(&m.form.description, in.Description)
	m.form.focus(fieldAmount)
	m.currentView = viewTransaction
}

func setValue(input *textinput.Model, value string) {
	input.SetValue(value)
	input.CursorEnd()
}

// saveTransaction validates and records the form, staying on it when validation fails
func (m *Model) saveTransaction() {
	in := m.form.values()
	var err error
	if m.form.editingID != "" {
		_, err = m.session.UpdateTransaction(m.form.editingID, in)
	} else {
		_, err = m.session.AddTransaction(in)
	}
	if err != nil && isValidationError(err) {
		m.setStatus(capitalize(err.Error()), statusError, statusDuration)
		return
	}

	m.refreshTransactions()
	m.refreshCustomers()
	m.currentView = viewDashboard
	if err != nil {
		m.setStatus(fmt.Sprintf("Saved, but writing to disk failed: %v", err), statusError, statusDuration)
		return
	}
	if m.form.editingID != "" {
		m.setStatus("Transaction updated", statusSuccess, statusShortDuration)
	} else {
		m.setStatus(fmt.Sprintf("%s of %s recorded", in.Type, m.amountText(in.Amount)), statusSuccess, statusShortDuration)
	}
	m.cursor = 0
	m.ensureCursorVisible()
}

func (m *Model) amountText(expr string) string {
	if d, ok := util.ParseAmount(expr); ok {
		return m.amounts.format(d)
	}
	return expr
}

// refreshNameSuggestions offers saved customer names for the typed prefix
func (m *Model) refreshNameSuggestions() {
	m.form.name.SetSuggestions(m.session.SuggestCustomers(m.form.name.Value(), 0))
}

// tryAcceptSuggestion completes the name field from the current suggestion and
// fills in the customer's details. Returns true if a suggestion was accepted.
func (m *Model) tryAcceptSuggestion() bool {
	if m.form.focused != fieldName || !m.form.name.Focused() {
		return false
	}
	suggestion := m.form.name.CurrentSuggestion()
	if suggestion == "" || suggestion == strings.TrimSpace(m.form.name.Value()) {
		return false
	}
	setValue(&m.form.name, suggestion)
	m.refreshNameSuggestions()
	m.autofillCustomer(true)
	return true
}

// autofillCustomer copies a saved customer's identifier and mobile into the form
// when the name matches exactly. Without overwrite only blank fields are filled.
func (m *Model) autofillCustomer(overwrite bool) {
	c, ok := m.session.LookupCustomer(strings.TrimSpace(m.form.name.Value()))
	if !ok {
		return
	}
	if overwrite || strings.TrimSpace(m.form.identifier.Value()) == "" {
		setValue(&m.form.identifier, c.Identifier)
	}
	if overwrite || strings.TrimSpace(m.form.mobile.Value()) == "" {
		setValue(&m.form.mobile, core.Value(c.Mobile))
	}
}

// autofillName fills a blank name from a saved customer with the typed identifier
func (m *Model) autofillName() {
	if strings.TrimSpace(m.form.name.Value()) != "" {
		return
	}
	c, ok := m.session.LookupIdentifier(m.form.identifier.Value())
	if !ok {
		return
	}
	setValue(&m.form.name, c.Name)
	if strings.TrimSpace(m.form.mobile.Value()) == "" {
		setValue(&m.form.mobile, core.Value(c.Mobile))
	}
}

// leaveField runs the autofill for the field being left
func (m *Model) leaveField() {
	switch m.form.focused {
	case fieldName:
		m.autofillCustomer(false)
	case fieldIdentifier:
		m.autofillName()
	}
}

// customer form

func (f *customerForm) input(which field) *textinput.Model {
	switch which {
	case fieldName:
		return &f.name
	case fieldIdentifier:
		return &f.identifier
	case fieldMobile:
		return &f.mobile
	}
	return nil
}

func (f *customerForm) move(step int) {
	path := []field{fieldName, fieldIdentifier, fieldMobile}
	at := 0
	for i, candidate := range path {
		if candidate == f.focused {
			at = i
		}
	}
	f.input(f.focused).Blur()
	f.focused = path[(at+step+len(path))%len(path)]
	f.input(f.focused).Focus()
}

func (m *Model) startNewCustomer() {
	m.customerForm = newCustomerForm()
	m.currentView = viewCustomerForm
}

func (m *Model) startEditingCustomer(c core.Customer) {
	m.customerForm = newCustomerForm()
	m.customerForm.editingID = c.ID
	setValue(&m.customerForm.name, c.Name)
	setValue(&m.customerForm.identifier, c.Identifier)
	setValue(&m.customerForm.mobile, core.Value(c.Mobile))
	m.currentView = viewCustomerForm
}

func (m *Model) saveCustomer() {
	in := entry.CustomerInput{
		Name:       m.customerForm.name.Value(),
		Identifier: m.customerForm.identifier.Value(),
		Mobile:     m.customerForm.mobile.Value(),
	}
	var err error
	if m.customerForm.editingID != "" {
		_, err = m.session.UpdateCustomer(m.customerForm.editingID, in)
	} else {
		_, err = m.session.AddCustomer(in)
	}
	if err != nil && isValidationError(err) {
		m.setStatus(capitalize(err.Error()), statusError, statusDuration)
		return
	}

	m.refreshCustomers()
	m.refreshTransactions()
	m.currentView = viewCustomers
	if err != nil {
		m.setStatus(fmt.Sprintf("Saved, but writing to disk failed: %v", err), statusError, statusDuration)
		return
	}
	m.setStatus(fmt.Sprintf("Customer %s saved", strings.TrimSpace(in.Name)), statusSuccess, statusShortDuration)
}

// balance forms

func (f *balanceForm) toggle() {
	f.cashActive = !f.cashActive
	if f.cashActive {
		f.bank.Blur()
		f.cash.Focus()
	} else {
		f.cash.Blur()
		f.bank.Focus()
	}
}

func (f *balanceForm) active() *textinput.Model {
	if f.cashActive {
		return &f.cash
	}
	return &f.bank
}

func (m *Model) submitSetup() {
	bank, cash, err := session.ParseInitialBalances(m.setup.bank.Value(), m.setup.cash.Value())
	if err != nil {
		m.setStatus(capitalize(err.Error())+".", statusError, statusDuration)
		return
	}
	if err := m.session.Initialize(bank, cash); err != nil {
		m.setStatus(fmt.Sprintf("Balances set, but writing to disk failed: %v", err), statusError, statusDuration)
	} else {
		m.setStatus("Ledger ready", statusSuccess, statusShortDuration)
	}
	m.setup.bank.Blur()
	m.setup.cash.Blur()
	m.currentView = viewDashboard
}

func (m *Model) startBalanceCorrection() {
	summary := m.session.Summary()
	m.balances = newBalanceForm()
	m.balances.bank.Placeholder = summary.RemainingBalance.StringFixed(2)
	m.balances.cash.Placeholder = summary.CashInHand.StringFixed(2)
	m.balances.bank.Focus()
	m.currentView = viewBalances
}

// submitBalances back-solves the initial balances. Blank or unreadable fields are
// left as they are.
func (m *Model) submitBalances() {
	update := ledger.ParseBalanceUpdate(m.balances.bank.Value(), m.balances.cash.Value())
	m.currentView = viewDashboard
	if update.IsEmpty() {
		m.setStatus("No balance changes", statusInfo, statusShortDuration)
		return
	}
	if err := m.session.UpdateCurrentBalances(update); err != nil {
		m.setStatus(fmt.Sprintf("Balances updated, but writing to disk failed: %v", err), statusError, statusDuration)
		return
	}
	m.setStatus("Balances updated", statusSuccess, statusShortDuration)
}

// isValidationError reports whether err came from checking the form rather than
// from writing the ledger out.
func isValidationError(err error) bool {
	var limitErr *entry.LimitError
	var dupErr *entry.DuplicateIdentifierError
	return errors.Is(err, entry.ErrInvalidAmount) ||
		errors.Is(err, entry.ErrUnknownType) ||
		errors.Is(err, entry.ErrCustomerNameRequired) ||
		errors.Is(err, entry.ErrCustomerIdentifierRequired) ||
		errors.Is(err, session.ErrTransactionNotFound) ||
		errors.Is(err, session.ErrCustomerNotFound) ||
		errors.As(err, &limitErr) ||
		errors.As(err, &dupErr)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
