package tui

import (
	"time"

	"git.sr.ht/~jakintosh/cspledger/internal/core"
	"git.sr.ht/~jakintosh/cspledger/internal/session"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/spf13/afero"
	"golang.org/x/text/message"
)

// Constants define UI behavior
const (
	statusDuration       = 5 * time.Second
	statusShortDuration  = 3 * time.Second
	maxSuggestionDisplay = 5
	historyDisplay       = 10
)

// viewState represents the current screen being displayed
type viewState int

const (
	viewSetup viewState = iota
	viewDashboard
	viewTransaction
	viewCustomers
	viewCustomerForm
	viewCustomerHistory
	viewBalances
	viewRestore
	viewConfirm
)

// confirmKind represents the type of confirmation being requested
type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmQuit
	confirmDeleteTransaction
	confirmDeleteCustomer
	confirmRestore
)

// statusKind represents the type of status message being displayed
type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

// field names one input on a form
type field int

const (
	fieldType field = iota
	fieldAmount
	fieldName
	fieldIdentifier
	fieldMobile
	fieldDescription
)

// Options configures NewModel.
type Options struct {
	// Fs and OutputDir are where exports and backups are written and restores read.
	Fs        afero.Fs
	OutputDir string
	Printer   *message.Printer
	Currency  string
	Now       func() time.Time
}

// Model is the main application state container for the TUI
type Model struct {
	session   *session.Session
	fs        afero.Fs
	outputDir string
	amounts   amountFormatter
	now       func() time.Time

	currentView viewState

	// dashboard
	transactions []core.Transaction
	cursor       int
	offset       int
	searchInput  textinput.Model
	searching    bool

	// customers
	customers      []core.Customer
	customerCursor int
	customerSearch textinput.Model
	history        []core.Transaction
	historyOf      core.Customer

	setup         balanceForm
	balances      balanceForm
	form          transactionForm
	customerForm  customerForm
	restoreInput  textinput.Model
	pending       *session.PendingRestore
	pendingTarget string

	pendingConfirm    confirmKind
	confirmReturnView viewState

	windowHeight  int
	statusMessage string
	statusKind    statusKind
	statusExpiry  time.Time
	err           error
}

// transactionForm holds the state for the transaction entry form
type transactionForm struct {
	editingID   string
	typeIndex   int
	amount      textinput.Model
	name        textinput.Model
	identifier  textinput.Model
	mobile      textinput.Model
	description textinput.Model
	focused     field
}

// customerForm holds the state for adding or editing a saved customer
type customerForm struct {
	editingID  string
	name       textinput.Model
	identifier textinput.Model
	mobile     textinput.Model
	focused    field
}

// balanceForm is the two-field bank and cash form used at setup and for corrections
type balanceForm struct {
	bank       textinput.Model
	cash       textinput.Model
	cashActive bool
}

// statusTick is sent periodically to update status message expiry
type statusTick struct{}
