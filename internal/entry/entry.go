// Package entry validates what the operator types into the transaction and customer
// forms before anything reaches the store.
package entry

import (
	"errors"
	"fmt"
	"strings"

	"git.sr.ht/~jakintosh/cspledger/internal/core"
	"git.sr.ht/~jakintosh/cspledger/internal/util"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownType                = errors.New("unknown transaction type")
	ErrInvalidAmount              = errors.New("please enter a valid amount")
	ErrAmountNotPositive          = fmt.Errorf("%w: amount must be a positive number", ErrInvalidAmount)
	ErrCustomerNameRequired       = errors.New("customer name is required")
	ErrCustomerIdentifierRequired = errors.New("aadhaar or account number is required")
)

// LimitError reports an amount above the per-transaction ceiling for its type.
type LimitError struct {
	Type   core.TransactionType
	Amount decimal.Decimal
	Limit  decimal.Decimal
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s amount cannot exceed %s", e.Type, e.Limit.String())
}

// DuplicateIdentifierError reports an identifier that already belongs to another
// customer.
type DuplicateIdentifierError struct {
	Identifier string
	Existing   core.Customer
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("identifier %q is already assigned to %q; each customer must have a unique identifier",
		e.Identifier, e.Existing.Name)
}

// Limits are the per-transaction ceilings for customer-facing types. A zero limit
// disables the check for that type.
type Limits struct {
	Withdrawal decimal.Decimal
	Transfer   decimal.Decimal
	Deposit    decimal.Decimal
}

// DefaultLimits returns the ceilings a CSP operates under by default.
func DefaultLimits() Limits {
	return Limits{
		Withdrawal: decimal.NewFromInt(10000),
		Transfer:   decimal.NewFromInt(10000),
		Deposit:    decimal.NewFromInt(20000),
	}
}

// For returns the ceiling for t, if one applies.
func (l Limits) For(t core.TransactionType) (decimal.Decimal, bool) {
	var limit decimal.Decimal
	switch t {
	case core.TypeCustomerWithdrawal:
		limit = l.Withdrawal
	case core.TypeCustomerTransfer:
		limit = l.Transfer
	case core.TypeCustomerDeposit:
		limit = l.Deposit
	default:
		return decimal.Zero, false
	}
	return limit, limit.IsPositive()
}

// TransactionInput is the raw transaction form.
type TransactionInput struct {
	Type               core.TransactionType
	Amount             string
	CustomerName       string
	CustomerIdentifier string
	CustomerMobile     string
	Description        string
}

// CustomerInput is the raw customer form.
type CustomerInput struct {
	Name       string
	Identifier string
	Mobile     string
}

type customerFields struct {
	Name       string `validate:"required"`
	Identifier string `validate:"required"`
}

// Validator checks form input against the configured limits and the saved
// customers.
type Validator struct {
	limits   Limits
	validate *validator.Validate
}

// New creates a Validator.
func New(limits Limits) *Validator {
	return &Validator{
		limits:   limits,
		validate: validator.New(),
	}
}

// Limits returns the ceilings in force.
func (v *Validator) Limits() Limits {
	return v.limits
}

// Transaction validates a transaction form and returns the draft to store. Customer
// fields are kept only for customer-facing types.
func (v *Validator) Transaction(in TransactionInput, customers []core.Customer) (core.TransactionDraft, error) {
	if !in.Type.Valid() {
		return core.TransactionDraft{}, fmt.Errorf("%w: %q", ErrUnknownType, in.Type)
	}

	amount, err := util.EvaluateExpression(in.Amount)
	if err != nil {
		return core.TransactionDraft{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if !amount.IsPositive() {
		return core.TransactionDraft{}, ErrAmountNotPositive
	}
	if limit, ok := v.limits.For(in.Type); ok && amount.GreaterThan(limit) {
		return core.TransactionDraft{}, &LimitError{Type: in.Type, Amount: amount, Limit: limit}
	}

	draft := core.TransactionDraft{
		Type:        in.Type,
		Amount:      amount,
		Description: core.Optional(in.Description),
	}
	if !in.Type.IsCustomerFacing() {
		return draft, nil
	}

	fields := customerFields{
		Name:       strings.TrimSpace(in.CustomerName),
		Identifier: strings.TrimSpace(in.CustomerIdentifier),
	}
	if err := v.requireCustomerFields(fields); err != nil {
		return core.TransactionDraft{}, err
	}

	for _, c := range customers {
		if normalize(c.Identifier) == strings.ToLower(fields.Identifier) &&
			normalize(c.Name) != strings.ToLower(fields.Name) {
			return core.TransactionDraft{}, &DuplicateIdentifierError{Identifier: fields.Identifier, Existing: c.Clone()}
		}
	}

	draft.CustomerName = core.Optional(fields.Name)
	draft.CustomerIdentifier = core.Optional(fields.Identifier)
	draft.CustomerMobile = core.Optional(in.CustomerMobile)
	return draft, nil
}

// Customer validates the customer form. editingID names the customer being edited
// so its own identifier does not count as a conflict; pass "" when adding.
func (v *Validator) Customer(in CustomerInput, customers []core.Customer, editingID string) (core.CustomerDraft, error) {
	fields := customerFields{
		Name:       strings.TrimSpace(in.Name),
		Identifier: strings.TrimSpace(in.Identifier),
	}
	if err := v.requireCustomerFields(fields); err != nil {
		return core.CustomerDraft{}, err
	}

	for _, c := range customers {
		if c.ID != editingID && normalize(c.Identifier) == strings.ToLower(fields.Identifier) {
			return core.CustomerDraft{}, &DuplicateIdentifierError{Identifier: fields.Identifier, Existing: c.Clone()}
		}
	}

	return core.CustomerDraft{
		Name:       fields.Name,
		Identifier: fields.Identifier,
		Mobile:     core.Optional(in.Mobile),
	}, nil
}

// NewCustomerFor returns the customer to save alongside a customer-facing draft
// when no saved customer has the same name (trimmed, ignoring case).
func NewCustomerFor(draft core.TransactionDraft, customers []core.Customer) (core.CustomerDraft, bool) {
	if !draft.Type.IsCustomerFacing() || draft.CustomerName == nil {
		return core.CustomerDraft{}, false
	}

	name := normalize(*draft.CustomerName)
	for _, c := range customers {
		if normalize(c.Name) == name {
			return core.CustomerDraft{}, false
		}
	}

	return core.CustomerDraft{
		Name:       strings.TrimSpace(*draft.CustomerName),
		Identifier: core.Value(draft.CustomerIdentifier),
		Mobile:     draft.CustomerMobile,
	}, true
}

func (v *Validator) requireCustomerFields(fields customerFields) error {
	err := v.validate.Struct(fields)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		switch fe.Field() {
		case "Name":
			return ErrCustomerNameRequired
		case "Identifier":
			return ErrCustomerIdentifierRequired
		}
	}
	return err
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Edit applies an edited transaction form to tx. Edits are not held to the entry
// limits, but the amount must still evaluate and customer fields are cleared for
// bank-side types.
func (v *Validator) Edit(tx core.Transaction, in TransactionInput) (core.Transaction, error) {
	if !in.Type.Valid() {
		return core.Transaction{}, fmt.Errorf("%w: %q", ErrUnknownType, in.Type)
	}
	amount, err := util.EvaluateExpression(in.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	edited := tx.Clone()
	edited.Type = in.Type
	edited.Amount = amount
	edited.Description = core.Optional(in.Description)
	if in.Type.IsCustomerFacing() {
		edited.CustomerName = core.Optional(in.CustomerName)
		edited.CustomerIdentifier = core.Optional(in.CustomerIdentifier)
		edited.CustomerMobile = core.Optional(in.CustomerMobile)
	} else {
		edited.CustomerName = nil
		edited.CustomerIdentifier = nil
		edited.CustomerMobile = nil
	}
	return edited, nil
}

// InputFor fills a form from an existing transaction.
func InputFor(tx core.Transaction) TransactionInput {
	return TransactionInput{
		Type:               tx.Type,
		Amount:             tx.Amount.String(),
		CustomerName:       core.Value(tx.CustomerName),
		CustomerIdentifier: core.Value(tx.CustomerIdentifier),
		CustomerMobile:     core.Value(tx.CustomerMobile),
		Description:        core.Value(tx.Description),
	}
}
