package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Backups written by earlier versions store amounts and balances as bare JSON
	// numbers; keep that shape on the way out as well.
	decimal.MarshalJSONWithoutQuotes = true
}

// TransactionType identifies how a transaction moves money between the CSP's bank
// account and its cash drawer. The string values are the persisted values.
type TransactionType string

const (
	TypeCustomerDeposit       TransactionType = "Deposit"
	TypeCustomerWithdrawal    TransactionType = "Withdrawal"
	TypeCustomerTransfer      TransactionType = "Money Transfer"
	TypeCSPDepositToBank      TransactionType = "Cash Deposit to Bank"
	TypeCSPWithdrawalFromBank TransactionType = "Cash Withdrawal from Bank"
)

// TransactionTypes lists every type in entry-form order.
var TransactionTypes = []TransactionType{
	TypeCustomerDeposit,
	TypeCustomerWithdrawal,
	TypeCustomerTransfer,
	TypeCSPDepositToBank,
	TypeCSPWithdrawalFromBank,
}

var typeAliases = map[string]TransactionType{
	"deposit":         TypeCustomerDeposit,
	"withdrawal":      TypeCustomerWithdrawal,
	"transfer":        TypeCustomerTransfer,
	"money-transfer":  TypeCustomerTransfer,
	"bank-deposit":    TypeCSPDepositToBank,
	"bank-withdrawal": TypeCSPWithdrawalFromBank,
}

// ParseTransactionType accepts either a persisted value ("Money Transfer") or a
// command-line alias ("transfer"). Matching is case-insensitive.
func ParseTransactionType(s string) (TransactionType, error) {
	trimmed := strings.TrimSpace(s)
	for _, t := range TransactionTypes {
		if strings.EqualFold(trimmed, string(t)) {
			return t, nil
		}
	}
	if t, ok := typeAliases[strings.ToLower(trimmed)]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	for _, known := range TransactionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsCustomerFacing reports whether the type is performed on behalf of a customer
// and therefore carries customer details.
func (t TransactionType) IsCustomerFacing() bool {
	switch t {
	case TypeCustomerDeposit, TypeCustomerWithdrawal, TypeCustomerTransfer:
		return true
	}
	return false
}

// Transaction is a single recorded movement of money.
type Transaction struct {
	ID                 string          `json:"id"`
	Date               time.Time       `json:"date"`
	Type               TransactionType `json:"type"`
	Amount             decimal.Decimal `json:"amount"`
	CustomerName       *string         `json:"customerName,omitempty"`
	CustomerIdentifier *string         `json:"customerIdentifier,omitempty"` // Aadhaar or account number
	CustomerMobile     *string         `json:"customerMobile,omitempty"`
	Description        *string         `json:"description,omitempty"`
	IsHighlighted      bool            `json:"isHighlighted"`
}

// TransactionDraft holds the user-supplied part of a transaction; the store assigns
// the rest.
type TransactionDraft struct {
	Type               TransactionType
	Amount             decimal.Decimal
	CustomerName       *string
	CustomerIdentifier *string
	CustomerMobile     *string
	Description        *string
}

// Customer is a person the CSP transacts for.
type Customer struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Identifier string  `json:"identifier"` // Aadhaar or account number
	Mobile     *string `json:"mobile,omitempty"`
}

// CustomerDraft is a customer that has not been stored yet.
type CustomerDraft struct {
	Name       string
	Identifier string
	Mobile     *string
}

// Optional returns a pointer to the trimmed value, or nil when it is blank.
func Optional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Value dereferences an optional field, returning "" when it is absent.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Clone returns a copy that shares no pointers with t.
func (t Transaction) Clone() Transaction {
	t.CustomerName = cloneString(t.CustomerName)
	t.CustomerIdentifier = cloneString(t.CustomerIdentifier)
	t.CustomerMobile = cloneString(t.CustomerMobile)
	t.Description = cloneString(t.Description)
	return t
}

// Clone returns a copy that shares no pointers with c.
func (c Customer) Clone() Customer {
	c.Mobile = cloneString(c.Mobile)
	return c
}

// String formats the transaction as a single aligned line for listings.
func (t *Transaction) String() string {
	var builder strings.Builder

	marker := " "
	if t.IsHighlighted {
		marker = "*"
	}
	fmt.Fprintf(&builder, "%s %s  %-25s %12s",
		marker,
		t.Date.Local().Format("2006/01/02 15:04"),
		t.Type,
		t.Amount.StringFixed(2),
	)

	if name := strings.TrimSpace(Value(t.CustomerName)); name != "" {
		builder.WriteString("  " + name)
		if id := strings.TrimSpace(Value(t.CustomerIdentifier)); id != "" {
			fmt.Fprintf(&builder, " (%s)", id)
		}
	}
	if desc := strings.TrimSpace(Value(t.Description)); desc != "" {
		fmt.Fprintf(&builder, "  ; %s", desc)
	}
	return builder.String()
}
