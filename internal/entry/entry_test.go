package entry

import (
	"errors"
	"testing"

	"git.sr.ht/~jakintosh/cspledger/internal/core"
)

func savedCustomers() []core.Customer {
	return []core.Customer{
		{ID: "c1", Name: "Ramesh Kumar", Identifier: "1234 5678 9012"},
		{ID: "c2", Name: "Rani Devi", Identifier: "SBIN0001234", Mobile: core.Optional("9000000000")},
	}
}

func TestTransactionAmountRules(t *testing.T) {
	v := New(DefaultLimits())

	tests := []struct {
		name    string
		typ     core.TransactionType
		amount  string
		wantErr error
		limit   bool
	}{
		{"blank", core.TypeCSPDepositToBank, "", ErrInvalidAmount, false},
		{"text", core.TypeCSPDepositToBank, "ten", ErrInvalidAmount, false},
		{"zero", core.TypeCSPDepositToBank, "0", ErrAmountNotPositive, false},
		{"negative", core.TypeCSPDepositToBank, "-5", ErrAmountNotPositive, false},
		{"withdrawal at limit", core.TypeCustomerWithdrawal, "10000", nil, false},
		{"withdrawal over limit", core.TypeCustomerWithdrawal, "10000.01", nil, true},
		{"transfer over limit", core.TypeCustomerTransfer, "10001", nil, true},
		{"deposit at limit", core.TypeCustomerDeposit, "20000", nil, false},
		{"deposit over limit", core.TypeCustomerDeposit, "20000.50", nil, true},
		{"bank deposit has no limit", core.TypeCSPDepositToBank, "500000", nil, false},
		{"expression", core.TypeCSPWithdrawalFromBank, "2*500 + 250", nil, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			in := TransactionInput{
				Type:               test.typ,
				Amount:             test.amount,
				CustomerName:       "Walk-in",
				CustomerIdentifier: "W-1",
			}
			_, err := v.Transaction(in, nil)

			var limitErr *LimitError
			switch {
			case test.limit:
				if !errors.As(err, &limitErr) {
					t.Fatalf("expected limit error, got %v", err)
				}
				if limitErr.Type != test.typ {
					t.Errorf("expected limit for %s, got %s", test.typ, limitErr.Type)
				}
			case test.wantErr != nil:
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("expected %v, got %v", test.wantErr, err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestNonPositiveAmountIsInvalidAmount(t *testing.T) {
	if !errors.Is(ErrAmountNotPositive, ErrInvalidAmount) {
		t.Fatalf("expected non-positive amounts to count as invalid amounts")
	}
}

func TestTransactionCustomerRules(t *testing.T) {
	v := New(DefaultLimits())

	_, err := v.Transaction(TransactionInput{Type: core.TypeCustomerDeposit, Amount: "100", CustomerIdentifier: "X"}, nil)
	if !errors.Is(err, ErrCustomerNameRequired) {
		t.Errorf("expected name required, got %v", err)
	}

	_, err = v.Transaction(TransactionInput{Type: core.TypeCustomerDeposit, Amount: "100", CustomerName: "  Asha  ", CustomerIdentifier: "   "}, nil)
	if !errors.Is(err, ErrCustomerIdentifierRequired) {
		t.Errorf("expected identifier required, got %v", err)
	}

	_, err = v.Transaction(TransactionInput{
		Type:               core.TypeCustomerWithdrawal,
		Amount:             "100",
		CustomerName:       "Someone Else",
		CustomerIdentifier: " sbin0001234 ",
	}, savedCustomers())
	var dupErr *DuplicateIdentifierError
	if !errors.As(err, &dupErr) {
		t.Fatalf("expected duplicate identifier error, got %v", err)
	}
	if dupErr.Existing.ID != "c2" {
		t.Errorf("expected conflict with c2, got %+v", dupErr.Existing)
	}

	// Same identifier with the same name (any case) is the same customer
	draft, err := v.Transaction(TransactionInput{
		Type:               core.TypeCustomerWithdrawal,
		Amount:             "100",
		CustomerName:       " rani devi ",
		CustomerIdentifier: "SBIN0001234",
		CustomerMobile:     "  ",
		Description:        " rent ",
	}, savedCustomers())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if core.Value(draft.CustomerName) != "rani devi" || core.Value(draft.CustomerIdentifier) != "SBIN0001234" {
		t.Errorf("expected trimmed customer fields, got %q / %q", core.Value(draft.CustomerName), core.Value(draft.CustomerIdentifier))
	}
	if draft.CustomerMobile != nil {
		t.Errorf("expected blank mobile to be dropped")
	}
	if core.Value(draft.Description) != "rent" {
		t.Errorf("expected trimmed description, got %q", core.Value(draft.Description))
	}
}

func TestTransactionDropsCustomerFieldsForBankTypes(t *testing.T) {
	v := New(DefaultLimits())

	draft, err := v.Transaction(TransactionInput{
		Type:               core.TypeCSPDepositToBank,
		Amount:             "₹1,500",
		CustomerName:       "ignored",
		CustomerIdentifier: "ignored",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft.CustomerName != nil || draft.CustomerIdentifier != nil || draft.CustomerMobile != nil {
		t.Errorf("expected no customer fields, got %+v", draft)
	}
	if draft.Amount.StringFixed(2) != "1500.00" {
		t.Errorf("unexpected amount %s", draft.Amount)
	}
}

func TestTransactionRejectsUnknownType(t *testing.T) {
	v := New(DefaultLimits())
	_, err := v.Transaction(TransactionInput{Type: "Loan", Amount: "10"}, nil)
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected unknown type, got %v", err)
	}
}

func TestZeroLimitDisablesCheck(t *testing.T) {
	limits := DefaultLimits()
	limits.Deposit = limits.Deposit.Sub(limits.Deposit)
	v := New(limits)

	_, err := v.Transaction(TransactionInput{
		Type:               core.TypeCustomerDeposit,
		Amount:             "99999",
		CustomerName:       "Big Depositor",
		CustomerIdentifier: "B-1",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCustomerForm(t *testing.T) {
	v := New(DefaultLimits())
	customers := savedCustomers()

	if _, err := v.Customer(CustomerInput{Name: " ", Identifier: "X"}, customers, ""); !errors.Is(err, ErrCustomerNameRequired) {
		t.Errorf("expected name required, got %v", err)
	}

	var dupErr *DuplicateIdentifierError
	if _, err := v.Customer(CustomerInput{Name: "New", Identifier: "1234 5678 9012"}, customers, ""); !errors.As(err, &dupErr) {
		t.Errorf("expected duplicate identifier, got %v", err)
	}

	// Editing a customer may keep its own identifier
	draft, err := v.Customer(CustomerInput{Name: " Ramesh K. ", Identifier: "1234 5678 9012 ", Mobile: "98"}, customers, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft.Name != "Ramesh K." || draft.Identifier != "1234 5678 9012" || core.Value(draft.Mobile) != "98" {
		t.Errorf("unexpected draft %+v", draft)
	}
}

func TestNewCustomerFor(t *testing.T) {
	customers := savedCustomers()

	draft := core.TransactionDraft{
		Type:               core.TypeCustomerDeposit,
		CustomerName:       core.Optional("Asha Rao"),
		CustomerIdentifier: core.Optional("A-77"),
		CustomerMobile:     core.Optional("9111111111"),
	}
	c, ok := NewCustomerFor(draft, customers)
	if !ok {
		t.Fatalf("expected a new customer")
	}
	if c.Name != "Asha Rao" || c.Identifier != "A-77" || core.Value(c.Mobile) != "9111111111" {
		t.Errorf("unexpected customer %+v", c)
	}

	draft.CustomerName = core.Optional("RAMESH KUMAR")
	if _, ok := NewCustomerFor(draft, customers); ok {
		t.Errorf("expected existing customer to be recognised ignoring case")
	}

	if _, ok := NewCustomerFor(core.TransactionDraft{Type: core.TypeCSPDepositToBank}, customers); ok {
		t.Errorf("expected bank transactions to never create customers")
	}
}

func TestEditKeepsIdentityAndSkipsLimits(t *testing.T) {
	v := New(DefaultLimits())
	original := core.Transaction{
		ID:                 "t1",
		Type:               core.TypeCustomerDeposit,
		CustomerName:       core.Optional("Asha"),
		CustomerIdentifier: core.Optional("A1"),
		IsHighlighted:      true,
	}

	in := InputFor(original)
	in.Amount = "25000"
	edited, err := v.Edit(original, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if edited.ID != "t1" || !edited.IsHighlighted || edited.Amount.String() != "25000" {
		t.Errorf("unexpected edit result %+v", edited)
	}

	in.Type = core.TypeCSPDepositToBank
	edited, err = v.Edit(original, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if edited.CustomerName != nil || edited.CustomerIdentifier != nil {
		t.Errorf("expected customer fields to be cleared for bank types")
	}

	in.Amount = "abc"
	if _, err := v.Edit(original, in); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected invalid amount, got %v", err)
	}
}
