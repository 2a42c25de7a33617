package intelligence

import (
	"reflect"
	"testing"
	"time"

	"git.sr.ht/~jakintosh/cspledger/internal/core"
	"github.com/shopspring/decimal"
)

func sampleCustomers() []core.Customer {
	return []core.Customer{
		{ID: "c1", Name: "Ramesh Kumar", Identifier: "1234 5678 9012", Mobile: core.Optional("9876543210")},
		{ID: "c2", Name: "Rani Devi", Identifier: "SBIN0001234"},
		{ID: "c3", Name: "Suresh Yadav", Identifier: "5555 6666 7777"},
	}
}

func sampleTransactions() []core.Transaction {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return []core.Transaction{
		{
			ID:            "t4",
			Date:          base.Add(3 * time.Hour),
			Type:          core.TypeCSPDepositToBank,
			Amount:        decimal.NewFromInt(10000),
			Description:   core.Optional("evening cash drop"),
			IsHighlighted: true,
		},
		{
			ID:                 "t3",
			Date:               base.Add(2 * time.Hour),
			Type:               core.TypeCustomerWithdrawal,
			Amount:             decimal.NewFromInt(2000),
			CustomerName:       core.Optional("Rani Devi"),
			CustomerIdentifier: core.Optional("SBIN0001234"),
		},
		{
			ID:                 "t2",
			Date:               base.Add(time.Hour),
			Type:               core.TypeCustomerDeposit,
			Amount:             decimal.NewFromInt(5000),
			CustomerName:       core.Optional("Ramesh Kumar"),
			CustomerIdentifier: core.Optional("1234 5678 9012"),
			Description:        core.Optional("school fees"),
			IsHighlighted:      true,
		},
		{
			ID:                 "t1",
			Date:               base,
			Type:               core.TypeCustomerTransfer,
			Amount:             decimal.NewFromInt(750),
			CustomerName:       core.Optional("Ramesh Kumar"),
			CustomerIdentifier: core.Optional("1234 5678 9012"),
		},
	}
}

func ids(txs []core.Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.ID)
	}
	return out
}

func TestIndexSuggestAndAutofill(t *testing.T) {
	ix := NewIndex(sampleCustomers())

	if got := ix.Suggest("ra", 0); !reflect.DeepEqual(got, []string{"Ramesh Kumar", "Rani Devi"}) {
		t.Errorf("Unexpected suggestions: %v", got)
	}
	if got := ix.Suggest("ra", 1); !reflect.DeepEqual(got, []string{"Ramesh Kumar"}) {
		t.Errorf("Expected limit to apply, got %v", got)
	}
	if got := ix.Suggest("  ", 5); got != nil {
		t.Errorf("Expected no suggestions for blank prefix, got %v", got)
	}

	customer, ok := ix.LookupByName("Ramesh Kumar")
	if !ok {
		t.Fatalf("Expected to find Ramesh Kumar")
	}
	if customer.Identifier != "1234 5678 9012" || core.Value(customer.Mobile) != "9876543210" {
		t.Errorf("Unexpected autofill: %+v", customer)
	}

	if _, ok := ix.LookupByName("ramesh kumar"); ok {
		t.Errorf("Expected exact name match for autofill")
	}
}

func TestIndexLookupByIdentifier(t *testing.T) {
	ix := NewIndex(sampleCustomers())

	customer, ok := ix.LookupByIdentifier("  sbin0001234 ")
	if !ok || customer.ID != "c2" {
		t.Errorf("Expected c2, got %+v (found=%v)", customer, ok)
	}
	if _, ok := ix.LookupByIdentifier(""); ok {
		t.Errorf("Expected blank identifier to match nothing")
	}
}

func TestIndexRebuild(t *testing.T) {
	ix := NewIndex(sampleCustomers())
	ix.Rebuild([]core.Customer{{ID: "c9", Name: "Zoya Khan", Identifier: "Z1"}})

	if got := ix.Suggest("ra", 0); len(got) != 0 {
		t.Errorf("Expected old names to be gone, got %v", got)
	}
	if got := ix.Suggest("z", 0); !reflect.DeepEqual(got, []string{"Zoya Khan"}) {
		t.Errorf("Unexpected suggestions: %v", got)
	}
}

func TestSearchTransactions(t *testing.T) {
	txs := sampleTransactions()

	tests := []struct {
		query    string
		expected []string
	}{
		{"", []string{"t4", "t2", "t3", "t1"}},
		{"ramesh", []string{"t2", "t1"}},
		{"SBIN", []string{"t3"}},
		{"fees", []string{"t2"}},
		{"cash drop", []string{"t4"}},
		{"nobody", []string{}},
	}

	for _, test := range tests {
		got := ids(SearchTransactions(txs, test.query))
		if !reflect.DeepEqual(got, test.expected) {
			t.Errorf("For query %q: expected %v, got %v", test.query, test.expected, got)
		}
	}
}

func TestSearchTransactionsDoesNotReorderInput(t *testing.T) {
	txs := sampleTransactions()
	SearchTransactions(txs, "")

	if got := ids(txs); !reflect.DeepEqual(got, []string{"t4", "t3", "t2", "t1"}) {
		t.Errorf("Input slice was modified: %v", got)
	}
}

func TestSearchCustomers(t *testing.T) {
	customers := sampleCustomers()

	got := SearchCustomers(customers, "5555")
	if len(got) != 1 || got[0].ID != "c3" {
		t.Errorf("Expected identifier match, got %+v", got)
	}
	got = SearchCustomers(customers, "DEVI")
	if len(got) != 1 || got[0].ID != "c2" {
		t.Errorf("Expected name match, got %+v", got)
	}
	if got := SearchCustomers(customers, ""); len(got) != len(customers) {
		t.Errorf("Expected empty query to match all, got %d", len(got))
	}
}

func TestCustomerHistory(t *testing.T) {
	txs := sampleTransactions()
	// Put the older one first to check ordering
	txs[2], txs[3] = txs[3], txs[2]

	got := ids(CustomerHistory(txs, "1234 5678 9012"))
	if !reflect.DeepEqual(got, []string{"t2", "t1"}) {
		t.Errorf("Expected newest first, got %v", got)
	}
	if got := CustomerHistory(txs, "unknown"); len(got) != 0 {
		t.Errorf("Expected no history, got %v", ids(got))
	}
}
