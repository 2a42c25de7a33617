package core

import "github.com/shopspring/decimal"

// State is the complete persisted ledger. It doubles as the backup snapshot shape.
type State struct {
	Transactions       []Transaction   `json:"transactions"`
	Customers          []Customer      `json:"customers"`
	InitialBankBalance decimal.Decimal `json:"initialBankBalance"`
	InitialCashInHand  decimal.Decimal `json:"initialCashInHand"`
}

// Clone returns a deep copy of the state. Nil collections come back empty.
func (s State) Clone() State {
	out := State{
		Transactions:       make([]Transaction, len(s.Transactions)),
		Customers:          make([]Customer, len(s.Customers)),
		InitialBankBalance: s.InitialBankBalance,
		InitialCashInHand:  s.InitialCashInHand,
	}
	for i, tx := range s.Transactions {
		out.Transactions[i] = tx.Clone()
	}
	for i, c := range s.Customers {
		out.Customers[i] = c.Clone()
	}
	return out
}

// FindTransaction returns the index of the transaction with the given id, or -1.
func (s State) FindTransaction(id string) int {
	for i := range s.Transactions {
		if s.Transactions[i].ID == id {
			return i
		}
	}
	return -1
}

// FindCustomer returns the index of the customer with the given id, or -1.
func (s State) FindCustomer(id string) int {
	for i := range s.Customers {
		if s.Customers[i].ID == id {
			return i
		}
	}
	return -1
}
