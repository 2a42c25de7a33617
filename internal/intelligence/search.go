package intelligence

import (
	"sort"
	"strings"

	"git.sr.ht/~jakintosh/cspledger/internal/core"
)

// SearchTransactions filters by customer name, identifier or description
// (case-insensitive substring) and lists highlighted transactions first. Relative
// order is otherwise kept. An empty query matches everything.
func SearchTransactions(transactions []core.Transaction, query string) []core.Transaction {
	q := strings.ToLower(query)

	results := make([]core.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if q == "" ||
			contains(tx.CustomerName, q) ||
			contains(tx.CustomerIdentifier, q) ||
			contains(tx.Description, q) {
			results = append(results, tx.Clone())
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].IsHighlighted && !results[j].IsHighlighted
	})
	return results
}

// SearchCustomers filters by name or identifier (case-insensitive substring).
func SearchCustomers(customers []core.Customer, query string) []core.Customer {
	q := strings.ToLower(query)

	results := make([]core.Customer, 0, len(customers))
	for _, c := range customers {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Identifier), q) {
			results = append(results, c.Clone())
		}
	}
	return results
}

// CustomerHistory returns the transactions recorded against identifier, newest first.
func CustomerHistory(transactions []core.Transaction, identifier string) []core.Transaction {
	var history []core.Transaction
	for _, tx := range transactions {
		if core.Value(tx.CustomerIdentifier) == identifier {
			history = append(history, tx.Clone())
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date.After(history[j].Date)
	})
	return history
}

func contains(field *string, lowerQuery string) bool {
	if field == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*field), lowerQuery)
}
