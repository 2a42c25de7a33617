// Package intelligence provides the lookups the entry forms and history views lean on:
// customer name completion with autofill, and free-text search over transactions and
// customers.
package intelligence

import (
	"strings"

	"git.sr.ht/~jakintosh/cspledger/internal/core"
)

// Index answers name completions for the saved customers. It is rebuilt from the
// customer list whenever that list changes.
type Index struct {
	Names     *Trie
	customers []core.Customer
}

// NewIndex builds an index over the given customers.
func NewIndex(customers []core.Customer) *Index {
	ix := &Index{Names: NewTrie()}
	ix.Rebuild(customers)
	return ix
}

// Rebuild replaces the indexed customers.
func (ix *Index) Rebuild(customers []core.Customer) {
	*ix = Index{
		Names:     NewTrie(),
		customers: make([]core.Customer, 0, len(customers)),
	}
	for _, c := range customers {
		ix.customers = append(ix.customers, c.Clone())
		if name := strings.TrimSpace(c.Name); name != "" {
			ix.Names.Insert(name)
		}
	}
}

// Suggest returns at most limit customer names starting with prefix. A limit of
// zero or less means no limit. A blank prefix suggests nothing.
func (ix *Index) Suggest(prefix string, limit int) []string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil
	}
	names := ix.Names.Find(prefix)
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names
}

// LookupByName finds the customer whose name is exactly name. The entry form uses
// it to autofill identifier and mobile once a suggestion is chosen.
func (ix *Index) LookupByName(name string) (core.Customer, bool) {
	for _, c := range ix.customers {
		if c.Name == name {
			return c.Clone(), true
		}
	}
	return core.Customer{}, false
}

// LookupByIdentifier finds a customer by identifier, trimmed and ignoring case.
func (ix *Index) LookupByIdentifier(identifier string) (core.Customer, bool) {
	want := normalize(identifier)
	if want == "" {
		return core.Customer{}, false
	}
	for _, c := range ix.customers {
		if normalize(c.Identifier) == want {
			return c.Clone(), true
		}
	}
	return core.Customer{}, false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
