package intelligence

import (
	"sort"
	"strings"
)

// TrieNode represents a node in the Trie data structure.
type TrieNode struct {
	children map[rune]*TrieNode
	words    []string // original spellings ending at this node
}

// Trie is a case-insensitive prefix tree. Words are matched on their lower-cased
// form but returned as inserted.
type Trie struct {
	root *TrieNode
}

// NewTrie creates a new empty Trie.
func NewTrie() *Trie {
	return &Trie{
		root: &TrieNode{
			children: make(map[rune]*TrieNode),
		},
	}
}

// Insert adds a word to the Trie. Inserting the same spelling twice is a no-op.
func (t *Trie) Insert(word string) {
	current := t.root
	for _, char := range strings.ToLower(word) {
		if current.children[char] == nil {
			current.children[char] = &TrieNode{
				children: make(map[rune]*TrieNode),
			}
		}
		current = current.children[char]
	}
	for _, w := range current.words {
		if w == word {
			return
		}
	}
	current.words = append(current.words, word)
}

// Find returns all words in the Trie that start with the given prefix, ignoring case.
func (t *Trie) Find(prefix string) []string {
	current := t.root

	for _, char := range strings.ToLower(prefix) {
		if current.children[char] == nil {
			return []string{}
		}
		current = current.children[char]
	}

	results := []string{}
	t.collectWords(current, &results)

	sort.Slice(results, func(i, j int) bool {
		li, lj := strings.ToLower(results[i]), strings.ToLower(results[j])
		if li != lj {
			return li < lj
		}
		return results[i] < results[j]
	})
	return results
}

// collectWords performs DFS to collect all complete words from a given node.
func (t *Trie) collectWords(node *TrieNode, results *[]string) {
	*results = append(*results, node.words...)

	for _, child := range node.children {
		t.collectWords(child, results)
	}
}
