// Package trie implements the character-indexed prefix tree used to index
// rule identifiers and keywords for exact lookup and autocomplete.
package trie

import (
	"iter"
	"strings"

	"github.com/clinsight/cdsengine/internal/types"
)

/*
 * String trie over the restricted alphabet a-z.
 *
 * Tokens are normalized before indexing: case-folded to lowercase, with all
 * characters outside a-z stripped. Tokens differing only in digits or
 * punctuation therefore collide ("rule-1" and "rule2" both index as "rule").
 * This matches the established normalization contract; callers that need a
 * wider alphabet must not assume it is safe to widen here.
 *
 * Concurrency: a Trie is single-writer while being populated and must not
 * be mutated once published to readers. internal/catalog swaps fully-built
 * tries atomically instead of mutating a shared one.
 *
 * Insert is transactional: the suffix of missing nodes is built detached
 * and attached with a single pointer assignment after the node budget check,
 * so a failed insert leaves every previously completed insertion searchable
 * and never leaves a half-linked branch.
 */

const alphabetSize = 26

type node struct {
	children  [alphabetSize]*node
	endOfWord bool
}

// Trie is a prefix tree over normalized tokens. The zero value is not
// usable; construct with New.
type Trie struct {
	root   *node
	nodes  int // allocated node count including root
	tokens int // distinct tokens inserted
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{root: &node{}, nodes: 1}
}

// Normalize case-folds token to lowercase and strips every character
// outside a-z. The result may be empty.
func Normalize(token string) string {
	var b strings.Builder
	b.Grow(len(token))
	for _, r := range token {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Insert adds token to the trie. The token is normalized first; inserting a
// token that normalizes to the empty string marks the root itself as
// end-of-word, which makes Search("") return true thereafter.
//
// Returns ErrTokenTooLong or ErrTrieFull without mutating the trie.
func (t *Trie) Insert(token string) error {
	norm := Normalize(token)
	if len(norm) > types.MaxTokenLength {
		return types.ErrTokenTooLong
	}

	// Walk the existing path as far as it goes.
	current := t.root
	i := 0
	for ; i < len(norm); i++ {
		next := current.children[norm[i]-'a']
		if next == nil {
			break
		}
		current = next
	}

	if i == len(norm) {
		if !current.endOfWord {
			current.endOfWord = true
			t.tokens++
		}
		return nil
	}

	// Build the missing suffix detached from the tree, then attach with a
	// single assignment once the budget check has passed.
	needed := len(norm) - i
	if t.nodes+needed > types.MaxTrieNodes {
		return types.ErrTrieFull
	}

	head := &node{}
	tail := head
	for j := i + 1; j < len(norm); j++ {
		n := &node{}
		tail.children[norm[j]-'a'] = n
		tail = n
	}
	tail.endOfWord = true

	current.children[norm[i]-'a'] = head
	t.nodes += needed
	t.tokens++
	return nil
}

// Search reports whether token was inserted. The token is normalized with
// the same rules as Insert; a token that normalizes to the empty string is
// found only if the empty string was itself inserted.
func (t *Trie) Search(token string) bool {
	norm := Normalize(token)
	current := t.root
	for i := 0; i < len(norm); i++ {
		current = current.children[norm[i]-'a']
		if current == nil {
			return false
		}
	}
	return current.endOfWord
}

// PrefixMatches returns a lazy, restartable sequence of all inserted tokens
// sharing the normalized prefix, in lexicographic order, up to limit
// results. A non-positive limit yields nothing.
func (t *Trie) PrefixMatches(prefix string, limit int) iter.Seq[string] {
	norm := Normalize(prefix)
	return func(yield func(string) bool) {
		if limit <= 0 {
			return
		}

		start := t.root
		for i := 0; i < len(norm); i++ {
			start = start.children[norm[i]-'a']
			if start == nil {
				return
			}
		}

		// Iterative preorder DFS; children pushed z..a so pops come out
		// in lexicographic order.
		type frame struct {
			n     *node
			token string
		}
		stack := []frame{{n: start, token: norm}}
		emitted := 0
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if f.n.endOfWord {
				if !yield(f.token) {
					return
				}
				emitted++
				if emitted >= limit {
					return
				}
			}
			for c := alphabetSize - 1; c >= 0; c-- {
				if child := f.n.children[c]; child != nil {
					stack = append(stack, frame{n: child, token: f.token + string(rune('a'+c))})
				}
			}
		}
	}
}

// Len returns the number of distinct tokens inserted.
func (t *Trie) Len() int {
	return t.tokens
}

// NodeCount returns the number of allocated nodes including the root.
func (t *Trie) NodeCount() int {
	return t.nodes
}

// Clear releases all nodes. Subsequent Search calls return false for every
// token until the trie is re-populated. Dropping the root reference is
// sufficient for reclamation; no recursive teardown is required.
func (t *Trie) Clear() {
	t.root = &node{}
	t.nodes = 1
	t.tokens = 0
}
