package catalog

import (
	"sync/atomic"

	"github.com/clinsight/cdsengine/internal/trie"
	"github.com/clinsight/cdsengine/internal/types"
)

/*
 * Active catalog version with atomic swap.
 *
 * Matching requests run concurrently against one shared rule set. The
 * catalog and its derived trie move through exactly two states: Building
 * (single writer, not yet visible) and Active (immutable, many readers).
 * A reload builds an entirely new (catalog, index) pair and publishes it
 * with one pointer swap, so no reader ever observes a half-built trie or a
 * catalog mixing rules from two versions. Reads are lock-free.
 */

// Version pairs a catalog with the trie derived from it. Both are
// immutable once the version is published.
type Version struct {
	Catalog *Catalog
	Index   *trie.Trie
}

// Store holds the active catalog version.
type Store struct {
	current atomic.Pointer[Version]
}

// NewStore returns a store with no active version. Current returns
// ErrNoCatalog until the first Swap.
func NewStore() *Store {
	return &Store{}
}

// Swap publishes a fully-built version, replacing any previous one.
// In-flight readers holding the old version keep a consistent view.
func (s *Store) Swap(c *Catalog, idx *trie.Trie) {
	s.current.Store(&Version{Catalog: c, Index: idx})
}

// Current returns the active version, or ErrNoCatalog before the first
// load.
func (s *Store) Current() (*Version, error) {
	v := s.current.Load()
	if v == nil {
		return nil, types.ErrNoCatalog
	}
	return v, nil
}

// Reload validates rules, builds the derived index, and swaps the new
// version in. Validation failures are returned alongside; the swap happens
// whenever at least the valid subset could be built and indexed. On index
// build failure the previous version stays active.
func (s *Store) Reload(rules []types.Rule) ([]ValidationError, error) {
	c, verrs := FromRules(rules)
	idx, err := c.BuildIndex()
	if err != nil {
		return verrs, err
	}
	s.Swap(c, idx)
	return verrs, nil
}
