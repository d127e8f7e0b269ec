package rules

import (
	"github.com/clinsight/cdsengine/internal/catalog"
	"github.com/clinsight/cdsengine/internal/trie"
	"github.com/clinsight/cdsengine/internal/types"
)

/*
 * Rule matching orchestration.
 *
 * Match evaluates every catalog rule against one snapshot with AND
 * semantics: a rule is a candidate iff every condition holds. Partial
 * satisfaction never produces a partial alert.
 *
 * An optional trie built over the snapshot's own tokens serves as a cheap
 * pre-filter: an `in` condition whose value list has no token present in
 * the snapshot index cannot match, so the whole rule is skipped without
 * evaluation. Normalization only ever collapses distinct tokens together,
 * so the index reports a superset of true membership and the skip is safe.
 * Results are identical with a nil index. not_in conditions are never
 * pre-filtered; for them, absence from the index argues for a match, not
 * against one.
 *
 * Determinism: the catalog holds rules in ascending id order and the
 * snapshot is read-only here, so the same inputs always yield the same
 * matches in the same order.
 */

// Match pairs a fired rule with the concept keys whose conditions held.
type Match struct {
	Rule        types.Rule
	TriggeredBy []string
}

// MatchSnapshot evaluates all catalog rules against snap. idx may be nil;
// when present it must have been built from this snapshot's tokens (see
// SnapshotIndex).
func MatchSnapshot(c *catalog.Catalog, snap types.Snapshot, idx *trie.Trie) []Match {
	var matches []Match
	for _, rule := range c.Rules() {
		if idx != nil && prefilterSkip(rule, idx) {
			continue
		}
		if m, ok := evaluateRule(rule, snap); ok {
			matches = append(matches, m)
		}
	}
	return matches
}

// evaluateRule applies AND semantics with short-circuit on the first
// non-matching condition.
func evaluateRule(rule types.Rule, snap types.Snapshot) (Match, bool) {
	triggered := make([]string, 0, len(rule.Conditions))
	seen := make(map[string]bool, len(rule.Conditions))
	for _, cond := range rule.Conditions {
		if !Evaluate(cond, snap) {
			return Match{}, false
		}
		if !seen[cond.Concept] {
			seen[cond.Concept] = true
			triggered = append(triggered, cond.Concept)
		}
	}
	return Match{Rule: rule, TriggeredBy: triggered}, true
}

// prefilterSkip reports whether the rule provably cannot match: some `in`
// condition has no candidate value present in the snapshot token index.
func prefilterSkip(rule types.Rule, idx *trie.Trie) bool {
	for _, cond := range rule.Conditions {
		if cond.Operator != types.OpIn {
			continue
		}
		present := false
		for _, v := range cond.Values {
			if idx.Search(v) {
				present = true
				break
			}
		}
		if !present {
			return true
		}
	}
	return false
}

// SnapshotIndex builds a trie over the snapshot's concept keys and string
// values (including list elements) for use as the matcher pre-filter and
// for keyword existence checks.
func SnapshotIndex(snap types.Snapshot) (*trie.Trie, error) {
	idx := trie.New()
	insert := func(token string) error {
		return idx.Insert(token)
	}
	for concept, fact := range snap {
		if err := insert(concept); err != nil {
			return nil, err
		}
		switch f := fact.(type) {
		case string:
			if err := insert(f); err != nil {
				return nil, err
			}
		case []string:
			for _, s := range f {
				if err := insert(s); err != nil {
					return nil, err
				}
			}
		case []any:
			for _, e := range f {
				if s, ok := e.(string); ok {
					if err := insert(s); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return idx, nil
}
