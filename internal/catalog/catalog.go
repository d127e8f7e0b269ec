// Package catalog provides the validated in-memory rule collection and the
// atomically swappable active version consulted by concurrent matchers.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clinsight/cdsengine/internal/trie"
	"github.com/clinsight/cdsengine/internal/types"
)

/*
 * Rule catalog construction and validation.
 *
 * FromRules validates every rule and returns the catalog of valid rules
 * together with the complete list of validation failures. Loading never
 * aborts on the first bad rule: a rule file with ten broken rules reports
 * all ten, and the remaining valid rules still load.
 *
 * Validation per rule:
 *   1. id non-empty and unique within the load
 *   2. conditions non-empty (a zero-condition rule would always fire)
 *      and within MaxConditionsPerRule
 *   3. per condition: concept non-empty, operator recognized, value shape
 *      matching the operator (list for in/not_in, scalar otherwise)
 *   4. confidence within [0, 1]
 *   5. severity and category recognized
 *
 * Conditions are stable-sorted by operator cost at build time so the
 * matcher short-circuits on cheap comparisons first. AND semantics make
 * condition order irrelevant to the outcome.
 */

// ValidationError describes a single rule-definition defect.
type ValidationError struct {
	RuleID string // offending rule id, may be empty when the id itself is missing
	Field  string // field the defect concerns
	Detail string
}

func (e ValidationError) Error() string {
	id := e.RuleID
	if id == "" {
		id = "(no id)"
	}
	return fmt.Sprintf("rule %s: %s: %s", id, e.Field, e.Detail)
}

// Catalog is an immutable collection of validated rules. Built once per
// version; never mutated after construction.
type Catalog struct {
	rules []types.Rule // sorted by id
	byID  map[string]int
}

// FromRules validates rules and returns the catalog of valid ones plus
// every validation failure found. Invalid rules are excluded, not fatal.
func FromRules(rules []types.Rule) (*Catalog, []ValidationError) {
	var errs []ValidationError
	seen := make(map[string]bool, len(rules))
	valid := make([]types.Rule, 0, len(rules))

	for _, r := range rules {
		ruleErrs := validateRule(&r)
		if r.ID != "" {
			if seen[r.ID] {
				ruleErrs = append(ruleErrs, ValidationError{RuleID: r.ID, Field: "id", Detail: "duplicate rule id"})
			}
			seen[r.ID] = true
		}
		if len(ruleErrs) > 0 {
			errs = append(errs, ruleErrs...)
			continue
		}

		// Stable sort: cheap operators first maximizes short-circuit
		// benefit, equal-cost conditions keep definition order.
		sorted := make([]types.Condition, len(r.Conditions))
		copy(sorted, r.Conditions)
		sort.SliceStable(sorted, func(i, j int) bool {
			return conditionCost(sorted[i]) < conditionCost(sorted[j])
		})
		r.Conditions = sorted

		valid = append(valid, r)
	}

	sort.Slice(valid, func(i, j int) bool { return valid[i].ID < valid[j].ID })
	byID := make(map[string]int, len(valid))
	for i, r := range valid {
		byID[r.ID] = i
	}

	return &Catalog{rules: valid, byID: byID}, errs
}

func validateRule(r *types.Rule) []ValidationError {
	var errs []ValidationError

	if r.ID == "" {
		errs = append(errs, ValidationError{Field: "id", Detail: "missing rule id"})
	}
	if !r.Severity.Valid() {
		errs = append(errs, ValidationError{RuleID: r.ID, Field: "severity", Detail: fmt.Sprintf("unrecognized severity %q", r.Severity)})
	}
	if !r.Category.Valid() {
		errs = append(errs, ValidationError{RuleID: r.ID, Field: "category", Detail: fmt.Sprintf("unrecognized category %q", r.Category)})
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		errs = append(errs, ValidationError{RuleID: r.ID, Field: "confidence", Detail: fmt.Sprintf("confidence %v outside [0, 1]", r.Confidence)})
	}
	if len(r.Conditions) == 0 {
		// A rule with zero conditions would fire on every snapshot.
		errs = append(errs, ValidationError{RuleID: r.ID, Field: "conditions", Detail: "rule has no conditions"})
	}
	if len(r.Conditions) > types.MaxConditionsPerRule {
		errs = append(errs, ValidationError{RuleID: r.ID, Field: "conditions", Detail: fmt.Sprintf("%d conditions exceeds limit %d", len(r.Conditions), types.MaxConditionsPerRule)})
	}

	for i, c := range r.Conditions {
		field := fmt.Sprintf("conditions[%d]", i)
		if c.Concept == "" {
			errs = append(errs, ValidationError{RuleID: r.ID, Field: field, Detail: "missing concept"})
		}
		if !c.Operator.Valid() {
			errs = append(errs, ValidationError{RuleID: r.ID, Field: field, Detail: fmt.Sprintf("unrecognized operator %q", c.Operator)})
			continue
		}
		switch c.Operator {
		case types.OpIn, types.OpNotIn:
			if len(c.Values) == 0 {
				errs = append(errs, ValidationError{RuleID: r.ID, Field: field, Detail: "in/not_in requires a non-empty value list"})
			}
			if len(c.Values) > types.MaxMembershipValues {
				errs = append(errs, ValidationError{RuleID: r.ID, Field: field, Detail: fmt.Sprintf("%d membership values exceeds limit %d", len(c.Values), types.MaxMembershipValues)})
			}
		default:
			if c.Value == nil {
				errs = append(errs, ValidationError{RuleID: r.ID, Field: field, Detail: "missing comparison value"})
			}
		}
	}

	return errs
}

// Operator base costs mirror relative comparison expense; membership
// scans cost more than scalar comparisons.
func conditionCost(c types.Condition) int {
	switch c.Operator {
	case types.OpEq:
		return 5
	case types.OpGt, types.OpLt, types.OpGte, types.OpLte:
		return 7
	case types.OpIn, types.OpNotIn:
		return 8 + len(c.Values)
	default:
		return 100
	}
}

// Len returns the number of valid rules in the catalog.
func (c *Catalog) Len() int {
	return len(c.rules)
}

// RuleIDs returns all rule identifiers in ascending order.
func (c *Catalog) RuleIDs() []string {
	ids := make([]string, len(c.rules))
	for i, r := range c.rules {
		ids[i] = r.ID
	}
	return ids
}

// Rule returns the rule with the given id, or false if not present.
func (c *Catalog) Rule(id string) (types.Rule, bool) {
	i, ok := c.byID[id]
	if !ok {
		return types.Rule{}, false
	}
	return c.rules[i], true
}

// Rules returns all valid rules in ascending id order. Callers must not
// mutate the returned slice.
func (c *Catalog) Rules() []types.Rule {
	return c.rules
}

// BuildIndex constructs the trie over rule identifiers and the keywords of
// each rule's description text. Index construction is decoupled from
// validation; the matcher and the suggest endpoint consult the result.
func (c *Catalog) BuildIndex() (*trie.Trie, error) {
	idx := trie.New()
	for _, r := range c.rules {
		if err := idx.Insert(r.ID); err != nil {
			return nil, fmt.Errorf("index rule %s: %w", r.ID, err)
		}
		for _, word := range strings.Fields(r.Text) {
			if err := idx.Insert(word); err != nil {
				return nil, fmt.Errorf("index rule %s keyword %q: %w", r.ID, word, err)
			}
		}
	}
	return idx, nil
}
