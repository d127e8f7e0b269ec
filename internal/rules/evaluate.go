// Package rules implements condition evaluation and rule matching against
// patient snapshots.
package rules

import "github.com/clinsight/cdsengine/internal/types"

/*
 * Condition evaluation.
 *
 * Evaluate is a pure function of (condition, snapshot) with fail-closed
 * semantics throughout: a concept absent from the snapshot, a type
 * mismatch, or an unrecognized operator all evaluate to false, never to an
 * error. A clinical alerting system must not alert on inconclusive data,
 * and must not let an evaluation defect masquerade as a match.
 *
 * Operator semantics:
 *   - =, >, <, >=, <=: numeric comparison; both sides must be numeric
 *   - in: case-insensitive string membership against the value list
 *   - not_in: negation of membership for a present concept; a missing
 *     concept still evaluates false, because absence confirms nothing
 *
 * Units are informational: no conversion is performed, mismatched units
 * are the rule author's responsibility.
 */

// Evaluate reports whether condition holds against snapshot.
func Evaluate(cond types.Condition, snap types.Snapshot) bool {
	fact, ok := snap[cond.Concept]
	if !ok {
		// Fail-closed: absence of evidence is not evidence of a match,
		// for not_in as much as for in.
		return false
	}

	switch cond.Operator {
	case types.OpEq:
		c, ok := compareNumeric(fact, cond.Value)
		return ok && c == 0
	case types.OpGt:
		c, ok := compareNumeric(fact, cond.Value)
		return ok && c > 0
	case types.OpLt:
		c, ok := compareNumeric(fact, cond.Value)
		return ok && c < 0
	case types.OpGte:
		c, ok := compareNumeric(fact, cond.Value)
		return ok && c >= 0
	case types.OpLte:
		c, ok := compareNumeric(fact, cond.Value)
		return ok && c <= 0
	case types.OpIn:
		return member(fact, cond.Values)
	case types.OpNotIn:
		return !member(fact, cond.Values)
	default:
		return false
	}
}
