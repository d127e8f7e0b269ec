package rules

import "strings"

/*
 * Operator comparison logic.
 *
 * Values arrive either from rule definitions (YAML/JSON decoding) or from
 * patient snapshots, so numeric comparison must handle float64/int/int64
 * mixing. Membership comparison is case-insensitive string equality and
 * accepts a single string fact, []string, or []any of strings on the
 * snapshot side.
 *
 * Every helper returns plain false for incomparable inputs. The evaluator
 * relies on this: inconclusive data never matches and never raises.
 */

// compareNumeric performs three-way numeric comparison (-1/0/1).
// ok is false when either side is not numeric.
func compareNumeric(a, b any) (int, bool) {
	na, oka := toFloat64(a)
	nb, okb := toFloat64(b)
	if !oka || !okb {
		return 0, false
	}
	switch {
	case na < nb:
		return -1, true
	case na > nb:
		return 1, true
	default:
		return 0, true
	}
}

// toFloat64 converts value to float64 if it's a numeric type.
// Handles float64, float32, int, int64 from JSON and YAML unmarshaling.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// member reports whether the snapshot fact matches any of the listed
// values using case-insensitive string equality. A list-valued fact
// matches when any of its elements does. Non-string facts never match.
func member(fact any, values []string) bool {
	switch f := fact.(type) {
	case string:
		return anyFold(f, values)
	case []string:
		for _, s := range f {
			if anyFold(s, values) {
				return true
			}
		}
	case []any:
		for _, e := range f {
			if s, ok := e.(string); ok && anyFold(s, values) {
				return true
			}
		}
	}
	return false
}

func anyFold(s string, values []string) bool {
	for _, v := range values {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
