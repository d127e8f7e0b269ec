// Package alert turns matched rules into ranked, explainable alerts.
package alert

import (
	"strconv"
	"strings"

	"github.com/clinsight/cdsengine/internal/types"
)

/*
 * Source path resolution for explanation variables.
 *
 * Resolves dotted paths with optional [index] suffixes, e.g.
 * "condition.eGFR" or "action.references[0].text", against the match
 * context assembled from the snapshot and the rule's action metadata.
 *
 * Resolution never fails an alert: an unresolvable path (missing key,
 * index out of range, scalar mid-path, excessive depth) reports ok=false
 * and the assembler renders an empty placeholder.
 */

// segment is one component of a parsed source path: an object key or an
// array index.
type segment struct {
	key     string
	index   int
	isIndex bool
}

// parsePath splits a dotted source path into segments. "refs[2].text"
// parses to [key:refs, index:2, key:text]. Returns false for malformed or
// too-deep paths.
func parsePath(path string) ([]segment, bool) {
	if path == "" {
		return nil, false
	}

	var segs []segment
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			return nil, false
		}
		// Key portion before any [n] suffixes.
		key := part
		var idxs []int
		for {
			open := strings.IndexByte(key, '[')
			if open < 0 {
				break
			}
			closing := strings.IndexByte(key[open:], ']')
			if closing < 0 {
				return nil, false
			}
			n, err := strconv.Atoi(key[open+1 : open+closing])
			if err != nil || n < 0 {
				return nil, false
			}
			idxs = append(idxs, n)
			key = key[:open] + key[open+closing+1:]
		}
		if key != "" {
			segs = append(segs, segment{key: key})
		}
		for _, n := range idxs {
			segs = append(segs, segment{index: n, isIndex: true})
		}
	}

	if len(segs) == 0 || len(segs) > types.MaxSourcePathDepth {
		return nil, false
	}
	return segs, true
}

// resolve walks the context following path segments. Returns ok=false the
// moment a segment cannot be applied to the current value.
func resolve(segs []segment, current any) (any, bool) {
	for _, seg := range segs {
		switch v := current.(type) {
		case map[string]any:
			if seg.isIndex {
				return nil, false
			}
			next, ok := v[seg.key]
			if !ok {
				return nil, false
			}
			current = next
		case types.Snapshot:
			if seg.isIndex {
				return nil, false
			}
			next, ok := v[seg.key]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			if !seg.isIndex || seg.index >= len(v) {
				return nil, false
			}
			current = v[seg.index]
		case []string:
			if !seg.isIndex || seg.index >= len(v) {
				return nil, false
			}
			current = v[seg.index]
		default:
			// Scalar value but path continues.
			return nil, false
		}
	}
	return current, true
}

// formatValue renders a resolved value for template substitution.
// Numbers drop trailing zeros; lists join with ", ".
func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case []string:
		return strings.Join(x, ", ")
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, formatValue(e))
		}
		return strings.Join(parts, ", ")
	case nil:
		return ""
	default:
		return ""
	}
}
