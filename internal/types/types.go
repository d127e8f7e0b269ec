// Package types provides domain models shared across CDS engine components.
//
// Zero-dependency design: types.go, rules.go and errors.go use only the
// standard library so rule-definition tooling can import them without pulling
// in server dependencies. ID utilities in ids.go import uuid but are isolated
// for selective inclusion.
package types

// Severity classifies the clinical urgency of a rule or alert.
// String alias keeps JSON/YAML serialization human-readable.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a recognized severity level.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return true
	}
	return false
}

// Rank returns the ordering weight of a severity level, higher is more
// urgent. Unknown severities rank below info so malformed data never
// outranks a real alert.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Category classifies the clinical domain a rule belongs to.
type Category string

const (
	CategoryMedication Category = "medication"
	CategoryLab        Category = "lab"
	CategoryCondition  Category = "condition"
	CategoryProcedure  Category = "procedure"
)

// Valid reports whether c is a recognized rule category.
func (c Category) Valid() bool {
	switch c {
	case CategoryMedication, CategoryLab, CategoryCondition, CategoryProcedure:
		return true
	}
	return false
}

// Snapshot maps concept keys to a patient's extracted clinical facts at
// matching time. Values are float64, string, or []string. A Snapshot is
// immutable for the duration of one matching pass; the matcher never
// writes to it.
type Snapshot map[string]any

// Alert is the outcome of a fully-matched rule. Created only by the alert
// assembler, never mutated afterwards.
type Alert struct {
	ID          AlertID  `json:"id"`
	RuleID      string   `json:"rule_id"`
	Severity    Severity `json:"severity"`
	Confidence  float64  `json:"confidence"`
	Message     string   `json:"message"`
	Explanation string   `json:"explanation"`
	TriggeredBy []string `json:"triggered_by"`
}

// Resource limits enforced by the engine to bound memory and keep matching
// latency predictable.
const (
	// MaxTokenLength caps a single trie token. 256 chars accommodates rule
	// identifiers and full rule description sentences.
	MaxTokenLength = 256

	// MaxTrieNodes caps total trie allocation. A catalog of 10,000 rules
	// with generous keyword sets stays well under this ceiling.
	MaxTrieNodes = 1 << 20

	// MaxConditionsPerRule bounds per-rule evaluation work.
	MaxConditionsPerRule = 64

	// MaxMembershipValues limits in/not_in value lists to prevent
	// quadratic comparison cost.
	MaxMembershipValues = 64

	// MaxSourcePathDepth bounds explanation variable path resolution.
	MaxSourcePathDepth = 16
)
