package types

/*
 * Domain types for rule definitions.
 *
 * Provides Rule, Condition, Action, Variable, and Reference structures used
 * by internal/catalog for validation and internal/rules for evaluation.
 * These types are wire-format agnostic: YAML/JSON decoding happens in
 * internal/ruleio, database row conversion at the storage boundary.
 *
 * Key types:
 *   - Rule: complete declarative rule (conditions AND-ed, actions on fire)
 *   - Condition: single comparison between a concept and a value
 *   - Action: tagged union (alert / suggestion / explanation)
 *   - Variable: explanation template binding with a source path or literal
 */

// Operator names the comparison applied by a condition. The evaluator
// treats unknown operators as non-matching rather than erroring.
type Operator string

const (
	OpEq    Operator = "="
	OpGt    Operator = ">"
	OpLt    Operator = "<"
	OpGte   Operator = ">="
	OpLte   Operator = "<="
	OpIn    Operator = "in"
	OpNotIn Operator = "not_in"
)

// Valid reports whether op is a recognized operator.
func (op Operator) Valid() bool {
	switch op {
	case OpEq, OpGt, OpLt, OpGte, OpLte, OpIn, OpNotIn:
		return true
	}
	return false
}

// Condition represents a single comparison in a rule. All conditions of a
// rule must hold for the rule to fire.
type Condition struct {
	Concept  string   `json:"concept" yaml:"concept"`   // clinical fact key, e.g. "eGFR"
	Operator Operator `json:"operator" yaml:"operator"` // comparison operator
	Value    any      `json:"value,omitempty" yaml:"value,omitempty"`   // scalar for numeric/equality operators
	Values   []string `json:"values,omitempty" yaml:"values,omitempty"` // list for in/not_in
	Unit     string   `json:"unit,omitempty" yaml:"unit,omitempty"`     // informational, no conversion performed
	Source   string   `json:"source,omitempty" yaml:"source,omitempty"` // FHIR resource-type hint, informational
}

// Action types recognized in rule definitions.
const (
	ActionAlert       = "alert"
	ActionSuggestion  = "suggestion"
	ActionExplanation = "explanation"
)

// Action represents one consequence of a fired rule. Type discriminates
// which fields are meaningful: alert uses Message/Severity, suggestion uses
// Message/References, explanation uses Template/Variables/References.
type Action struct {
	Type       string      `json:"type" yaml:"type"`
	Message    string      `json:"message,omitempty" yaml:"message,omitempty"`
	Severity   Severity    `json:"severity,omitempty" yaml:"severity,omitempty"`
	Template   string      `json:"template,omitempty" yaml:"template,omitempty"`
	Variables  []Variable  `json:"variables,omitempty" yaml:"variables,omitempty"`
	References []Reference `json:"references,omitempty" yaml:"references,omitempty"`
}

// Variable binds an explanation template placeholder to either a source
// path resolved against the match context, or a literal value. Source and
// Value are mutually exclusive; Source wins when both are set.
type Variable struct {
	Name   string `json:"name" yaml:"name"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Value  string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Reference points at a clinical guideline backing a suggestion or
// explanation.
type Reference struct {
	Text string `json:"text" yaml:"text"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Rule represents a complete declarative rule definition.
type Rule struct {
	ID         string      `json:"id" yaml:"id"`
	Text       string      `json:"text" yaml:"text"`
	Category   Category    `json:"category" yaml:"category"`
	Severity   Severity    `json:"severity" yaml:"severity"`
	Confidence float64     `json:"confidence" yaml:"confidence"`
	Conditions []Condition `json:"conditions" yaml:"conditions"`
	Actions    []Action    `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// AlertAction returns the rule's first alert action, or nil if none is
// declared. The assembler falls back to the rule's own text and severity.
func (r *Rule) AlertAction() *Action {
	for i := range r.Actions {
		if r.Actions[i].Type == ActionAlert {
			return &r.Actions[i]
		}
	}
	return nil
}

// ExplanationAction returns the rule's first explanation action, or nil.
func (r *Rule) ExplanationAction() *Action {
	for i := range r.Actions {
		if r.Actions[i].Type == ActionExplanation {
			return &r.Actions[i]
		}
	}
	return nil
}

// SuggestionActions returns all suggestion actions declared by the rule.
func (r *Rule) SuggestionActions() []Action {
	var out []Action
	for _, a := range r.Actions {
		if a.Type == ActionSuggestion {
			out = append(out, a)
		}
	}
	return out
}
