package alert

import (
	"sort"
	"strings"

	"github.com/clinsight/cdsengine/internal/rules"
	"github.com/clinsight/cdsengine/internal/types"
)

/*
 * Alert assembly and ranking.
 *
 * One Alert per fired rule: message and severity come from the rule's
 * alert action (falling back to the rule's own text and severity), the
 * explanation from its explanation action's template with {name}
 * placeholders substituted from resolved variables.
 *
 * Variable resolution order: a declared source path is resolved against
 * the match context; a variable without a source carries its literal
 * value. Unresolvable sources degrade to an empty placeholder, never a
 * failed alert.
 *
 * Ranking: severity (critical > error > warning > info), then confidence
 * descending, ties broken by rule id ascending for determinism.
 */

// Assemble builds the alert for one fired rule.
func Assemble(m rules.Match, snap types.Snapshot) types.Alert {
	rule := m.Rule

	message := rule.Text
	severity := rule.Severity
	if a := rule.AlertAction(); a != nil {
		if a.Message != "" {
			message = a.Message
		}
		if a.Severity.Valid() {
			severity = a.Severity
		}
	}

	explanation := ""
	if a := rule.ExplanationAction(); a != nil {
		explanation = renderExplanation(a, &rule, snap)
	}

	return types.Alert{
		ID:          types.NewAlertID(),
		RuleID:      rule.ID,
		Severity:    severity,
		Confidence:  rule.Confidence,
		Message:     message,
		Explanation: explanation,
		TriggeredBy: m.TriggeredBy,
	}
}

// AssembleAll builds and ranks the alerts for a set of matches.
func AssembleAll(matches []rules.Match, snap types.Snapshot) []types.Alert {
	alerts := make([]types.Alert, 0, len(matches))
	for _, m := range matches {
		alerts = append(alerts, Assemble(m, snap))
	}
	Rank(alerts)
	return alerts
}

// Rank sorts alerts in place: severity descending, confidence descending,
// rule id ascending.
func Rank(alerts []types.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Severity.Rank() != alerts[j].Severity.Rank() {
			return alerts[i].Severity.Rank() > alerts[j].Severity.Rank()
		}
		if alerts[i].Confidence != alerts[j].Confidence {
			return alerts[i].Confidence > alerts[j].Confidence
		}
		return alerts[i].RuleID < alerts[j].RuleID
	})
}

// Explain renders a rule's explanation against a snapshot without
// requiring a match, for the explain endpoint. Returns the raw template,
// the rendered text, and the guideline references backing the rule. A rule
// without an explanation action yields empty strings.
func Explain(rule types.Rule, snap types.Snapshot) (template, rendered string, refs []types.Reference) {
	for _, a := range rule.Actions {
		refs = append(refs, a.References...)
	}
	a := rule.ExplanationAction()
	if a == nil {
		return "", "", refs
	}
	return a.Template, renderExplanation(a, &rule, snap), refs
}

// renderExplanation substitutes each declared variable into the template.
func renderExplanation(action *types.Action, rule *types.Rule, snap types.Snapshot) string {
	ctx := matchContext(rule, snap)
	out := action.Template
	for _, v := range action.Variables {
		out = strings.ReplaceAll(out, "{"+v.Name+"}", resolveVariable(v, ctx))
	}
	return out
}

// resolveVariable produces the substitution text for one variable. Source
// paths win over literals; a resolution gap renders empty.
func resolveVariable(v types.Variable, ctx map[string]any) string {
	if v.Source != "" {
		segs, ok := parsePath(v.Source)
		if !ok {
			return ""
		}
		val, ok := resolve(segs, ctx)
		if !ok {
			return ""
		}
		return formatValue(val)
	}
	return v.Value
}

// matchContext exposes the snapshot and rule metadata under the roots
// source paths address: condition.<concept>, snapshot.<concept>,
// rule.<field>, action.references[i].<field>.
func matchContext(rule *types.Rule, snap types.Snapshot) map[string]any {
	var refs []any
	for _, a := range rule.Actions {
		for _, r := range a.References {
			refs = append(refs, map[string]any{"text": r.Text, "url": r.URL})
		}
	}

	return map[string]any{
		"condition": snap,
		"snapshot":  snap,
		"rule": map[string]any{
			"id":         rule.ID,
			"text":       rule.Text,
			"category":   string(rule.Category),
			"severity":   string(rule.Severity),
			"confidence": rule.Confidence,
		},
		"action": map[string]any{
			"references": refs,
		},
	}
}
