package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinsight/cdsengine/internal/alert"
	"github.com/clinsight/cdsengine/internal/types"
)

// ExplainRule renders one rule's explanation template against the posted
// snapshot, returning the template, the rendered text, the declared
// variables, the rule's suggested alternatives, and the backing guideline
// references.
// POST /explain-rule?rule_id=CKD_NSAID
func (s *Service) ExplainRule(c echo.Context) error {
	ruleID := c.QueryParam("rule_id")
	if ruleID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "rule_id is required")
	}

	version, err := s.store.Current()
	if err != nil {
		return serviceError(err)
	}

	rule, ok := version.Catalog.Rule(ruleID)
	if !ok {
		return serviceError(types.ErrRuleNotFound)
	}

	// Snapshot body is optional; without one, source-path variables
	// render as empty placeholders.
	var snap types.Snapshot
	if err := c.Bind(&snap); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed snapshot")
	}

	template, rendered, refs := alert.Explain(rule, snap)
	variables := []types.Variable{}
	if a := rule.ExplanationAction(); a != nil {
		variables = a.Variables
	}
	if refs == nil {
		refs = []types.Reference{}
	}

	suggestions := []string{}
	for _, a := range rule.SuggestionActions() {
		if a.Message != "" {
			suggestions = append(suggestions, a.Message)
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"rule_id":     rule.ID,
		"template":    template,
		"explanation": rendered,
		"variables":   variables,
		"suggestions": suggestions,
		"guidelines":  refs,
	})
}
