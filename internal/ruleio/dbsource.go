package ruleio

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/clinsight/cdsengine/internal/core/db"
	"github.com/clinsight/cdsengine/internal/types"
)

// ruleRow mirrors the rules table: the definition column carries the full
// rule as a JSON document.
type ruleRow struct {
	RuleID     string `db:"rule_id"`
	Definition string `db:"definition"`
	Enabled    bool   `db:"enabled"`
	UpdatedAt  string `db:"updated_at"`
}

// LoadDB reads all enabled rules from the database. A malformed definition
// row is logged and skipped; remaining rows continue to load, so one bad
// row cannot take the catalog down.
func LoadDB(q *db.Queries, logger zerolog.Logger) ([]types.Rule, error) {
	var rows []ruleRow
	if err := q.Select("list-rules", &rows); err != nil {
		return nil, err
	}

	rules := make([]types.Rule, 0, len(rows))
	for _, row := range rows {
		var rule types.Rule
		if err := json.Unmarshal([]byte(row.Definition), &rule); err != nil {
			logger.Warn().Str("rule_id", row.RuleID).Err(err).Msg("skipping malformed rule definition")
			continue
		}
		if rule.ID == "" {
			rule.ID = row.RuleID
		}
		rules = append(rules, rule)
	}

	return rules, nil
}
