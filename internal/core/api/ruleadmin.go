package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinsight/cdsengine/internal/catalog"
	"github.com/clinsight/cdsengine/internal/types"
)

/*
 * Rule administration endpoints.
 *
 * Rules stored in the database are the serve-from-db catalog source. Upsert
 * and disable change the stored set only; the active catalog picks the
 * changes up on the next /reload-rules. Both endpoints sit behind the write
 * authenticator and require a configured database.
 */

// UpsertRule validates and stores one rule definition under /rules/:id.
// A definition that fails catalog validation is rejected outright rather
// than stored disabled; the rules table only ever holds loadable rules.
func (s *Service) UpsertRule(c echo.Context) error {
	if s.queries == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "rule administration requires a database")
	}

	var rule types.Rule
	if err := c.Bind(&rule); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed rule definition")
	}
	id := c.Param("id")
	if rule.ID == "" {
		rule.ID = id
	}
	if rule.ID != id {
		return echo.NewHTTPError(http.StatusBadRequest, "rule id in body does not match path")
	}

	if _, verrs := catalog.FromRules([]types.Rule{rule}); len(verrs) > 0 {
		messages := make([]string, 0, len(verrs))
		for _, ve := range verrs {
			messages = append(messages, ve.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, messages)
	}

	definition, err := json.Marshal(rule)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "rule definition not serializable")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.queries.Exec("upsert-rule", rule.ID, string(definition), now); err != nil {
		s.logger.Error().Err(err).Str("rule_id", rule.ID).Msg("failed to store rule")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store rule")
	}

	s.logger.Info().Str("rule_id", rule.ID).Msg("rule stored")
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "stored",
		"rule_id": rule.ID,
	})
}

// DisableRule marks a stored rule disabled so the next reload drops it.
// The row is kept; fired alerts and feedback stay attributable.
func (s *Service) DisableRule(c echo.Context) error {
	if s.queries == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "rule administration requires a database")
	}

	id := c.Param("id")
	var row struct {
		RuleID     string `db:"rule_id"`
		Definition string `db:"definition"`
		Enabled    bool   `db:"enabled"`
		UpdatedAt  string `db:"updated_at"`
	}
	err := s.queries.Get("get-rule", &row, id)
	if errors.Is(err, sql.ErrNoRows) {
		return serviceError(types.ErrRuleNotFound)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("rule_id", id).Msg("failed to look up rule")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to look up rule")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.queries.Exec("disable-rule", now, id); err != nil {
		s.logger.Error().Err(err).Str("rule_id", id).Msg("failed to disable rule")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to disable rule")
	}

	s.logger.Info().Str("rule_id", id).Msg("rule disabled")
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "disabled",
		"rule_id": id,
	})
}
