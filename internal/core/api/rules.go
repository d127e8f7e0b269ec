package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinsight/cdsengine/internal/types"
)

// ListRules returns the identifiers of all loaded rules.
func (s *Service) ListRules(c echo.Context) error {
	version, err := s.store.Current()
	if err != nil {
		return serviceError(err)
	}
	ids := version.Catalog.RuleIDs()
	return c.JSON(http.StatusOK, map[string]any{
		"count":    len(ids),
		"rule_ids": ids,
	})
}

// GetRule returns one rule definition by id.
func (s *Service) GetRule(c echo.Context) error {
	version, err := s.store.Current()
	if err != nil {
		return serviceError(err)
	}
	rule, ok := version.Catalog.Rule(c.Param("id"))
	if !ok {
		return serviceError(types.ErrRuleNotFound)
	}
	return c.JSON(http.StatusOK, rule)
}

// ReloadRules rebuilds the catalog and its index from the rule source and
// atomically swaps the new version in. In-flight match requests keep the
// version they started with. Validation failures are reported but do not
// block loading of the remaining valid rules.
func (s *Service) ReloadRules(c echo.Context) error {
	defs, err := s.source()
	if err != nil {
		s.logger.Error().Err(err).Msg("rule source failed during reload")
		return echo.NewHTTPError(http.StatusBadGateway, "rule source unavailable")
	}

	verrs, err := s.store.Reload(defs)
	if err != nil {
		// Index build failure: the previous version stays active.
		s.logger.Error().Err(err).Msg("catalog reload failed, previous version retained")
		return echo.NewHTTPError(http.StatusInternalServerError, "catalog reload failed")
	}

	version, err := s.store.Current()
	if err != nil {
		return serviceError(err)
	}

	messages := make([]string, 0, len(verrs))
	for _, ve := range verrs {
		messages = append(messages, ve.Error())
	}

	s.logger.Info().
		Int("rules_loaded", version.Catalog.Len()).
		Int("validation_errors", len(messages)).
		Msg("rule catalog reloaded")

	return c.JSON(http.StatusOK, map[string]any{
		"rules_loaded":      version.Catalog.Len(),
		"validation_errors": messages,
	})
}
