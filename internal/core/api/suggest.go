package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// maxSuggestLimit caps caller-provided limits regardless of configuration.
const maxSuggestLimit = 100

// SuggestRules returns catalog tokens sharing the given prefix, in
// lexicographic order, for rule-id autocomplete.
// GET /suggest-rules?prefix=ckd&limit=10
func (s *Service) SuggestRules(c echo.Context) error {
	version, err := s.store.Current()
	if err != nil {
		return serviceError(err)
	}

	prefix := c.QueryParam("prefix")
	limit := s.cfg.SuggestLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}
	if limit > maxSuggestLimit {
		limit = maxSuggestLimit
	}

	suggestions := []string{}
	for token := range version.Index.PrefixMatches(prefix, limit) {
		suggestions = append(suggestions, token)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"prefix":      prefix,
		"suggestions": suggestions,
	})
}
