package api

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

// alertRecord is one persisted fired alert from the audit trail.
type alertRecord struct {
	AlertID     string  `db:"alert_id" json:"alert_id"`
	RuleID      string  `db:"rule_id" json:"rule_id"`
	Severity    string  `db:"severity" json:"severity"`
	Confidence  float64 `db:"confidence" json:"confidence"`
	Message     string  `db:"message" json:"message"`
	Explanation string  `db:"explanation" json:"explanation"`
	TriggeredBy string  `db:"triggered_by" json:"-"`
	CreatedAt   string  `db:"created_at" json:"created_at"`

	Triggered []string `db:"-" json:"triggered_by"`
}

// RuleAlerts returns the most recent fired alerts for one rule, newest
// first. Requires a configured database.
func (s *Service) RuleAlerts(c echo.Context) error {
	if s.queries == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "alert history requires a database")
	}

	id := c.Param("id")
	var records []alertRecord
	if err := s.queries.Select("list-alerts-for-rule", &records, id); err != nil {
		s.logger.Error().Err(err).Str("rule_id", id).Msg("failed to load alert history")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load alert history")
	}

	for i := range records {
		if err := json.Unmarshal([]byte(records[i].TriggeredBy), &records[i].Triggered); err != nil {
			records[i].Triggered = []string{}
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"rule_id": id,
		"count":   len(records),
		"alerts":  records,
	})
}

// FeedbackStats aggregates clinician feedback for one rule: how often its
// alerts fired feedback at all, and how often they were marked helpful.
// Requires a configured database.
func (s *Service) FeedbackStats(c echo.Context) error {
	if s.queries == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "feedback stats require a database")
	}

	id := c.Param("id")
	var stats struct {
		Total   int `db:"total"`
		Helpful int `db:"helpful"`
	}
	if err := s.queries.Get("feedback-stats-for-rule", &stats, id); err != nil {
		s.logger.Error().Err(err).Str("rule_id", id).Msg("failed to load feedback stats")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load feedback stats")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"rule_id": id,
		"total":   stats.Total,
		"helpful": stats.Helpful,
	})
}
