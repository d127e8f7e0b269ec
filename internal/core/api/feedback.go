package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinsight/cdsengine/internal/types"
)

// feedbackRequest is a clinician's response to a fired alert.
type feedbackRequest struct {
	AlertID  string `json:"alert_id"`
	RuleID   string `json:"rule_id"`
	Helpful  bool   `json:"helpful"`
	Comments string `json:"comments,omitempty"`
}

// Feedback persists a clinician's helpful/not-helpful response for an
// alert. Requires a configured database.
func (s *Service) Feedback(c echo.Context) error {
	if s.queries == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "feedback requires a database")
	}

	var req feedbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed feedback")
	}
	if _, err := types.ParseAlertID(req.AlertID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "alert_id must be a valid UUID")
	}
	if req.RuleID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "rule_id is required")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.queries.Exec("insert-feedback", req.AlertID, req.RuleID, req.Helpful, req.Comments, now); err != nil {
		s.logger.Error().Err(err).Str("alert_id", req.AlertID).Msg("failed to persist feedback")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to record feedback")
	}

	return c.JSON(http.StatusCreated, map[string]string{"status": "recorded"})
}
