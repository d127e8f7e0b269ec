package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinsight/cdsengine/internal/alert"
	"github.com/clinsight/cdsengine/internal/rules"
	"github.com/clinsight/cdsengine/internal/types"
)

/*
 * Rule matching endpoint.
 *
 * POST /match-rules takes a patient snapshot (concept key -> fact value)
 * and returns the ranked alerts for every rule whose conditions all hold.
 * The request reads one catalog version for its entire duration; a reload
 * mid-flight is only visible to subsequent requests.
 *
 * Fired alerts are persisted as an audit trail when a database is
 * configured; persistence failures are logged but never fail the
 * clinical response.
 */

// MatchRules evaluates the active catalog against the posted snapshot.
func (s *Service) MatchRules(c echo.Context) error {
	var snap types.Snapshot
	if err := c.Bind(&snap); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed snapshot")
	}
	if len(snap) == 0 {
		return serviceError(types.ErrEmptySnapshot)
	}

	version, err := s.store.Current()
	if err != nil {
		return serviceError(err)
	}

	// The snapshot token index is an optimization; matching proceeds
	// without it if construction fails.
	idx, err := rules.SnapshotIndex(snap)
	if err != nil {
		s.logger.Warn().Err(err).Msg("snapshot index construction failed, matching without pre-filter")
		idx = nil
	}

	matches := rules.MatchSnapshot(version.Catalog, snap, idx)
	alerts := alert.AssembleAll(matches, snap)

	if s.queries != nil {
		s.persistAlerts(alerts)
	}

	if alerts == nil {
		alerts = []types.Alert{}
	}
	return c.JSON(http.StatusOK, alerts)
}

// persistAlerts records fired alerts for the audit trail. Failures are
// logged per alert and do not affect the response.
func (s *Service) persistAlerts(alerts []types.Alert) {
	now := time.Now().UTC().Format(time.RFC3339)
	for _, a := range alerts {
		triggered, err := json.Marshal(a.TriggeredBy)
		if err != nil {
			triggered = []byte("[]")
		}
		_, err = s.queries.Exec("insert-alert",
			string(a.ID), a.RuleID, string(a.Severity), a.Confidence,
			a.Message, a.Explanation, string(triggered), now)
		if err != nil {
			s.logger.Error().Err(err).Str("alert_id", string(a.ID)).Msg("failed to persist alert")
		}
	}
}
