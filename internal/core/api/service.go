// Package api provides the HTTP handlers for the CDS engine service.
package api

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinsight/cdsengine/internal/catalog"
	"github.com/clinsight/cdsengine/internal/core/auth"
	"github.com/clinsight/cdsengine/internal/core/config"
	"github.com/clinsight/cdsengine/internal/core/db"
	"github.com/clinsight/cdsengine/internal/types"
)

// Version of the service, reported on the root endpoint.
const Version = "0.1.0"

// RuleSource supplies the current rule definitions on demand; the serve
// command wires it to the rules directory or the database.
type RuleSource func() ([]types.Rule, error)

// Service is a thin orchestration layer delegating to the catalog store,
// matcher, assembler, and database packages.
type Service struct {
	store   *catalog.Store
	queries *db.Queries // nil when running without a database
	cfg     *config.ServerConfig
	logger  zerolog.Logger
	source  RuleSource
}

// NewService creates the service instance with its dependencies. queries
// may be nil; alert persistence and feedback are then disabled.
func NewService(store *catalog.Store, queries *db.Queries, cfg *config.ServerConfig, logger zerolog.Logger, source RuleSource) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("source cannot be nil")
	}
	return &Service{
		store:   store,
		queries: queries,
		cfg:     cfg,
		logger:  logger,
		source:  source,
	}, nil
}

// Register wires all routes. Mutating endpoints take the authenticator;
// read endpoints stay open.
func (s *Service) Register(e *echo.Echo, authenticator *auth.Authenticator) {
	e.GET("/", s.Root)
	e.GET("/healthz", s.Healthz)
	e.POST("/match-rules", s.MatchRules)
	e.GET("/suggest-rules", s.SuggestRules)
	e.POST("/explain-rule", s.ExplainRule)
	e.GET("/rules", s.ListRules)
	e.GET("/rules/:id", s.GetRule)
	e.GET("/rules/:id/alerts", s.RuleAlerts)
	e.GET("/rules/:id/feedback", s.FeedbackStats)

	write := e.Group("", authenticator.Middleware())
	write.POST("/reload-rules", s.ReloadRules)
	write.POST("/feedback", s.Feedback)
	write.PUT("/rules/:id", s.UpsertRule)
	write.DELETE("/rules/:id", s.DisableRule)
}

// Root reports service identity.
func (s *Service) Root(c echo.Context) error {
	return c.JSON(200, map[string]string{
		"name":    "Clinical Decision Support Rule Engine",
		"version": Version,
		"status":  "operational",
	})
}

// Healthz reports liveness and whether a catalog version is active.
func (s *Service) Healthz(c echo.Context) error {
	loaded := 0
	if v, err := s.store.Current(); err == nil {
		loaded = v.Catalog.Len()
	}
	return c.JSON(200, map[string]any{
		"status":       "ok",
		"rules_loaded": loaded,
	})
}
