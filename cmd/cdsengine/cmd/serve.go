package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinsight/cdsengine/internal/catalog"
	"github.com/clinsight/cdsengine/internal/core/api"
	"github.com/clinsight/cdsengine/internal/core/auth"
	"github.com/clinsight/cdsengine/internal/core/config"
	"github.com/clinsight/cdsengine/internal/core/db"
	"github.com/clinsight/cdsengine/internal/core/server"
	"github.com/clinsight/cdsengine/internal/ruleio"
	"github.com/clinsight/cdsengine/internal/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP decision-support API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "HTTP server host")
	serveCmd.Flags().Int("port", 8080, "HTTP server port")
	serveCmd.Flags().String("rules-dir", "", "directory of YAML/JSON rule files")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		cfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		cfg.Port = port
	}
	if cmd.Flags().Changed("rules-dir") {
		dir, _ := cmd.Flags().GetString("rules-dir")
		cfg.RulesDir = dir
	}

	// The database is optional: without one, rules come from the rules
	// directory and alert persistence plus feedback are disabled.
	var queries *db.Queries
	if dbURL != "" {
		database, err := db.Open(dbURL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		queries, err = db.LoadQueries(database)
		if err != nil {
			return fmt.Errorf("failed to load queries: %w", err)
		}
	}

	source := ruleSource(cfg, queries, logger)

	store := catalog.NewStore()
	defs, err := source()
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	verrs, err := store.Reload(defs)
	if err != nil {
		return fmt.Errorf("failed to build rule catalog: %w", err)
	}
	for _, ve := range verrs {
		logger.Warn().Str("rule_id", ve.RuleID).Str("field", ve.Field).Str("detail", ve.Detail).Msg("rule excluded by validation")
	}
	version, err := store.Current()
	if err != nil {
		return err
	}
	logger.Info().Int("rules_loaded", version.Catalog.Len()).Int("rules_rejected", len(verrs)).Msg("rule catalog loaded")

	keys, err := config.APIKeys()
	if err != nil {
		return fmt.Errorf("failed to load API keys: %w", err)
	}
	authenticator := auth.NewAuthenticator(keys)
	if !authenticator.Enabled() {
		logger.Warn().Msg("no API keys configured, write endpoints are unauthenticated")
	}

	service, err := api.NewService(store, queries, cfg, logger, source)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	httpServer, err := server.NewHTTPServer(cfg, service, authenticator, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info().Str("version", api.Version).Msg("starting decision support service")
	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		logger.Info().Msg("shutting down gracefully")
		return httpServer.Shutdown(ctx)
	}
}

// ruleSource picks the rule origin: the database when configured, the
// rules directory otherwise. File decode failures are logged per file and
// do not abort the load.
func ruleSource(cfg *config.ServerConfig, queries *db.Queries, logger zerolog.Logger) api.RuleSource {
	if queries != nil {
		return func() ([]types.Rule, error) {
			return ruleio.LoadDB(queries, logger)
		}
	}
	return func() ([]types.Rule, error) {
		rules, fileErrs, err := ruleio.LoadDir(cfg.RulesDir)
		if err != nil {
			return nil, err
		}
		for _, fe := range fileErrs {
			logger.Warn().Str("path", fe.Path).Err(fe.Err).Msg("skipping undecodable rule file")
		}
		return rules, nil
	}
}
