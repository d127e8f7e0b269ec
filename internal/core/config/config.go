// Package config provides configuration management for the CDS engine
// service.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ServerConfig holds configuration for the HTTP API service.
type ServerConfig struct {
	Host            string
	Port            int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	RulesDir        string
	SuggestLimit    int // default prefix-match result cap
}

// DefaultServerConfig returns configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		RequestTimeout:  10 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		RulesDir:        "./rules",
		SuggestLimit:    10,
	}
}

// APIKeys extracts API keys from environment variables.
// Supports CDS_API_KEY (single) and CDS_API_KEY_N (rotation).
// Multiple keys keep old and new credentials valid during migration.
// Keys are environment-only; config files carrying them are rejected.
func APIKeys() ([]string, error) {
	var keys []string

	if val := strings.TrimSpace(os.Getenv("CDS_API_KEY")); val != "" {
		if len(val) < 16 {
			return nil, fmt.Errorf("CDS_API_KEY: key must be at least 16 characters, got %d", len(val))
		}
		keys = append(keys, val)
	}

	for i := 1; ; i++ {
		name := fmt.Sprintf("CDS_API_KEY_%d", i)
		val := strings.TrimSpace(os.Getenv(name))
		if val == "" {
			break
		}
		if len(val) < 16 {
			return nil, fmt.Errorf("%s: key must be at least 16 characters, got %d", name, len(val))
		}
		keys = append(keys, val)
	}

	return keys, nil
}
