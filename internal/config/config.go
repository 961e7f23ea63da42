// Package config provides centralized configuration loading for the layout
// engine and its REST surface.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all layout-engine configuration.
type Config struct {
	// Core
	Port string

	// Packer defaults read from the environment. internal/layout.Context
	// carries the per-context values; the HTTP handlers do not copy these
	// into a context that omits them, so such a context gets
	// internal/layout's own defaults (0.8 and 5).
	PercentCoords bool
	ReduceFactor  float64
	ReduceTries   int

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	reduceFactor, err := parseFloat(getenv("LAYOUT_REDUCE_FACTOR", "0.8"))
	if err != nil {
		return nil, fmt.Errorf("LAYOUT_REDUCE_FACTOR: %w", err)
	}
	if reduceFactor <= 0 || reduceFactor > 1 {
		return nil, fmt.Errorf("LAYOUT_REDUCE_FACTOR must be in (0,1], got %v", reduceFactor)
	}

	reduceTries, err := strconv.Atoi(getenv("LAYOUT_REDUCE_TRIES", "5"))
	if err != nil || reduceTries < 0 {
		return nil, fmt.Errorf("LAYOUT_REDUCE_TRIES must be a non-negative integer")
	}

	c := &Config{
		Port:          getenv("LAYOUT_PORT", "8080"),
		PercentCoords: getenv("LAYOUT_PERCENT_COORDS", "false") == "true",
		ReduceFactor:  reduceFactor,
		ReduceTries:   reduceTries,
		LogLevel:      getenv("ROOST_LOG_LEVEL", "info"),
		LogFormat:     getenv("ROOST_LOG_FORMAT", "json"),
	}

	return c, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
