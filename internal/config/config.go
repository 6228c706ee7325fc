// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

// Package config provides layered configuration for Rewind.
//
// Loading order (Koanf v2):
//  1. Defaults: built-in sensible defaults for all optional settings
//  2. Config File: optional YAML config file (config.yaml)
//  3. Environment Variables: override any setting
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Emby     EmbyConfig     `koanf:"emby"`
	TMDB     TMDBConfig     `koanf:"tmdb"` // Optional: poster enrichment
	Server   ServerConfig   `koanf:"server"`
	Cache    CacheConfig    `koanf:"cache"`
	Fetch    FetchConfig    `koanf:"fetch"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// EmbyConfig connects Rewind to an Emby-compatible media server with the
// Playback Reporting plugin installed. URL and APIKey are required.
type EmbyConfig struct {
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// TMDBConfig enables poster lookups against The Movie Database. Disabled
// unless an API key is configured; reports degrade to server artwork only.
type TMDBConfig struct {
	Enabled       bool          `koanf:"enabled"`
	APIKey        string        `koanf:"api_key"`
	Timeout       time.Duration `koanf:"timeout"`
	RatePerSecond float64       `koanf:"rate_per_second"`
	RateBurst     int           `koanf:"rate_burst"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// CacheConfig sets the TTLs of the in-memory caches.
type CacheConfig struct {
	ReportTTL time.Duration `koanf:"report_ttl"`
	RollupTTL time.Duration `koanf:"rollup_ttl"`
	PosterTTL time.Duration `koanf:"poster_ttl"`
}

// FetchConfig bounds the upstream fetch fan-out during report generation.
type FetchConfig struct {
	// ItemBatchSize is how many item ids one Items request may carry.
	ItemBatchSize int `koanf:"item_batch_size"`
	// MaxItemFetch caps the distinct item ids fetched per report.
	MaxItemFetch int `koanf:"max_item_fetch"`
	// RollupConcurrency is how many users are fetched in parallel during
	// the server-wide rollup.
	RollupConcurrency int `koanf:"rollup_concurrency"`
}

// SecurityConfig covers CORS and rate limiting for the API surface.
type SecurityConfig struct {
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Validate checks required fields and value ranges. Called by Load; exposed
// for tests and for configs assembled by hand.
func (c *Config) Validate() error {
	if c.Emby.URL == "" {
		return fmt.Errorf("emby.url is required")
	}
	parsed, err := url.Parse(c.Emby.URL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("emby.url must be an absolute http(s) URL, got %q", c.Emby.URL)
	}
	if c.Emby.APIKey == "" {
		return fmt.Errorf("emby.api_key is required")
	}
	if c.TMDB.Enabled && c.TMDB.APIKey == "" {
		return fmt.Errorf("tmdb.api_key is required when tmdb.enabled is true")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Fetch.ItemBatchSize < 1 {
		return fmt.Errorf("fetch.item_batch_size must be positive, got %d", c.Fetch.ItemBatchSize)
	}
	if c.Fetch.MaxItemFetch < c.Fetch.ItemBatchSize {
		return fmt.Errorf("fetch.max_item_fetch must be at least fetch.item_batch_size")
	}
	if c.Fetch.RollupConcurrency < 1 {
		return fmt.Errorf("fetch.rollup_concurrency must be positive, got %d", c.Fetch.RollupConcurrency)
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("security.rate_limit_reqs must be positive, got %d", c.Security.RateLimitReqs)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	return nil
}
