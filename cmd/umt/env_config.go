package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-umt/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string // UMT_CONFIG: config file name or path
	From       string // UMT_FROM: default input type
	To         string // UMT_TO: default output type

	// Tier 2 - Output and workers
	OutputDir string // UMT_OUTPUT_DIR: default output directory
	Indent    string // UMT_INDENT: JSON indentation
	Workers   int    // UMT_WORKERS: parallel workers

	// Tier 3 - Network
	Timeout   time.Duration // UMT_TIMEOUT: fetch timeout
	CacheTTL  time.Duration // UMT_CACHE_TTL: fetch cache lifetime
	UserAgent string        // UMT_USER_AGENT: fetch user agent
	MaxDepth  int           // UMT_MAX_DEPTH: crawl depth (-1 = unset)
	Store     string        // UMT_STORE: blob store backend
	StoreDir  string        // UMT_STORE_DIR: fs store directory
	StoreDB   string        // UMT_STORE_DB: sqlite store database
}

// knownEnvVars lists valid UMT_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"UMT_CONFIG": true,
	"UMT_FROM":   true,
	"UMT_TO":     true,
	// Tier 2 - Output and workers
	"UMT_OUTPUT_DIR": true,
	"UMT_INDENT":     true,
	"UMT_WORKERS":    true,
	// Tier 3 - Network
	"UMT_TIMEOUT":    true,
	"UMT_CACHE_TTL":  true,
	"UMT_USER_AGENT": true,
	"UMT_MAX_DEPTH":  true,
	"UMT_STORE":      true,
	"UMT_STORE_DIR":  true,
	"UMT_STORE_DB":   true,
}

// loadEnvConfig reads configuration from environment variables. Values
// that do not parse are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("UMT_CONFIG"),
		From:       getenv("UMT_FROM"),
		To:         getenv("UMT_TO"),
		OutputDir:  getenv("UMT_OUTPUT_DIR"),
		Indent:     getenv("UMT_INDENT"),
		UserAgent:  getenv("UMT_USER_AGENT"),
		Store:      getenv("UMT_STORE"),
		StoreDir:   getenv("UMT_STORE_DIR"),
		StoreDB:    getenv("UMT_STORE_DB"),
		MaxDepth:   -1,
	}

	if v := getenv("UMT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if v := getenv("UMT_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.CacheTTL = d
		}
	}
	if v := getenv("UMT_WORKERS"); v != "" {
		if w, err := strconv.Atoi(v); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	if v := getenv("UMT_MAX_DEPTH"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d >= 0 {
			cfg.MaxDepth = d
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized UMT_* variables.
// Helps catch typos like UMT_WORKER instead of UMT_WORKERS.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if strings.HasPrefix(env, "UMT_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Environment values replace config file values; CLI flags are applied
// afterwards by mergeFlags, so: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Indent != "" {
		cfg.Output.Indent = env.Indent
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}

	if env.Timeout > 0 {
		cfg.Crawl.Timeout = env.Timeout
	}
	if env.CacheTTL > 0 {
		cfg.Crawl.CacheTTL = env.CacheTTL
	}
	if env.UserAgent != "" {
		cfg.Crawl.UserAgent = env.UserAgent
	}
	if env.MaxDepth >= 0 {
		cfg.Crawl.MaxDepth = env.MaxDepth
	}

	if env.Store != "" {
		cfg.Images.Store = env.Store
	}
	if env.StoreDir != "" {
		cfg.Images.Dir = env.StoreDir
	}
	if env.StoreDB != "" {
		cfg.Images.DB = env.StoreDB
	}
}
