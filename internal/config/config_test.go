package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-umt/fetch"
	"github.com/alnah/go-umt/plugin/linkcrawl"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestDefaultConfig - Defaults mirror the plugin defaults
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
	if cfg.Crawl.Enabled || cfg.Images.Enabled {
		t.Error("network plugins must be off by default")
	}
	if cfg.Crawl.MaxDepth != 1 {
		t.Errorf("Crawl.MaxDepth = %d, want 1", cfg.Crawl.MaxDepth)
	}
	if cfg.Crawl.Timeout != fetch.DefaultTimeout {
		t.Errorf("Crawl.Timeout = %v, want %v", cfg.Crawl.Timeout, fetch.DefaultTimeout)
	}
	if !slices.Equal(cfg.Crawl.BlockedDomains, linkcrawl.DefaultBlockedDomains) {
		t.Errorf("Crawl.BlockedDomains = %v", cfg.Crawl.BlockedDomains)
	}
	if cfg.Images.Store != StoreFS {
		t.Errorf("Images.Store = %q, want %q", cfg.Images.Store, StoreFS)
	}
}

// ---------------------------------------------------------------------------
// TestConfig_Validate - Field and cross-field rules
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "tab indent", mutate: func(c *Config) { c.Output.Indent = "\t" }},
		{name: "indent with letters", mutate: func(c *Config) { c.Output.Indent = "ab" }, wantErr: "Indent"},
		{name: "indent too long", mutate: func(c *Config) { c.Output.Indent = strings.Repeat(" ", MaxIndentLength+1) }, wantErr: "Indent"},
		{name: "negative workers", mutate: func(c *Config) { c.Workers = -1 }, wantErr: "Workers"},
		{name: "too many workers", mutate: func(c *Config) { c.Workers = MaxWorkers + 1 }, wantErr: "Workers"},
		{name: "depth zero", mutate: func(c *Config) { c.Crawl.MaxDepth = 0 }},
		{name: "depth too deep", mutate: func(c *Config) { c.Crawl.MaxDepth = MaxCrawlDepth + 1 }, wantErr: "MaxDepth"},
		{name: "negative depth", mutate: func(c *Config) { c.Crawl.MaxDepth = -1 }, wantErr: "MaxDepth"},
		{name: "negative timeout", mutate: func(c *Config) { c.Crawl.Timeout = -time.Second }, wantErr: "Timeout"},
		{name: "negative cache ttl", mutate: func(c *Config) { c.Crawl.CacheTTL = -time.Second }, wantErr: "CacheTTL"},
		{name: "negative content size", mutate: func(c *Config) { c.Crawl.MaxContentSize = -1 }, wantErr: "MaxContentSize"},
		{name: "redirects disabled", mutate: func(c *Config) { c.Crawl.MaxRedirects = -1 }},
		{name: "too many redirects", mutate: func(c *Config) { c.Crawl.MaxRedirects = MaxRedirects + 1 }, wantErr: "MaxRedirects"},
		{name: "allowed domain", mutate: func(c *Config) { c.Crawl.AllowedDomains = []string{"go.dev"} }},
		{name: "allowed domain with scheme", mutate: func(c *Config) { c.Crawl.AllowedDomains = []string{"https://go.dev"} }, wantErr: "AllowedDomains"},
		{name: "empty blocked domain", mutate: func(c *Config) { c.Crawl.BlockedDomains = []string{""} }, wantErr: "BlockedDomains"},
		{name: "user agent too long", mutate: func(c *Config) { c.Crawl.UserAgent = strings.Repeat("a", MaxUserAgent+1) }, wantErr: "UserAgent"},
		{name: "unknown store", mutate: func(c *Config) { c.Images.Store = "s3" }, wantErr: "Store"},
		{name: "fs store without dir", mutate: func(c *Config) {
			c.Images.Enabled = true
			c.Images.Dir = ""
		}, wantErr: "Dir"},
		{name: "disabled fs store without dir", mutate: func(c *Config) { c.Images.Dir = "" }},
		{name: "sqlite store without db", mutate: func(c *Config) {
			c.Images.Enabled = true
			c.Images.Store = StoreSQLite
			c.Images.DB = ""
		}, wantErr: "DB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() error = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestCrawlConfig_Conversions - Plugin and fetcher configuration
// ---------------------------------------------------------------------------

func TestCrawlConfig_LinkCrawlConfig(t *testing.T) {
	t.Parallel()

	t.Run("nil blocked list uses defaults", func(t *testing.T) {
		t.Parallel()

		got := CrawlConfig{MaxDepth: 2}.LinkCrawlConfig()
		if !slices.Equal(got.BlockedDomains, linkcrawl.DefaultBlockedDomains) {
			t.Errorf("BlockedDomains = %v", got.BlockedDomains)
		}
		if got.MaxDepth != 2 {
			t.Errorf("MaxDepth = %d, want 2", got.MaxDepth)
		}
		if got.Fetch.WithDefaults() != fetch.DefaultConfig() {
			t.Errorf("Fetch = %+v, want defaults once filled", got.Fetch)
		}
	})

	t.Run("empty blocked list blocks nothing", func(t *testing.T) {
		t.Parallel()

		got := CrawlConfig{BlockedDomains: []string{}}.LinkCrawlConfig()
		if len(got.BlockedDomains) != 0 {
			t.Errorf("BlockedDomains = %v, want empty", got.BlockedDomains)
		}
	})

	t.Run("explicit fetch bounds kept", func(t *testing.T) {
		t.Parallel()

		got := CrawlConfig{Timeout: time.Second, UserAgent: "bot", MaxContentSize: 10, MaxRedirects: -1}.FetchConfig()
		want := fetch.Config{Timeout: time.Second, UserAgent: "bot", MaxContentSize: 10, MaxRedirects: -1}
		if got != want {
			t.Errorf("FetchConfig() = %+v, want %+v", got, want)
		}
	})
}

// ---------------------------------------------------------------------------
// TestLoadConfig - File resolution and decoding
// ---------------------------------------------------------------------------

func TestLoadConfig(t *testing.T) {
	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path loads config", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "umt.yaml", `output:
  defaultDir: out
  indent: "  "
plugins:
  id: true
  sanitize: true
crawl:
  enabled: true
  maxDepth: 2
  timeout: 10s
  cacheTTL: 5m
  allowedDomains: [go.dev]
images:
  enabled: true
  store: sqlite
  db: blobs.db
workers: 4
`)

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Output.DefaultDir != "out" || cfg.Output.Indent != "  " {
			t.Errorf("Output = %+v", cfg.Output)
		}
		if !cfg.Plugins.ID || !cfg.Plugins.Sanitize || cfg.Plugins.Text {
			t.Errorf("Plugins = %+v", cfg.Plugins)
		}
		if !cfg.Crawl.Enabled || cfg.Crawl.MaxDepth != 2 {
			t.Errorf("Crawl = %+v", cfg.Crawl)
		}
		if cfg.Crawl.Timeout != 10*time.Second || cfg.Crawl.CacheTTL != 5*time.Minute {
			t.Errorf("durations = %v, %v", cfg.Crawl.Timeout, cfg.Crawl.CacheTTL)
		}
		if cfg.Images.Store != StoreSQLite || cfg.Images.DB != "blobs.db" {
			t.Errorf("Images = %+v", cfg.Images)
		}
		if cfg.Workers != 4 {
			t.Errorf("Workers = %d, want 4", cfg.Workers)
		}
	})

	t.Run("omitted sections keep defaults", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "umt.yaml", "workers: 2\n")

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Crawl.MaxDepth != 1 || cfg.Images.Dir != "images" {
			t.Errorf("defaults lost: %+v", cfg)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/path/umt.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "invalid.yaml", "crawl: [unclosed")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse in strict mode", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "unknown.yaml", "crawl:\n  depth: 3\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("out of range value returns ErrInvalidConfig", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "deep.yaml", "crawl:\n  maxDepth: 99\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("name resolves in current directory", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "work.yml", "workers: 3\n")
		t.Chdir(dir)

		cfg, err := LoadConfig("work")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Workers != 3 {
			t.Errorf("Workers = %d, want 3", cfg.Workers)
		}
	})

	t.Run("unknown name lists tried paths", func(t *testing.T) {
		t.Chdir(t.TempDir())

		_, err := LoadConfig("missing-config-name")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "missing-config-name.yaml") || !strings.Contains(err.Error(), "missing-config-name.yml") {
			t.Errorf("error = %q, want tried paths", err)
		}
	})
}
