// Package config loads the YAML configuration of the umt command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-umt/fetch"
	"github.com/alnah/go-umt/internal/fileutil"
	"github.com/alnah/go-umt/internal/yamlutil"
	"github.com/alnah/go-umt/plugin/linkcrawl"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidConfig   = errors.New("invalid config")
)

// Blob store backends.
const (
	StoreFS     = "fs"
	StoreSQLite = "sqlite"
)

// Limits.
const (
	MaxCrawlDepth   = 10
	MaxWorkers      = 64
	MaxRedirects    = 20
	MaxDomainLength = 253 // RFC 1035
	MaxUserAgent    = 256
	MaxIndentLength = 8
)

// configDirName is the directory under os.UserConfigDir searched for named
// configs.
const configDirName = "umt"

// Config holds all configuration for the umt command.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Plugins PluginsConfig `yaml:"plugins"`
	Crawl   CrawlConfig   `yaml:"crawl"`
	Images  ImagesConfig  `yaml:"images"`
	Workers int           `yaml:"workers"` // 0 = derived from GOMAXPROCS
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = stdout or source dir)
	Indent     string `yaml:"indent"`     // JSON indentation (empty = compact)
}

// PluginsConfig toggles the optional plugins.
type PluginsConfig struct {
	ID        bool `yaml:"id"`        // Assign a UUID to every node
	Text      bool `yaml:"text"`      // Attach text/plain trees to markdown text
	Sanitize  bool `yaml:"sanitize"`  // Sanitize rendered HTML
	HardWraps bool `yaml:"hardWraps"` // Render soft breaks as <br>
	PlainCode bool `yaml:"plainCode"` // Disable syntax highlighting
}

// CrawlConfig controls link crawling.
type CrawlConfig struct {
	Enabled           bool          `yaml:"enabled"`
	Render            bool          `yaml:"render"` // Fetch through a headless browser
	CurrentDomainOnly bool          `yaml:"currentDomainOnly"`
	AllowedDomains    []string      `yaml:"allowedDomains"`
	BlockedDomains    []string      `yaml:"blockedDomains"` // nil = linkcrawl defaults
	MaxDepth          int           `yaml:"maxDepth"`
	CacheTTL          time.Duration `yaml:"cacheTTL"` // 0 = no cache
	Timeout           time.Duration `yaml:"timeout"`
	UserAgent         string        `yaml:"userAgent"`
	MaxContentSize    int64         `yaml:"maxContentSize"`
	MaxRedirects      int           `yaml:"maxRedirects"`
}

// ImagesConfig controls image download.
type ImagesConfig struct {
	Enabled bool   `yaml:"enabled"`
	Store   string `yaml:"store"` // "fs" or "sqlite"
	Dir     string `yaml:"dir"`   // FS store directory
	DB      string `yaml:"db"`    // SQLite database path
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	crawl := linkcrawl.DefaultConfig()
	return &Config{
		Crawl: CrawlConfig{
			BlockedDomains: crawl.BlockedDomains,
			MaxDepth:       crawl.MaxDepth,
			Timeout:        crawl.Fetch.Timeout,
			UserAgent:      crawl.Fetch.UserAgent,
			MaxContentSize: crawl.Fetch.MaxContentSize,
			MaxRedirects:   crawl.Fetch.MaxRedirects,
		},
		Images: ImagesConfig{
			Store: StoreFS,
			Dir:   "images",
			DB:    "umt-blobs.db",
		},
	}
}

// Validate checks field ranges and cross-field requirements.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Output),
		validation.Field(&c.Crawl),
		validation.Field(&c.Images),
		validation.Field(&c.Workers, validation.Min(0), validation.Max(MaxWorkers)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate implements validation.Validatable.
func (o OutputConfig) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Indent,
			validation.Length(0, MaxIndentLength),
			validation.By(onlyBlanks),
		),
	)
}

// Validate implements validation.Validatable.
func (c CrawlConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.AllowedDomains, validation.Each(validation.Required, validation.Length(1, MaxDomainLength), validation.By(bareHost))),
		validation.Field(&c.BlockedDomains, validation.Each(validation.Required, validation.Length(1, MaxDomainLength), validation.By(bareHost))),
		validation.Field(&c.MaxDepth, validation.Min(0), validation.Max(MaxCrawlDepth)),
		validation.Field(&c.CacheTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.UserAgent, validation.Length(0, MaxUserAgent)),
		validation.Field(&c.MaxContentSize, validation.Min(int64(0))),
		validation.Field(&c.MaxRedirects, validation.Min(-1), validation.Max(MaxRedirects)),
	)
}

// Validate implements validation.Validatable.
func (i ImagesConfig) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Store, validation.In(StoreFS, StoreSQLite).Error("must be fs or sqlite")),
		validation.Field(&i.Dir, validation.When(i.Enabled && i.Store == StoreFS, validation.Required)),
		validation.Field(&i.DB, validation.When(i.Enabled && i.Store == StoreSQLite, validation.Required)),
	)
}

// FetchConfig returns the request bounds shared by every fetcher. Zero
// fields are left for the fetchers to default.
func (c CrawlConfig) FetchConfig() fetch.Config {
	return fetch.Config{
		Timeout:        c.Timeout,
		UserAgent:      c.UserAgent,
		MaxContentSize: c.MaxContentSize,
		MaxRedirects:   c.MaxRedirects,
	}
}

// LinkCrawlConfig converts the section to plugin configuration.
func (c CrawlConfig) LinkCrawlConfig() linkcrawl.Config {
	blocked := c.BlockedDomains
	if blocked == nil {
		blocked = linkcrawl.DefaultBlockedDomains
	}
	return linkcrawl.Config{
		CurrentDomainOnly: c.CurrentDomainOnly,
		AllowedDomains:    slices.Clone(c.AllowedDomains),
		BlockedDomains:    slices.Clone(blocked),
		MaxDepth:          c.MaxDepth,
		Fetch:             c.FetchConfig(),
	}
}

func onlyBlanks(value any) error {
	s, _ := value.(string)
	if strings.Trim(s, " \t") != "" {
		return validation.NewError("validation_indent_blank", "must contain only spaces or tabs")
	}
	return nil
}

func bareHost(value any) error {
	s, _ := value.(string)
	if strings.Contains(s, "://") || strings.ContainsAny(s, "/ \t") {
		return validation.NewError("validation_bare_host", "must be a host name without scheme or path")
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it is used as a file path.
// Otherwise, it searches for name.yaml and name.yml in the current
// directory, then in the user config directory (~/.config/umt/).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, configDirName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
