package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	umt "github.com/alnah/go-umt"
	"github.com/alnah/go-umt/fetch"
	"github.com/alnah/go-umt/internal/config"
	"github.com/alnah/go-umt/internal/fileutil"
	"github.com/alnah/go-umt/internal/hints"
)

// stdinName marks standard input among the positional arguments.
const stdinName = "-"

// settings is the resolved state shared by the tree commands.
type settings struct {
	cfg     *config.Config
	from    string
	to      string
	filter  *nodeFilter
	logger  *log.Logger
	noColor bool
}

// resolveSettings loads the config and layers environment variables and
// flags on top: CLI flags > env vars > config file > defaults.
func resolveSettings(f *treeFlags, env *Environment) (*settings, error) {
	if env.Getenv("NO_COLOR") != "" {
		f.common.noColor = true
	}
	logger := newLogger(env.Stderr, f.common)
	if !f.common.quiet {
		warnUnknownEnvVars(env.Stderr, env.Environ())
	}

	envCfg := loadEnvConfig(env.Getenv)

	cfg := config.DefaultConfig()
	configName := f.common.config
	if configName == "" {
		configName = envCfg.ConfigPath
	}
	if configName != "" {
		loaded, err := config.LoadConfig(configName)
		if err != nil {
			hint := ""
			if errors.Is(err, config.ErrConfigNotFound) {
				hint = hints.ForConfigNotFound(userConfigPaths(configName))
			}
			return nil, fmt.Errorf("loading config: %w%s", err, hint)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	filter, err := compileFilter(f.plugins.filter)
	if err != nil {
		return nil, err
	}

	s := &settings{
		cfg:     cfg,
		from:    f.types.from,
		to:      f.types.to,
		filter:  filter,
		logger:  logger,
		noColor: f.common.noColor,
	}
	if s.from == "" {
		s.from = envCfg.From
	}
	if s.to == "" {
		s.to = envCfg.To
	}
	return s, nil
}

// userConfigPaths returns where a named config would be looked up under
// the user config directory.
func userConfigPaths(name string) []string {
	dir, err := os.UserConfigDir()
	if err != nil || strings.ContainsAny(name, "/\\") {
		return nil
	}
	return []string{filepath.Join(dir, "umt", name+".yaml")}
}

// mergeFlags applies the flags that were set on the command line.
func mergeFlags(f *treeFlags, cfg *config.Config) {
	set := f.set

	if set["id"] {
		cfg.Plugins.ID = f.plugins.id
	}
	if set["text"] {
		cfg.Plugins.Text = f.plugins.text
	}
	if set["sanitize"] {
		cfg.Plugins.Sanitize = f.plugins.sanitize
	}
	if set["indent"] {
		cfg.Output.Indent = ""
		if f.plugins.indent > 0 {
			cfg.Output.Indent = strings.Repeat(" ", f.plugins.indent)
		}
	}

	if set["crawl"] {
		cfg.Crawl.Enabled = f.crawl.enabled
	}
	if set["render"] {
		cfg.Crawl.Render = f.crawl.render
	}
	if set["current-domain"] {
		cfg.Crawl.CurrentDomainOnly = f.crawl.currentDomain
	}
	if set["allow-domain"] {
		cfg.Crawl.AllowedDomains = f.crawl.allow
	}
	if set["block-domain"] {
		cfg.Crawl.BlockedDomains = f.crawl.block
	}
	if set["max-depth"] {
		cfg.Crawl.MaxDepth = f.crawl.maxDepth
	}
	if set["timeout"] {
		cfg.Crawl.Timeout = f.crawl.timeout
	}

	if set["images"] {
		cfg.Images.Enabled = f.images.enabled
	}
	if set["store"] {
		cfg.Images.Store = f.images.store
	}
	if set["store-dir"] {
		cfg.Images.Dir = f.images.dir
	}
	if set["store-db"] {
		cfg.Images.DB = f.images.db
	}
}

// document is one input, read and typed.
type document struct {
	name    string // file path, URL, or "-" for stdin
	source  string // URL the content came from, if any
	content string
	mime    umt.MimeType
}

// readDocument reads name from a file, a URL or standard input.
func readDocument(ctx context.Context, name string, env *Environment, pages fetch.Fetcher) (*document, error) {
	doc := &document{name: name}

	switch {
	case name == stdinName:
		data, err := io.ReadAll(env.Stdin)
		if err != nil {
			return nil, fmt.Errorf("%w: stdin: %v", ErrReadInput, err)
		}
		doc.content = string(data)
	case fileutil.IsURL(name):
		resp, err := pages.Fetch(ctx, name)
		if err != nil {
			hint := ""
			if errors.Is(err, context.DeadlineExceeded) {
				hint = hints.ForTimeout()
			}
			return nil, fmt.Errorf("fetching %s: %w%s", name, err, hint)
		}
		doc.source = resp.URL
		doc.content = string(resp.Body)
		if m, ok := umt.DetectMimeType(resp.ContentType); ok {
			doc.mime = m
		}
	default:
		data, err := os.ReadFile(name) // #nosec G304 -- user-provided input path
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
		}
		doc.content = string(data)
	}
	return doc, nil
}

// resolveType picks the mime type to parse doc as: the explicit --from,
// then what the URL response or the file extension says.
func resolveType(e *umt.Engine, doc *document, from string) (umt.MimeType, error) {
	if from != "" {
		m, ok := umt.DetectMimeType(from)
		if !ok {
			m = umt.MimeType(from)
		}
		if !e.Has(m) {
			return "", fmt.Errorf("%w: %s%s", umt.ErrTypeNotRegistered, from, hints.ForUnknownType(typeNames(e.MimeTypes())))
		}
		return m, nil
	}
	if doc.mime != "" && e.Has(doc.mime) {
		return doc.mime, nil
	}
	if doc.name != stdinName {
		name := doc.name
		if doc.source != "" {
			name = urlPath(doc.source)
		}
		if m, ok := e.MimeTypeOf(name); ok {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %s%s", ErrUnknownType, doc.name, hints.ForUnknownType(typeNames(e.MimeTypes())))
}

// resolveTarget returns the type to serialize to; empty means the tree's
// own type.
func resolveTarget(to string) umt.MimeType {
	if to == "" {
		return ""
	}
	if m, ok := umt.DetectMimeType(to); ok {
		return m
	}
	return umt.MimeType(to)
}

// serialize converts tree to the target type or explains which targets
// exist.
func serialize(ctx context.Context, e *umt.Engine, tree *umt.Node, to umt.MimeType) (string, error) {
	out, ok := e.SerializeContext(ctx, tree, to)
	if !ok {
		if to == "" {
			to = tree.MimeType
		}
		return "", fmt.Errorf("%w: %s to %s%s", ErrNoSerializer, tree.MimeType, to, hints.ForNoSerializer(typeNames(e.Targets(tree.MimeType))))
	}
	return out, nil
}

func typeNames(types []umt.MimeType) []string {
	names := make([]string, len(types))
	for i, m := range types {
		names[i] = string(m)
	}
	return names
}

// urlPath returns the path component of a URL, for extension detection.
func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Path
}
