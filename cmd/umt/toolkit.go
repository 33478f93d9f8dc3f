package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/trace"

	umt "github.com/alnah/go-umt"
	"github.com/alnah/go-umt/blobstore"
	"github.com/alnah/go-umt/fetch"
	"github.com/alnah/go-umt/internal/config"
	"github.com/alnah/go-umt/plugin/blobimage"
	umthtml "github.com/alnah/go-umt/plugin/html"
	"github.com/alnah/go-umt/plugin/id"
	umtjson "github.com/alnah/go-umt/plugin/json"
	"github.com/alnah/go-umt/plugin/linkcrawl"
	"github.com/alnah/go-umt/plugin/markdown"
	"github.com/alnah/go-umt/plugin/text"
	umtxml "github.com/alnah/go-umt/plugin/xml"
)

// toolkit holds what every document of one run shares: fetchers, the blob
// store, the logger and the tracer. Engines are built per document so
// that each gets its own crawl state.
type toolkit struct {
	cfg    *config.Config
	logger *log.Logger
	tracer trace.Tracer

	pages  fetch.Fetcher // crawled documents and URL inputs
	images fetch.Fetcher
	store  blobstore.Store

	closers []io.Closer
}

// newToolkit opens the resources cfg asks for. A non-nil override replaces
// every network fetcher.
func newToolkit(ctx context.Context, cfg *config.Config, logger *log.Logger, tracer trace.Tracer, override fetch.Fetcher) (*toolkit, error) {
	t := &toolkit{cfg: cfg, logger: logger, tracer: tracer}

	fetchCfg := cfg.Crawl.FetchConfig()
	var httpFetcher fetch.Fetcher = fetch.NewHTTPFetcher(fetchCfg)
	if override != nil {
		httpFetcher = override
	}
	if cfg.Crawl.CacheTTL > 0 {
		httpFetcher = fetch.NewCachedFetcher(httpFetcher, cfg.Crawl.CacheTTL)
	}
	t.pages, t.images = httpFetcher, httpFetcher

	if cfg.Crawl.Render && override == nil {
		browser := fetch.NewBrowserFetcher(fetchCfg)
		t.closers = append(t.closers, browser)
		t.pages = browser
		if cfg.Crawl.CacheTTL > 0 {
			t.pages = fetch.NewCachedFetcher(browser, cfg.Crawl.CacheTTL)
		}
	}

	if cfg.Images.Enabled {
		switch cfg.Images.Store {
		case config.StoreSQLite:
			s, err := blobstore.OpenSQLite(ctx, cfg.Images.DB)
			if err != nil {
				_ = t.Close()
				return nil, fmt.Errorf("%w: %v", ErrWriteOutput, err)
			}
			t.closers = append(t.closers, s)
			t.store = s
		default:
			t.store = blobstore.NewFSStore(cfg.Images.Dir)
		}
	}

	return t, nil
}

// engine builds an engine for one document. source is the document's URL,
// or empty for files and stdin; it scopes relative links and
// --current-domain.
func (t *toolkit) engine(source string) (*umt.Engine, *linkcrawl.Context) {
	cfg := t.cfg
	var plugins []umt.Plugin

	// id runs first among global hooks so later hooks see the identifier.
	if cfg.Plugins.ID {
		plugins = append(plugins, id.Plugin())
	}

	var mdOpts []markdown.Option
	var htmlOpts []umthtml.Option
	if cfg.Plugins.Sanitize {
		mdOpts = append(mdOpts, markdown.WithSanitizer(markdown.DefaultSanitizer()))
		htmlOpts = append(htmlOpts, umthtml.WithSanitizer(markdown.DefaultSanitizer()))
	}
	if cfg.Plugins.HardWraps {
		mdOpts = append(mdOpts, markdown.WithHardWraps())
	}
	if cfg.Plugins.PlainCode {
		mdOpts = append(mdOpts, markdown.WithoutHighlighting())
	}
	var textOpts []text.Option
	if !cfg.Plugins.Text {
		textOpts = append(textOpts, text.WithoutMarkdownHook())
	}
	var xmlOpts []umtxml.Option
	if indent := cfg.Output.Indent; indent != "" && strings.Trim(indent, " ") == "" {
		xmlOpts = append(xmlOpts, umtxml.WithIndent(len(indent)))
	}

	plugins = append(plugins,
		markdown.Plugin(mdOpts...),
		umthtml.Plugin(htmlOpts...),
		umtjson.Plugin(umtjson.WithIndent(cfg.Output.Indent)),
		text.Plugin(textOpts...),
		umtxml.Plugin(xmlOpts...),
	)

	var crawl *linkcrawl.Context
	if cfg.Crawl.Enabled {
		crawl = linkcrawl.NewContext(source)
		plugins = append(plugins, linkcrawl.Plugin(
			linkcrawl.WithConfig(cfg.Crawl.LinkCrawlConfig()),
			linkcrawl.WithContext(crawl),
			linkcrawl.WithFetcher(t.pages),
		))
	}
	if t.store != nil {
		plugins = append(plugins, blobimage.Plugin(t.store, blobimage.WithFetcher(t.images)))
	}

	e := umt.NewEngine(
		umt.WithLogger(t.logger),
		umt.WithTracer(t.tracer),
		umt.WithPlugins(plugins...),
	)
	return e, crawl
}

// Close releases the browser and the blob store.
func (t *toolkit) Close() error {
	var errs []error
	for _, c := range t.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	t.closers = nil
	return errors.Join(errs...)
}
