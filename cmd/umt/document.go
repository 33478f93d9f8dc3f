package main

import (
	"context"
	"fmt"

	umt "github.com/alnah/go-umt"
)

// parseDocument reads name, parses it with a fresh engine and applies the
// --filter expression.
func parseDocument(ctx context.Context, tk *toolkit, s *settings, name string, env *Environment) (*umt.Engine, *umt.Node, error) {
	doc, err := readDocument(ctx, name, env, tk.pages)
	if err != nil {
		return nil, nil, err
	}

	e, crawl := tk.engine(doc.source)
	m, err := resolveType(e, doc, s.from)
	if err != nil {
		return nil, nil, err
	}

	log := s.logger.With("input", name, "type", m)
	log.Debug("parsing", "bytes", len(doc.content))

	tree, err := e.Parse(ctx, doc.content, m)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	if crawl != nil {
		log.Debug("crawl finished", "urls", len(crawl.ProcessedURLs()))
	}

	return e, s.filter.Apply(tree), nil
}

// openToolkit sets up tracing and the shared resources of one command run.
// The returned function flushes spans and releases resources.
func openToolkit(ctx context.Context, s *settings, trace bool, env *Environment) (*toolkit, func(), error) {
	tracer, shutdown, err := setupTracing(env.Stderr, trace)
	if err != nil {
		return nil, nil, err
	}
	tk, err := newToolkit(ctx, s.cfg, s.logger, tracer, env.Fetcher)
	if err != nil {
		_ = shutdown(context.Background())
		return nil, nil, err
	}
	return tk, func() {
		if err := tk.Close(); err != nil {
			s.logger.Warn("closing resources", "err", err)
		}
		if err := shutdown(context.Background()); err != nil {
			s.logger.Warn("flushing traces", "err", err)
		}
	}, nil
}
