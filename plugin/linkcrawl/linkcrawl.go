// Package linkcrawl follows links while a document is parsed. Every
// markdown link and HTML anchor that passes the domain rules is fetched
// once; when the response has a registered content type it is parsed and
// attached below the link node as a child document.
//
// Fetch and parse failures never fail the enclosing parse: they are logged
// as warnings and the link is left as it was.
package linkcrawl

import (
	"context"
	"net/url"

	umt "github.com/alnah/go-umt"
	"github.com/alnah/go-umt/fetch"
	"github.com/alnah/go-umt/plugin/html"
	"github.com/alnah/go-umt/plugin/markdown"
)

// AttrURL is set on crawled link nodes to the URL that was fetched.
const AttrURL = "crawledURL"

type options struct {
	cfg     Config
	ctx     *Context
	fetcher fetch.Fetcher
}

// Option configures the crawl plugin.
type Option func(*options)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithContext shares crawl state between engines or exposes it to the
// caller.
func WithContext(c *Context) Option {
	return func(o *options) {
		if c != nil {
			o.ctx = c
		}
	}
}

// WithFetcher replaces the HTTP fetcher built from Config.Fetch.
func WithFetcher(f fetch.Fetcher) Option {
	return func(o *options) {
		if f != nil {
			o.fetcher = f
		}
	}
}

// Plugin registers the crawl hook on every text type.
func Plugin(opts ...Option) umt.Plugin {
	o := options{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ctx == nil {
		o.ctx = NewContext("")
	}
	if o.fetcher == nil {
		o.fetcher = fetch.NewHTTPFetcher(o.cfg.Fetch)
	}

	return func(e *umt.Engine) umt.Definition {
		c := &crawler{engine: e, cfg: o.cfg, fetcher: o.fetcher}
		return umt.Definition{
			OnCreate: []umt.CreateHook{{
				MimeType: "text/*",
				Match:    isLink,
				Context:  o.ctx,
				Event:    c.event,
			}},
		}
	}
}

type crawler struct {
	engine  *umt.Engine
	cfg     Config
	fetcher fetch.Fetcher
}

// position locates the document being parsed within a crawl.
type position struct {
	depth int
	base  *url.URL
}

type positionKey struct{}

func positionFrom(ctx context.Context, cc *Context) position {
	if p, ok := ctx.Value(positionKey{}).(position); ok {
		return p
	}
	p := position{}
	if cc.CurrentDomain != "" {
		p.base, _ = url.Parse(cc.CurrentDomain)
	}
	return p
}

func isLink(n *umt.Node) bool {
	if n.MimeType == markdown.MimeType && n.Type == markdown.KindLink {
		return true
	}
	return n.MimeType == html.MimeType && html.IsElement(n, "a")
}

func linkTarget(n *umt.Node) string {
	if link, ok := n.Data.(markdown.Link); ok {
		return link.URL
	}
	href, _ := html.Attr(n, "href")
	return href
}

func (c *crawler) event(ctx context.Context, n *umt.Node, hookCtx any) (*umt.Node, error) {
	cc, _ := hookCtx.(*Context)
	if cc == nil {
		return n, nil
	}

	pos := positionFrom(ctx, cc)
	if pos.depth >= c.cfg.MaxDepth {
		return n, nil
	}

	target, ok := resolve(linkTarget(n), pos.base)
	if !ok || !isURLAllowed(target, c.cfg, cc.CurrentDomain) {
		return n, nil
	}

	u := target.String()
	if !cc.claim(u) {
		return n, nil
	}

	logger := c.engine.Logger().With("url", u, "depth", pos.depth+1)

	resp, err := c.fetcher.Fetch(ctx, u)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("fetch failed", "err", err)
		return n, nil
	}

	m, ok := c.engine.MimeTypeOf(resp.ContentType)
	if !ok {
		logger.Warn("unsupported content type", "contentType", resp.ContentType)
		return n, nil
	}

	next := position{depth: pos.depth + 1, base: target}
	if final, err := url.Parse(resp.URL); err == nil && final.IsAbs() {
		next.base = final
	}

	child, err := c.engine.Parse(context.WithValue(ctx, positionKey{}, next), string(resp.Body), m)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("parse failed", "mimeType", m, "err", err)
		return n, nil
	}

	logger.Debug("crawled", "mimeType", m, "bytes", len(resp.Body))
	return umt.AddChildren(n.WithAttr(AttrURL, u), child), nil
}
