// Package markdown parses CommonMark with GitHub extensions into the unified
// tree, prints it back as markdown and renders it as HTML.
//
// Node kinds follow mdast (root, heading, paragraph, text, link, image,
// ...); payloads are the structs declared in nodes.go.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	umt "github.com/alnah/go-umt"
)

// MimeType is the content type handled by this package.
const MimeType umt.MimeType = "text/markdown"

// HTMLMimeType is the target of the HTML renderer.
const HTMLMimeType umt.MimeType = "text/html"

// crlfOrCR matches Windows and classic Mac line endings.
var crlfOrCR = regexp.MustCompile(`\r\n?`)

type options struct {
	sanitizer  *bluemonday.Policy
	unsafeHTML bool
	highlight  bool
	hardWraps  bool
}

// Option configures the markdown plugin.
type Option func(*options)

// WithSanitizer passes rendered HTML through policy.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(o *options) {
		o.sanitizer = policy
	}
}

// WithUnsafeHTML keeps raw HTML from the source in rendered output. Pair it
// with WithSanitizer for untrusted input.
func WithUnsafeHTML() Option {
	return func(o *options) {
		o.unsafeHTML = true
	}
}

// WithoutHighlighting renders code blocks as plain <pre><code>.
func WithoutHighlighting() Option {
	return func(o *options) {
		o.highlight = false
	}
}

// WithHardWraps renders soft line breaks as <br>.
func WithHardWraps() Option {
	return func(o *options) {
		o.hardWraps = true
	}
}

// DefaultSanitizer returns a user-generated-content policy that keeps the
// classes emitted by the syntax highlighter.
func DefaultSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("pre", "code", "span")
	return p
}

// Plugin registers text/markdown support and the text/markdown → text/html
// serializer.
func Plugin(opts ...Option) umt.Plugin {
	o := options{highlight: true}
	for _, opt := range opts {
		opt(&o)
	}

	return func(e *umt.Engine) umt.Definition {
		p := &plugin{engine: e, md: newGoldmark(o), sanitizer: o.sanitizer}
		return umt.Definition{
			Supports: []umt.Support{{
				MimeType:   MimeType,
				Parser:     p.parse,
				Serializer: serialize,
			}},
			Serializers: []umt.Serializer{{
				From:       MimeType,
				To:         HTMLMimeType,
				Serializer: p.renderHTML,
			}},
		}
	}
}

func newGoldmark(o options) goldmark.Markdown {
	extensions := []goldmark.Extender{extension.GFM}
	if o.highlight {
		extensions = append(extensions, highlighting.NewHighlighting(
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		))
	}

	var htmlOpts []renderer.Option
	if o.hardWraps {
		htmlOpts = append(htmlOpts, html.WithHardWraps())
	}
	if o.unsafeHTML {
		htmlOpts = append(htmlOpts, html.WithUnsafe())
	}

	return goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(htmlOpts...),
	)
}

type plugin struct {
	engine    *umt.Engine
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

func (p *plugin) parse(ctx context.Context, input string) (*umt.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input = crlfOrCR.ReplaceAllString(input, "\n")
	meta, body := splitFrontmatter(input)

	src := []byte(body)
	doc := p.md.Parser().Parse(text.NewReader(src))
	c := converter{src: src}
	root := c.block(doc)
	if meta != nil {
		root.Children = append([]*umt.Node{meta}, root.Children...)
	}
	return p.engine.Build(ctx, root, MimeType)
}

// renderHTML prints the tree back to markdown and renders that with
// goldmark, so that hooks rewriting nodes are reflected in the HTML. Front
// matter is metadata and is not rendered.
func (p *plugin) renderHTML(n *umt.Node) (string, bool) {
	source, ok := serialize(umt.Filter(n, func(c *umt.Node) bool {
		_, meta := frontmatterDelimiters[c.Type]
		return !meta
	}))
	if !ok {
		return "", false
	}
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(source), &buf); err != nil {
		p.engine.Logger().Warn("markdown rendering failed", "err", fmt.Errorf("%w: %v", ErrRender, err))
		return "", false
	}
	if p.sanitizer != nil {
		return p.sanitizer.Sanitize(buf.String()), true
	}
	return buf.String(), true
}
