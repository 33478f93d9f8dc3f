// Package html parses HTML documents and fragments into the unified tree
// with hast-style kinds: root, element, text, comment and doctype.
package html

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	umt "github.com/alnah/go-umt"
)

// MimeType is the content type handled by this package.
const MimeType umt.MimeType = "text/html"

// Node kinds.
const (
	KindRoot    = "root"
	KindElement = "element"
	KindText    = "text"
	KindComment = "comment"
	KindDoctype = "doctype"
)

// ErrParse wraps tokenizer failures.
var ErrParse = errors.New("html parse failed")

// documentPattern detects input that is a full document rather than a
// fragment.
var documentPattern = regexp.MustCompile(`(?i)^\s*(<!--.*?-->\s*)*<(!doctype|html[\s>])`)

// Element is the payload of element nodes. Attribute order is preserved.
type Element struct {
	TagName string
	Attrs   []html.Attribute
}

// Literal is the payload of text, comment and doctype nodes.
type Literal struct {
	Value string
}

type options struct {
	sanitizer *bluemonday.Policy
}

// Option configures the html plugin.
type Option func(*options)

// WithSanitizer passes serialized output through policy.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(o *options) {
		o.sanitizer = policy
	}
}

// Plugin registers text/html support.
func Plugin(opts ...Option) umt.Plugin {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return func(e *umt.Engine) umt.Definition {
		return umt.Definition{
			Supports: []umt.Support{{
				MimeType: MimeType,
				Parser: func(ctx context.Context, input string) (*umt.Node, error) {
					return parse(ctx, e, input)
				},
				Serializer: func(n *umt.Node) (string, bool) {
					out, ok := serialize(n)
					if ok && o.sanitizer != nil {
						out = o.sanitizer.Sanitize(out)
					}
					return out, ok
				},
			}},
		}
	}
}

// parse builds a document tree for full documents and a root holding the
// body-level nodes for fragments.
func parse(ctx context.Context, e *umt.Engine, input string) (*umt.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := &umt.Node{Type: KindRoot, Children: []*umt.Node{}}
	if documentPattern.MatchString(input) {
		doc, err := html.Parse(strings.NewReader(input))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			root.Children = append(root.Children, fromHTML(c))
		}
	} else {
		body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
		nodes, err := html.ParseFragment(strings.NewReader(input), body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		for _, c := range nodes {
			root.Children = append(root.Children, fromHTML(c))
		}
	}
	return e.Build(ctx, root, MimeType)
}

func fromHTML(n *html.Node) *umt.Node {
	switch n.Type {
	case html.ElementNode:
		out := &umt.Node{
			Type:     KindElement,
			Data:     Element{TagName: n.Data, Attrs: n.Attr},
			Children: []*umt.Node{},
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			out.Children = append(out.Children, fromHTML(c))
		}
		return out
	case html.CommentNode:
		return &umt.Node{Type: KindComment, Data: Literal{Value: n.Data}}
	case html.DoctypeNode:
		return &umt.Node{Type: KindDoctype, Data: Literal{Value: n.Data}}
	default:
		return &umt.Node{Type: KindText, Data: Literal{Value: n.Data}}
	}
}

func serialize(n *umt.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	var buf bytes.Buffer
	nodes := []*umt.Node{n}
	if n.Type == KindRoot {
		nodes = n.Children
	}
	for _, c := range nodes {
		if err := html.Render(&buf, toHTML(c)); err != nil {
			return "", false
		}
	}
	return buf.String(), true
}

func toHTML(n *umt.Node) *html.Node {
	switch n.Type {
	case KindElement:
		el, _ := n.Data.(Element)
		out := &html.Node{
			Type:     html.ElementNode,
			Data:     el.TagName,
			DataAtom: atom.Lookup([]byte(el.TagName)),
			Attr:     el.Attrs,
		}
		for _, c := range n.Children {
			// Documents attached below an element (crawled links) are not
			// part of its markup.
			if c.Type == KindRoot {
				continue
			}
			out.AppendChild(toHTML(c))
		}
		return out
	case KindComment:
		return &html.Node{Type: html.CommentNode, Data: literal(n)}
	case KindDoctype:
		return &html.Node{Type: html.DoctypeNode, Data: literal(n)}
	case KindRoot:
		doc := &html.Node{Type: html.DocumentNode}
		for _, c := range n.Children {
			doc.AppendChild(toHTML(c))
		}
		return doc
	default:
		return &html.Node{Type: html.TextNode, Data: literal(n)}
	}
}

func literal(n *umt.Node) string {
	l, _ := n.Data.(Literal)
	return l.Value
}

// TagName returns the tag of an element node, or "" for other nodes.
func TagName(n *umt.Node) string {
	if el, ok := n.Data.(Element); ok {
		return el.TagName
	}
	return ""
}

// Attr returns the value of an element attribute.
func Attr(n *umt.Node, key string) (string, bool) {
	el, ok := n.Data.(Element)
	if !ok {
		return "", false
	}
	for _, a := range el.Attrs {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// IsElement reports whether n is an element, restricted to the given tags
// when any are passed.
func IsElement(n *umt.Node, tags ...string) bool {
	tag := TagName(n)
	if n.Type != KindElement || tag == "" {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TextContent concatenates the text below n.
func TextContent(n *umt.Node) string {
	var sb strings.Builder
	umt.Walk(n, func(c *umt.Node) bool {
		if c.MimeType != n.MimeType || (c != n && c.Type == KindRoot) {
			return false
		}
		if c.Type == KindText {
			sb.WriteString(literal(c))
		}
		return true
	})
	return sb.String()
}
