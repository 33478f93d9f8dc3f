// Package text parses plain text into paragraphs, sentences and words
// (nlcst-style kinds) and attaches that structure to markdown text nodes.
//
// Parsing is lossless: serializing a parsed tree returns the input.
package text

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	umt "github.com/alnah/go-umt"
	"github.com/alnah/go-umt/plugin/markdown"
)

// MimeType is the content type handled by this package.
const MimeType umt.MimeType = "text/plain"

// Node kinds.
const (
	KindRoot        = "root"
	KindParagraph   = "paragraph"
	KindSentence    = "sentence"
	KindWord        = "word"
	KindText        = "text"
	KindWhiteSpace  = "whiteSpace"
	KindPunctuation = "punctuation"
	KindSymbol      = "symbol"
)

// Literal is the payload of leaf nodes.
type Literal struct {
	Value string
}

// paragraphBreak matches the whitespace separating paragraphs.
var paragraphBreak = regexp.MustCompile(`[ \t]*\n(?:[ \t]*\n)+\s*`)

type options struct {
	markdownHook bool
}

// Option configures the text plugin.
type Option func(*options)

// WithoutMarkdownHook disables attaching text trees to markdown text nodes.
func WithoutMarkdownHook() Option {
	return func(o *options) {
		o.markdownHook = false
	}
}

// Plugin registers text/plain support and, unless disabled, a
// text/markdown:text hook that parses each markdown text node's value and
// attaches the result as a child.
func Plugin(opts ...Option) umt.Plugin {
	o := options{markdownHook: true}
	for _, opt := range opts {
		opt(&o)
	}
	return func(e *umt.Engine) umt.Definition {
		def := umt.Definition{
			Supports: []umt.Support{{
				MimeType: MimeType,
				Parser: func(ctx context.Context, input string) (*umt.Node, error) {
					if err := ctx.Err(); err != nil {
						return nil, err
					}
					return e.Build(ctx, tokenize(input), MimeType)
				},
				Serializer: serialize,
			}},
		}
		if o.markdownHook {
			def.OnCreate = []umt.CreateHook{{
				MimeType: markdown.MimeType.Qualify(markdown.KindText),
				Event: func(ctx context.Context, n *umt.Node, _ any) (*umt.Node, error) {
					lit, ok := n.Data.(markdown.Literal)
					if !ok {
						return n, nil
					}
					tree, err := e.Parse(ctx, lit.Value, MimeType)
					if err != nil {
						return nil, err
					}
					return umt.AddChildren(n, tree), nil
				},
			}}
		}
		return def
	}
}

func literal(kind, value string) *umt.Node {
	return &umt.Node{Type: kind, Data: Literal{Value: value}}
}

func parent(kind string) *umt.Node {
	return &umt.Node{Type: kind, Children: []*umt.Node{}}
}

// tokenize builds the raw tree. Whitespace between paragraphs and between
// sentences is kept as whiteSpace nodes so nothing is lost.
func tokenize(input string) *umt.Node {
	root := parent(KindRoot)
	rest := input
	if lead := len(rest) - len(strings.TrimLeftFunc(rest, unicode.IsSpace)); lead > 0 {
		root.Children = append(root.Children, literal(KindWhiteSpace, rest[:lead]))
		rest = rest[lead:]
	}

	for rest != "" {
		loc := paragraphBreak.FindStringIndex(rest)
		if loc == nil {
			root.Children = append(root.Children, paragraphNode(rest)...)
			break
		}
		if loc[0] > 0 {
			root.Children = append(root.Children, paragraphNode(rest[:loc[0]])...)
		}
		root.Children = append(root.Children, literal(KindWhiteSpace, rest[loc[0]:loc[1]]))
		rest = rest[loc[1]:]
	}
	return root
}

// paragraphNode returns the paragraph for s, followed by a whiteSpace node
// when s ends in whitespace.
func paragraphNode(s string) []*umt.Node {
	body := strings.TrimRightFunc(s, unicode.IsSpace)
	if body == "" {
		return []*umt.Node{literal(KindWhiteSpace, s)}
	}
	p := parent(KindParagraph)
	state := -1
	for rest := body; rest != ""; {
		var sentence string
		sentence, rest, state = uniseg.FirstSentenceInString(rest, state)
		trimmed := strings.TrimRightFunc(sentence, unicode.IsSpace)
		if trimmed != "" {
			p.Children = append(p.Children, sentenceNode(trimmed))
		}
		if trailing := sentence[len(trimmed):]; trailing != "" {
			p.Children = append(p.Children, literal(KindWhiteSpace, trailing))
		}
	}
	out := []*umt.Node{p}
	if trailing := s[len(body):]; trailing != "" {
		out = append(out, literal(KindWhiteSpace, trailing))
	}
	return out
}

func sentenceNode(s string) *umt.Node {
	sentence := parent(KindSentence)
	state := -1
	for rest := s; rest != ""; {
		var segment string
		segment, rest, state = uniseg.FirstWordInString(rest, state)
		sentence.Children = append(sentence.Children, segmentNode(segment))
	}
	return sentence
}

func segmentNode(segment string) *umt.Node {
	r, _ := utf8.DecodeRuneInString(segment)
	switch {
	case strings.TrimSpace(segment) == "":
		return literal(KindWhiteSpace, segment)
	case unicode.IsPunct(r):
		return literal(KindPunctuation, segment)
	case unicode.IsSymbol(r):
		return literal(KindSymbol, segment)
	default:
		word := parent(KindWord)
		word.Children = append(word.Children, literal(KindText, segment))
		return word
	}
}

// serialize concatenates leaf values in document order.
func serialize(n *umt.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	var sb strings.Builder
	umt.Walk(n, func(c *umt.Node) bool {
		if lit, ok := c.Data.(Literal); ok {
			sb.WriteString(lit.Value)
		}
		return true
	})
	return sb.String(), true
}

// Words returns the text of every word node below n.
func Words(n *umt.Node) []string {
	var out []string
	umt.Walk(n, func(c *umt.Node) bool {
		if c.Type == KindWord {
			s, _ := serialize(c)
			out = append(out, s)
			return false
		}
		return true
	})
	return out
}
