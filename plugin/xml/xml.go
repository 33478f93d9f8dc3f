// Package xml dumps any tree as XML. Each node becomes an element named
// after its kind, tagged with its mime type, holding the node's own
// serialization in a CDATA section followed by its children.
package xml

import (
	"strings"
	"unicode"

	"github.com/beevik/etree"

	umt "github.com/alnah/go-umt"
)

// MimeType is the output type of the serializer.
const MimeType umt.MimeType = "application/xml"

type options struct {
	indent int
}

// Option configures the xml plugin.
type Option func(*options)

// WithIndent indents with spaces instead of tabs.
func WithIndent(spaces int) Option {
	return func(o *options) {
		o.indent = spaces
	}
}

// Plugin registers the */* → application/xml serializer. Node content is
// obtained from the engine's identity serializer for each node's type.
func Plugin(opts ...Option) umt.Plugin {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return func(e *umt.Engine) umt.Definition {
		return umt.Definition{
			Serializers: []umt.Serializer{{
				From: umt.AnyMimeType,
				To:   MimeType,
				Serializer: func(n *umt.Node) (string, bool) {
					return serialize(e, n, o)
				},
			}},
		}
	}
}

func serialize(e *umt.Engine, n *umt.Node, o options) (string, bool) {
	if n == nil {
		return "", false
	}
	doc := etree.NewDocument()
	doc.AddChild(element(e, n))
	if o.indent > 0 {
		doc.Indent(o.indent)
	} else {
		doc.IndentTabs()
	}
	out, err := doc.WriteToString()
	if err != nil {
		return "", false
	}
	return strings.TrimRight(out, "\n"), true
}

func element(e *umt.Engine, n *umt.Node) *etree.Element {
	el := etree.NewElement(ElementName(n.Type))
	el.CreateAttr("mimeType", string(n.MimeType))
	if value, ok := e.Serialize(n, n.MimeType); ok && value != "" {
		el.CreateCData(escapeCData(value))
	}
	for _, c := range n.Children {
		el.AddChild(element(e, c))
	}
	return el
}

// escapeCData splits any "]]>" so the section stays well formed.
func escapeCData(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}

// ElementName turns a node kind into a valid XML element name.
func ElementName(kind string) string {
	if kind == "" {
		return "node"
	}
	var sb strings.Builder
	for i, r := range kind {
		switch {
		case unicode.IsLetter(r) || r == '_':
			sb.WriteRune(r)
		case i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'):
			sb.WriteRune(r)
		case i == 0 && unicode.IsDigit(r):
			sb.WriteByte('_')
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	name := sb.String()
	if strings.HasPrefix(strings.ToLower(name), "xml") {
		name = "_" + name
	}
	return name
}
