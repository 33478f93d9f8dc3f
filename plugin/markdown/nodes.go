package markdown

import (
	"strings"

	umt "github.com/alnah/go-umt"
)

// Node kinds produced by the parser.
const (
	KindRoot          = "root"
	KindHeading       = "heading"
	KindParagraph     = "paragraph"
	KindText          = "text"
	KindEmphasis      = "emphasis"
	KindStrong        = "strong"
	KindDelete        = "delete"
	KindInlineCode    = "inlineCode"
	KindCode          = "code"
	KindBlockquote    = "blockquote"
	KindList          = "list"
	KindListItem      = "listItem"
	KindLink          = "link"
	KindImage         = "image"
	KindBreak         = "break"
	KindThematicBreak = "thematicBreak"
	KindHTML          = "html"
	KindTable         = "table"
	KindTableRow      = "tableRow"
	KindTableCell     = "tableCell"
	KindYAML          = "yaml"
	KindTOML          = "toml"
	KindJSON          = "json"
)

// Literal is the payload of text, inlineCode and html nodes. Values are
// kept in source form, backslash escapes included.
type Literal struct {
	Value string
}

// Heading is the payload of heading nodes.
type Heading struct {
	Depth int
}

// Code is the payload of fenced and indented code blocks.
type Code struct {
	Lang  string
	Value string
}

// List is the payload of list nodes.
type List struct {
	Ordered bool
	Start   int
	Spread  bool
}

// ListItem is the payload of list items. Checked is nil outside task lists.
type ListItem struct {
	Checked *bool
}

// Link is the payload of link nodes. Auto marks autolinks (<https://...>).
type Link struct {
	URL   string
	Title string
	Auto  bool
}

// Image is the payload of image nodes.
type Image struct {
	URL   string
	Title string
	Alt   string
}

// Table holds column alignments: "left", "right", "center" or "".
type Table struct {
	Align []string
}

// TableRow is the payload of table rows.
type TableRow struct {
	Header bool
}

// Frontmatter is the payload of yaml, toml and json metadata nodes.
type Frontmatter struct {
	Raw    string
	Values map[string]any
}

// TextContent concatenates the literal values of n and its descendants,
// skipping nodes of other mime types.
func TextContent(n *umt.Node) string {
	var sb strings.Builder
	umt.Walk(n, func(c *umt.Node) bool {
		if c.MimeType != "" && n.MimeType != "" && c.MimeType != n.MimeType {
			return false
		}
		if c != n && c.Type == KindRoot {
			return false
		}
		switch d := c.Data.(type) {
		case Literal:
			if c.Type != KindHTML {
				sb.WriteString(d.Value)
			}
		case Image:
			sb.WriteString(d.Alt)
		}
		return true
	})
	return sb.String()
}
