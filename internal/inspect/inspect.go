// Package inspect renders a unified tree as an indented outline for
// terminals.
package inspect

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	umt "github.com/alnah/go-umt"
)

// MaxValueWidth truncates payload and attribute values in the outline.
const MaxValueWidth = 60

const (
	branch = "├─"
	last   = "└─"
	pipe   = "│   "
	blank  = "    "
)

// Styles colors the parts of an outline line.
type Styles struct {
	Guide    lipgloss.Style
	Kind     lipgloss.Style
	MimeType lipgloss.Style
	Value    lipgloss.Style
	Attr     lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() Styles {
	return Styles{
		Guide:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Kind:     lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		MimeType: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		Value:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Attr:     lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// PlainStyles returns styles that leave text untouched.
func PlainStyles() Styles {
	return Styles{}
}

// Fprint writes the outline of n to w. The mime type is shown on the root
// and wherever it changes from the parent's.
func Fprint(w io.Writer, n *umt.Node, s Styles) error {
	if n == nil {
		return nil
	}
	var b strings.Builder
	writeNode(&b, n, "", "", "", s)
	_, err := io.WriteString(w, b.String())
	return err
}

// String returns the uncolored outline of n.
func String(n *umt.Node) string {
	var b strings.Builder
	_ = Fprint(&b, n, PlainStyles())
	return b.String()
}

func writeNode(b *strings.Builder, n *umt.Node, lead, prefix string, parentMime umt.MimeType, s Styles) {
	b.WriteString(s.Guide.Render(lead))
	b.WriteString(prefix)
	b.WriteString(s.Kind.Render(n.Type))
	if n.IsParent() {
		fmt.Fprintf(b, "[%d]", len(n.Children))
	}
	if n.MimeType != parentMime {
		b.WriteString(" ")
		b.WriteString(s.MimeType.Render("(" + string(n.MimeType) + ")"))
	}
	if v := describe(n.Data); v != "" {
		b.WriteString(" ")
		b.WriteString(s.Value.Render(v))
	}
	for _, k := range sortedKeys(n.Attrs) {
		b.WriteString(" ")
		b.WriteString(s.Attr.Render(k + "=" + describe(n.Attrs[k])))
	}
	b.WriteByte('\n')

	childLead := lead
	if prefix != "" {
		childLead = lead + guideFor(prefix)
	}
	for i, c := range n.Children {
		mark := branch
		if i == len(n.Children)-1 {
			mark = last
		}
		writeNode(b, c, childLead, s.Guide.Render(mark)+fmt.Sprintf("%d ", i), n.MimeType, s)
	}
}

// guideFor returns the continuation drawn under a child line: a pipe when
// more siblings follow, blank space after the last one.
func guideFor(prefix string) string {
	if strings.Contains(prefix, last) {
		return blank
	}
	return pipe
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// describe renders a payload or attribute value on a single line.
func describe(v any) string {
	var out string
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		out = fmt.Sprintf("%q", v)
	case fmt.Stringer:
		out = fmt.Sprintf("%q", v.String())
	case *umt.Node:
		out = "<" + v.Type + ">"
	default:
		out = fmt.Sprintf("%+v", v)
		out = strings.Join(strings.Fields(out), " ")
	}
	return truncate(out, MaxValueWidth)
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-1]) + "…"
}
