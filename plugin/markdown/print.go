package markdown

import (
	"strconv"
	"strings"

	umt "github.com/alnah/go-umt"
)

// serialize prints n as markdown. A heading with a parent prints its whole
// section: the heading and every following sibling up to the next heading
// of the same or a lower depth.
func serialize(n *umt.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	p := printer{mime: n.MimeType}
	switch {
	case n.Type == KindRoot:
		return p.blocks(n.Children, "\n\n") + "\n", true
	case n.Type == KindHeading && n.Parent != nil:
		return p.blocks(section(n), "\n\n") + "\n", true
	case isBlock(n.Type):
		return p.block(n) + "\n", true
	default:
		return p.inline(n), true
	}
}

// section collects a heading and the siblings belonging to it.
func section(h *umt.Node) []*umt.Node {
	depth := headingDepth(h)
	out := []*umt.Node{h}
	for _, sib := range h.NextSiblings() {
		if sib.Type == KindHeading && headingDepth(sib) <= depth {
			break
		}
		out = append(out, sib)
	}
	return out
}

func headingDepth(n *umt.Node) int {
	if h, ok := n.Data.(Heading); ok && h.Depth > 0 {
		return h.Depth
	}
	return 1
}

func isBlock(kind string) bool {
	switch kind {
	case KindRoot, KindHeading, KindParagraph, KindThematicBreak, KindBlockquote,
		KindCode, KindList, KindListItem, KindTable, KindTableRow, KindYAML, KindTOML, KindJSON:
		return true
	}
	return false
}

type printer struct {
	mime umt.MimeType
}

// foreign reports nodes of another mime type, which the printer skips.
// Siblings of a section heading are not purified by the engine.
func (p printer) foreign(n *umt.Node) bool {
	return p.mime != "" && n.MimeType != "" && n.MimeType != p.mime
}

func (p printer) blocks(nodes []*umt.Node, sep string) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if p.foreign(n) {
			continue
		}
		parts = append(parts, p.block(n))
	}
	return strings.Join(parts, sep)
}

func (p printer) block(n *umt.Node) string {
	switch n.Type {
	case KindRoot:
		return p.blocks(n.Children, "\n\n")
	case KindHeading:
		return strings.Repeat("#", headingDepth(n)) + " " + p.inlines(n.Children)
	case KindParagraph:
		return p.inlines(n.Children)
	case KindThematicBreak:
		return "***"
	case KindBlockquote:
		return prefixLines(p.blocks(n.Children, "\n\n"), "> ", ">")
	case KindCode:
		code, _ := n.Data.(Code)
		return fenceCode(code)
	case KindHTML:
		lit, _ := n.Data.(Literal)
		return lit.Value
	case KindList:
		return p.list(n)
	case KindListItem:
		return p.listItem(n, "-", false)
	case KindTable:
		return p.table(n)
	case KindTableRow:
		return p.tableRow(n)
	case KindYAML, KindTOML, KindJSON:
		fm, _ := n.Data.(Frontmatter)
		delim := frontmatterDelimiters[n.Type]
		return delim + "\n" + fm.Raw + delim
	default:
		return p.inline(n)
	}
}

func (p printer) list(n *umt.Node) string {
	l, _ := n.Data.(List)
	sep := "\n"
	if l.Spread {
		sep = "\n\n"
	}
	start := l.Start
	if l.Ordered && start == 0 {
		start = 1
	}

	items := make([]string, 0, len(n.Children))
	i := 0
	for _, item := range n.Children {
		if p.foreign(item) {
			continue
		}
		marker := "-"
		if l.Ordered {
			marker = strconv.Itoa(start+i) + "."
		}
		items = append(items, p.listItem(item, marker, l.Spread))
		i++
	}
	return strings.Join(items, sep)
}

func (p printer) listItem(n *umt.Node, marker string, spread bool) string {
	sep := "\n"
	if spread {
		sep = "\n\n"
	}
	body := p.blocks(n.Children, sep)
	if item, ok := n.Data.(ListItem); ok && item.Checked != nil {
		if *item.Checked {
			body = "[x] " + body
		} else {
			body = "[ ] " + body
		}
	}

	indent := strings.Repeat(" ", len(marker)+1)
	lines := strings.Split(body, "\n")
	for i := range lines {
		switch {
		case i == 0:
			lines[i] = marker + " " + lines[i]
		case lines[i] != "":
			lines[i] = indent + lines[i]
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " ")
}

func (p printer) table(n *umt.Node) string {
	t, _ := n.Data.(Table)
	var rows []string
	for i, row := range n.Children {
		if p.foreign(row) {
			continue
		}
		rows = append(rows, p.tableRow(row))
		if i == 0 {
			rows = append(rows, delimiterRow(t.Align, len(row.Children)))
		}
	}
	return strings.Join(rows, "\n")
}

func (p printer) tableRow(n *umt.Node) string {
	cells := make([]string, 0, len(n.Children))
	for _, cell := range n.Children {
		if p.foreign(cell) {
			continue
		}
		cells = append(cells, strings.ReplaceAll(p.inlines(cell.Children), "|", `\|`))
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

func delimiterRow(align []string, columns int) string {
	cells := make([]string, columns)
	for i := range cells {
		a := ""
		if i < len(align) {
			a = align[i]
		}
		switch a {
		case "left":
			cells[i] = ":--"
		case "right":
			cells[i] = "--:"
		case "center":
			cells[i] = ":-:"
		default:
			cells[i] = "---"
		}
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

func (p printer) inlines(nodes []*umt.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		// A root below an inline is an attached document, not content.
		if p.foreign(n) || n.Type == KindRoot {
			continue
		}
		sb.WriteString(p.inline(n))
	}
	return sb.String()
}

func (p printer) inline(n *umt.Node) string {
	switch n.Type {
	case KindText, KindHTML:
		if lit, ok := n.Data.(Literal); ok {
			return lit.Value
		}
		return p.inlines(n.Children)
	case KindEmphasis:
		return "*" + p.inlines(n.Children) + "*"
	case KindStrong:
		return "**" + p.inlines(n.Children) + "**"
	case KindDelete:
		return "~~" + p.inlines(n.Children) + "~~"
	case KindInlineCode:
		lit, _ := n.Data.(Literal)
		return codeSpan(lit.Value)
	case KindBreak:
		return "\\\n"
	case KindLink:
		link, _ := n.Data.(Link)
		if link.Auto {
			return "<" + link.URL + ">"
		}
		return "[" + p.inlines(n.Children) + "](" + destination(link.URL, link.Title) + ")"
	case KindImage:
		img, _ := n.Data.(Image)
		return "![" + img.Alt + "](" + destination(img.URL, img.Title) + ")"
	default:
		if isBlock(n.Type) {
			return p.block(n)
		}
		return p.inlines(n.Children)
	}
}

func destination(url, title string) string {
	if strings.ContainsAny(url, " ()") {
		url = "<" + url + ">"
	}
	if title == "" {
		return url
	}
	return url + ` "` + strings.ReplaceAll(title, `"`, `\"`) + `"`
}

func codeSpan(value string) string {
	ticks := "`"
	for strings.Contains(value, ticks) {
		ticks += "`"
	}
	if strings.HasPrefix(value, "`") || strings.HasSuffix(value, "`") {
		return ticks + " " + value + " " + ticks
	}
	return ticks + value + ticks
}

func fenceCode(code Code) string {
	fence := "```"
	for strings.Contains(code.Value, fence) {
		fence += "`"
	}
	value := code.Value
	if value != "" && !strings.HasSuffix(value, "\n") {
		value += "\n"
	}
	return fence + code.Lang + "\n" + value + fence
}

// prefixLines prefixes every line of s, using bare for empty lines.
func prefixLines(s, prefix, bare string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = bare
		} else {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
