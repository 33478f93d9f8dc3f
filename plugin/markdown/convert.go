package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	umt "github.com/alnah/go-umt"
)

// converter turns a goldmark AST into a raw unified tree. Nodes are left
// untagged; Engine.Build tags them and runs the creation hooks.
type converter struct {
	src []byte
}

func parent(kind string, data any) *umt.Node {
	return &umt.Node{Type: kind, Data: data, Children: []*umt.Node{}}
}

func leaf(kind string, data any) *umt.Node {
	return &umt.Node{Type: kind, Data: data}
}

// block converts a block-level goldmark node.
func (c *converter) block(n ast.Node) *umt.Node {
	switch n := n.(type) {
	case *ast.Document:
		return c.withBlocks(parent(KindRoot, nil), n)
	case *ast.Heading:
		return c.withInlines(parent(KindHeading, Heading{Depth: n.Level}), n)
	case *ast.Paragraph, *ast.TextBlock:
		return c.withInlines(parent(KindParagraph, nil), n)
	case *ast.ThematicBreak:
		return leaf(KindThematicBreak, nil)
	case *ast.Blockquote:
		return c.withBlocks(parent(KindBlockquote, nil), n)
	case *ast.FencedCodeBlock:
		return leaf(KindCode, Code{Lang: string(n.Language(c.src)), Value: string(n.Lines().Value(c.src))})
	case *ast.CodeBlock:
		return leaf(KindCode, Code{Value: string(n.Lines().Value(c.src))})
	case *ast.HTMLBlock:
		value := string(n.Lines().Value(c.src))
		if n.HasClosure() {
			value += string(n.ClosureLine.Value(c.src))
		}
		return leaf(KindHTML, Literal{Value: strings.TrimRight(value, "\n")})
	case *ast.List:
		return c.withBlocks(parent(KindList, List{
			Ordered: n.IsOrdered(),
			Start:   n.Start,
			Spread:  !n.IsTight,
		}), n)
	case *ast.ListItem:
		return c.withBlocks(parent(KindListItem, ListItem{Checked: taskState(n)}), n)
	case *east.Table:
		align := make([]string, len(n.Alignments))
		for i, a := range n.Alignments {
			if a != east.AlignNone {
				align[i] = a.String()
			}
		}
		return c.withBlocks(parent(KindTable, Table{Align: align}), n)
	case *east.TableHeader:
		return c.withBlocks(parent(KindTableRow, TableRow{Header: true}), n)
	case *east.TableRow:
		return c.withBlocks(parent(KindTableRow, TableRow{}), n)
	case *east.TableCell:
		return c.withInlines(parent(KindTableCell, nil), n)
	default:
		// Unknown block from an extension: keep its text.
		return c.withInlines(parent(KindParagraph, nil), n)
	}
}

func (c *converter) withBlocks(out *umt.Node, n ast.Node) *umt.Node {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		out.Children = append(out.Children, c.block(child))
	}
	return out
}

// withInlines converts the inline children of n, merging adjacent text
// segments into a single text node the way mdast does.
func (c *converter) withInlines(out *umt.Node, n ast.Node) *umt.Node {
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			out.Children = append(out.Children, leaf(KindText, Literal{Value: text.String()}))
			text.Reset()
		}
	}

	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch child := child.(type) {
		case *ast.Text:
			text.Write(child.Segment.Value(c.src))
			switch {
			case child.HardLineBreak():
				flush()
				out.Children = append(out.Children, leaf(KindBreak, nil))
			case child.SoftLineBreak():
				text.WriteByte('\n')
			}
		case *ast.String:
			text.Write(child.Value)
		case *east.TaskCheckBox:
			// Recorded on the list item.
		default:
			flush()
			out.Children = append(out.Children, c.inline(child))
		}
	}
	flush()
	return out
}

// inline converts a non-text inline goldmark node.
func (c *converter) inline(n ast.Node) *umt.Node {
	switch n := n.(type) {
	case *ast.Emphasis:
		kind := KindEmphasis
		if n.Level >= 2 {
			kind = KindStrong
		}
		return c.withInlines(parent(kind, nil), n)
	case *east.Strikethrough:
		return c.withInlines(parent(KindDelete, nil), n)
	case *ast.CodeSpan:
		return leaf(KindInlineCode, Literal{Value: c.plainText(n)})
	case *ast.Link:
		return c.withInlines(parent(KindLink, Link{
			URL:   string(n.Destination),
			Title: string(n.Title),
		}), n)
	case *ast.AutoLink:
		out := parent(KindLink, Link{URL: string(n.URL(c.src)), Auto: true})
		out.Children = append(out.Children, leaf(KindText, Literal{Value: string(n.Label(c.src))}))
		return out
	case *ast.Image:
		return leaf(KindImage, Image{
			URL:   string(n.Destination),
			Title: string(n.Title),
			Alt:   c.plainText(n),
		})
	case *ast.RawHTML:
		var sb strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			sb.Write(seg.Value(c.src))
		}
		return leaf(KindHTML, Literal{Value: sb.String()})
	default:
		return c.withInlines(parent(KindText, nil), n)
	}
}

// plainText concatenates the text below n.
func (c *converter) plainText(n ast.Node) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch child := child.(type) {
		case *ast.Text:
			sb.Write(child.Segment.Value(c.src))
			if child.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(child.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// taskState returns the checkbox state of a GFM task list item.
func taskState(item *ast.ListItem) *bool {
	first := item.FirstChild()
	if first == nil {
		return nil
	}
	if box, ok := first.FirstChild().(*east.TaskCheckBox); ok {
		checked := box.IsChecked
		return &checked
	}
	return nil
}
