package markdown

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	umt "github.com/alnah/go-umt"
	"github.com/alnah/go-umt/plugin/id"
)

func newEngine(t *testing.T, plugins ...umt.Plugin) *umt.Engine {
	t.Helper()
	return umt.NewEngine(umt.WithPlugins(append([]umt.Plugin{Plugin()}, plugins...)...))
}

func mustParse(t *testing.T, e *umt.Engine, input string) *umt.Node {
	t.Helper()
	root, err := e.Parse(context.Background(), input, MimeType)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", input, err)
	}
	return root
}

func find(root *umt.Node, kind string) *umt.Node {
	var found *umt.Node
	umt.Walk(root, func(n *umt.Node) bool {
		if found == nil && n.Type == kind {
			found = n
		}
		return found == nil
	})
	return found
}

// ----------------------------------------------------------------------------
// Parse
// ----------------------------------------------------------------------------

func TestParse_TitleAndBody(t *testing.T) {
	t.Parallel()

	e := newEngine(t, id.Plugin())
	root := mustParse(t, e, "# Title\n\nBody text.")

	if root.Type != KindRoot {
		t.Fatalf("root kind = %q, want %q", root.Type, KindRoot)
	}
	if len(root.Children) != 2 {
		t.Fatalf("root children = %d, want 2", len(root.Children))
	}
	for i, want := range []string{KindHeading, KindParagraph} {
		child := root.Children[i]
		if child.Type != want {
			t.Errorf("child %d kind = %q, want %q", i, child.Type, want)
		}
		if !id.Has(child) {
			t.Errorf("child %d has no id", i)
		}
		if child.Parent != root || child.Index != i {
			t.Errorf("child %d parent/index not set", i)
		}
	}
	if h, _ := root.Children[0].Data.(Heading); h.Depth != 1 {
		t.Errorf("heading depth = %d, want 1", h.Depth)
	}

	out, ok := e.Serialize(root, MimeType)
	if !ok {
		t.Fatal("Serialize produced no output")
	}
	if got := strings.TrimRight(out, "\n"); got != "# Title\n\nBody text." {
		t.Errorf("Serialize() = %q", out)
	}
}

func TestParse_Kinds(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	root := mustParse(t, e, strings.Join([]string{
		"Some *em* and **strong** with `code` and ~~gone~~.",
		"> quote",
		"- [x] done",
		"1. first",
		"```go\nx := 1\n```",
		"[site](https://example.com \"Example\") <https://auto.example>",
		"![alt](pic.png)",
		"| a | b |\n| :-- | --: |\n| 1 | 2 |",
		"***",
		"<div>raw</div>",
	}, "\n\n"))

	for _, kind := range []string{
		KindEmphasis, KindStrong, KindInlineCode, KindDelete, KindBlockquote,
		KindList, KindListItem, KindCode, KindLink, KindImage, KindTable,
		KindTableRow, KindTableCell, KindThematicBreak, KindHTML,
	} {
		if find(root, kind) == nil {
			t.Errorf("no %s node", kind)
		}
	}

	if code, _ := find(root, KindCode).Data.(Code); code.Lang != "go" || code.Value != "x := 1\n" {
		t.Errorf("code = %+v", code)
	}
	if item, _ := find(root, KindListItem).Data.(ListItem); item.Checked == nil || !*item.Checked {
		t.Errorf("task item checked = %v, want true", item.Checked)
	}
	if link, _ := find(root, KindLink).Data.(Link); link.URL != "https://example.com" || link.Title != "Example" {
		t.Errorf("link = %+v", link)
	}
	if img, _ := find(root, KindImage).Data.(Image); img.URL != "pic.png" || img.Alt != "alt" {
		t.Errorf("image = %+v", img)
	}
	table := find(root, KindTable)
	if tab, _ := table.Data.(Table); len(tab.Align) != 2 || tab.Align[0] != "left" || tab.Align[1] != "right" {
		t.Errorf("table align = %v", tab.Align)
	}
	if row, _ := table.Children[0].Data.(TableRow); !row.Header {
		t.Error("first table row is not the header")
	}

	umt.Walk(root, func(n *umt.Node) bool {
		if n.MimeType != MimeType || !n.Created() {
			t.Errorf("%s node not created as markdown", n.Type)
		}
		return true
	})
}

func TestParse_MergesText(t *testing.T) {
	t.Parallel()

	root := mustParse(t, newEngine(t), "line one\nline two & more_words")
	para := root.Children[0]
	if len(para.Children) != 1 {
		t.Fatalf("paragraph children = %d, want one merged text", len(para.Children))
	}
	if got := TextContent(para); got != "line one\nline two & more_words" {
		t.Errorf("text = %q", got)
	}
}

func TestParse_CRLF(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	lf := mustParse(t, e, "# T\n\nBody\nmore")
	crlf := mustParse(t, e, "# T\r\n\r\nBody\r\nmore")

	a, _ := e.Serialize(lf, "")
	b, _ := e.Serialize(crlf, "")
	if a != b {
		t.Errorf("CRLF output %q differs from LF output %q", b, a)
	}
}

func TestParse_Frontmatter(t *testing.T) {
	t.Parallel()

	e := newEngine(t)

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()

		root := mustParse(t, e, "---\ntitle: Hello\ntags: [a, b]\n---\n# Body")
		meta := root.Children[0]
		if meta.Type != KindYAML {
			t.Fatalf("first child = %q, want %q", meta.Type, KindYAML)
		}
		fm, _ := meta.Data.(Frontmatter)
		if fm.Values["title"] != "Hello" {
			t.Errorf("title = %v, want Hello", fm.Values["title"])
		}
		if fm.Raw != "title: Hello\ntags: [a, b]\n" {
			t.Errorf("raw = %q", fm.Raw)
		}

		out, _ := e.Serialize(root, "")
		if want := "---\ntitle: Hello\ntags: [a, b]\n---\n\n# Body\n"; out != want {
			t.Errorf("Serialize() = %q, want %q", out, want)
		}
	})

	t.Run("unclosed delimiter is markdown", func(t *testing.T) {
		t.Parallel()

		root := mustParse(t, e, "---\n\ntext")
		if root.Children[0].Type != KindThematicBreak {
			t.Errorf("first child = %q, want thematicBreak", root.Children[0].Type)
		}
	})

}

func TestParse_DelimitedBlockNotMapping(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	tests := []struct {
		name  string
		input string
		kinds []string
	}{
		{
			name:  "thematic break then setext heading",
			input: "---\nHello\n---\n\nBody",
			kinds: []string{KindThematicBreak, KindHeading, KindParagraph},
		},
		{
			name:  "sequence between breaks",
			input: "---\n- a\n- b\n---\n",
			kinds: []string{KindThematicBreak, KindList, KindThematicBreak},
		},
		{
			name:  "malformed yaml",
			input: "---\ntitle: [unclosed\n---\n",
			kinds: []string{KindThematicBreak, KindHeading},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := mustParse(t, e, tt.input)
			if got := childKinds(root); !slices.Equal(got, tt.kinds) {
				t.Fatalf("children = %v, want %v", got, tt.kinds)
			}

			out, ok := e.Serialize(root, "")
			if !ok {
				t.Fatal("Serialize() failed for an accepted document")
			}
			again := mustParse(t, e, out)
			if got := childKinds(again); !slices.Equal(got, tt.kinds) {
				t.Errorf("reparsed %q children = %v, want %v", out, got, tt.kinds)
			}
		})
	}
}

func childKinds(n *umt.Node) []string {
	kinds := make([]string, len(n.Children))
	for i, c := range n.Children {
		kinds[i] = c.Type
	}
	return kinds
}

func TestParse_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newEngine(t).Parse(ctx, "# x", MimeType); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

// ----------------------------------------------------------------------------
// Serialize
// ----------------------------------------------------------------------------

func TestSerialize_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "heading and paragraph", input: "# Title\n\nBody text."},
		{name: "inline marks", input: "Some *emphasis*, **strong** and `code`."},
		{name: "soft break", input: "line one\nline two"},
		{name: "bullet list", input: "- one\n- two\n- three"},
		{name: "ordered list", input: "1. first\n2. second"},
		{name: "nested list", input: "- a\n  - b\n- c"},
		{name: "task list", input: "- [x] done\n- [ ] todo"},
		{name: "blockquote", input: "> quoted\n>\n> second paragraph"},
		{name: "fenced code", input: "```go\nfmt.Println(1)\n```"},
		{name: "link with title", input: `[link](https://example.com "Title")`},
		{name: "image", input: "![alt text](img.png)"},
		{name: "thematic break", input: "***"},
		{name: "strikethrough", input: "~~gone~~"},
		{name: "autolink", input: "<https://example.com>"},
		{name: "deep headings", input: "# A\n\n## B\n\n### C\n\ntext"},
	}

	e := newEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, ok := e.Serialize(mustParse(t, e, tt.input), MimeType)
			if !ok {
				t.Fatal("no output")
			}
			if got := strings.TrimRight(out, "\n"); got != tt.input {
				t.Errorf("round trip:\ngot  %q\nwant %q", got, tt.input)
			}
		})
	}
}

func TestSerialize_Stable(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	input := "Setext\n======\n\n* star list\n* more\n\n| a | b |\n|---|:-:|\n| 1 | 2 |\n\n    indented code\n\nhard  \nbreak"

	first, _ := e.Serialize(mustParse(t, e, input), "")
	second, _ := e.Serialize(mustParse(t, e, first), "")
	if first != second {
		t.Errorf("printing is not stable:\nfirst  %q\nsecond %q", first, second)
	}
	if !strings.HasPrefix(first, "# Setext\n") {
		t.Errorf("setext heading printed as %q", first)
	}
}

func TestSerialize_HeadingSection(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	root := mustParse(t, e, "# A\n\nintro\n\n## B\n\nb text\n\n# C\n\nc text")

	tests := []struct {
		name  string
		index int
		want  string
	}{
		{name: "top level section stops at same depth", index: 0, want: "# A\n\nintro\n\n## B\n\nb text\n"},
		{name: "sub section stops at lower depth", index: 2, want: "## B\n\nb text\n"},
		{name: "last section runs to the end", index: 4, want: "# C\n\nc text\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, _ := e.Serialize(root.Children[tt.index], "")
			if got != tt.want {
				t.Errorf("Serialize() = %q, want %q", got, tt.want)
			}
		})
	}

	detached := root.Children[0].Clone()
	detached.Parent = nil
	if got, _ := e.Serialize(detached, ""); got != "# A\n" {
		t.Errorf("detached heading = %q, want %q", got, "# A\n")
	}
}

func TestSerialize_ImageHookChildPurified(t *testing.T) {
	t.Parallel()

	blobHook := func(e *umt.Engine) umt.Definition {
		return umt.Definition{OnCreate: []umt.CreateHook{{
			MimeType: MimeType.Qualify(KindImage),
			Event: func(ctx context.Context, n *umt.Node, _ any) (*umt.Node, error) {
				blob, err := e.N(ctx, &umt.Node{Type: "blob"}, "image/*")
				if err != nil {
					return nil, err
				}
				return umt.AddChildren(n, blob), nil
			},
		}}}
	}

	e := newEngine(t, blobHook)
	input := "See ![pic](https://example.com/a.png) here."
	root := mustParse(t, e, input)

	img := find(root, KindImage)
	if img == nil || len(img.Children) != 1 {
		t.Fatalf("image node children = %v, want exactly one", img)
	}
	if img.Children[0].MimeType != "image/*" {
		t.Errorf("child mime type = %q, want image/*", img.Children[0].MimeType)
	}

	if pure := find(umt.Purify(root), KindImage); len(pure.Children) != 0 {
		t.Errorf("purified image children = %d, want 0", len(pure.Children))
	}
	if out, _ := e.Serialize(root, ""); strings.TrimRight(out, "\n") != input {
		t.Errorf("Serialize() = %q", out)
	}
}

// ----------------------------------------------------------------------------
// HTML
// ----------------------------------------------------------------------------

func TestRenderHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		input   string
		want    []string
		notWant []string
	}{
		{
			name:  "headings and paragraphs",
			input: "---\ntitle: meta\n---\n# Title\n\nBody text.",
			want:  []string{`<h1 id="title">Title</h1>`, "<p>Body text.</p>"},
			notWant: []string{"title: meta"},
		},
		{
			name:  "highlighted code",
			input: "```go\nfunc main() {}\n```",
			want:  []string{`class="chroma"`},
		},
		{
			name:    "plain code",
			opts:    []Option{WithoutHighlighting()},
			input:   "```go\nfunc main() {}\n```",
			want:    []string{`<pre><code class="language-go">`},
			notWant: []string{"chroma"},
		},
		{
			name:    "sanitized raw html",
			opts:    []Option{WithUnsafeHTML(), WithSanitizer(DefaultSanitizer())},
			input:   "<script>alert(1)</script>\n\nok",
			want:    []string{"<p>ok</p>"},
			notWant: []string{"<script"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := umt.NewEngine(umt.WithPlugins(Plugin(tt.opts...)))
			got, ok := e.Serialize(mustParse(t, e, tt.input), HTMLMimeType)
			if !ok {
				t.Fatal("no HTML output")
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q:\n%s", w, got)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("output contains %q:\n%s", nw, got)
				}
			}
		})
	}
}

func TestTextContent(t *testing.T) {
	t.Parallel()

	root := mustParse(t, newEngine(t), "Hello *big* [world](x) ![pic](y.png) `code`")
	if got := TextContent(root); got != "Hello big world pic code" {
		t.Errorf("TextContent() = %q", got)
	}
}
