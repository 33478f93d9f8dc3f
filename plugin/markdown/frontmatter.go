package markdown

import (
	"strings"

	"github.com/adrg/frontmatter"

	umt "github.com/alnah/go-umt"
)

// frontmatterKinds maps opening delimiters to node kinds.
var frontmatterKinds = map[string]string{
	"---": KindYAML,
	"+++": KindTOML,
	";;;": KindJSON,
}

// frontmatterDelimiters is the inverse of frontmatterKinds, for printing.
var frontmatterDelimiters = map[string]string{
	KindYAML: "---",
	KindTOML: "+++",
	KindJSON: ";;;",
}

// splitFrontmatter extracts leading metadata from content. It returns a raw
// metadata node (nil when the document has none) and the remaining body.
// A delimited block that does not decode to a mapping is markdown: "---"
// is also a thematic break or a setext underline.
func splitFrontmatter(content string) (*umt.Node, string) {
	delim, _, _ := strings.Cut(content, "\n")
	kind, ok := frontmatterKinds[strings.TrimSpace(delim)]
	if !ok {
		return nil, content
	}

	values := make(map[string]any)
	rest, err := frontmatter.Parse(strings.NewReader(content), &values)
	if err != nil {
		return nil, content
	}
	body := string(rest)
	if len(body) == len(content) {
		// Opening delimiter without a closing one.
		return nil, content
	}

	block := strings.TrimRight(content[:len(content)-len(body)], "\n")
	_, inner, _ := strings.Cut(block, "\n")
	if i := strings.LastIndex(inner, "\n"); i >= 0 {
		inner = inner[:i+1]
	} else {
		inner = ""
	}

	return &umt.Node{
		Type: kind,
		Data: Frontmatter{Raw: inner, Values: values},
	}, body
}
