package main

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	umt "github.com/alnah/go-umt"
)

// filterEnv is what a --filter expression sees for each node.
type filterEnv struct {
	Type     string         `expr:"type"`
	MimeType string         `expr:"mimeType"`
	Depth    int            `expr:"depth"`
	Children int            `expr:"children"`
	Leaf     bool           `expr:"leaf"`
	Data     any            `expr:"data"`
	Attrs    map[string]any `expr:"attrs"`
}

// nodeFilter keeps the nodes for which a compiled expression is true.
type nodeFilter struct {
	source  string
	program *vm.Program
}

// compileFilter compiles a boolean expression over filterEnv. An empty
// source yields a nil filter.
func compileFilter(source string) (*nodeFilter, error) {
	if source == "" {
		return nil, nil
	}
	program, err := expr.Compile(source, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return &nodeFilter{source: source, program: program}, nil
}

// Match evaluates the expression for n. Evaluation errors, such as a field
// access on a nil payload, count as no match.
func (f *nodeFilter) Match(n *umt.Node) bool {
	out, err := expr.Run(f.program, filterEnv{
		Type:     n.Type,
		MimeType: string(n.MimeType),
		Depth:    n.Depth(),
		Children: len(n.Children),
		Leaf:     !n.IsParent(),
		Data:     n.Data,
		Attrs:    n.Attrs,
	})
	if err != nil {
		return false
	}
	keep, _ := out.(bool)
	return keep
}

// Apply returns the filtered tree. The root is always kept.
func (f *nodeFilter) Apply(n *umt.Node) *umt.Node {
	if f == nil {
		return n
	}
	return umt.Filter(n, f.Match)
}
